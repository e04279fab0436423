package entrypoint

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/trailsprotocol/trails/ledger"
	"github.com/trailsprotocol/trails/sdk"
	"github.com/trailsprotocol/trails/types"
)

// Receive handles native value sent with call data.
//
// If the last 32 bytes of the call data are the hash of a committed intent, the value funds that
// intent. Otherwise the value is held as a pending transfer until a relayer commits a matching
// intent. The id of the intent or transfer is returned.
func (e *Entrypoint) Receive(cc *ledger.CallContext) (common.Hash, error) {
	if err := e.enter(); err != nil {
		return common.Hash{}, err
	}
	defer e.exit()

	if err := e.whenNotPaused(); err != nil {
		return common.Hash{}, err
	}
	if len(cc.Data) == 0 {
		return common.Hash{}, ErrEmptyCalldata
	}
	if cc.Value == nil || cc.Value.Sign() == 0 {
		return common.Hash{}, types.ErrZeroAmount
	}

	if len(cc.Data) >= common.HashLength {
		suffix := common.BytesToHash(cc.Data[len(cc.Data)-common.HashLength:])
		if _, ok := e.Deposit(suffix); ok {
			return suffix, e.fund(cc, suffix, types.NativeToken, cc.Value)
		}
	}

	return e.recordTransfer(cc, types.NativeToken, cc.Value, cc.Data)
}

// DepositToken pulls amount of token from the caller and holds it as a pending transfer carrying
// intentData. The caller must have approved the entrypoint.
func (e *Entrypoint) DepositToken(
	cc *ledger.CallContext, token common.Address, amount *big.Int, intentData []byte,
) (common.Hash, error) {
	if err := e.enter(); err != nil {
		return common.Hash{}, err
	}
	defer e.exit()

	if err := e.whenNotPaused(); err != nil {
		return common.Hash{}, err
	}
	if err := noValue(cc); err != nil {
		return common.Hash{}, err
	}
	if types.IsNative(token) {
		return common.Hash{}, ErrNativeTokenNotAllowed
	}
	if amount == nil || amount.Sign() <= 0 {
		return common.Hash{}, types.ErrZeroAmount
	}
	if len(intentData) == 0 {
		return common.Hash{}, ErrEmptyIntentData
	}

	id, err := e.recordTransfer(cc, token, amount, intentData)
	if err != nil {
		return common.Hash{}, err
	}
	if err = pull(cc, token, cc.Sender, amount); err != nil {
		return common.Hash{}, err
	}

	return id, nil
}

// DepositToIntent funds an intent committed ahead of its ERC-20 deposit.
func (e *Entrypoint) DepositToIntent(
	cc *ledger.CallContext, intentHash common.Hash, token common.Address, amount *big.Int,
) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()

	if err := e.whenNotPaused(); err != nil {
		return err
	}
	if err := noValue(cc); err != nil {
		return err
	}
	if types.IsNative(token) {
		return ErrNativeTokenNotAllowed
	}

	if err := e.fund(cc, intentHash, token, amount); err != nil {
		return err
	}

	return pull(cc, token, cc.Sender, amount)
}

// fund marks the committed intent as funded after checking that the caller, asset and amount
// are the committed ones. Moving the funds is up to the caller.
func (e *Entrypoint) fund(cc *ledger.CallContext, intentHash common.Hash, token common.Address, amount *big.Int) error {
	d, err := e.deposit(intentHash)
	if err != nil {
		return err
	}

	switch {
	case cc.Sender != d.Owner:
		return ErrNotDepositOwner
	case token != d.Token:
		return &TokenMismatchError{Expected: d.Token, Got: token}
	case amount == nil || amount.Cmp(d.Amount) != 0:
		return &AmountMismatchError{Expected: new(big.Int).Set(d.Amount), Got: orZero(amount)}
	case d.Status != types.StatusPending:
		return NewInvalidStatusError(intentHash, d.Status, types.StatusPending)
	case cc.Timestamp() > d.Intent.Deadline:
		return ErrIntentExpired
	case d.Funded:
		return ErrAlreadyFunded
	}

	d.Funded = true
	e.putDeposit(intentHash, d)

	sdk.LoggerFrom(cc.Context()).Infof("intent %s funded by %s with %s of %s",
		intentHash.Hex(), cc.Sender.Hex(), amount, token.Hex())

	return cc.EmitEvent(TransferReceivedEvent,
		[]common.Hash{intentHash, addrTopic(cc.Sender)}, token, amount)
}

func (e *Entrypoint) recordTransfer(
	cc *ledger.CallContext, token common.Address, amount *big.Int, data []byte,
) (common.Hash, error) {
	id, err := TransferID(cc.Timestamp(), cc.Sender, token, amount, data, cc.GasPrice())
	if err != nil {
		return common.Hash{}, err
	}
	if _, ok := e.PendingTransfer(id); ok {
		return common.Hash{}, ErrTransferExists
	}

	e.putTransfer(id, types.PendingTransfer{
		Sender:     cc.Sender,
		Token:      token,
		Amount:     new(big.Int).Set(amount),
		IntentData: bytes.Clone(data),
		Timestamp:  cc.Timestamp(),
	})

	sdk.LoggerFrom(cc.Context()).Infof("pending transfer %s received from %s: %s of %s",
		id.Hex(), cc.Sender.Hex(), amount, token.Hex())

	if err = cc.EmitEvent(TransferReceivedEvent, []common.Hash{id, addrTopic(cc.Sender)}, token, amount); err != nil {
		return common.Hash{}, err
	}

	return id, nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return new(big.Int).Set(v)
}
