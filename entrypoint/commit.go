package entrypoint

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/trailsprotocol/trails/ledger"
	"github.com/trailsprotocol/trails/sdk"
	"github.com/trailsprotocol/trails/types"
)

// CommitIntent binds an intent ahead of its funds. The caller must be the intent sender, who
// then funds it with Receive or DepositToIntent.
func (e *Entrypoint) CommitIntent(cc *ledger.CallContext, intent types.Intent) (common.Hash, error) {
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
	if cc.Sender != intent.Sender {
		return common.Hash{}, ErrNotIntentSender
	}

	return e.commit(cc, intent, false)
}

// CommitTransfer binds an intent to the pending transfer transferID. Sender, token and amount
// must match the transfer, which can be committed only once.
func (e *Entrypoint) CommitTransfer(
	cc *ledger.CallContext, transferID common.Hash, intent types.Intent,
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

	return e.commitTransfer(cc, transferID, intent)
}

func (e *Entrypoint) commitTransfer(
	cc *ledger.CallContext, transferID common.Hash, intent types.Intent,
) (common.Hash, error) {
	p, ok := e.PendingTransfer(transferID)
	if !ok {
		return common.Hash{}, ErrTransferNotFound
	}
	if p.Committed {
		return common.Hash{}, ErrTransferAlreadyCommitted
	}

	switch {
	case intent.Sender != p.Sender:
		return common.Hash{}, &SenderMismatchError{Expected: p.Sender, Got: intent.Sender}
	case intent.Token != p.Token:
		return common.Hash{}, &TokenMismatchError{Expected: p.Token, Got: intent.Token}
	case intent.Amount == nil || intent.Amount.Cmp(p.Amount) != 0:
		return common.Hash{}, &AmountMismatchError{Expected: new(big.Int).Set(p.Amount), Got: orZero(intent.Amount)}
	}

	hash, err := e.commit(cc, intent, true)
	if err != nil {
		return common.Hash{}, err
	}

	p.Committed = true
	e.putTransfer(transferID, p)

	return hash, nil
}

// commit validates intent against the current chain state and records a pending deposit.
func (e *Entrypoint) commit(cc *ledger.CallContext, intent types.Intent, funded bool) (common.Hash, error) {
	if err := intent.Validate(); err != nil {
		return common.Hash{}, err
	}

	now := cc.Timestamp()
	if intent.Deadline <= now {
		return common.Hash{}, ErrDeadlinePassed
	}
	if latest := now + e.maxDeadlineWindow; intent.Deadline > latest {
		return common.Hash{}, &DeadlineTooFarError{Deadline: intent.Deadline, Max: latest}
	}

	callValue := intent.TotalCallValue()
	if types.IsNative(intent.Token) && callValue.Cmp(intent.Amount) > 0 {
		return common.Hash{}, ErrCallValueExceedsAmount
	}
	if !types.IsNative(intent.Token) && callValue.Sign() != 0 {
		return common.Hash{}, ErrCallValueExceedsAmount
	}

	if expected := e.Nonce(intent.Sender); intent.Nonce != expected {
		return common.Hash{}, NewNonceMismatchError(intent.Sender, expected, intent.Nonce)
	}

	hash, err := intent.Hash()
	if err != nil {
		return common.Hash{}, err
	}
	if _, ok := e.Deposit(hash); ok {
		return common.Hash{}, ErrIntentExists
	}

	e.mu.Lock()
	e.state.deposits[hash] = types.DepositState{
		Owner:     intent.Sender,
		Token:     intent.Token,
		Amount:    new(big.Int).Set(intent.Amount),
		Status:    types.StatusPending,
		Intent:    intent.Clone(),
		CreatedAt: now,
		Funded:    funded,
	}
	e.state.nonces[intent.Sender]++
	e.state.expirations[hash] = intent.Deadline
	e.mu.Unlock()

	sdk.LoggerFrom(cc.Context()).Infof("intent %s committed for %s: %s of %s, %d calls, deadline %d",
		hash.Hex(), intent.Sender.Hex(), intent.Amount, intent.Token.Hex(), len(intent.Calls), intent.Deadline)

	err = cc.EmitEvent(IntentCommittedEvent,
		[]common.Hash{hash, addrTopic(intent.Sender)},
		intent.Token, intent.Amount, new(big.Int).SetUint64(intent.Deadline))
	if err != nil {
		return common.Hash{}, err
	}

	return hash, nil
}
