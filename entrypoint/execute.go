package entrypoint

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/trailsprotocol/trails/ledger"
	"github.com/trailsprotocol/trails/sdk"
	"github.com/trailsprotocol/trails/types"
)

// ExecutionResult is the outcome of an execution batch.
type ExecutionResult struct {
	Success bool
	// ReturnData is the return data of the last call on success, the failure reason otherwise.
	ReturnData []byte
	// Err is the failure that ended the batch, nil on success.
	Err error
}

// ExecuteIntent runs the calls of a proven intent in order.
//
// The batch is atomic: on the first failing call every effect of the batch is reverted, the
// intent is marked Failed and its full amount is refunded to the owner. The failure is reported
// in the result, not as an error. Funds the calls did not spend are returned to the owner.
func (e *Entrypoint) ExecuteIntent(cc *ledger.CallContext, intentHash common.Hash) (ExecutionResult, error) {
	if err := e.enter(); err != nil {
		return ExecutionResult{}, err
	}
	defer e.exit()

	if err := e.whenNotPaused(); err != nil {
		return ExecutionResult{}, err
	}
	if err := noValue(cc); err != nil {
		return ExecutionResult{}, err
	}

	return e.execute(cc, intentHash)
}

// CommitProveExecute commits intent to the pending transfer transferID and executes it in the
// same transaction. The transfer intent data must end with the intent hash: having sent the
// funds with it is the proof.
func (e *Entrypoint) CommitProveExecute(
	cc *ledger.CallContext, transferID common.Hash, intent types.Intent,
) (common.Hash, ExecutionResult, error) {
	if err := e.enter(); err != nil {
		return common.Hash{}, ExecutionResult{}, err
	}
	defer e.exit()

	if err := e.whenNotPaused(); err != nil {
		return common.Hash{}, ExecutionResult{}, err
	}
	if err := noValue(cc); err != nil {
		return common.Hash{}, ExecutionResult{}, err
	}

	p, ok := e.PendingTransfer(transferID)
	if !ok {
		return common.Hash{}, ExecutionResult{}, ErrTransferNotFound
	}
	want, err := intent.Hash()
	if err != nil {
		return common.Hash{}, ExecutionResult{}, err
	}
	if len(p.IntentData) < common.HashLength ||
		common.BytesToHash(p.IntentData[len(p.IntentData)-common.HashLength:]) != want {
		return common.Hash{}, ExecutionResult{}, ErrIntentDataMismatch
	}

	hash, err := e.commitTransfer(cc, transferID, intent)
	if err != nil {
		return common.Hash{}, ExecutionResult{}, err
	}

	d, err := e.deposit(hash)
	if err != nil {
		return common.Hash{}, ExecutionResult{}, err
	}
	if err = e.markProven(cc, hash, d); err != nil {
		return common.Hash{}, ExecutionResult{}, err
	}

	res, err := e.execute(cc, hash)
	if err != nil {
		return common.Hash{}, ExecutionResult{}, err
	}

	return hash, res, nil
}

func (e *Entrypoint) execute(cc *ledger.CallContext, intentHash common.Hash) (ExecutionResult, error) {
	lggr := sdk.LoggerFrom(cc.Context())

	d, err := e.deposit(intentHash)
	if err != nil {
		return ExecutionResult{}, err
	}
	if d.Status != types.StatusProven {
		return ExecutionResult{}, NewInvalidStatusError(intentHash, d.Status, types.StatusProven)
	}
	if cc.Timestamp() > d.Intent.Deadline {
		return ExecutionResult{}, ErrIntentExpired
	}

	var (
		ret   []byte
		spent *big.Int
	)
	batchErr := cc.Atomic(func() error {
		var err error
		ret, spent, err = e.runBatch(cc, d)

		return err
	})

	if batchErr != nil {
		lggr.Warnf("intent %s execution failed, refunding %s of %s to %s: %v",
			intentHash.Hex(), d.Amount, d.Token.Hex(), d.Owner.Hex(), batchErr)

		d.Status = types.StatusFailed
		if err = e.refund(cc, intentHash, &d); err != nil {
			return ExecutionResult{}, err
		}

		reason := []byte(batchErr.Error())
		if err = cc.EmitEvent(IntentExecutedEvent, []common.Hash{intentHash}, false, reason); err != nil {
			return ExecutionResult{}, err
		}

		return ExecutionResult{Success: false, ReturnData: reason, Err: batchErr}, nil
	}

	d.Status = types.StatusExecuted
	e.putDeposit(intentHash, d)

	if remainder := new(big.Int).Sub(d.Amount, spent); remainder.Sign() > 0 {
		if err = pay(cc, d.Token, d.Owner, remainder); err != nil {
			return ExecutionResult{}, err
		}
		err = cc.EmitEvent(RefundedEvent, []common.Hash{intentHash, addrTopic(d.Owner)}, d.Token, remainder)
		if err != nil {
			return ExecutionResult{}, err
		}
	}

	lggr.Infof("intent %s executed: %d calls, spent %s of %s", intentHash.Hex(), len(d.Intent.Calls), spent, d.Amount)

	if ret == nil {
		ret = []byte{}
	}
	if err = cc.EmitEvent(IntentExecutedEvent, []common.Hash{intentHash}, true, ret); err != nil {
		return ExecutionResult{}, err
	}

	return ExecutionResult{Success: true, ReturnData: ret}, nil
}

// runBatch executes the calls of d and returns the return data of the last call and how much of
// the deposit the calls spent. Spending more than the deposit, or lowering the balance of any
// other asset the entrypoint holds, fails the batch.
func (e *Entrypoint) runBatch(cc *ledger.CallContext, d types.DepositState) ([]byte, *big.Int, error) {
	tokenBefore, err := balance(cc, d.Token)
	if err != nil {
		return nil, nil, err
	}

	others := e.heldTokens()
	if !types.IsNative(d.Token) {
		others = append(others, types.NativeToken)
	}
	guarded := make(map[common.Address]*big.Int, len(others))
	for _, token := range others {
		if token == d.Token {
			continue
		}
		if guarded[token], err = balance(cc, token); err != nil {
			return nil, nil, err
		}
	}

	var ret []byte
	for i, call := range d.Intent.Calls {
		if ret, err = cc.Call(call.Target, call.Value, call.Data); err != nil {
			return nil, nil, &CallFailedError{CallIndex: i, Target: call.Target, Err: err}
		}
	}

	tokenAfter, err := balance(cc, d.Token)
	if err != nil {
		return nil, nil, err
	}
	spent := new(big.Int).Sub(tokenBefore, tokenAfter)
	if spent.Sign() < 0 {
		spent.SetInt64(0)
	}
	if spent.Cmp(d.Amount) > 0 {
		return nil, nil, ErrOverspend
	}
	for token, before := range guarded {
		after, err := balance(cc, token)
		if err != nil {
			return nil, nil, err
		}
		if after.Cmp(before) < 0 {
			return nil, nil, ErrOverspend
		}
	}

	return ret, spent, nil
}
