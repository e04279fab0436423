package entrypoint

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/trailsprotocol/trails/ledger"
	"github.com/trailsprotocol/trails/sdk"
	"github.com/trailsprotocol/trails/types"
)

// ExpireIntent fails an intent whose deadline has passed and refunds its held funds to the
// owner. Anyone may call it. Works while paused.
func (e *Entrypoint) ExpireIntent(cc *ledger.CallContext, intentHash common.Hash) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()

	if err := noValue(cc); err != nil {
		return err
	}

	d, err := e.deposit(intentHash)
	if err != nil {
		return err
	}
	if d.Status.IsTerminal() {
		if d.Status == types.StatusExecuted {
			return ErrAlreadyExecuted
		}

		return NewInvalidStatusError(intentHash, d.Status, types.StatusPending)
	}
	if cc.Timestamp() <= d.Intent.Deadline {
		return ErrIntentNotExpired
	}

	d.Status = types.StatusFailed
	if d.Refundable() {
		if err = e.refund(cc, intentHash, &d); err != nil {
			return err
		}
	} else {
		e.putDeposit(intentHash, d)
	}

	sdk.LoggerFrom(cc.Context()).Infof("intent %s expired", intentHash.Hex())

	return cc.EmitEvent(IntentExpiredEvent, []common.Hash{intentHash, addrTopic(d.Owner)})
}

// ExpireTransfer returns a pending transfer that was never committed to its sender once the
// reclaim delay has elapsed. Works while paused.
func (e *Entrypoint) ExpireTransfer(cc *ledger.CallContext, transferID common.Hash) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()

	if err := noValue(cc); err != nil {
		return err
	}

	p, ok := e.PendingTransfer(transferID)
	if !ok {
		return ErrTransferNotFound
	}
	if cc.Sender != p.Sender {
		return ErrNotTransferSender
	}
	if p.Committed {
		return ErrTransferAlreadyCommitted
	}
	if reclaimableAt := p.Timestamp + e.transferReclaimDelay; cc.Timestamp() < reclaimableAt {
		return &TransferNotExpiredError{ReclaimableAt: reclaimableAt}
	}

	// Removed before paying so a second reclaim finds nothing.
	e.deleteTransfer(transferID)
	if err := pay(cc, p.Token, p.Sender, p.Amount); err != nil {
		return err
	}

	sdk.LoggerFrom(cc.Context()).Warnf("pending transfer %s reclaimed by %s: %s of %s",
		transferID.Hex(), p.Sender.Hex(), p.Amount, p.Token.Hex())

	return cc.EmitEvent(TransferReclaimedEvent, []common.Hash{transferID, addrTopic(p.Sender)}, p.Amount)
}

// EmergencyWithdraw lets the deposit owner reclaim the funds of a failed or expired intent.
// Works while paused.
func (e *Entrypoint) EmergencyWithdraw(cc *ledger.CallContext, intentHash common.Hash) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()

	if err := noValue(cc); err != nil {
		return err
	}

	d, err := e.deposit(intentHash)
	if err != nil {
		return err
	}
	if cc.Sender != d.Owner {
		return ErrNotDepositOwner
	}
	if d.Status == types.StatusExecuted {
		return ErrAlreadyExecuted
	}
	if d.Status != types.StatusFailed && cc.Timestamp() <= d.Intent.Deadline {
		return ErrWithdrawNotAllowed
	}
	if !d.Refundable() {
		return ErrNothingToWithdraw
	}

	d.Status = types.StatusFailed
	if err = e.refund(cc, intentHash, &d); err != nil {
		return err
	}

	sdk.LoggerFrom(cc.Context()).Warnf("emergency withdrawal of intent %s: %s of %s to %s",
		intentHash.Hex(), d.Amount, d.Token.Hex(), d.Owner.Hex())

	return cc.EmitEvent(EmergencyWithdrawalEvent, []common.Hash{intentHash, addrTopic(d.Owner)}, d.Amount)
}

// refund stores d as refunded, then pays its amount back to the owner. A deposit is refunded
// at most once.
func (e *Entrypoint) refund(cc *ledger.CallContext, intentHash common.Hash, d *types.DepositState) error {
	if !d.Refundable() {
		e.putDeposit(intentHash, *d)

		return nil
	}

	d.Refunded = true
	e.putDeposit(intentHash, *d)

	if err := pay(cc, d.Token, d.Owner, d.Amount); err != nil {
		return err
	}

	return cc.EmitEvent(RefundedEvent, []common.Hash{intentHash, addrTopic(d.Owner)}, d.Token, d.Amount)
}
