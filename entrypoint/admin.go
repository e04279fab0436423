package entrypoint

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/trailsprotocol/trails/ledger"
	"github.com/trailsprotocol/trails/sdk"
)

// Pause stops commits, deposits, proofs and executions. Expiry and withdrawals keep working.
func (e *Entrypoint) Pause(cc *ledger.CallContext) error {
	if err := e.onlyOwner(cc); err != nil {
		return err
	}

	e.mu.Lock()
	if e.state.paused {
		e.mu.Unlock()
		return ErrPaused
	}
	e.state.paused = true
	e.mu.Unlock()

	sdk.LoggerFrom(cc.Context()).Warnf("entrypoint %s paused by %s", cc.Self.Hex(), cc.Sender.Hex())

	return cc.EmitEvent(PausedEvent, nil, cc.Sender)
}

func (e *Entrypoint) Unpause(cc *ledger.CallContext) error {
	if err := e.onlyOwner(cc); err != nil {
		return err
	}

	e.mu.Lock()
	if !e.state.paused {
		e.mu.Unlock()
		return ErrNotPaused
	}
	e.state.paused = false
	e.mu.Unlock()

	sdk.LoggerFrom(cc.Context()).Infof("entrypoint %s unpaused by %s", cc.Self.Hex(), cc.Sender.Hex())

	return cc.EmitEvent(UnpausedEvent, nil, cc.Sender)
}

// TransferOwnership hands the admin role to newOwner.
func (e *Entrypoint) TransferOwnership(cc *ledger.CallContext, newOwner common.Address) error {
	if err := e.onlyOwner(cc); err != nil {
		return err
	}
	if newOwner == (common.Address{}) {
		return ErrZeroOwner
	}

	e.mu.Lock()
	previous := e.state.owner
	e.state.owner = newOwner
	e.mu.Unlock()

	sdk.LoggerFrom(cc.Context()).Infof("entrypoint ownership transferred from %s to %s", previous.Hex(), newOwner.Hex())

	return cc.EmitEvent(OwnershipTransferredEvent, []common.Hash{addrTopic(previous), addrTopic(newOwner)})
}

func (e *Entrypoint) onlyOwner(cc *ledger.CallContext) error {
	if err := noValue(cc); err != nil {
		return err
	}
	if cc.Sender != e.Owner() {
		return ErrNotOwner
	}

	return nil
}
