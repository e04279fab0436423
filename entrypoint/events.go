package entrypoint

import "github.com/trailsprotocol/trails/ledger"

var (
	TransferReceivedEvent = ledger.NewEvent(
		"TransferReceived(bytes32,address,address,uint256)",
		`[{"type":"address"},{"type":"uint256"}]`,
	)
	IntentCommittedEvent = ledger.NewEvent(
		"IntentCommitted(bytes32,address,address,uint256,uint256)",
		`[{"type":"address"},{"type":"uint256"},{"type":"uint256"}]`,
	)
	IntentProvenEvent   = ledger.NewEvent("IntentProven(bytes32,address)", "[]")
	IntentExecutedEvent = ledger.NewEvent(
		"IntentExecuted(bytes32,bool,bytes)",
		`[{"type":"bool"},{"type":"bytes"}]`,
	)
	IntentExpiredEvent     = ledger.NewEvent("IntentExpired(bytes32,address)", "[]")
	TransferReclaimedEvent = ledger.NewEvent("TransferReclaimed(bytes32,address,uint256)", `[{"type":"uint256"}]`)
	RefundedEvent          = ledger.NewEvent(
		"Refunded(bytes32,address,address,uint256)",
		`[{"type":"address"},{"type":"uint256"}]`,
	)
	EmergencyWithdrawalEvent = ledger.NewEvent(
		"EmergencyWithdrawal(bytes32,address,uint256)",
		`[{"type":"uint256"}]`,
	)
	PausedEvent               = ledger.NewEvent("Paused(address)", `[{"type":"address"}]`)
	UnpausedEvent             = ledger.NewEvent("Unpaused(address)", `[{"type":"address"}]`)
	OwnershipTransferredEvent = ledger.NewEvent("OwnershipTransferred(address,address)", "[]")
)
