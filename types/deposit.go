package types //nolint:revive,nolintlint // allow pkg name 'types'

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// DepositStatus is the lifecycle status of a committed intent.
type DepositStatus string

const (
	StatusPending  DepositStatus = "Pending"
	StatusProven   DepositStatus = "Proven"
	StatusExecuted DepositStatus = "Executed"
	StatusFailed   DepositStatus = "Failed"
)

var depositTransitions = map[DepositStatus][]DepositStatus{
	StatusPending: {StatusProven, StatusFailed},
	StatusProven:  {StatusExecuted, StatusFailed},
}

// IsTerminal reports whether no transition leaves s.
func (s DepositStatus) IsTerminal() bool {
	return s == StatusExecuted || s == StatusFailed
}

// CanTransitionTo reports whether moving from s to next is a forward transition.
func (s DepositStatus) CanTransitionTo(next DepositStatus) bool {
	for _, allowed := range depositTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// DepositState tracks the funds and status bound to one intent hash.
type DepositState struct {
	Owner     common.Address `json:"owner"`
	Token     common.Address `json:"token"`
	Amount    *big.Int       `json:"amount"`
	Status    DepositStatus  `json:"status"`
	Intent    Intent         `json:"intent"`
	CreatedAt uint64         `json:"createdAt"`
	// Funded is set once the entrypoint holds Amount of Token for this intent.
	Funded bool `json:"funded"`
	// Refunded is set once the held funds were returned to Owner.
	Refunded bool `json:"refunded"`
}

// Clone returns a deep copy of the deposit.
func (d DepositState) Clone() DepositState {
	out := d
	out.Amount = orZero(d.Amount)
	out.Intent = d.Intent.Clone()

	return out
}

// Refundable reports whether the deposit still holds funds owed to its owner.
func (d DepositState) Refundable() bool {
	return d.Funded && !d.Refunded && d.Status != StatusExecuted
}

// PendingTransfer holds value sent ahead of a structured intent.
type PendingTransfer struct {
	Sender     common.Address `json:"sender"`
	Token      common.Address `json:"token"`
	Amount     *big.Int       `json:"amount"`
	IntentData []byte         `json:"intentData"`
	Timestamp  uint64         `json:"timestamp"`
	Committed  bool           `json:"committed"`
}

// Clone returns a deep copy of the pending transfer.
func (p PendingTransfer) Clone() PendingTransfer {
	out := p
	out.Amount = orZero(p.Amount)
	out.IntentData = append([]byte(nil), p.IntentData...)

	return out
}
