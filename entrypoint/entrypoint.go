// Package entrypoint implements the intent entrypoint: value is received, bound to a committed
// intent, proven and executed exactly once, with expiry and refunds as safety nets.
//
// The entrypoint is a ledger.Contract. Every state-changing method takes the CallContext of the
// transaction it runs in and relies on the ledger to revert every change when it returns an
// error.
package entrypoint

import (
	"fmt"
	"math/big"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	abiUtils "github.com/trailsprotocol/trails/internal/utils/abi"
	"github.com/trailsprotocol/trails/internal/utils/safecast"
	"github.com/trailsprotocol/trails/ledger"
	"github.com/trailsprotocol/trails/types"
)

const (
	// MaxDeadlineWindow is how far in the future an intent deadline may be at commit time.
	MaxDeadlineWindow = 24 * time.Hour

	// TransferReclaimDelay is how long a pending transfer stays claimable by relayers before its
	// sender can reclaim it.
	TransferReclaimDelay = 24 * time.Hour
)

const transferIDABI = `[{"type":"uint256"},{"type":"address"},{"type":"address"},{"type":"uint256"},{"type":"bytes"},{"type":"uint256"}]`

var (
	_ ledger.Contract    = (*Entrypoint)(nil)
	_ ledger.Snapshotter = (*Entrypoint)(nil)
)

// Entrypoint holds deposits, pending transfers, nonces and expirations.
type Entrypoint struct {
	address common.Address

	maxDeadlineWindow    uint64
	transferReclaimDelay uint64

	mu    sync.RWMutex
	state state

	entered atomic.Bool
}

type state struct {
	owner       common.Address
	paused      bool
	deposits    map[common.Hash]types.DepositState
	transfers   map[common.Hash]types.PendingTransfer
	nonces      map[common.Address]uint64
	expirations map[common.Hash]uint64
}

type Option func(*options)

type options struct {
	maxDeadlineWindow    time.Duration
	transferReclaimDelay time.Duration
}

// WithMaxDeadlineWindow overrides MaxDeadlineWindow.
func WithMaxDeadlineWindow(d time.Duration) Option {
	return func(o *options) {
		o.maxDeadlineWindow = d
	}
}

// WithTransferReclaimDelay overrides TransferReclaimDelay.
func WithTransferReclaimDelay(d time.Duration) Option {
	return func(o *options) {
		o.transferReclaimDelay = d
	}
}

// New returns an entrypoint that will be deployed at address and administered by owner.
func New(address, owner common.Address, opts ...Option) (*Entrypoint, error) {
	if owner == (common.Address{}) {
		return nil, ErrZeroOwner
	}

	o := &options{maxDeadlineWindow: MaxDeadlineWindow, transferReclaimDelay: TransferReclaimDelay}
	for _, opt := range opts {
		opt(o)
	}

	window, err := safecast.DurationToSeconds(o.maxDeadlineWindow)
	if err != nil {
		return nil, fmt.Errorf("invalid max deadline window: %w", err)
	}
	delay, err := safecast.DurationToSeconds(o.transferReclaimDelay)
	if err != nil {
		return nil, fmt.Errorf("invalid transfer reclaim delay: %w", err)
	}

	return &Entrypoint{
		address:              address,
		maxDeadlineWindow:    window,
		transferReclaimDelay: delay,
		state: state{
			owner:       owner,
			deposits:    make(map[common.Hash]types.DepositState),
			transfers:   make(map[common.Hash]types.PendingTransfer),
			nonces:      make(map[common.Address]uint64),
			expirations: make(map[common.Hash]uint64),
		},
	}, nil
}

// Address returns the address the entrypoint is deployed at.
func (e *Entrypoint) Address() common.Address {
	return e.address
}

func (e *Entrypoint) Owner() common.Address {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.state.owner
}

func (e *Entrypoint) Paused() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.state.paused
}

// Deposit returns a copy of the deposit bound to intentHash.
func (e *Entrypoint) Deposit(intentHash common.Hash) (types.DepositState, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	d, ok := e.state.deposits[intentHash]
	if !ok {
		return types.DepositState{}, false
	}

	return d.Clone(), true
}

// PendingTransfer returns a copy of the pending transfer recorded under transferID.
func (e *Entrypoint) PendingTransfer(transferID common.Hash) (types.PendingTransfer, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	p, ok := e.state.transfers[transferID]
	if !ok {
		return types.PendingTransfer{}, false
	}

	return p.Clone(), true
}

// Nonce returns the nonce the next intent of sender must carry.
func (e *Entrypoint) Nonce(sender common.Address) uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.state.nonces[sender]
}

// Expiration returns the deadline of the intent, 0 if it was never committed.
func (e *Entrypoint) Expiration(intentHash common.Hash) uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.state.expirations[intentHash]
}

// Snapshot implements ledger.Snapshotter.
func (e *Entrypoint) Snapshot() any {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.state.clone()
}

// Restore implements ledger.Snapshotter.
func (e *Entrypoint) Restore(snapshot any) {
	s, ok := snapshot.(state)
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s.clone()
}

func (s state) clone() state {
	out := state{
		owner:       s.owner,
		paused:      s.paused,
		deposits:    make(map[common.Hash]types.DepositState, len(s.deposits)),
		transfers:   make(map[common.Hash]types.PendingTransfer, len(s.transfers)),
		nonces:      make(map[common.Address]uint64, len(s.nonces)),
		expirations: make(map[common.Hash]uint64, len(s.expirations)),
	}
	for k, v := range s.deposits {
		out.deposits[k] = v.Clone()
	}
	for k, v := range s.transfers {
		out.transfers[k] = v.Clone()
	}
	for k, v := range s.nonces {
		out.nonces[k] = v
	}
	for k, v := range s.expirations {
		out.expirations[k] = v
	}

	return out
}

// enter rejects calls made while another entrypoint call is still running, e.g. from a contract
// invoked by an execution batch.
func (e *Entrypoint) enter() error {
	if !e.entered.CompareAndSwap(false, true) {
		return ErrReentrantCall
	}

	return nil
}

func (e *Entrypoint) exit() {
	e.entered.Store(false)
}

// heldTokens returns the assets held for funded deposits and uncommitted pending transfers.
func (e *Entrypoint) heldTokens() []common.Address {
	e.mu.RLock()
	defer e.mu.RUnlock()

	seen := make(map[common.Address]bool)
	for _, d := range e.state.deposits {
		if d.Refundable() {
			seen[d.Token] = true
		}
	}
	for _, p := range e.state.transfers {
		if !p.Committed {
			seen[p.Token] = true
		}
	}

	tokens := make([]common.Address, 0, len(seen))
	for token := range seen {
		tokens = append(tokens, token)
	}
	slices.SortFunc(tokens, func(a, b common.Address) int { return a.Cmp(b) })

	return tokens
}

func (e *Entrypoint) whenNotPaused() error {
	if e.Paused() {
		return ErrPaused
	}

	return nil
}

func (e *Entrypoint) deposit(intentHash common.Hash) (types.DepositState, error) {
	d, ok := e.Deposit(intentHash)
	if !ok {
		return types.DepositState{}, ErrIntentNotFound
	}

	return d, nil
}

func (e *Entrypoint) putDeposit(intentHash common.Hash, d types.DepositState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.deposits[intentHash] = d.Clone()
}

func (e *Entrypoint) putTransfer(transferID common.Hash, p types.PendingTransfer) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.transfers[transferID] = p.Clone()
}

func (e *Entrypoint) deleteTransfer(transferID common.Hash) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.state.transfers, transferID)
}

func noValue(cc *ledger.CallContext) error {
	if cc.Value != nil && cc.Value.Sign() != 0 {
		return ErrUnexpectedValue
	}

	return nil
}

// TransferID derives the key of a pending transfer from the transaction that created it.
func TransferID(
	timestamp uint64, sender, token common.Address, amount *big.Int, data []byte, gasPrice *big.Int,
) (common.Hash, error) {
	if data == nil {
		data = []byte{}
	}

	encoded, err := abiUtils.Encode(transferIDABI,
		new(big.Int).SetUint64(timestamp), sender, token, amount, data, gasPrice)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(encoded), nil
}

func addrTopic(a common.Address) common.Hash { return ledger.AddressTopic(a) }
