// Package ledger is a minimal in-memory execution environment for contracts written in Go.
//
// Transactions run one at a time. Every transaction, and every nested call inside it, runs
// against a snapshot: when it fails, native balances, logs and the state of every contract that
// implements Snapshotter are restored.
package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/trailsprotocol/trails/internal/utils/safecast"
	"github.com/trailsprotocol/trails/sdk"
)

const (
	// MaxCallDepth is the deepest nesting of calls a transaction can reach.
	MaxCallDepth = 1024

	// DefaultGasPrice is the gas price reported to contracts unless WithGasPrice is used.
	DefaultGasPrice = 1_000_000_000
)

// Contract is code deployed at an address. Call handles a message sent to it; a returned error
// reverts the call.
type Contract interface {
	Call(cc *CallContext) ([]byte, error)
}

// Snapshotter is implemented by contracts whose storage must be reverted with a failed call.
// Restore receives a value previously returned by Snapshot.
type Snapshotter interface {
	Snapshot() any
	Restore(snapshot any)
}

// Message is a transaction sent from an externally owned account.
type Message struct {
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Value *big.Int       `json:"value"`
	Data  []byte         `json:"data"`
}

// Ledger holds accounts, deployed contracts and emitted logs.
type Ledger struct {
	mu sync.Mutex

	chainID  *big.Int
	gasPrice *big.Int
	clock    func() time.Time

	balances  map[common.Address]*big.Int
	contracts map[common.Address]Contract
	logs      []Log
}

type Option func(*Ledger)

// WithClock sets the source of the block timestamp.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) {
		l.clock = clock
	}
}

// WithGasPrice sets the gas price reported to contracts.
func WithGasPrice(gasPrice *big.Int) Option {
	return func(l *Ledger) {
		l.gasPrice = new(big.Int).Set(gasPrice)
	}
}

// New returns an empty ledger for chainID.
func New(chainID *big.Int, opts ...Option) *Ledger {
	l := &Ledger{
		chainID:   new(big.Int).Set(chainID),
		gasPrice:  big.NewInt(DefaultGasPrice),
		clock:     time.Now,
		balances:  make(map[common.Address]*big.Int),
		contracts: make(map[common.Address]Contract),
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// ChainID returns a copy of the ledger chain id.
func (l *Ledger) ChainID() *big.Int {
	return new(big.Int).Set(l.chainID)
}

// Deploy registers c at addr.
func (l *Ledger) Deploy(addr common.Address, c Contract) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.contracts[addr]; ok {
		return &AddressInUseError{Address: addr}
	}
	l.contracts[addr] = c

	return nil
}

// Fund credits amount of native currency to addr outside of any transaction.
func (l *Ledger) Fund(addr common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.credit(addr, amount)
}

// Balance returns the native balance of addr. It must not be called from inside a transaction;
// use CallContext.BalanceOf there.
func (l *Ledger) Balance(addr common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.balanceOf(addr)
}

// Logs returns a copy of all logs emitted by committed transactions.
func (l *Ledger) Logs() []Log {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Log, len(l.logs))
	copy(out, l.logs)

	return out
}

// Transact runs fn as the body of a transaction from from to to carrying value. value is
// moved to to before fn runs. If fn returns an error every state change is reverted.
func (l *Ledger) Transact(
	ctx context.Context, from, to common.Address, value *big.Int, fn func(cc *CallContext) error,
) error {
	_, err := l.run(ctx, Message{From: from, To: to, Value: value}, func(cc *CallContext) ([]byte, error) {
		return nil, fn(cc)
	})

	return err
}

// Send delivers msg to the contract at msg.To, or transfers value if there is none.
func (l *Ledger) Send(ctx context.Context, msg Message) ([]byte, error) {
	return l.run(ctx, msg, func(cc *CallContext) ([]byte, error) {
		c, ok := l.contracts[msg.To]
		if !ok {
			return nil, nil
		}

		return c.Call(cc)
	})
}

func (l *Ledger) run(ctx context.Context, msg Message, body func(cc *CallContext) ([]byte, error)) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	value := orZero(msg.Value)
	if value.Sign() < 0 {
		return nil, ErrNegativeValue
	}

	timestamp, err := safecast.Int64ToUint64(l.clock().Unix())
	if err != nil {
		return nil, fmt.Errorf("invalid block time: %w", err)
	}

	cc := &CallContext{
		ctx:       ctx,
		ledger:    l,
		timestamp: timestamp,
		origin:    msg.From,
		Sender:    msg.From,
		Self:      msg.To,
		Value:     value,
		Data:      msg.Data,
	}

	snap := l.snapshot()
	if err := l.move(msg.From, msg.To, value); err != nil {
		return nil, err
	}

	ret, err := body(cc)
	if err != nil {
		l.revertTo(snap)
		sdk.LoggerFrom(ctx).Debugf("transaction from %s to %s reverted: %v", msg.From.Hex(), msg.To.Hex(), err)

		return nil, err
	}

	return ret, nil
}

type snapshot struct {
	balances  map[common.Address]*big.Int
	logs      int
	contracts map[common.Address]any
}

func (l *Ledger) snapshot() snapshot {
	s := snapshot{
		balances:  make(map[common.Address]*big.Int, len(l.balances)),
		logs:      len(l.logs),
		contracts: make(map[common.Address]any),
	}
	for addr, bal := range l.balances {
		s.balances[addr] = new(big.Int).Set(bal)
	}
	for addr, c := range l.contracts {
		if sn, ok := c.(Snapshotter); ok {
			s.contracts[addr] = sn.Snapshot()
		}
	}

	return s
}

func (l *Ledger) revertTo(s snapshot) {
	l.balances = make(map[common.Address]*big.Int, len(s.balances))
	for addr, bal := range s.balances {
		l.balances[addr] = new(big.Int).Set(bal)
	}
	l.logs = l.logs[:s.logs]
	for addr, state := range s.contracts {
		if sn, ok := l.contracts[addr].(Snapshotter); ok {
			sn.Restore(state)
		}
	}
}

func (l *Ledger) balanceOf(addr common.Address) *big.Int {
	if bal, ok := l.balances[addr]; ok {
		return new(big.Int).Set(bal)
	}

	return new(big.Int)
}

func (l *Ledger) credit(addr common.Address, amount *big.Int) {
	bal, ok := l.balances[addr]
	if !ok {
		bal = new(big.Int)
		l.balances[addr] = bal
	}
	bal.Add(bal, amount)
}

func (l *Ledger) move(from, to common.Address, value *big.Int) error {
	if value.Sign() == 0 {
		return nil
	}

	bal := l.balanceOf(from)
	if bal.Cmp(value) < 0 {
		return NewInsufficientBalanceError(from, bal, value)
	}
	l.balances[from] = bal.Sub(bal, value)
	l.credit(to, value)

	return nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return new(big.Int).Set(v)
}
