package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// CallContext is the environment of one call: who sent it, with what value and data, at which
// block time.
type CallContext struct {
	ctx       context.Context
	ledger    *Ledger
	timestamp uint64
	origin    common.Address
	depth     int

	// Sender is the immediate caller.
	Sender common.Address
	// Self is the address of the code being executed.
	Self common.Address
	// Value is the native value sent with the call. It is already credited to Self.
	Value *big.Int
	// Data is the call data.
	Data []byte
}

// Context returns the context of the transaction.
func (cc *CallContext) Context() context.Context {
	return cc.ctx
}

// Timestamp returns the block time in unix seconds. It is constant during a transaction.
func (cc *CallContext) Timestamp() uint64 {
	return cc.timestamp
}

// Origin returns the account that sent the transaction.
func (cc *CallContext) Origin() common.Address {
	return cc.origin
}

func (cc *CallContext) ChainID() *big.Int {
	return cc.ledger.ChainID()
}

func (cc *CallContext) GasPrice() *big.Int {
	return new(big.Int).Set(cc.ledger.gasPrice)
}

// BalanceOf returns the native balance of addr.
func (cc *CallContext) BalanceOf(addr common.Address) *big.Int {
	return cc.ledger.balanceOf(addr)
}

// SelfBalance returns the native balance of the executing contract.
func (cc *CallContext) SelfBalance() *big.Int {
	return cc.BalanceOf(cc.Self)
}

// Emit appends log to the transaction logs. It is discarded if the call reverts.
func (cc *CallContext) Emit(log Log) {
	cc.ledger.logs = append(cc.ledger.logs, log)
}

// EmitEvent builds and emits a log of event from Self.
func (cc *CallContext) EmitEvent(event Event, indexed []common.Hash, values ...any) error {
	log, err := event.Log(cc.Self, indexed, values...)
	if err != nil {
		return err
	}
	cc.Emit(log)

	return nil
}

// Call sends value and data from Self to to. The call runs against its own snapshot: if it
// fails, every change it made is reverted and the error is returned, while the changes of the
// caller are kept.
func (cc *CallContext) Call(to common.Address, value *big.Int, data []byte) ([]byte, error) {
	if cc.depth+1 >= MaxCallDepth {
		return nil, ErrCallDepthExceeded
	}

	value = orZero(value)
	if value.Sign() < 0 {
		return nil, ErrNegativeValue
	}

	l := cc.ledger
	snap := l.snapshot()

	if err := l.move(cc.Self, to, value); err != nil {
		return nil, err
	}

	c, ok := l.contracts[to]
	if !ok {
		return nil, nil
	}

	ret, err := c.Call(&CallContext{
		ctx:       cc.ctx,
		ledger:    l,
		timestamp: cc.timestamp,
		origin:    cc.origin,
		depth:     cc.depth + 1,
		Sender:    cc.Self,
		Self:      to,
		Value:     value,
		Data:      data,
	})
	if err != nil {
		l.revertTo(snap)
		return nil, err
	}

	return ret, nil
}

// Transfer sends native value from Self to to.
func (cc *CallContext) Transfer(to common.Address, value *big.Int) error {
	_, err := cc.Call(to, value, nil)
	return err
}

// Atomic runs fn against a snapshot. If fn fails, every change made since Atomic was called is
// reverted and the error is returned.
func (cc *CallContext) Atomic(fn func() error) error {
	snap := cc.ledger.snapshot()
	if err := fn(); err != nil {
		cc.ledger.revertTo(snap)
		return err
	}

	return nil
}
