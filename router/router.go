// Package router forwards a contract's whole token balance into a call whose amount is only
// known at execution time, and sweeps what is left once that call succeeded.
package router

import (
	"bytes"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	abiUtils "github.com/trailsprotocol/trails/internal/utils/abi"
	"github.com/trailsprotocol/trails/ledger"
	"github.com/trailsprotocol/trails/sdk"
	"github.com/trailsprotocol/trails/types"
)

const operationHashABI = `[{"type":"address"},{"type":"address"},{"type":"bytes32"},{"type":"uint256"},{"type":"bytes32"}]`

var (
	InjectedEvent = ledger.NewEvent("Injected(bytes32,address,uint256)", `[{"type":"uint256"}]`)
	SweptEvent    = ledger.NewEvent(
		"Swept(bytes32,address,address,uint256)",
		`[{"type":"address"},{"type":"uint256"}]`,
	)
)

var (
	_ ledger.Contract    = (*Router)(nil)
	_ ledger.Snapshotter = (*Router)(nil)
)

// Operation is a call whose amount word is patched with the router balance of Token.
type Operation struct {
	Token  common.Address `json:"token" abi:"token"`
	Target common.Address `json:"target" abi:"target"`
	Data   []byte         `json:"data" abi:"data"`
	// Offset is the position in Data of the 32-byte amount word.
	Offset      *big.Int    `json:"offset" abi:"offset"`
	Placeholder common.Hash `json:"placeholder" abi:"placeholder"`
}

// Hash identifies the operation in the success store.
func (op Operation) Hash() (common.Hash, error) {
	encoded, err := abiUtils.Encode(operationHashABI,
		op.Token, op.Target, crypto.Keccak256Hash(op.Data), orZero(op.Offset), op.Placeholder)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(encoded), nil
}

// Router holds the success flags of the operations it ran, each with the account that ran it.
// Flags are only ever set by InjectAndCall after the wrapped call returned without error.
type Router struct {
	owner common.Address

	mu        sync.RWMutex
	succeeded map[common.Hash]common.Address
}

// New returns a router whose balances only owner can spend.
func New(owner common.Address) (*Router, error) {
	if owner == (common.Address{}) {
		return nil, ErrZeroRouterOwner
	}

	return &Router{owner: owner, succeeded: make(map[common.Hash]common.Address)}, nil
}

func (r *Router) Owner() common.Address {
	return r.owner
}

// Succeeded reports whether the operation opHash ran successfully.
func (r *Router) Succeeded(opHash common.Hash) bool {
	_, ok := r.caller(opHash)
	return ok
}

func (r *Router) caller(opHash common.Hash) (common.Address, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sender, ok := r.succeeded[opHash]

	return sender, ok
}

// InjectAndCall reads the router balance of op.Token, writes it into op.Data at op.Offset and
// calls op.Target with it: ERC-20 balances are approved to the target, native balances are sent
// as call value. The operation is recorded as succeeded by the caller once the call returns.
// Only the owner may call it.
func (r *Router) InjectAndCall(cc *ledger.CallContext, op Operation) ([]byte, error) {
	if cc.Sender != r.owner {
		return nil, ErrNotRouterOwner
	}
	if op.Target == (common.Address{}) {
		return nil, ErrZeroTarget
	}

	opHash, err := op.Hash()
	if err != nil {
		return nil, err
	}
	if r.Succeeded(opHash) {
		return nil, ErrOperationRecorded
	}

	offset, err := offsetOf(op.Offset, len(op.Data))
	if err != nil {
		return nil, err
	}

	amount, err := balance(cc, op.Token)
	if err != nil {
		return nil, err
	}

	data := bytes.Clone(op.Data)
	if err = InjectAmount(data, offset, op.Placeholder, amount); err != nil {
		return nil, err
	}

	value := new(big.Int)
	if types.IsNative(op.Token) {
		value = amount
	} else {
		approve, err := ledger.EncodeApprove(op.Target, amount)
		if err != nil {
			return nil, err
		}
		if _, err = cc.Call(op.Token, nil, approve); err != nil {
			return nil, err
		}
	}

	ret, err := cc.Call(op.Target, value, data)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.succeeded[opHash] = cc.Sender
	r.mu.Unlock()

	sdk.LoggerFrom(cc.Context()).Infof("router operation %s called %s with %s of %s",
		opHash.Hex(), op.Target.Hex(), amount, op.Token.Hex())

	if err = cc.EmitEvent(InjectedEvent, []common.Hash{opHash, ledger.AddressTopic(op.Target)}, amount); err != nil {
		return nil, err
	}

	return ret, nil
}

// SweepIfSucceeded sends the whole router balance of token to recipient, provided the
// operation opHash succeeded. Only the account that ran the operation may sweep.
func (r *Router) SweepIfSucceeded(
	cc *ledger.CallContext, opHash common.Hash, token, recipient common.Address,
) (*big.Int, error) {
	if recipient == (common.Address{}) {
		return nil, ErrZeroSweepRecipient
	}
	sender, ok := r.caller(opHash)
	if !ok {
		return nil, ErrOperationNotSucceeded
	}
	if cc.Sender != sender {
		return nil, ErrNotOperationCaller
	}

	amount, err := balance(cc, token)
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return nil, ErrNothingToSweep
	}

	if types.IsNative(token) {
		err = cc.Transfer(recipient, amount)
	} else {
		var data []byte
		if data, err = ledger.EncodeTransfer(recipient, amount); err == nil {
			_, err = cc.Call(token, nil, data)
		}
	}
	if err != nil {
		return nil, err
	}

	sdk.LoggerFrom(cc.Context()).Infof("router swept %s of %s to %s", amount, token.Hex(), recipient.Hex())

	err = cc.EmitEvent(SweptEvent, []common.Hash{opHash, ledger.AddressTopic(token)}, recipient, amount)
	if err != nil {
		return nil, err
	}

	return amount, nil
}

// Snapshot implements ledger.Snapshotter.
func (r *Router) Snapshot() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[common.Hash]common.Address, len(r.succeeded))
	for k, v := range r.succeeded {
		out[k] = v
	}

	return out
}

// Restore implements ledger.Snapshotter.
func (r *Router) Restore(snapshot any) {
	s, ok := snapshot.(map[common.Hash]common.Address)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.succeeded = make(map[common.Hash]common.Address, len(s))
	for k, v := range s {
		r.succeeded[k] = v
	}
}

func balance(cc *ledger.CallContext, token common.Address) (*big.Int, error) {
	if types.IsNative(token) {
		return cc.SelfBalance(), nil
	}

	data, err := ledger.EncodeBalanceOf(cc.Self)
	if err != nil {
		return nil, err
	}
	ret, err := cc.Call(token, nil, data)
	if err != nil {
		return nil, err
	}

	return ledger.DecodeUint256(ret)
}

func offsetOf(offset *big.Int, length int) (int, error) {
	if offset == nil || !offset.IsInt64() || offset.Int64() < 0 || offset.Int64() > int64(length) {
		return 0, &OffsetOutOfBoundsError{Offset: -1, Length: length}
	}

	return int(offset.Int64()), nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return v
}
