package router

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	abiUtils "github.com/trailsprotocol/trails/internal/utils/abi"
	"github.com/trailsprotocol/trails/ledger"
)

const (
	injectAndCallSig    = "injectAndCall((address,address,bytes,uint256,bytes32))"
	sweepIfSucceededSig = "sweepIfSucceeded(bytes32,address,address)"
	succeededSig        = "succeeded(bytes32)"

	operationArgsABI = `[{"type":"tuple","components":[` +
		`{"name":"token","type":"address"},` +
		`{"name":"target","type":"address"},` +
		`{"name":"data","type":"bytes"},` +
		`{"name":"offset","type":"uint256"},` +
		`{"name":"placeholder","type":"bytes32"}]}]`
	sweepArgsABI = `[{"type":"bytes32"},{"type":"address"},{"type":"address"}]`
	hashArgsABI  = `[{"type":"bytes32"}]`
	uint256ABI   = `[{"type":"uint256"}]`
	boolABI      = `[{"type":"bool"}]`
)

// Command is a router function, identified by the selector of its call data.
type Command int

const (
	CommandUnknown Command = iota
	CommandInjectAndCall
	CommandSweepIfSucceeded
	CommandSucceeded
)

var commands = map[[abiUtils.SelectorLength]byte]Command{
	abiUtils.Selector(injectAndCallSig):    CommandInjectAndCall,
	abiUtils.Selector(sweepIfSucceededSig): CommandSweepIfSucceeded,
	abiUtils.Selector(succeededSig):        CommandSucceeded,
}

// ClassifyCommand returns the command addressed by data and its argument bytes.
func ClassifyCommand(data []byte) (Command, []byte) {
	sel, args, ok := abiUtils.SplitSelector(data)
	if !ok {
		return CommandUnknown, nil
	}

	return commands[sel], args
}

// Call implements ledger.Contract. Plain value transfers are accepted so the router can hold
// native balances.
func (r *Router) Call(cc *ledger.CallContext) ([]byte, error) {
	if len(cc.Data) == 0 {
		return nil, nil
	}

	cmd, args := ClassifyCommand(cc.Data)
	switch cmd {
	case CommandInjectAndCall:
		values, err := abiUtils.Decode(operationArgsABI, args)
		if err != nil {
			return nil, err
		}
		op, err := abiUtils.Convert[Operation](values[0])
		if err != nil {
			return nil, err
		}

		return r.InjectAndCall(cc, op)

	case CommandSweepIfSucceeded:
		values, err := abiUtils.Decode(sweepArgsABI, args)
		if err != nil {
			return nil, err
		}
		amount, err := r.SweepIfSucceeded(cc,
			common.Hash(values[0].([32]byte)), values[1].(common.Address), values[2].(common.Address))
		if err != nil {
			return nil, err
		}

		return abiUtils.Encode(uint256ABI, amount)

	case CommandSucceeded:
		values, err := abiUtils.Decode(hashArgsABI, args)
		if err != nil {
			return nil, err
		}

		return abiUtils.Encode(boolABI, r.Succeeded(common.Hash(values[0].([32]byte))))

	default:
		return nil, ErrUnknownRouterSelector
	}
}

// EncodeInjectAndCall returns the call data of injectAndCall(op).
func EncodeInjectAndCall(op Operation) ([]byte, error) {
	if op.Data == nil {
		op.Data = []byte{}
	}
	op.Offset = orZero(op.Offset)

	return abiUtils.EncodeCall(injectAndCallSig, operationArgsABI, op)
}

// EncodeSweepIfSucceeded returns the call data of sweepIfSucceeded(opHash, token, recipient).
func EncodeSweepIfSucceeded(opHash common.Hash, token, recipient common.Address) ([]byte, error) {
	return abiUtils.EncodeCall(sweepIfSucceededSig, sweepArgsABI, opHash, token, recipient)
}

// EncodeSucceeded returns the call data of succeeded(opHash).
func EncodeSucceeded(opHash common.Hash) ([]byte, error) {
	return abiUtils.EncodeCall(succeededSig, hashArgsABI, opHash)
}

// OffsetOf returns the Operation offset of the 32-byte argument word with index argIndex in
// call data that starts with a selector.
func OffsetOf(argIndex int) *big.Int {
	return big.NewInt(int64(abiUtils.SelectorLength + argIndex*32))
}
