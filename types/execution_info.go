package types //nolint:revive,nolintlint // allow pkg name 'types'

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ExecutionInfoABI is the ABI tuple layout of a single ExecutionInfo. Hashes over execution
// infos always use this encoding.
const ExecutionInfoABI = `{"type":"tuple","components":[` +
	`{"name":"originChainId","type":"uint256"},` +
	`{"name":"destinationChainId","type":"uint256"},` +
	`{"name":"originToken","type":"address"},` +
	`{"name":"destinationToken","type":"address"},` +
	`{"name":"amount","type":"uint256"},` +
	`{"name":"receiver","type":"bytes32"}]}`

// ExecutionInfoArrayABI is ExecutionInfoABI as a dynamic array.
const ExecutionInfoArrayABI = `{"type":"tuple[]","components":[` +
	`{"name":"originChainId","type":"uint256"},` +
	`{"name":"destinationChainId","type":"uint256"},` +
	`{"name":"originToken","type":"address"},` +
	`{"name":"destinationToken","type":"address"},` +
	`{"name":"amount","type":"uint256"},` +
	`{"name":"receiver","type":"bytes32"}]}`

// ExecutionInfo is the canonical description of the economically relevant part of a cross-chain
// operation.
type ExecutionInfo struct {
	OriginChainID      *big.Int       `json:"originChainId" abi:"originChainId"`
	DestinationChainID *big.Int       `json:"destinationChainId" abi:"destinationChainId"`
	OriginToken        common.Address `json:"originToken" abi:"originToken"`
	DestinationToken   common.Address `json:"destinationToken" abi:"destinationToken"`
	Amount             *big.Int       `json:"amount" abi:"amount"`
	// Receiver is a left-padded EVM address, or the raw receiver of a non-EVM destination.
	Receiver common.Hash `json:"receiver" abi:"receiver"`
}

// EVMReceiver left-pads an EVM address into the 32-byte receiver representation.
func EVMReceiver(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

// ReceiverAddress returns the receiver as an EVM address. The second return value is false if
// the receiver does not fit in 20 bytes.
func (e ExecutionInfo) ReceiverAddress() (common.Address, bool) {
	for _, b := range e.Receiver[:common.HashLength-common.AddressLength] {
		if b != 0 {
			return common.Address{}, false
		}
	}

	return common.BytesToAddress(e.Receiver[common.HashLength-common.AddressLength:]), true
}

// Normalized returns a copy whose nil integers are replaced by zero so it can be ABI encoded.
func (e ExecutionInfo) Normalized() ExecutionInfo {
	return ExecutionInfo{
		OriginChainID:      orZero(e.OriginChainID),
		DestinationChainID: orZero(e.DestinationChainID),
		OriginToken:        e.OriginToken,
		DestinationToken:   e.DestinationToken,
		Amount:             orZero(e.Amount),
		Receiver:           e.Receiver,
	}
}

// Equal reports whether both infos describe exactly the same operation.
func (e ExecutionInfo) Equal(other ExecutionInfo) bool {
	a, b := e.Normalized(), other.Normalized()

	return a.OriginChainID.Cmp(b.OriginChainID) == 0 &&
		a.DestinationChainID.Cmp(b.DestinationChainID) == 0 &&
		a.OriginToken == b.OriginToken &&
		a.DestinationToken == b.DestinationToken &&
		a.Amount.Cmp(b.Amount) == 0 &&
		a.Receiver == b.Receiver
}

// NormalizeExecutionInfos applies Normalized to each element.
func NormalizeExecutionInfos(infos []ExecutionInfo) []ExecutionInfo {
	out := make([]ExecutionInfo, 0, len(infos))
	for _, info := range infos {
		out = append(out, info.Normalized())
	}

	return out
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return new(big.Int).Set(v)
}
