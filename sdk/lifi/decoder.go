package lifi

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	abiUtils "github.com/trailsprotocol/trails/internal/utils/abi"
	"github.com/trailsprotocol/trails/sdk"
	"github.com/trailsprotocol/trails/types"
)

const wordSize = 32

const (
	// bridgeDataMinSize covers the ten head words of BridgeData and the length words of its two
	// strings.
	bridgeDataMinSize = 12 * wordSize
	// swapDataMinSize covers the seven head words of SwapData and the length word of callData.
	swapDataMinSize = 8 * wordSize
	// swapPrefixHeadSize covers the (bytes32,string,string,address,uint256) heads. The two
	// string length words are counted separately.
	swapPrefixHeadSize = 5 * wordSize
)

// minCalldataLength is the smallest call data a strategy can possibly decode.
var minCalldataLength = map[types.DecodingStrategy]int{
	types.SingleBridgeData:           abiUtils.SelectorLength + wordSize + bridgeDataMinSize,
	types.BridgeDataAndSwapDataTuple: abiUtils.SelectorLength + 2*wordSize + bridgeDataMinSize + wordSize,
	types.SwapDataArray:              abiUtils.SelectorLength + swapPrefixHeadSize + wordSize + 2*wordSize + wordSize,
	types.SingleSwapData:             abiUtils.SelectorLength + swapPrefixHeadSize + wordSize + 2*wordSize + swapDataMinSize,
}

// facetDataIndex is the argument index of the facet specific data that follows the bridge
// prefix.
var facetDataIndex = map[types.DecodingStrategy]int{
	types.SingleBridgeData:           1,
	types.BridgeDataAndSwapDataTuple: 2,
}

var _ sdk.Decoder = (*Decoder)(nil)

// Decoder parses call data targeting the LiFi diamond.
//
// Only the fixed-layout prefix of a call is read. Facets that append their own trailing
// parameters decode identically as long as the prefix matches the strategy.
type Decoder struct{}

// NewDecoder returns a new Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// InferExecutionInfo decodes calldata and interprets it as an execution originating on chainID.
func (d *Decoder) InferExecutionInfo(
	chainID *big.Int, calldata []byte, strategy types.DecodingStrategy,
) (types.ExecutionInfo, error) {
	decoded, err := d.Decode(calldata, strategy)
	if err != nil {
		return types.ExecutionInfo{}, err
	}

	return GetOriginSwapInfo(chainID, decoded)
}

// Decode extracts the bridge and swap data of calldata according to strategy.
func (d *Decoder) Decode(calldata []byte, strategy types.DecodingStrategy) (*Decoded, error) {
	minLen, ok := minCalldataLength[strategy]
	if !ok {
		return nil, NewUnsupportedStrategyError(strategy)
	}
	if len(calldata) < minLen {
		return nil, NewCalldataTooShortError(strategy, len(calldata), minLen)
	}

	_, args, _ := abiUtils.SplitSelector(calldata)

	var (
		decoded *Decoded
		err     error
	)
	switch strategy {
	case types.SingleBridgeData:
		decoded, err = decodeSingleBridge(args)
	case types.BridgeDataAndSwapDataTuple:
		decoded, err = decodeBridgeAndSwaps(args)
	case types.SwapDataArray:
		decoded, err = decodeSwapArray(args)
	case types.SingleSwapData:
		decoded, err = decodeSingleSwap(args)
	default:
		return nil, NewUnsupportedStrategyError(strategy)
	}
	if err != nil {
		return nil, &DecodeError{Strategy: strategy, Err: err}
	}
	decoded.Strategy = strategy

	if idx, ok := facetDataIndex[strategy]; ok && decoded.Bridge.Receiver == types.NonEVMAddress {
		receiver, err := readFacetWord(args, idx)
		if err != nil {
			return nil, err
		}
		decoded.NonEVMReceiver = receiver
	}

	return decoded, nil
}

func decodeSingleBridge(args []byte) (*Decoded, error) {
	values, err := abiUtils.Decode(SingleBridgeDataABI, args)
	if err != nil {
		return nil, err
	}

	bridge, err := abiUtils.Convert[BridgeData](values[0])
	if err != nil {
		return nil, err
	}

	return &Decoded{Bridge: bridge, Swaps: []SwapData{}}, nil
}

func decodeBridgeAndSwaps(args []byte) (*Decoded, error) {
	values, err := abiUtils.Decode(BridgeAndSwapsABI, args)
	if err != nil {
		return nil, err
	}

	bridge, err := abiUtils.Convert[BridgeData](values[0])
	if err != nil {
		return nil, err
	}
	swaps, err := abiUtils.Convert[[]SwapData](values[1])
	if err != nil {
		return nil, err
	}
	if swaps == nil {
		swaps = []SwapData{}
	}

	return &Decoded{Bridge: bridge, Swaps: swaps}, nil
}

// swapPrefix is the (transactionId, integrator, referrer, receiver, minAmountOut) prefix shared
// by the generic swap entry points.
type swapPrefix struct {
	transactionID [32]byte
	receiver      common.Address
	minAmountOut  *big.Int
}

func decodeSwapPrefix(values []any) (swapPrefix, error) {
	txID, ok := values[0].([32]byte)
	if !ok {
		return swapPrefix{}, fmt.Errorf("unexpected transaction id type %T", values[0])
	}
	receiver, ok := values[3].(common.Address)
	if !ok {
		return swapPrefix{}, fmt.Errorf("unexpected receiver type %T", values[3])
	}
	minOut, ok := values[4].(*big.Int)
	if !ok {
		return swapPrefix{}, fmt.Errorf("unexpected min amount type %T", values[4])
	}

	return swapPrefix{transactionID: txID, receiver: receiver, minAmountOut: minOut}, nil
}

func decodeSwapArray(args []byte) (*Decoded, error) {
	values, err := abiUtils.Decode(SwapDataArrayABI, args)
	if err != nil {
		return nil, err
	}

	prefix, err := decodeSwapPrefix(values)
	if err != nil {
		return nil, err
	}
	swaps, err := abiUtils.Convert[[]SwapData](values[5])
	if err != nil {
		return nil, err
	}
	if len(swaps) == 0 {
		return nil, ErrNoSwapLegs
	}

	return swapOnly(prefix, swaps), nil
}

func decodeSingleSwap(args []byte) (*Decoded, error) {
	values, err := abiUtils.Decode(SingleSwapDataABI, args)
	if err != nil {
		return nil, err
	}

	prefix, err := decodeSwapPrefix(values)
	if err != nil {
		return nil, err
	}
	swap, err := abiUtils.Convert[SwapData](values[5])
	if err != nil {
		return nil, err
	}

	return swapOnly(prefix, []SwapData{swap}), nil
}

// swapOnly describes a same-chain swap with the bridge data shape so it is interpreted like a
// bridge with source swaps.
func swapOnly(prefix swapPrefix, swaps []SwapData) *Decoded {
	last := swaps[len(swaps)-1]

	return &Decoded{
		Bridge: BridgeData{
			TransactionID:  prefix.transactionID,
			SendingAssetID: last.ReceivingAssetID,
			Receiver:       prefix.receiver,
			MinAmount:      prefix.minAmountOut,
			HasSourceSwaps: true,
		},
		Swaps:     swaps,
		SameChain: true,
	}
}

// readFacetWord reads the first word of the facet data tuple at argument index idx. The facet
// data is a dynamic tuple, so its head word is an offset into args.
func readFacetWord(args []byte, idx int) (common.Hash, error) {
	head := idx * wordSize
	if len(args) < head+wordSize {
		return common.Hash{}, ErrNonEVMReceiverMissing
	}

	offset := new(big.Int).SetBytes(args[head : head+wordSize])
	if !offset.IsInt64() || offset.Int64() > int64(len(args)-wordSize) {
		return common.Hash{}, ErrNonEVMReceiverMissing
	}
	start := int(offset.Int64())

	return common.BytesToHash(args[start : start+wordSize]), nil
}
