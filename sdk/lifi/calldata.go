package lifi

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	abiUtils "github.com/trailsprotocol/trails/internal/utils/abi"
)

const (
	bridgeTupleSig = "(bytes32,string,string,address,address,address,uint256,uint256,bool,bool)"
	swapTupleSig   = "(address,address,address,address,uint256,bytes,bool)"
	facetTupleSig  = "(bytes32,bytes)"

	facetDataABI = `{"type":"tuple","components":[{"name":"nonEVMReceiver","type":"bytes32"},{"name":"payload","type":"bytes"}]}`
)

// FacetData is the facet specific argument that follows the bridge prefix. Facets bridging to
// non-EVM chains lead it with the real receiver.
type FacetData struct {
	NonEVMReceiver common.Hash `json:"nonEVMReceiver" abi:"nonEVMReceiver"`
	Payload        []byte      `json:"payload" abi:"payload"`
}

func (f *FacetData) normalized() FacetData {
	if f.Payload == nil {
		return FacetData{NonEVMReceiver: f.NonEVMReceiver, Payload: []byte{}}
	}

	return *f
}

// EncodeBridgeCall encodes a bridge call decodable with types.SingleBridgeData.
func EncodeBridgeCall(bridge BridgeData, facet *FacetData) ([]byte, error) {
	if facet == nil {
		return abiUtils.EncodeCall(
			"startBridgeTokensViaGeneric("+bridgeTupleSig+")",
			SingleBridgeDataABI, normalizeBridge(bridge),
		)
	}

	return abiUtils.EncodeCall(
		"startBridgeTokensViaGeneric("+bridgeTupleSig+","+facetTupleSig+")",
		`[`+BridgeDataABI+`,`+facetDataABI+`]`, normalizeBridge(bridge), facet.normalized(),
	)
}

// EncodeSwapAndBridgeCall encodes a bridge call decodable with types.BridgeDataAndSwapDataTuple.
func EncodeSwapAndBridgeCall(bridge BridgeData, swaps []SwapData, facet *FacetData) ([]byte, error) {
	if facet == nil {
		return abiUtils.EncodeCall(
			"swapAndStartBridgeTokensViaGeneric("+bridgeTupleSig+","+swapTupleSig+"[])",
			BridgeAndSwapsABI, normalizeBridge(bridge), normalizeSwaps(swaps),
		)
	}

	return abiUtils.EncodeCall(
		"swapAndStartBridgeTokensViaGeneric("+bridgeTupleSig+","+swapTupleSig+"[],"+facetTupleSig+")",
		`[`+BridgeDataABI+`,`+SwapArrayABI+`,`+facetDataABI+`]`,
		normalizeBridge(bridge), normalizeSwaps(swaps), facet.normalized(),
	)
}

// EncodeSwapTokensGeneric encodes a same-chain swap decodable with types.SwapDataArray.
func EncodeSwapTokensGeneric(
	transactionID [32]byte, integrator, referrer string, receiver common.Address, minAmountOut *big.Int, swaps []SwapData,
) ([]byte, error) {
	return abiUtils.EncodeCall(
		"swapTokensGeneric(bytes32,string,string,address,uint256,"+swapTupleSig+"[])",
		SwapDataArrayABI, transactionID, integrator, referrer, receiver, copyInt(minAmountOut), normalizeSwaps(swaps),
	)
}

// EncodeSwapTokensSingle encodes a same-chain swap decodable with types.SingleSwapData.
func EncodeSwapTokensSingle(
	transactionID [32]byte, integrator, referrer string, receiver common.Address, minAmountOut *big.Int, swap SwapData,
) ([]byte, error) {
	return abiUtils.EncodeCall(
		"swapTokensSingleV3ERC20ToERC20(bytes32,string,string,address,uint256,"+swapTupleSig+")",
		SingleSwapDataABI, transactionID, integrator, referrer, receiver, copyInt(minAmountOut), normalizeSwap(swap),
	)
}

func normalizeBridge(b BridgeData) BridgeData {
	b.MinAmount = copyInt(b.MinAmount)
	b.DestinationChainID = copyInt(b.DestinationChainID)

	return b
}

func normalizeSwap(s SwapData) SwapData {
	s.FromAmount = copyInt(s.FromAmount)
	if s.CallData == nil {
		s.CallData = []byte{}
	}

	return s
}

func normalizeSwaps(swaps []SwapData) []SwapData {
	out := make([]SwapData, 0, len(swaps))
	for _, s := range swaps {
		out = append(out, normalizeSwap(s))
	}

	return out
}
