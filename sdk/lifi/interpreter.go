package lifi

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	abiUtils "github.com/trailsprotocol/trails/internal/utils/abi"
	"github.com/trailsprotocol/trails/types"
)

const executionInfoHashABI = `[` + types.ExecutionInfoArrayABI + `,{"type":"address"}]`

// GetOriginSwapInfo maps decoded protocol data to the canonical execution info of a call made on
// chainID.
//
// With swaps, the origin token and amount are what the user supplies to the first swap leg; the
// bridge minAmount is a post-swap figure. Destination chain, token and receiver always come from
// the bridge data.
func GetOriginSwapInfo(chainID *big.Int, decoded *Decoded) (types.ExecutionInfo, error) {
	bridge := decoded.Bridge
	if bridge.HasSourceSwaps && len(decoded.Swaps) == 0 {
		return types.ExecutionInfo{}, ErrSourceSwapsMissing
	}

	info := types.ExecutionInfo{
		OriginChainID:    copyInt(chainID),
		OriginToken:      bridge.SendingAssetID,
		DestinationToken: bridge.SendingAssetID,
		Amount:           copyInt(bridge.MinAmount),
		Receiver:         types.EVMReceiver(bridge.Receiver),
	}

	if len(decoded.Swaps) > 0 {
		first := decoded.Swaps[0]
		info.OriginToken = first.SendingAssetID
		info.Amount = copyInt(first.FromAmount)
	}

	if decoded.SameChain || bridge.DestinationChainID == nil {
		info.DestinationChainID = copyInt(chainID)
	} else {
		info.DestinationChainID = copyInt(bridge.DestinationChainID)
	}

	if bridge.Receiver == types.NonEVMAddress {
		if decoded.NonEVMReceiver == (common.Hash{}) {
			return types.ExecutionInfo{}, ErrNonEVMReceiverMissing
		}
		info.Receiver = decoded.NonEVMReceiver
	}

	return info, nil
}

// GetExecutionInfoHash hashes the ABI encoding of infos together with signer.
//
// Equal inputs always produce equal hashes; any change to a field, to the order of infos, or to
// signer changes the result.
func GetExecutionInfoHash(infos []types.ExecutionInfo, signer common.Address) (common.Hash, error) {
	encoded, err := abiUtils.Encode(executionInfoHashABI, types.NormalizeExecutionInfos(infos), signer)
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(encoded), nil
}

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return new(big.Int).Set(v)
}
