package sdk

import (
	"math/big"

	"github.com/trailsprotocol/trails/types"
)

// Decoder infers the canonical execution info of a single protocol call.
//
// Implementations parse opaque call data targeting one external protocol and must not call out
// to anything.
type Decoder interface {
	// InferExecutionInfo decodes calldata with the given strategy and maps it to an
	// ExecutionInfo originating on chainID.
	InferExecutionInfo(chainID *big.Int, calldata []byte, strategy types.DecodingStrategy) (types.ExecutionInfo, error)
}
