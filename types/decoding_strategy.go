package types //nolint:revive,nolintlint // allow pkg name 'types'

import "fmt"

// DecodingStrategy names the call shape a protocol call data is decoded with.
type DecodingStrategy uint8

const (
	// SingleBridgeData is a bridge call whose first argument is the bridge data.
	SingleBridgeData DecodingStrategy = iota
	// BridgeDataAndSwapDataTuple is a bridge call taking (bridgeData, swapData[], ...).
	BridgeDataAndSwapDataTuple
	// SwapDataArray is a same-chain swap call carrying a swap data array.
	SwapDataArray
	// SingleSwapData is a same-chain swap call carrying a single swap leg.
	SingleSwapData
)

var decodingStrategyNames = map[DecodingStrategy]string{
	SingleBridgeData:           "SingleBridgeData",
	BridgeDataAndSwapDataTuple: "BridgeDataAndSwapDataTuple",
	SwapDataArray:              "SwapDataArray",
	SingleSwapData:             "SingleSwapData",
}

// StringToDecodingStrategy converts a strategy name to a DecodingStrategy.
var StringToDecodingStrategy = map[string]DecodingStrategy{
	"SingleBridgeData":           SingleBridgeData,
	"BridgeDataAndSwapDataTuple": BridgeDataAndSwapDataTuple,
	"SwapDataArray":              SwapDataArray,
	"SingleSwapData":             SingleSwapData,
}

func (s DecodingStrategy) String() string {
	if name, ok := decodingStrategyNames[s]; ok {
		return name
	}

	return fmt.Sprintf("DecodingStrategy(%d)", uint8(s))
}

// IsValid reports whether s is one of the known strategies.
func (s DecodingStrategy) IsValid() bool {
	_, ok := decodingStrategyNames[s]
	return ok
}

// HasSwaps reports whether call data decoded with s carries swap legs.
func (s DecodingStrategy) HasSwaps() bool {
	return s != SingleBridgeData
}

func (s DecodingStrategy) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("unknown decoding strategy %d", uint8(s))
	}

	return []byte(s.String()), nil
}

func (s *DecodingStrategy) UnmarshalText(text []byte) error {
	v, ok := StringToDecodingStrategy[string(text)]
	if !ok {
		return fmt.Errorf("unknown decoding strategy %q", string(text))
	}
	*s = v

	return nil
}
