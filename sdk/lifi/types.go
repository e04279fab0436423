package lifi

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/trailsprotocol/trails/types"
)

// BridgeData is the fixed-layout bridge description every bridge facet takes as its first
// argument.
type BridgeData struct {
	TransactionID      [32]byte       `json:"transactionId" abi:"transactionId"`
	Bridge             string         `json:"bridge" abi:"bridge"`
	Integrator         string         `json:"integrator" abi:"integrator"`
	Referrer           common.Address `json:"referrer" abi:"referrer"`
	SendingAssetID     common.Address `json:"sendingAssetId" abi:"sendingAssetId"`
	Receiver           common.Address `json:"receiver" abi:"receiver"`
	MinAmount          *big.Int       `json:"minAmount" abi:"minAmount"`
	DestinationChainID *big.Int       `json:"destinationChainId" abi:"destinationChainId"`
	HasSourceSwaps     bool           `json:"hasSourceSwaps" abi:"hasSourceSwaps"`
	HasDestinationCall bool           `json:"hasDestinationCall" abi:"hasDestinationCall"`
}

// SwapData is one swap leg executed before bridging, or as a same-chain swap.
type SwapData struct {
	CallTo           common.Address `json:"callTo" abi:"callTo"`
	ApproveTo        common.Address `json:"approveTo" abi:"approveTo"`
	SendingAssetID   common.Address `json:"sendingAssetId" abi:"sendingAssetId"`
	ReceivingAssetID common.Address `json:"receivingAssetId" abi:"receivingAssetId"`
	FromAmount       *big.Int       `json:"fromAmount" abi:"fromAmount"`
	CallData         []byte         `json:"callData" abi:"callData"`
	RequiresDeposit  bool           `json:"requiresDeposit" abi:"requiresDeposit"`
}

// Decoded is the protocol data extracted from one call.
type Decoded struct {
	Strategy types.DecodingStrategy `json:"strategy"`
	Bridge   BridgeData             `json:"bridgeData"`
	Swaps    []SwapData             `json:"swapData"`
	// NonEVMReceiver is set when Bridge.Receiver is types.NonEVMAddress.
	NonEVMReceiver common.Hash `json:"nonEVMReceiver"`
	// SameChain is set for swap-only strategies, whose destination is the origin chain.
	SameChain bool `json:"sameChain"`
}

const bridgeDataComponents = `[` +
	`{"name":"transactionId","type":"bytes32"},` +
	`{"name":"bridge","type":"string"},` +
	`{"name":"integrator","type":"string"},` +
	`{"name":"referrer","type":"address"},` +
	`{"name":"sendingAssetId","type":"address"},` +
	`{"name":"receiver","type":"address"},` +
	`{"name":"minAmount","type":"uint256"},` +
	`{"name":"destinationChainId","type":"uint256"},` +
	`{"name":"hasSourceSwaps","type":"bool"},` +
	`{"name":"hasDestinationCall","type":"bool"}]`

const swapDataComponents = `[` +
	`{"name":"callTo","type":"address"},` +
	`{"name":"approveTo","type":"address"},` +
	`{"name":"sendingAssetId","type":"address"},` +
	`{"name":"receivingAssetId","type":"address"},` +
	`{"name":"fromAmount","type":"uint256"},` +
	`{"name":"callData","type":"bytes"},` +
	`{"name":"requiresDeposit","type":"bool"}]`

// ABI layouts of the fixed prefix of each strategy.
const (
	BridgeDataABI = `{"type":"tuple","components":` + bridgeDataComponents + `}`
	SwapDataABI   = `{"type":"tuple","components":` + swapDataComponents + `}`
	SwapArrayABI  = `{"type":"tuple[]","components":` + swapDataComponents + `}`

	swapPrefixABI = `{"type":"bytes32"},{"type":"string"},{"type":"string"},{"type":"address"},{"type":"uint256"}`

	SingleBridgeDataABI = `[` + BridgeDataABI + `]`
	BridgeAndSwapsABI   = `[` + BridgeDataABI + `,` + SwapArrayABI + `]`
	SwapDataArrayABI    = `[` + swapPrefixABI + `,` + SwapArrayABI + `]`
	SingleSwapDataABI   = `[` + swapPrefixABI + `,` + SwapDataABI + `]`
)
