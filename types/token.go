package types //nolint:revive,nolintlint // allow pkg name 'types'

import "github.com/ethereum/go-ethereum/common"

var (
	// NativeToken is the sentinel token address standing for the chain-native asset.
	NativeToken = common.Address{}

	// NonEVMAddress is the receiver sentinel used by bridges whose destination is not an EVM
	// chain. When a bridge receiver equals it, the real receiver is carried as a 32-byte value in
	// the protocol specific call data.
	NonEVMAddress = common.HexToAddress("0x11f111f111f111F111f111f111F111f111f111F1")
)

// IsNative reports whether token is the chain-native sentinel.
func IsNative(token common.Address) bool {
	return token == NativeToken
}
