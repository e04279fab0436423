package chaintest

import (
	"math/big"

	cselectors "github.com/smartcontractkit/chain-selectors"
)

var (
	Chain1EVMID = cselectors.GETH_TESTNET.EvmChainID                    // 1337
	Chain2EVMID = cselectors.ETHEREUM_TESTNET_SEPOLIA.EvmChainID        // 11155111
	Chain3EVMID = cselectors.ETHEREUM_TESTNET_SEPOLIA_BASE_1.EvmChainID // 84532
)

// ChainID returns id as a *big.Int.
func ChainID(id uint64) *big.Int {
	return new(big.Int).SetUint64(id)
}
