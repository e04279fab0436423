package lifi

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	testChainID     = big.NewInt(1)
	testDestChainID = big.NewInt(42161)

	usdc     = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	weth     = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	dai      = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	receiver = common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4")
	dex      = common.HexToAddress("0x1111111254EEB25477B68fb85Ed929f73A960582")
)

func testBridgeData() BridgeData {
	return BridgeData{
		TransactionID:      common.HexToHash("0x01"),
		Bridge:             "stargate",
		Integrator:         "trails",
		Referrer:           common.Address{},
		SendingAssetID:     usdc,
		Receiver:           receiver,
		MinAmount:          big.NewInt(1_000_000),
		DestinationChainID: testDestChainID,
	}
}

func testSwap(from, to common.Address, amount int64) SwapData {
	return SwapData{
		CallTo:           dex,
		ApproveTo:        dex,
		SendingAssetID:   from,
		ReceivingAssetID: to,
		FromAmount:       big.NewInt(amount),
		CallData:         []byte{0xde, 0xad, 0xbe, 0xef},
		RequiresDeposit:  true,
	}
}
