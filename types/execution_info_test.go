package types //nolint:revive,nolintlint // allow pkg name 'types'

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestEVMReceiver(t *testing.T) {
	t.Parallel()

	addr := common.HexToAddress("0x5b38da6a701c568545dcfcb03fcb875f56beddc4")
	info := ExecutionInfo{Receiver: EVMReceiver(addr)}

	got, ok := info.ReceiverAddress()
	assert.True(t, ok)
	assert.Equal(t, addr, got)

	info.Receiver = common.HexToHash("0xff00000000000000000000000000000000000000000000000000000000000001")
	_, ok = info.ReceiverAddress()
	assert.False(t, ok)
}

func TestExecutionInfo_Equal(t *testing.T) {
	t.Parallel()

	base := ExecutionInfo{
		OriginChainID:      big.NewInt(1),
		DestinationChainID: big.NewInt(8453),
		OriginToken:        common.HexToAddress("0x1"),
		DestinationToken:   common.HexToAddress("0x2"),
		Amount:             big.NewInt(100),
		Receiver:           EVMReceiver(common.HexToAddress("0x3")),
	}

	tests := []struct {
		name   string
		modify func(e *ExecutionInfo)
		want   bool
	}{
		{name: "identical", modify: func(e *ExecutionInfo) {}, want: true},
		{name: "origin chain", modify: func(e *ExecutionInfo) { e.OriginChainID = big.NewInt(2) }},
		{name: "destination chain", modify: func(e *ExecutionInfo) { e.DestinationChainID = big.NewInt(10) }},
		{name: "origin token", modify: func(e *ExecutionInfo) { e.OriginToken = common.HexToAddress("0x9") }},
		{name: "destination token", modify: func(e *ExecutionInfo) { e.DestinationToken = common.HexToAddress("0x9") }},
		{name: "amount", modify: func(e *ExecutionInfo) { e.Amount = big.NewInt(101) }},
		{name: "receiver", modify: func(e *ExecutionInfo) { e.Receiver = EVMReceiver(common.HexToAddress("0x9")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			other := base
			tt.modify(&other)
			assert.Equal(t, tt.want, base.Equal(other))
		})
	}
}

func TestExecutionInfo_Normalized(t *testing.T) {
	t.Parallel()

	got := ExecutionInfo{}.Normalized()
	assert.Equal(t, 0, got.Amount.Sign())
	assert.Equal(t, 0, got.OriginChainID.Sign())
	assert.Equal(t, 0, got.DestinationChainID.Sign())
	assert.True(t, ExecutionInfo{}.Equal(got))
}
