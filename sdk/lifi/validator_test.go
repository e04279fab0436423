package lifi

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailsprotocol/trails/types"
)

func TestCheckExecutionInfos(t *testing.T) {
	t.Parallel()

	attested := types.ExecutionInfo{
		OriginChainID:      big.NewInt(1),
		DestinationChainID: big.NewInt(137),
		OriginToken:        usdc,
		DestinationToken:   usdc,
		Amount:             big.NewInt(100),
		Receiver:           types.EVMReceiver(receiver),
	}
	with := func(mutate func(*types.ExecutionInfo)) types.ExecutionInfo {
		info := attested
		mutate(&info)

		return info
	}

	tests := []struct {
		name         string
		giveInferred []types.ExecutionInfo
		giveAttested []types.ExecutionInfo
		wantErr      string
	}{
		{
			name:         "exact match",
			giveInferred: []types.ExecutionInfo{attested},
			giveAttested: []types.ExecutionInfo{attested},
		},
		{
			name:         "lower inferred amount",
			giveInferred: []types.ExecutionInfo{with(func(i *types.ExecutionInfo) { i.Amount = big.NewInt(99) })},
			giveAttested: []types.ExecutionInfo{attested},
		},
		{
			name:         "both empty",
			giveInferred: []types.ExecutionInfo{},
			giveAttested: nil,
		},
		{
			name:         "higher inferred amount",
			giveInferred: []types.ExecutionInfo{with(func(i *types.ExecutionInfo) { i.Amount = big.NewInt(101) })},
			giveAttested: []types.ExecutionInfo{attested},
			wantErr:      "execution info 0 mismatch on amount",
		},
		{
			name:         "origin chain differs",
			giveInferred: []types.ExecutionInfo{with(func(i *types.ExecutionInfo) { i.OriginChainID = big.NewInt(10) })},
			giveAttested: []types.ExecutionInfo{attested},
			wantErr:      "execution info 0 mismatch on originChainId",
		},
		{
			name:         "destination chain differs",
			giveInferred: []types.ExecutionInfo{with(func(i *types.ExecutionInfo) { i.DestinationChainID = big.NewInt(10) })},
			giveAttested: []types.ExecutionInfo{attested},
			wantErr:      "execution info 0 mismatch on destinationChainId",
		},
		{
			name:         "origin token differs",
			giveInferred: []types.ExecutionInfo{with(func(i *types.ExecutionInfo) { i.OriginToken = weth })},
			giveAttested: []types.ExecutionInfo{attested},
			wantErr:      "execution info 0 mismatch on originToken",
		},
		{
			name:         "destination token differs",
			giveInferred: []types.ExecutionInfo{with(func(i *types.ExecutionInfo) { i.DestinationToken = dai })},
			giveAttested: []types.ExecutionInfo{attested},
			wantErr:      "execution info 0 mismatch on destinationToken",
		},
		{
			name: "receiver differs",
			giveInferred: []types.ExecutionInfo{attested, with(func(i *types.ExecutionInfo) {
				i.Receiver = types.EVMReceiver(common.HexToAddress("0xbad"))
			})},
			giveAttested: []types.ExecutionInfo{attested, attested},
			wantErr:      "execution info 1 mismatch on receiver",
		},
		{
			name:         "length mismatch",
			giveInferred: []types.ExecutionInfo{attested},
			giveAttested: []types.ExecutionInfo{attested, attested},
			wantErr:      "execution info count mismatch: inferred 1, attested 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := CheckExecutionInfos(tt.giveInferred, tt.giveAttested)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				assert.False(t, ValidateExecutionInfos(tt.giveInferred, tt.giveAttested))

				return
			}

			require.NoError(t, err)
			assert.True(t, ValidateExecutionInfos(tt.giveInferred, tt.giveAttested))
		})
	}
}
