package trails

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/trailsprotocol/trails/sdk"
	"github.com/trailsprotocol/trails/sdk/lifi"
	"github.com/trailsprotocol/trails/types"
)

type decodeOutput struct {
	Chain         string              `json:"chain,omitempty"`
	Decoded       *lifi.Decoded       `json:"decoded"`
	ExecutionInfo types.ExecutionInfo `json:"executionInfo"`
}

func buildDecodeCmd(opts *rootOptions) *cobra.Command {
	var (
		data     string
		strategy string
	)

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode LiFi call data into its execution info",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, ctx, err := opts.load(cmd)
			if err != nil {
				return err
			}

			var s types.DecodingStrategy
			if err = s.UnmarshalText([]byte(strategy)); err != nil {
				return err
			}

			calldata, err := hexutil.Decode(data)
			if err != nil {
				return fmt.Errorf("invalid call data: %w", err)
			}

			decoded, err := lifi.NewDecoder().Decode(calldata, s)
			if err != nil {
				return err
			}
			info, err := lifi.GetOriginSwapInfo(cfg.ChainIDBig(), decoded)
			if err != nil {
				return err
			}

			out := decodeOutput{Decoded: decoded, ExecutionInfo: info}
			if name, err := cfg.ChainName(); err == nil {
				out.Chain = name
			} else {
				sdk.LoggerFrom(ctx).Debugf("no chain name for %d: %v", cfg.ChainID, err)
			}

			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "Hex encoded call data")
	cmd.Flags().StringVar(&strategy, "strategy", types.SingleBridgeData.String(), "Decoding strategy")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}
