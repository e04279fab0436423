package trails

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/trailsprotocol/trails/sapient"
	"github.com/trailsprotocol/trails/sdk"
	"github.com/trailsprotocol/trails/sdk/lifi"
	"github.com/trailsprotocol/trails/types"
)

type attestOutput struct {
	Signer         common.Address        `json:"signer"`
	ExecutionInfos []types.ExecutionInfo `json:"executionInfos"`
	Hash           common.Hash           `json:"hash"`
	Signature      hexutil.Bytes         `json:"signature"`
}

func buildAttestCmd(opts *rootOptions) *cobra.Command {
	var requestPath string

	cmd := &cobra.Command{
		Use:   "attest",
		Short: "Sign a payload with PRIVATE_KEY and print the encoded sapient signature",
		Long: `Reads a request with the wallet, decoding strategy and calls of a payload. When the
request carries no execution infos, they are inferred from the calls.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, ctx, err := opts.load(cmd)
			if err != nil {
				return err
			}
			pk, err := cfg.Key()
			if err != nil {
				return err
			}

			var req requestJSON
			if err = readJSON(requestPath, &req); err != nil {
				return err
			}
			payload := req.payload()

			infos := req.ExecutionInfos
			if len(infos) == 0 {
				if infos, err = sapient.InferExecutionInfos(lifi.NewDecoder(), cfg.ChainIDBig(), payload.Calls, req.Strategy); err != nil {
					return err
				}
			}

			attester := sapient.NewAttester(pk)
			encoded, err := attester.Attest(cfg.ChainIDBig(), req.Wallet, payload, infos, req.Strategy)
			if err != nil {
				return err
			}
			hash, err := lifi.GetExecutionInfoHash(infos, attester.Address())
			if err != nil {
				return err
			}

			sdk.LoggerFrom(ctx).Infof("attested %d calls for wallet %s", len(payload.Calls), req.Wallet.Hex())

			return writeJSON(cmd.OutOrStdout(), attestOutput{
				Signer:         attester.Address(),
				ExecutionInfos: infos,
				Hash:           hash,
				Signature:      encoded,
			})
		},
	}

	cmd.Flags().StringVar(&requestPath, "request", "", "JSON request file, - for stdin")
	_ = cmd.MarkFlagRequired("request")

	return cmd
}
