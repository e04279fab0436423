package trails

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/trailsprotocol/trails/sdk/lifi"
	"github.com/trailsprotocol/trails/types"
)

type hashOutput struct {
	Signer common.Address `json:"signer"`
	Hash   common.Hash    `json:"hash"`
}

func buildHashCmd(_ *rootOptions) *cobra.Command {
	var (
		infosPath string
		signer    string
	)

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Compute the execution info hash a wallet is configured with",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var infos []types.ExecutionInfo
			if err := readJSON(infosPath, &infos); err != nil {
				return err
			}
			if !common.IsHexAddress(signer) {
				return errInvalidAddress("signer", signer)
			}

			addr := common.HexToAddress(signer)
			hash, err := lifi.GetExecutionInfoHash(infos, addr)
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), hashOutput{Signer: addr, Hash: hash})
		},
	}

	cmd.Flags().StringVar(&infosPath, "infos", "", "JSON file holding the execution info array, - for stdin")
	cmd.Flags().StringVar(&signer, "signer", "", "Attester address")
	_ = cmd.MarkFlagRequired("infos")
	_ = cmd.MarkFlagRequired("signer")

	return cmd
}
