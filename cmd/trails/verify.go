package trails

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/trailsprotocol/trails/sapient"
)

var errMissingSignature = errors.New("request has no signature")

type verifyOutput struct {
	Protocol common.Address `json:"protocol"`
	Wallet   common.Address `json:"wallet"`
	Hash     common.Hash    `json:"hash"`
}

func buildVerifyCmd(opts *rootOptions) *cobra.Command {
	var requestPath string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Run the sapient signer on a signed request and print the resulting hash",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, ctx, err := opts.load(cmd)
			if err != nil {
				return err
			}

			var req requestJSON
			if err = readJSON(requestPath, &req); err != nil {
				return err
			}
			if len(req.Signature) == 0 {
				return errMissingSignature
			}

			signer, err := sapient.NewSigner(cfg.Protocol(), cfg.ChainIDBig())
			if err != nil {
				return err
			}
			hash, err := signer.RecoverSapientSignature(ctx, req.Wallet, req.payload(), req.Signature)
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), verifyOutput{Protocol: cfg.Protocol(), Wallet: req.Wallet, Hash: hash})
		},
	}

	cmd.Flags().StringVar(&requestPath, "request", "", "JSON request file holding a signature, - for stdin")
	_ = cmd.MarkFlagRequired("request")

	return cmd
}

func errInvalidAddress(name, value string) error {
	return fmt.Errorf("invalid %s address %q", name, value)
}
