package trails

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trailsprotocol/trails/config"
	"github.com/trailsprotocol/trails/sdk"
)

type rootOptions struct {
	envFiles []string
	chainID  uint64
	protocol string
}

func BuildTrailsCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := cobra.Command{
		Use:           "trails",
		Short:         "Decode, hash, attest and verify Trails execution infos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env", nil, "Env files to read configuration from (default .env)")
	cmd.PersistentFlags().Uint64Var(&opts.chainID, "chain-id", 0, "Origin chain id, overrides "+config.EnvChainID)
	cmd.PersistentFlags().StringVar(&opts.protocol, "protocol", "", "Protocol contract calls are pinned to, overrides "+config.EnvProtocolAddress)

	cmd.AddCommand(buildDecodeCmd(opts))
	cmd.AddCommand(buildHashCmd(opts))
	cmd.AddCommand(buildAttestCmd(opts))
	cmd.AddCommand(buildVerifyCmd(opts))

	return &cmd
}

// load resolves the configuration, flags first, then the environment, then the env files.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, context.Context, error) {
	overrides := map[string]string{}
	if cmd.Flags().Changed("chain-id") {
		overrides[config.EnvChainID] = strconv.FormatUint(o.chainID, 10)
	}
	if cmd.Flags().Changed("protocol") {
		overrides[config.EnvProtocolAddress] = o.protocol
	}

	cfg, err := config.LoadWithOverrides(overrides, o.envFiles...)
	if err != nil {
		return nil, nil, err
	}

	lggr, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	return cfg, sdk.WithLogger(cmd.Context(), lggr), nil
}

func newLogger(level string) (*zap.SugaredLogger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	zcfg.OutputPaths = []string{"stderr"}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger.Sugar(), nil
}
