package main

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/smallyu/go-ethsig/pkg/signer"
)

const envPrefix = "ETHSIG"

// app carries the state shared by all subcommands.
type app struct {
	v      *viper.Viper
	logger *zap.Logger
	signer *signer.Signer
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "ethsig",
		Short:         "secp256k1 signatures for Ethereum",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().String("config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		a.pubkeyCmd(),
		a.addressCmd(),
		a.compressCmd(),
		a.decompressCmd(),
		a.signCmd(),
		a.verifyCmd(),
		a.recoverCmd(),
		a.tweakCmd(),
		a.signTxCmd(),
	)
	return root
}

// init binds the flags of the running command, reads the optional config
// file and builds the logger and signer.
func (a *app) init(cmd *cobra.Command) error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "bind flags")
	}

	if cfg := a.v.GetString("config"); cfg != "" {
		a.v.SetConfigFile(cfg)
		if err := a.v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "read config %s", cfg)
		}
	}

	logger, err := newLogger(a.v.GetString("log-level"))
	if err != nil {
		return err
	}
	a.logger = logger
	a.signer = signer.New(signer.WithLogger(logger))
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// output writes v as indented JSON to the command's stdout.
func output(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
