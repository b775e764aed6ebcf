package cmd

import (
	"fmt"

	"cosmossdk.io/depinject"
	"cosmossdk.io/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ElysonGreber/JKPSol/app"
	"github.com/ElysonGreber/JKPSol/app/params"
	"github.com/ElysonGreber/JKPSol/config"
	"github.com/ElysonGreber/JKPSol/metrics"
	"github.com/ElysonGreber/JKPSol/submit"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// env is the per-invocation state resolved by the root command before any
// subcommand runs.
type env struct {
	viper   *viper.Viper
	modules []depinject.Config

	output  string
	cfg     config.Config
	logger  log.Logger
	metrics *metrics.Metrics
}

// NewRootCmd creates the jkpsol root command. It is called once in main.
func NewRootCmd() *cobra.Command {
	return newRootCmd()
}

// newRootCmd builds the command tree on modules, or on the default providers
// when none are given.
func newRootCmd(modules ...depinject.Config) *cobra.Command {
	e := &env{viper: viper.New(), modules: modules}
	config.SetDefaults(e.viper, config.DefaultHome())

	rootCmd := &cobra.Command{
		Use:           params.BinaryName,
		Short:         params.AppName + ": rock, paper, scissors against an on-chain program",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// set the default command outputs
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())

			switch e.output {
			case outputText, outputJSON:
			default:
				return fmt.Errorf("--output %q (want %s|%s)", e.output, outputText, outputJSON)
			}

			cfg, err := config.Load(e.viper)
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			e.cfg, e.logger = cfg, logger

			e.metrics = metrics.NewNop()
			if cfg.MetricsAddr != "" {
				reg := prometheus.NewRegistry()
				e.metrics = metrics.New(reg)
				go func() {
					if err := metrics.Serve(cmd.Context(), cfg.MetricsAddr, reg, logger); err != nil {
						logger.Error("metrics server stopped", "err", err)
					}
				}()
			}
			return nil
		},
	}

	if err := config.BindFlags(rootCmd.PersistentFlags(), e.viper); err != nil {
		panic(err)
	}
	rootCmd.PersistentFlags().StringVarP(&e.output, "output", "o", outputText, "output format (text|json)")

	rootCmd.AddCommand(
		keygenCmd(e),
		addressCmd(e),
		stateCmd(e),
		historyCmd(e),
		statsCmd(e),
		playCmd(e),
		txCmd(e),
		leaderboardCmd(e),
	)
	return rootCmd
}

// open wires the app for one command. Prompts and stage progress go to
// stderr so stdout only carries the command result.
func (e *env) open(cmd *cobra.Command, cfg config.Config) (*app.App, error) {
	term := app.Terminal{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()}
	if e.output == outputText {
		term.Progress = func(s submit.Stage, r *submit.Receipt) {
			if r.Signature.IsZero() {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", s)
				return
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s %s\n", s, r.Signature)
		}
	}
	return app.New(cfg, e.logger, e.metrics, term, e.modules...)
}

// run opens the app, hands it to fn and closes it afterwards.
func (e *env) run(cmd *cobra.Command, fn func(a *app.App) error) error {
	return e.runWith(cmd, e.cfg, fn)
}

func (e *env) runWith(cmd *cobra.Command, cfg config.Config, fn func(a *app.App) error) error {
	a, err := e.open(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			e.logger.Error("close app", "err", err)
		}
	}()
	return fn(a)
}
