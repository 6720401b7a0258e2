// Command fenrir runs the limit order book matching engine over a CSV
// order-action stream, producing a trade tape and an event tape.
// Grounded on the teacher's cmd/main.go shape (parse flags, open a
// resource, run to completion, report errors) and on
// VictorVVedtion-perp-dex's cobra root-command wiring. There is no signal
// handling: a run always reads its input to the end or to a fatal error.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"lobengine/internal/config"
	"lobengine/internal/driver"
	"lobengine/internal/router"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fenrir",
		Short: "single-symbol limit order book matching engine",
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "consume a CSV order-action stream and emit trades.csv and events.csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			return runEngine(v)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "orders.csv", "input CSV order-action stream")
	flags.String("trades", "trades.csv", "trade tape output path")
	flags.String("events", "events.csv", "event tape output path")
	flags.String("tick-size", "0.05", "minimum price increment")
	flags.Int("workers", 8, "number of row-decode workers")
	flags.String("log-level", "info", "zerolog level: debug, info, warn, error")
	flags.String("log-format", "console", "log output format: console or json")
	flags.Bool("corrected-fill-quantity", false, "use arithmetically correct R>V fill quantity instead of source-preserved R-V")
	flags.Bool("post-marketable-residual", false, "post unfilled marketable-limit residual instead of discarding it")

	v.SetEnvPrefix("FENRIR")
	v.AutomaticEnv()

	return cmd
}

func runEngine(v *viper.Viper) error {
	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)

	input, err := os.Open(cfg.Input)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer input.Close()

	rt := router.New(logger, cfg.Matcher)
	logger.Info().
		Str("runID", rt.RunID().String()).
		Str("input", cfg.Input).
		Msg("starting run")

	d := driver.New(logger, cfg.Workers)
	runErr := d.Run(input, rt)

	if writeErr := writeTapes(rt, cfg); writeErr != nil {
		logger.Error().Err(writeErr).Msg("failed writing output tapes")
		if runErr == nil {
			runErr = writeErr
		}
	}

	if runErr != nil {
		logger.Error().
			Err(runErr).
			Str("runID", rt.RunID().String()).
			Msg("run aborted")
		return runErr
	}

	logger.Info().Str("runID", rt.RunID().String()).Msg("run complete")
	return nil
}

func writeTapes(rt *router.Router, cfg config.Config) error {
	trades, err := os.Create(cfg.TradesOut)
	if err != nil {
		return err
	}
	defer trades.Close()
	if err := rt.Journal().WriteTrades(trades); err != nil {
		return err
	}

	events, err := os.Create(cfg.EventsOut)
	if err != nil {
		return err
	}
	defer events.Close()
	return rt.Journal().WriteEvents(events)
}

func newLogger(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if format == "json" {
		return log.Output(os.Stderr)
	}
	return log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
