// Package config loads the engine's ambient configuration: tick size,
// input/output paths, worker pool size, logging, and the matcher's
// open-question toggles. Grounded on 0xtitan6-polymarket-mm's
// internal/config/config.go: a plain struct with defaults, overridden by
// viper from flags and environment variables. No config file is read.
package config

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"lobengine/internal/matcher"
)

// Config is the full set of knobs the CLI exposes.
type Config struct {
	TickSize  decimal.Decimal
	Input     string
	TradesOut string
	EventsOut string
	Workers   int
	LogLevel  string
	LogFormat string // "console" | "json"
	Matcher   matcher.Config
}

// Default returns the engine's out-of-the-box configuration (spec §6:
// tick size 0.05).
func Default() Config {
	return Config{
		TickSize:  decimal.NewFromFloat(0.05),
		Input:     "orders.csv",
		TradesOut: "trades.csv",
		EventsOut: "events.csv",
		Workers:   8,
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// Load resolves a Config from viper, which cobra's `run` command has
// already bound to its flags and to FENRIR_* environment variables.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()

	if v.IsSet("tick-size") {
		tickSize, err := decimal.NewFromString(v.GetString("tick-size"))
		if err != nil {
			return Config{}, err
		}
		cfg.TickSize = tickSize
	}
	if v.IsSet("input") {
		cfg.Input = v.GetString("input")
	}
	if v.IsSet("trades") {
		cfg.TradesOut = v.GetString("trades")
	}
	if v.IsSet("events") {
		cfg.EventsOut = v.GetString("events")
	}
	if v.IsSet("workers") {
		cfg.Workers = v.GetInt("workers")
	}
	if v.IsSet("log-level") {
		cfg.LogLevel = v.GetString("log-level")
	}
	if v.IsSet("log-format") {
		cfg.LogFormat = v.GetString("log-format")
	}
	if v.IsSet("corrected-fill-quantity") {
		cfg.Matcher.CorrectedFillQuantity = v.GetBool("corrected-fill-quantity")
	}
	if v.IsSet("post-marketable-residual") {
		cfg.Matcher.PostMarketableResidual = v.GetBool("post-marketable-residual")
	}

	return cfg, nil
}
