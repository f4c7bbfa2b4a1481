package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xhhuango/json"

	"github.com/optviz/optviz/curve"
	"github.com/optviz/optviz/engine"
	"github.com/optviz/optviz/logging"
	"github.com/optviz/optviz/market"
	"github.com/optviz/optviz/positions"
)

// positionInput mirrors the JSON shape produced by the upload/OCR
// collaborator: {"positions":[...], "credit": ...}.
type positionInput struct {
	Positions []legInput `json:"positions"`
	Credit    float64    `json:"credit"`
}

type legInput struct {
	Qty           int     `json:"qty"`
	Strike        float64 `json:"strike"`
	Type          string  `json:"type"` // "C" or "P"
	Expiration    string  `json:"expiration,omitempty"`
	Style         string  `json:"style,omitempty"`
	ManualPrice   float64 `json:"manual_price,omitempty"`
	ManualIV      float64 `json:"manual_iv,omitempty"`
	DividendYield float64 `json:"dividend_yield,omitempty"`
}

func (in legInput) toLeg() (positions.Leg, error) {
	leg := positions.Leg{
		Quantity:      in.Qty,
		Strike:        in.Strike,
		ManualPrice:   in.ManualPrice,
		ManualIV:      in.ManualIV,
		DividendYield: in.DividendYield,
	}

	switch strings.ToUpper(in.Type) {
	case "C", "CALL":
		leg.Kind = positions.Call
	case "P", "PUT":
		leg.Kind = positions.Put
	default:
		return leg, fmt.Errorf("unknown option type %q", in.Type)
	}

	switch strings.ToLower(in.Style) {
	case "", "american":
		leg.Style = positions.American
	case "european":
		leg.Style = positions.European
	default:
		return leg, fmt.Errorf("unknown exercise style %q", in.Style)
	}

	if in.Expiration != "" {
		exp, err := time.Parse("2006-01-02", in.Expiration)
		if err != nil {
			return leg, fmt.Errorf("bad expiration %q: %w", in.Expiration, err)
		}
		leg.Expiration = exp
	}

	return leg, nil
}

func main() {
	// A missing .env is fine; it only seeds optional environment overrides.
	_ = godotenv.Load()

	viper.SetEnvPrefix("OPTVIZ")
	viper.AutomaticEnv()
	viper.SetDefault("grid_points", curve.DefaultGridPoints)
	viper.SetDefault("range_margin", curve.DefaultRangeMargin)
	viper.SetDefault("greeks_every", curve.DefaultGreeksEvery)
	viper.SetDefault("log_level", "info")

	root := &cobra.Command{
		Use:   "optviz",
		Short: "Multi-leg options position analytics",
	}
	root.AddCommand(analyzeCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func analyzeCommand() *cobra.Command {
	var (
		positionsPath string
		spot          float64
		fallbackIV    float64
		rate          float64
		symbol        string
		skipGreeks    bool
		dateAnchors   bool
		logFile       string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Price a position file and print the P/L curve, Greeks and probability metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := logging.DefaultConfig()
			cfg.Level = viper.GetString("log_level")
			cfg.FilePath = logFile
			log := logging.New(cfg)

			raw, err := os.ReadFile(positionsPath)
			if err != nil {
				return fmt.Errorf("reading positions file: %w", err)
			}

			var input positionInput
			if err := json.Unmarshal(raw, &input); err != nil {
				return fmt.Errorf("parsing positions file: %w", err)
			}

			legs := make([]positions.Leg, 0, len(input.Positions))
			for _, in := range input.Positions {
				leg, err := in.toLeg()
				if err != nil {
					return err
				}
				legs = append(legs, leg)
			}

			var mkt *market.Context
			if spot > 0 && fallbackIV > 0 {
				mkt = &market.Context{
					Symbol:       symbol,
					SpotPrice:    spot,
					FallbackIV:   fallbackIV,
					RiskFreeRate: rate,
					AsOf:         time.Now(),
				}
			} else {
				log.Info().Msg("no market data supplied, expiration payoff mode only")
			}

			eng := engine.New(log)
			result, err := eng.PricePortfolio(cmd.Context(), legs, input.Credit, mkt, engine.Options{
				Curve: curve.Options{
					GridPoints:  viper.GetInt("grid_points"),
					RangeMargin: viper.GetFloat64("range_margin"),
					GreeksEvery: viper.GetInt("greeks_every"),
					SkipGreeks:  skipGreeks,
					DateAnchors: dateAnchors,
				},
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("marshalling result: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&positionsPath, "positions", "p", "", "path to positions JSON file (required)")
	cmd.Flags().Float64Var(&spot, "spot", 0, "current underlying price")
	cmd.Flags().Float64Var(&fallbackIV, "iv", 0, "fallback ATM implied volatility, e.g. 0.35")
	cmd.Flags().Float64Var(&rate, "rate", 0.0379, "annual risk-free rate")
	cmd.Flags().StringVar(&symbol, "symbol", "", "underlying symbol, informational only")
	cmd.Flags().BoolVar(&skipGreeks, "skip-greeks", false, "skip per-sample Greeks")
	cmd.Flags().BoolVar(&dateAnchors, "date-anchors", false, "also value the position at fixed days-ahead anchors")
	cmd.Flags().StringVar(&logFile, "log-file", "", "optional rotated log file path")
	_ = cmd.MarkFlagRequired("positions")

	return cmd
}
