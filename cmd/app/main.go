package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"CoinSight/internal/di"
	"CoinSight/pkg/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config/config.yaml", "config file path")
	run := flag.String("run", "", "one-shot command: collect|recompute|train|predict|evaluate")
	instrument := flag.String("instrument", "", "instrument id for one-shot commands")
	horizon := flag.Int("horizon", 7, "forecast horizon in days")
	days := flag.Int("days", 365, "history depth for collect")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if *run != "" {
		if err := runCommand(cfg, *run, *instrument, *horizon, *days); err != nil {
			log.Fatalf("%s failed: %v", *run, err)
		}
		return
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}

func runCommand(cfg *config.Config, cmd, instrument string, horizon, days int) error {
	if instrument == "" {
		return fmt.Errorf("-instrument is required for -run")
	}

	tb, err := di.InitializeToolbox(cfg)
	if err != nil {
		return fmt.Errorf("initialization: %w", err)
	}
	ctx := context.Background()

	var out interface{}
	switch cmd {
	case "collect":
		n, err := tb.History.CollectOne(ctx, instrument, days)
		if err != nil {
			return err
		}
		if _, err := tb.Derive.Recompute(ctx, instrument); err != nil {
			return err
		}
		out = map[string]interface{}{"instrument_id": instrument, "points_collected": n}
	case "recompute":
		res, err := tb.Derive.Recompute(ctx, instrument)
		if err != nil {
			return err
		}
		out = map[string]interface{}{
			"instrument_id":  instrument,
			"price_points":   res.PricePoints,
			"indicator_rows": res.IndicatorRows,
			"feature_rows":   res.FeatureRows,
		}
	case "train":
		out, err = tb.Forecasts.Train(ctx, instrument, horizon)
		if err != nil {
			return err
		}
	case "predict":
		out, err = tb.Forecasts.Predict(ctx, instrument, horizon)
		if err != nil {
			return err
		}
	case "evaluate":
		out, err = tb.Forecasts.Evaluate(ctx, instrument)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
