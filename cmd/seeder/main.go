package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ufcml/predict-api/internal/client"
	"github.com/ufcml/predict-api/internal/dataset"
)

var (
	apiURL       string
	pollInterval time.Duration
	timeout      time.Duration
	concurrency  int
	matchupsFile string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("API_URL", "http://localhost:8080"), "Prediction API base URL")
	rootCmd.PersistentFlags().DurationVar(&pollInterval, "poll", time.Second, "Interval between polls while a prediction is processing")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "Give up on a prediction after this long")

	warmCmd.Flags().StringVarP(&matchupsFile, "file", "f", "data/matchups.csv", "CSV with fighter1,fighter2 columns")
	warmCmd.Flags().IntVarP(&concurrency, "concurrency", "n", 4, "Matchups requested in parallel")

	rootCmd.AddCommand(predictCmd, historyCmd, warmCmd)
}

var rootCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Request predictions from the fight prediction API",
}

var predictCmd = &cobra.Command{
	Use:   "predict <fighter1> <fighter2>",
	Short: "Request one prediction and wait for the result",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newClient().Predict(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <fighter>",
	Short: "Show a fighter's recent fights",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := newClient().History(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(entries)
	},
}

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Fill the prediction cache for every matchup in a CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := dataset.ReadFile(matchupsFile)
		if err != nil {
			return err
		}

		c := newClient()
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(max(concurrency, 1))

		for _, rec := range records {
			f1, f2 := rec.String("fighter1", ""), rec.String("fighter2", "")
			if f1 == "" || f2 == "" {
				continue
			}
			g.Go(func() error {
				start := time.Now()
				res, err := c.Predict(ctx, f1, f2)
				if err != nil {
					// One bad matchup should not stop the rest.
					log.Printf("FAIL %s vs %s: %v", f1, f2, err)
					return nil
				}
				log.Printf("OK   %s vs %s -> %s (%.3f/%.3f) in %s",
					f1, f2, res.Winner, res.Probability.Red, res.Probability.Blue, time.Since(start).Round(time.Millisecond))
				return nil
			})
		}
		return g.Wait()
	},
}

func main() {
	log.SetFlags(0)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func newClient() *client.Client {
	return client.New(client.Config{
		BaseURL:      apiURL,
		PollInterval: pollInterval,
		Timeout:      timeout,
	})
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
