// ResearchIQ — financial research report aggregator.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/researchiq/researchiq/api"
	"github.com/researchiq/researchiq/internal/config"
	"github.com/researchiq/researchiq/internal/datasource"
	"github.com/researchiq/researchiq/internal/infra"
	"github.com/researchiq/researchiq/internal/insight"
	"github.com/researchiq/researchiq/internal/llm"
	"github.com/researchiq/researchiq/internal/report"
	"github.com/researchiq/researchiq/internal/research"
	"github.com/researchiq/researchiq/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "researchiq",
	Short: "ResearchIQ — financial research report aggregator",
	Long: `ResearchIQ builds comprehensive research reports for stocks and crypto:
technical indicators, multi-source sentiment, news headlines, risk and
ownership data, and AI-generated commentary, all from free data sources.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(assetsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// buildOrchestrator wires the data sources, insight synthesizer, and
// analysis pipeline from the loaded configuration. The returned cache is
// shared between the synthesizer and the API's invalidation endpoint.
func buildOrchestrator() (*research.Orchestrator, *infra.Cache) {
	cache := infra.NewCache(time.Duration(cfg.AI.CacheTTLMinutes) * time.Minute)

	yahoo := datasource.NewYahoo()
	o := research.New(yahoo)
	o.Options = yahoo
	o.News = datasource.NewNews(datasource.WithNewsLimit(cfg.Sources.NewsLimit))
	o.Social = datasource.NewReddit()
	o.Trends = datasource.NewTrends()
	o.MarketIndex = datasource.NewFearGreed()
	o.Institutional = datasource.NewInstitutional()
	o.Insider = datasource.NewEdgar(datasource.WithEdgarUserAgent(cfg.Sources.SECUserAgent))
	o.Params.RSIPeriod = cfg.Analysis.RSIPeriod
	o.Params.MAPeriods = cfg.Analysis.MAPeriods
	o.Params.VolumeLookback = cfg.Analysis.VolumeLookback

	gen, err := llm.NewGeminiProvider(cfg.LLM.GeminiKey, llm.WithGeminiModel(cfg.LLM.Model))
	if err != nil {
		if errors.Is(err, llm.ErrNoAPIKey) {
			log.Println("main: no Gemini API key configured, AI insights disabled")
		} else {
			log.Printf("main: LLM setup failed, AI insights disabled: %v", err)
		}
		return o, cache
	}

	o.Insights = insight.NewSynthesizer(gen, cache,
		insight.WithCacheTTL(time.Duration(cfg.AI.CacheTTLMinutes)*time.Minute),
		insight.WithMaxRetries(cfg.AI.MaxRetries),
		insight.WithMaxTokens(cfg.LLM.MaxTokens),
		insight.WithTimeout(time.Duration(cfg.LLM.TimeoutSec)*time.Second),
	)
	return o, cache
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", report.AppName, version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [ticker]",
	Short: "Generate a full research report for a ticker",
	Long: `Generate a complete research report and print it as JSON.
Price data is required; all other sections degrade gracefully when their
source is unavailable.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := utils.NormalizeTicker(args[0])
		assetType, _ := cmd.Flags().GetString("asset-type")

		orch, _ := buildOrchestrator()

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		rep, err := orch.Analyze(ctx, ticker, assetType)
		if err != nil {
			if errors.Is(err, research.ErrNotFound) {
				return fmt.Errorf("no price data found for %s", ticker)
			}
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	},
}

func init() {
	analyzeCmd.Flags().String("asset-type", "", "asset type: stocks, crypto, indices, commodities")
}

// --- Assets Command ---

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "List the supported tickers by asset type",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Supported assets:")
		for _, entry := range []struct {
			name    string
			tickers []string
		}{
			{"stocks", config.Stocks},
			{"crypto", config.Crypto},
			{"indices", config.Indices},
			{"commodities", config.Commodities},
		} {
			fmt.Printf("\n  %s:\n", entry.name)
			for _, t := range entry.tickers {
				fmt.Printf("    %s\n", t)
			}
		}
	},
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, cache := buildOrchestrator()
		srv := api.NewServer(cfg, orch, cache)

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		log.Printf("main: starting %s API server on %s", report.AppName, addr)
		return srv.ListenAndServe(addr)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and API key status",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s (%s)\n\n", report.AppName, version, commit)

		fmt.Println("Configuration:")
		fmt.Printf("  LLM Model:      %s\n", cfg.LLM.Model)
		fmt.Printf("  API Server:     %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Printf("  RSI Period:     %d\n", cfg.Analysis.RSIPeriod)
		fmt.Printf("  MA Periods:     %v\n", cfg.Analysis.MAPeriods)
		fmt.Printf("  Cache TTL:      %d minutes\n", cfg.AI.CacheTTLMinutes)
		fmt.Println()

		key := "not set (AI insights disabled)"
		if cfg.LLM.GeminiKey != "" {
			key = "set"
		}
		fmt.Printf("  Gemini API key: %s\n", key)
	},
}
