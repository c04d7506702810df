// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// handlers.go - command handlers for supportq.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/jeranaias/supportq/internal/classify"
	"github.com/jeranaias/supportq/internal/cloud"
	"github.com/jeranaias/supportq/internal/config"
	"github.com/jeranaias/supportq/internal/logger"
	"github.com/jeranaias/supportq/internal/preprocess"
	"github.com/jeranaias/supportq/internal/router"
	"github.com/jeranaias/supportq/internal/server"
	"github.com/jeranaias/supportq/internal/telemetry"
)

// =============================================================================
// SETUP
// =============================================================================

// loadConfig resolves configuration for a command, honoring --config and
// the verbosity flags.
func loadConfig(args Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if args.Verbose {
		level = "debug"
	}
	if args.Quiet {
		level = "error"
	}
	logger.SetDefault(logger.New(logger.Options{
		Level:  logger.Level(level),
		JSON:   cfg.Logging.JSON,
		Output: os.Stderr,
	}))

	config.SetGlobal(cfg)
	return cfg, nil
}

// pipeline is the classification stack shared by the CLI commands.
type pipeline struct {
	hybrid  *classify.HybridClassifier
	routes  *router.Router
	tracker *telemetry.SessionTracker
}

// buildPipeline wires preprocessor, rule engine, optional LLM fallback,
// router, and telemetry from the configuration.
func buildPipeline(cfg *config.Config, noLLM bool) pipeline {
	rules := classify.NewRuleEngine(preprocess.NewDefault(), cfg.Classify.MultiIntentThreshold)

	var fallback classify.FallbackClassifier
	if !noLLM && cfg.LLMConfigured() {
		client := cloud.NewClient(cfg.LLM.Endpoint, cfg.LLM.Deployment, cfg.LLM.APIKey).
			WithAPIVersion(cfg.LLM.APIVersion).
			WithMaxTokens(cfg.LLM.MaxTokens).
			WithTemperature(cfg.LLM.Temperature).
			WithMaxRetries(cfg.LLM.MaxRetries).
			WithTimeout(time.Duration(cfg.LLM.TimeoutSecs) * time.Second)
		fallback = cloud.NewLLMClassifier(client)
		logger.Debug("llm fallback enabled", "deployment", cfg.LLM.Deployment)
	} else {
		logger.Debug("llm fallback disabled")
	}

	return pipeline{
		hybrid:  classify.NewHybridClassifier(rules, fallback, cfg.Classify.ConfidenceThreshold),
		routes:  router.New(),
		tracker: telemetry.NewSessionTracker(),
	}
}

// =============================================================================
// CLASSIFY
// =============================================================================

// classified pairs a result with its routing for output.
type classified struct {
	Query   string                        `json:"query"`
	Result  classify.ClassificationResult `json:"result"`
	Routing router.RoutingDecision        `json:"routing"`
}

// HandleClassify handles the "classify" command.
func HandleClassify(args Args) error {
	if strings.TrimSpace(args.Query) == "" {
		return fmt.Errorf("no query given; usage: supportq classify \"query text\"")
	}

	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	q, err := classify.NewQueryInput(args.Query)
	if err != nil {
		return err
	}

	p := buildPipeline(cfg, args.NoLLM)
	result := p.hybrid.Classify(context.Background(), q)
	routing := p.routes.Route(result)

	out := classified{Query: q.Text, Result: result, Routing: routing}
	if args.JSON {
		return printJSON(out)
	}
	printClassified(out)
	return nil
}

// HandleBatch handles the "batch" command: one query per line, blank
// lines skipped. Invalid lines are reported and skipped rather than
// aborting the batch.
func HandleBatch(args Args) error {
	if args.File == "" {
		return fmt.Errorf("no input file; usage: supportq batch --file FILE")
	}

	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	f, err := os.Open(args.File)
	if err != nil {
		return fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()

	var queries []classify.QueryInput
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		q, err := classify.NewQueryInput(text)
		if err != nil {
			logger.Warn("skipping invalid query", "line", line, "error", err)
			continue
		}
		queries = append(queries, q)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read batch file: %w", err)
	}
	if len(queries) == 0 {
		return fmt.Errorf("no valid queries in %s", args.File)
	}

	p := buildPipeline(cfg, args.NoLLM)
	results := p.hybrid.ClassifyBatch(context.Background(), queries)

	out := make([]classified, len(results))
	for i, r := range results {
		p.tracker.Record(r)
		out[i] = classified{
			Query:   queries[i].Text,
			Result:  r,
			Routing: p.routes.Route(r),
		}
	}

	if args.JSON {
		return printJSON(out)
	}
	for _, c := range out {
		printClassified(c)
		fmt.Println()
	}
	printSessionSummary(p.tracker.Snapshot())
	return nil
}

// HandleServe handles the "serve" command.
func HandleServe(args Args) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	if args.Port > 0 {
		cfg.Server.Port = args.Port
	}

	p := buildPipeline(cfg, args.NoLLM)
	srv := server.New(server.Options{
		Port:      cfg.Server.Port,
		RateLimit: cfg.Server.RateLimit,
		Burst:     cfg.Server.Burst,
	}, p.hybrid, p.routes, p.tracker)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		cfg, err := loadConfig(args)
		if err != nil {
			return err
		}
		display := *cfg
		if display.LLM.APIKey != "" {
			display.LLM.APIKey = "********"
		}
		return printJSON(display)

	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	case "init":
		if err := config.Default().Save(); err != nil {
			return err
		}
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil

	default:
		return fmt.Errorf("unknown config subcommand %q (want show, path, or init)", args.Subcommand)
	}
}

// =============================================================================
// OUTPUT
// =============================================================================

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printClassified renders one classification for terminal reading.
func printClassified(c classified) {
	fmt.Printf("Query:       %s\n", c.Query)

	display := c.Result.DisplayMap()
	keys := make([]string, 0, len(display))
	for k := range display {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-12s %s\n", k+":", display[k])
	}

	fmt.Printf("Routing:     %s (%s, wait %s)\n",
		c.Routing.Destination, c.Routing.Action, c.Routing.EstimatedWait)
	switch {
	case c.Routing.RequiresSplit:
		for _, cat := range c.Routing.SplitCategories {
			fmt.Printf("  • %s\n", cat)
		}
	case c.Routing.SpecialInstructions != "":
		fmt.Printf("Note:        %s\n", c.Routing.SpecialInstructions)
	}
}

// printSessionSummary renders batch-level statistics.
func printSessionSummary(m telemetry.SessionMetrics) {
	fmt.Printf("Session: %d queries, avg confidence %.2f, avg %.1fms\n",
		m.TotalQueries, m.AvgConfidence, m.AvgResponseMs)
	if m.MultiIntent > 0 {
		fmt.Printf("  multi-intent: %d\n", m.MultiIntent)
	}
	if m.HumanReview > 0 {
		fmt.Printf("  needs human review: %d\n", m.HumanReview)
	}
	if m.TotalTokens > 0 {
		fmt.Printf("  llm tokens: %d ($%.6f)\n", m.TotalTokens, m.TotalCostUSD)
	}
}
