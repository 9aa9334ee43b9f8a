// Forecast Guard CLI
// This application validates daily consumption datasets, scores forecast
// accuracy over a rolling window, decides whether the model needs
// retraining, and maintains the append-only metrics history.
//
// Usage:
//
//	forecastguard run --data data/consumption.csv
//	forecastguard validate --data data/consumption.csv --training
//	forecastguard score --data data/consumption.csv --window 60
//	forecastguard decide --mase 1.2
//	forecastguard history
//
// For detailed help on any command, use: forecastguard <command> --help
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/energyops/forecast-guard/internal/artifact"
	"github.com/energyops/forecast-guard/internal/config"
	"github.com/energyops/forecast-guard/internal/dataset"
	"github.com/energyops/forecast-guard/internal/errors"
	"github.com/energyops/forecast-guard/internal/history"
	"github.com/energyops/forecast-guard/internal/logger"
	"github.com/energyops/forecast-guard/internal/pipeline"
	"github.com/energyops/forecast-guard/internal/retrain"
	"github.com/energyops/forecast-guard/internal/scoring"
	"github.com/energyops/forecast-guard/internal/validator"
)

// CLI version information
const (
	Version    = "1.0.0"
	AppName    = "forecastguard"
	ConfigFile = "forecastguard.json"
)

// Exit codes following standard conventions
const (
	ExitSuccess     = 0
	ExitUsageError  = 1
	ExitConfigError = 2
	ExitDataError   = 4
	ExitInterrupt   = 130
)

// CLI represents the main CLI application
type CLI struct {
	config    *config.AppConfig
	logs      *logger.Manager
	logger    *slog.Logger
	artifacts artifact.Store
	history   history.Store
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(ExitUsageError)
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "--version", "-v":
		fmt.Printf("%s version %s\n", AppName, Version)
		return
	case "--help", "-h", "help":
		if len(args) > 0 {
			printCommandHelp(args[0])
		} else {
			printUsage()
		}
		return
	}

	cli := &CLI{}
	if err := cli.initialize(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to initialize CLI: %v\n", err)
		os.Exit(ExitConfigError)
	}
	defer cli.shutdown()

	var err error
	switch command {
	case "run":
		err = cli.handleRun(ctx, args)
	case "validate":
		err = cli.handleValidate(ctx, args)
	case "score":
		err = cli.handleScore(ctx, args)
	case "decide":
		err = cli.handleDecide(ctx, args)
	case "history":
		err = cli.handleHistory(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "Error: Unknown command '%s'\n\n", command)
		printUsage()
		os.Exit(ExitUsageError)
	}

	if err != nil {
		cli.logger.Error("command failed", "command", command, "error", err)
		if errors.ClassOf(err) == errors.ClassConfiguration {
			os.Exit(ExitConfigError)
		}
		os.Exit(ExitDataError)
	}
}

// initialize sets up the CLI application components
func (cli *CLI) initialize(ctx context.Context) error {
	// Local .env files override nothing already exported
	_ = godotenv.Load()

	configPath := os.Getenv("FG_CONFIG_PATH")
	if configPath == "" {
		configPath = ConfigFile
	}

	manager := config.NewManager(configPath, slog.Default())
	cfg, err := manager.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cli.config = cfg

	logs, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	cli.logs = logs
	cli.logger = logs.Logger()

	cli.artifacts, cli.history, err = createStorage(ctx, cfg, cli.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	return nil
}

func (cli *CLI) shutdown() {
	if cli.history != nil {
		cli.history.Close()
	}
	if cli.logs != nil {
		cli.logs.Close()
	}
}

// createStorage builds the artifact and history stores from configuration
func createStorage(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) (artifact.Store, history.Store, error) {
	policy, err := parseRetryPolicy(cfg.ErrorHandling.ReadRetryPolicy)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Storage.Type {
	case "memory":
		return artifact.NewMemoryStore(), history.NewMemoryStore(), nil
	case "duckdb":
		artifacts := artifact.NewFSStore(cfg.Storage.Dir, policy, log)
		hist, err := history.NewDuckDBStore(ctx, cfg.Storage.DatabaseURL, log)
		if err != nil {
			return nil, nil, err
		}
		return artifacts, hist, nil
	case "file":
		artifacts := artifact.NewFSStore(cfg.Storage.Dir, policy, log)
		return artifacts, history.NewFileStore(artifacts, cfg.Storage.HistoryKey, log), nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}

func parseRetryPolicy(rc config.RetryPolicyConfig) (errors.RetryPolicy, error) {
	policy := errors.DefaultRetryPolicy()
	if rc.MaxAttempts > 0 {
		policy.MaxAttempts = rc.MaxAttempts
	}
	if rc.InitialDelay != "" {
		d, err := parseDuration("read_retry_policy.initial_delay", rc.InitialDelay)
		if err != nil {
			return policy, err
		}
		policy.InitialDelay = d
	}
	if rc.MaxDelay != "" {
		d, err := parseDuration("read_retry_policy.max_delay", rc.MaxDelay)
		if err != nil {
			return policy, err
		}
		policy.MaxDelay = d
	}
	return policy, nil
}

// handleRun executes the full pipeline end to end
func (cli *CLI) handleRun(ctx context.Context, args []string) error {
	flags, err := parseRunFlags(args)
	if err != nil {
		return err
	}
	if flags.Help {
		printCommandHelp("run")
		return nil
	}
	if flags.Data != "" {
		cli.config.Data.Path = flags.Data
	}

	runner := pipeline.NewRunner(cli.config, cli.logger, cli.artifacts, cli.history)
	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if !result.ValidationPassed {
		fmt.Println("Validation failed; run aborted. See the validation report for details.")
		return nil
	}
	if result.MetricUndefined {
		fmt.Println("Scaled error undefined (flat seasonal history); retrain decision skipped.")
		return nil
	}
	fmt.Printf("Run complete: mase_window=%.4f should_retrain=%t\n",
		result.Metrics.MASEWindow, result.Flag.ShouldRetrain)
	return nil
}

// handleValidate validates a dataset and prints the report
func (cli *CLI) handleValidate(ctx context.Context, args []string) error {
	flags, err := parseValidateFlags(args)
	if err != nil {
		return err
	}
	if flags.Help {
		printCommandHelp("validate")
		return nil
	}

	path := cli.config.Data.Path
	if flags.Data != "" {
		path = flags.Data
	}
	isTraining := cli.config.Data.IsTraining || flags.Training

	loader := dataset.NewLoader(cli.config.Data.DateColumn, cli.config.Data.DateFormats, cli.logger)
	frame, err := loader.LoadFile(ctx, path)
	if err != nil {
		return err
	}

	rules, err := cli.config.Rules.Parse()
	if err != nil {
		return err
	}

	v := validator.New(cli.logger)
	passed, report := v.Validate(ctx, frame, validator.Options{
		DateColumn:   cli.config.Data.DateColumn,
		TargetColumn: cli.config.Data.TargetColumn,
		Regressors:   cli.config.Data.Regressors,
		IsTraining:   isTraining,
		Rules:        rules,
	})

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	fmt.Printf("Validation %s\n", map[bool]string{true: "passed", false: "FAILED"}[passed])
	return nil
}

// handleScore computes rolling metrics for a dataset
func (cli *CLI) handleScore(ctx context.Context, args []string) error {
	flags, err := parseScoreFlags(args)
	if err != nil {
		return err
	}
	if flags.Help {
		printCommandHelp("score")
		return nil
	}

	path := cli.config.Data.Path
	if flags.Data != "" {
		path = flags.Data
	}
	window := cli.config.Scoring.WindowSize
	if flags.Window > 0 {
		window = flags.Window
	}

	loader := dataset.NewLoader(cli.config.Data.DateColumn, cli.config.Data.DateFormats, cli.logger)
	frame, err := loader.LoadFile(ctx, path)
	if err != nil {
		return err
	}

	prep, err := pipeline.NewPreparator(cli.config.Model.Preparator)
	if err != nil {
		return err
	}
	forecaster, err := pipeline.NewForecaster(cli.config.Model.Name)
	if err != nil {
		return err
	}

	observed, err := prep.Prepare(ctx, frame, cli.config.Data.DateColumn, cli.config.Data.TargetColumn)
	if err != nil {
		return err
	}
	predicted, err := forecaster.Predict(ctx, observed, cli.config.Scoring.Seasonality)
	if err != nil {
		return err
	}

	metrics, err := scoring.Evaluate(observed, predicted, window, cli.config.Scoring.Seasonality, cli.config.Scoring.Precision)
	if err != nil {
		return err
	}

	out, _ := json.MarshalIndent(metrics, "", "  ")
	fmt.Println(string(out))
	return nil
}

// handleDecide applies the retrain threshold to a metric value
func (cli *CLI) handleDecide(ctx context.Context, args []string) error {
	flags, err := parseDecideFlags(args)
	if err != nil {
		return err
	}
	if flags.Help {
		printCommandHelp("decide")
		return nil
	}
	if flags.MASE == "" {
		return fmt.Errorf("--mase is required")
	}
	value, err := strconv.ParseFloat(flags.MASE, 64)
	if err != nil {
		return fmt.Errorf("invalid --mase value: %w", err)
	}

	metrics := map[string]float64{cli.config.Retrain.MetricKey: value}
	flag, err := retrain.Decide(metrics, cli.config.Retrain.MetricKey, cli.config.Retrain.Threshold, flags.Date)
	if err != nil {
		return err
	}

	store := retrain.NewFlagStore(cli.artifacts, cli.config.Storage.FlagKey, cli.logger)
	if err := store.Save(ctx, flag); err != nil {
		return err
	}

	fmt.Printf("should_retrain=%t (threshold %.4f)\n", flag.ShouldRetrain, cli.config.Retrain.Threshold)
	return nil
}

// handleHistory prints the metrics history, oldest first
func (cli *CLI) handleHistory(ctx context.Context, args []string) error {
	flags, err := parseHistoryFlags(args)
	if err != nil {
		return err
	}
	if flags.Help {
		printCommandHelp("history")
		return nil
	}

	records, err := cli.history.Load(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	if flags.JSON {
		out, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("%-36s  %-20s  %-16s  %-8s  %-10s  %-10s\n",
		"RUN", "RECORDED", "MODEL", "WINDOW", "MAE", "MASE")
	for _, r := range records {
		fmt.Printf("%-36s  %-20s  %-16s  %-8d  %-10.4f  %-10.4f\n",
			r.RunID,
			r.RecordedAt.Format("2006-01-02 15:04:05"),
			r.ModelName,
			r.Metrics.WindowSize,
			r.Metrics.MAEWindow,
			r.Metrics.MASEWindow)
	}
	return nil
}
