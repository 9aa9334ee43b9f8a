package main

import (
	"fmt"
	"strconv"
	"time"
)

// RunFlags holds flags for the 'run' command
type RunFlags struct {
	Data string
	Help bool
}

// ValidateFlags holds flags for the 'validate' command
type ValidateFlags struct {
	Data     string
	Training bool
	Help     bool
}

// ScoreFlags holds flags for the 'score' command
type ScoreFlags struct {
	Data   string
	Window int
	Help   bool
}

// DecideFlags holds flags for the 'decide' command
type DecideFlags struct {
	MASE string
	Date time.Time
	Help bool
}

// HistoryFlags holds flags for the 'history' command
type HistoryFlags struct {
	JSON bool
	Help bool
}

func parseRunFlags(args []string) (*RunFlags, error) {
	flags := &RunFlags{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--data":
			val, err := flagValue(args, &i, "--data")
			if err != nil {
				return nil, err
			}
			flags.Data = val
		case "--help", "-h":
			flags.Help = true
		default:
			return nil, fmt.Errorf("unknown flag: %s", args[i])
		}
	}
	return flags, nil
}

func parseValidateFlags(args []string) (*ValidateFlags, error) {
	flags := &ValidateFlags{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--data":
			val, err := flagValue(args, &i, "--data")
			if err != nil {
				return nil, err
			}
			flags.Data = val
		case "--training":
			flags.Training = true
		case "--help", "-h":
			flags.Help = true
		default:
			return nil, fmt.Errorf("unknown flag: %s", args[i])
		}
	}
	return flags, nil
}

func parseScoreFlags(args []string) (*ScoreFlags, error) {
	flags := &ScoreFlags{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--data":
			val, err := flagValue(args, &i, "--data")
			if err != nil {
				return nil, err
			}
			flags.Data = val
		case "--window":
			val, err := flagValue(args, &i, "--window")
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("--window must be a positive integer")
			}
			flags.Window = n
		case "--help", "-h":
			flags.Help = true
		default:
			return nil, fmt.Errorf("unknown flag: %s", args[i])
		}
	}
	return flags, nil
}

func parseDecideFlags(args []string) (*DecideFlags, error) {
	now := time.Now().UTC()
	flags := &DecideFlags{
		Date: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--mase":
			val, err := flagValue(args, &i, "--mase")
			if err != nil {
				return nil, err
			}
			flags.MASE = val
		case "--date":
			val, err := flagValue(args, &i, "--date")
			if err != nil {
				return nil, err
			}
			d, err := time.Parse("2006-01-02", val)
			if err != nil {
				return nil, fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
			}
			flags.Date = d
		case "--help", "-h":
			flags.Help = true
		default:
			return nil, fmt.Errorf("unknown flag: %s", args[i])
		}
	}
	return flags, nil
}

func parseHistoryFlags(args []string) (*HistoryFlags, error) {
	flags := &HistoryFlags{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--json":
			flags.JSON = true
		case "--help", "-h":
			flags.Help = true
		default:
			return nil, fmt.Errorf("unknown flag: %s", args[i])
		}
	}
	return flags, nil
}

func flagValue(args []string, i *int, name string) (string, error) {
	if *i+1 >= len(args) {
		return "", fmt.Errorf("%s requires a value", name)
	}
	*i++
	return args[*i], nil
}

func parseDuration(field, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid duration: %q", field, raw)
	}
	return d, nil
}

func printUsage() {
	fmt.Printf(`%s - dataset validation and retrain decisioning for daily forecasts

Usage:
  %s <command> [flags]

Commands:
  run        Execute the full pipeline: validate, score, decide, record
  validate   Validate a dataset and print the validation report
  score      Compute rolling accuracy metrics for a dataset
  decide     Apply the retrain threshold to a metric value
  history    Print the recorded metrics history

Global:
  --version, -v   Print version information
  --help, -h      Show this help

Configuration is read from %s (override with FG_CONFIG_PATH) and
FG_* environment variables; a local .env file is loaded when present.

Use '%s <command> --help' for command-specific flags.
`, AppName, AppName, ConfigFile, AppName)
}

func printCommandHelp(command string) {
	switch command {
	case "run":
		fmt.Printf(`Usage: %s run [flags]

Execute the full pipeline end to end.

Flags:
  --data <path>   Dataset CSV path (overrides configuration)
  --help, -h      Show this help
`, AppName)
	case "validate":
		fmt.Printf(`Usage: %s validate [flags]

Validate a dataset and print the validation report as JSON.

Flags:
  --data <path>   Dataset CSV path (overrides configuration)
  --training      Treat the dataset as training data
  --help, -h      Show this help
`, AppName)
	case "score":
		fmt.Printf(`Usage: %s score [flags]

Compute rolling accuracy metrics for a dataset.

Flags:
  --data <path>   Dataset CSV path (overrides configuration)
  --window <n>    Rolling window length in days (overrides configuration)
  --help, -h      Show this help
`, AppName)
	case "decide":
		fmt.Printf(`Usage: %s decide --mase <value> [flags]

Apply the retrain threshold to a metric value and persist the flag.

Flags:
  --mase <value>  Scaled error value to decide on (required)
  --date <date>   Decision date as YYYY-MM-DD (default: today, UTC)
  --help, -h      Show this help
`, AppName)
	case "history":
		fmt.Printf(`Usage: %s history [flags]

Print the recorded metrics history, oldest first.

Flags:
  --json          Print records as JSON instead of a table
  --help, -h      Show this help
`, AppName)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
	}
}
