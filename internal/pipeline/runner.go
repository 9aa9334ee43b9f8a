package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/energyops/forecast-guard/internal/artifact"
	"github.com/energyops/forecast-guard/internal/config"
	"github.com/energyops/forecast-guard/internal/dataset"
	"github.com/energyops/forecast-guard/internal/errors"
	"github.com/energyops/forecast-guard/internal/history"
	"github.com/energyops/forecast-guard/internal/models"
	"github.com/energyops/forecast-guard/internal/retrain"
	"github.com/energyops/forecast-guard/internal/scoring"
	"github.com/energyops/forecast-guard/internal/validator"
)

// Result summarizes one pipeline run.
type Result struct {
	// PriorFlag is how the previous run's retrain flag resolved.
	PriorFlag retrain.LoadResult

	// ValidationPassed gates everything downstream: when false, no
	// prediction, scoring or decisioning happened.
	ValidationPassed bool
	Report           *models.ValidationReport

	// Metrics is nil when validation failed or the scaled error was
	// undefined.
	Metrics *models.RollingMetrics

	// MetricUndefined marks a run where the seasonal-naive baseline had
	// zero error; the persisted flag was left untouched.
	MetricUndefined bool

	// Flag is the freshly decided retrain flag, nil when no decision was
	// made this run.
	Flag *models.RetrainFlag
}

// Runner wires the pipeline stages together.
type Runner struct {
	cfg       *config.AppConfig
	logger    *slog.Logger
	loader    *dataset.Loader
	validator *validator.Validator
	artifacts artifact.Store
	flags     *retrain.FlagStore
	history   history.Store
}

// NewRunner assembles a Runner from its collaborators.
func NewRunner(cfg *config.AppConfig, logger *slog.Logger, artifacts artifact.Store, hist history.Store) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "pipeline")),
		loader:    dataset.NewLoader(cfg.Data.DateColumn, cfg.Data.DateFormats, logger),
		validator: validator.New(logger),
		artifacts: artifacts,
		flags:     retrain.NewFlagStore(artifacts, cfg.Storage.FlagKey, logger),
		history:   hist,
	}
}

// Run executes one full evaluation: load prior flag, load and validate the
// dataset, predict, score, decide, persist. A failed validation stops the
// run after the report is persisted; storage writes are fatal throughout.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	result.PriorFlag = r.flags.Load(ctx)
	r.logger.InfoContext(ctx, "prior retrain flag resolved",
		slog.String("outcome", string(result.PriorFlag.Outcome)),
		slog.Bool("should_retrain", result.PriorFlag.ShouldRetrain()))

	frame, err := r.loader.LoadFile(ctx, r.cfg.Data.Path)
	if err != nil {
		return result, err
	}

	rules, err := r.cfg.Rules.Parse()
	if err != nil {
		return result, errors.New(errors.ClassConfiguration, "pipeline", "parse rules", err)
	}

	passed, report := r.validator.Validate(ctx, frame, validator.Options{
		DateColumn:   r.cfg.Data.DateColumn,
		TargetColumn: r.cfg.Data.TargetColumn,
		Regressors:   r.cfg.Data.Regressors,
		IsTraining:   r.cfg.Data.IsTraining,
		Rules:        rules,
	})
	result.ValidationPassed = passed
	result.Report = report

	if err := r.persistReport(ctx, report); err != nil {
		return result, err
	}

	if !passed {
		r.logger.WarnContext(ctx, "validation failed, run aborted before scoring")
		return result, nil
	}

	prep, err := NewPreparator(r.cfg.Model.Preparator)
	if err != nil {
		return result, err
	}
	forecaster, err := NewForecaster(r.cfg.Model.Name)
	if err != nil {
		return result, err
	}

	observed, err := prep.Prepare(ctx, frame, r.cfg.Data.DateColumn, r.cfg.Data.TargetColumn)
	if err != nil {
		return result, err
	}
	predicted, err := forecaster.Predict(ctx, observed, r.cfg.Scoring.Seasonality)
	if err != nil {
		return result, err
	}

	metrics, err := scoring.Evaluate(observed, predicted, r.cfg.Scoring.WindowSize, r.cfg.Scoring.Seasonality, r.cfg.Scoring.Precision)
	if err != nil {
		if stderrors.Is(err, scoring.ErrZeroNaiveBaseline) {
			// No defensible decision exists without the scaled error;
			// the previously persisted flag stays in force.
			result.MetricUndefined = true
			r.logger.WarnContext(ctx, "scaled error undefined, retrain decision skipped",
				slog.String("reason", err.Error()))
			return result, nil
		}
		return result, err
	}
	result.Metrics = &metrics
	r.logger.InfoContext(ctx, "rolling metrics computed",
		slog.Float64("mae_window", metrics.MAEWindow),
		slog.Float64("mase_window", metrics.MASEWindow),
		slog.Int("window_size", metrics.WindowSize))

	flag, err := retrain.Decide(metrics.AsMap(), r.cfg.Retrain.MetricKey, r.cfg.Retrain.Threshold, today())
	if err != nil {
		var cfgErr *retrain.ConfigError
		if stderrors.As(err, &cfgErr) {
			return result, errors.New(errors.ClassConfiguration, "pipeline", "decide retrain", err)
		}
		return result, err
	}
	if err := r.flags.Save(ctx, flag); err != nil {
		return result, err
	}
	result.Flag = &flag

	record := models.NewRunRecord(forecaster.Name(), r.cfg.Model.Version, metrics)
	if err := r.history.Append(ctx, record); err != nil {
		return result, err
	}

	r.logger.InfoContext(ctx, "run completed",
		slog.String("run_id", record.RunID),
		slog.Bool("should_retrain", flag.ShouldRetrain))
	return result, nil
}

func (r *Runner) persistReport(ctx context.Context, report *models.ValidationReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.New(errors.ClassStorageWrite, "pipeline", "marshal report", err)
	}
	return r.artifacts.Write(ctx, r.cfg.Storage.ReportKey, data)
}

// today is the decision date: the current UTC calendar day.
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
