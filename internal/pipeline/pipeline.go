// Package pipeline runs the end-to-end valuation: load, merge, value, match history,
// train or predict prices, and surplus.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aristath/draftboard/internal/domain"
	"github.com/aristath/draftboard/internal/events"
	"github.com/aristath/draftboard/internal/metrics"
	"github.com/aristath/draftboard/internal/modules/history"
	"github.com/aristath/draftboard/internal/modules/ingest"
	"github.com/aristath/draftboard/internal/modules/merge"
	"github.com/aristath/draftboard/internal/modules/players"
	"github.com/aristath/draftboard/internal/modules/pricing"
	"github.com/aristath/draftboard/internal/modules/settings"
	"github.com/aristath/draftboard/internal/modules/valuation"
	"github.com/rs/zerolog"
)

// HistoryFile is the auction export imported by Run when present in the source directory
const HistoryFile = "draft_results.csv"

// Stage names used for logging, metrics and events
const (
	StageLoad    = "load"
	StageMerge   = "merge"
	StagePersist = "persist"
	StageValue   = "value"
	StageHistory = "history"
	StageTrain   = "train"
	StagePredict = "predict"
	StageSurplus = "surplus"
)

// Options configures a pipeline
type Options struct {
	SourceDir     string
	HistorySeason int
}

// Report summarizes a run
type Report struct {
	Players         map[domain.Population]int `json:"players"`
	Summaries       []valuation.PoolSummary   `json:"summaries"`
	HistoryImported int                       `json:"history_imported"`
	Training        *pricing.TrainResult      `json:"training,omitempty"`
	TrainingSkipped string                    `json:"training_skipped,omitempty"`
	Predicted       bool                      `json:"predicted"`
}

// Pipeline orchestrates the modules. It is single-threaded; callers must not run two
// pipeline operations at once.
type Pipeline struct {
	loader   *ingest.Loader
	merger   *merge.Service
	players  *players.Repository
	history  *history.Repository
	pricing  *pricing.Service
	settings *settings.Service
	events   *events.Manager
	metrics  *metrics.Manager
	opts     Options
	log      zerolog.Logger
}

// New creates a pipeline. eventManager and metricsManager may be nil.
func New(
	loader *ingest.Loader,
	merger *merge.Service,
	playerRepo *players.Repository,
	historyRepo *history.Repository,
	pricingService *pricing.Service,
	settingsService *settings.Service,
	eventManager *events.Manager,
	metricsManager *metrics.Manager,
	opts Options,
	log zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		loader:   loader,
		merger:   merger,
		players:  playerRepo,
		history:  historyRepo,
		pricing:  pricingService,
		settings: settingsService,
		events:   eventManager,
		metrics:  metricsManager,
		opts:     opts,
		log:      log.With().Str("component", "pipeline").Logger(),
	}
}

// Run ingests the source directory and rebuilds every table.
// Too little auction history is not fatal: the run completes with the previous model, if any.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{Players: make(map[domain.Population]int)}
	start := time.Now()

	var sources map[domain.Population]domain.SourceSet
	if err := p.stage(ctx, StageLoad, func() (int, error) {
		var err error
		sources, err = p.loader.LoadAll(p.opts.SourceDir)
		n := 0
		for _, set := range sources {
			n += len(set)
		}
		return n, err
	}); err != nil {
		return nil, err
	}

	var tables map[domain.Population]*domain.PlayerTable
	if err := p.stage(ctx, StageMerge, func() (int, error) {
		var err error
		tables, err = p.merger.MergeAll(sources)
		return countRecords(tables), err
	}); err != nil {
		return nil, err
	}

	cfg, err := p.settings.LoadLeagueConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load league config: %w", err)
	}
	if tables, err = p.value(ctx, tables, cfg, report); err != nil {
		return nil, err
	}

	historyPath := filepath.Join(p.opts.SourceDir, HistoryFile)
	if _, statErr := os.Stat(historyPath); statErr == nil {
		if err := p.stage(ctx, StageHistory, func() (int, error) {
			f, err := os.Open(historyPath)
			if err != nil {
				return 0, err
			}
			defer f.Close()
			n, err := p.importHistory(f, historyPath, p.opts.HistorySeason)
			report.HistoryImported = n
			return n, err
		}); err != nil {
			return nil, err
		}
	}

	art, result, err := p.train(ctx, tables)
	switch {
	case errors.Is(err, domain.ErrInsufficientTrainingData):
		report.TrainingSkipped = err.Error()
		p.log.Warn().Err(err).Msg("Price model not retrained")
		art, err = p.existingArtifacts()
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		report.Training = result
	}

	if err := p.finish(ctx, tables, art); err != nil {
		return nil, err
	}

	// Nothing reaches the player tables until every stage has succeeded
	if err := p.stage(ctx, StagePersist, func() (int, error) {
		ordered := make([]*domain.PlayerTable, 0, len(domain.Populations))
		for _, pop := range domain.Populations {
			ordered = append(ordered, tables[pop])
			report.Players[pop] = len(tables[pop].Records)
		}
		return countRecords(tables), p.players.ReplaceAll(ordered...)
	}); err != nil {
		return nil, err
	}
	report.Predicted = art != nil

	p.log.Info().
		Dur("duration_ms", time.Since(start)).
		Int("hitters", report.Players[domain.Hitters]).
		Int("pitchers", report.Players[domain.Pitchers]).
		Bool("predicted", report.Predicted).
		Msg("Pipeline completed")
	p.emit(events.PipelineDone, map[string]interface{}{
		"hitters":  report.Players[domain.Hitters],
		"pitchers": report.Players[domain.Pitchers],
	})

	return report, nil
}

// Recalculate re-values the stored tables under cfg without re-ingesting, then
// persists cfg. Existing model artifacts are applied; no training happens.
// On failure both the stored config and the stored valuations are left as they were.
func (p *Pipeline) Recalculate(ctx context.Context, cfg domain.LeagueConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	art, err := p.existingArtifacts()
	if err != nil {
		return err
	}

	tables, err := p.loadTables()
	if err != nil {
		return err
	}

	report := &Report{}
	if tables, err = p.value(ctx, tables, cfg, report); err != nil {
		return err
	}
	if err := p.finish(ctx, tables, art); err != nil {
		return err
	}

	if err := p.settings.SaveLeagueConfig(cfg); err != nil {
		return err
	}
	if err := p.persistValuations(ctx, tables); err != nil {
		return err
	}

	data := &events.RecalculatedData{Predicted: art != nil}
	for _, s := range report.Summaries {
		if s.Population == domain.Pitchers {
			data.PitchersValued = s.Projected
		} else {
			data.HittersValued = s.Projected
		}
	}
	if p.events != nil {
		p.events.EmitTyped("pipeline", data)
	}
	return nil
}

// Train fits the price model on the stored tables and history, then predicts and
// recomputes surplus for both populations.
func (p *Pipeline) Train(ctx context.Context) (*pricing.TrainResult, error) {
	tables, err := p.loadTables()
	if err != nil {
		return nil, err
	}

	art, result, err := p.train(ctx, tables)
	if err != nil {
		return nil, err
	}
	if err := p.finish(ctx, tables, art); err != nil {
		return nil, err
	}
	if err := p.persistValuations(ctx, tables); err != nil {
		return nil, err
	}
	return result, nil
}

// ImportHistory stores the realized prices of one season's auction export
func (p *Pipeline) ImportHistory(ctx context.Context, r io.Reader, origin string, season int) (int, error) {
	var n int
	err := p.stage(ctx, StageHistory, func() (int, error) {
		var err error
		n, err = p.importHistory(r, origin, season)
		return n, err
	})
	return n, err
}

func (p *Pipeline) importHistory(r io.Reader, origin string, season int) (int, error) {
	records, err := p.loader.ParseAuctionExport(r, origin, season)
	if err != nil {
		return 0, err
	}
	n, err := p.history.SaveAll(records)
	if err != nil {
		return 0, err
	}
	p.emit(events.HistoryImported, map[string]interface{}{
		"origin": origin,
		"season": season,
		"rows":   n,
	})
	return n, nil
}

// value runs the dollar valuation in memory
func (p *Pipeline) value(ctx context.Context, tables map[domain.Population]*domain.PlayerTable, cfg domain.LeagueConfig, report *Report) (map[domain.Population]*domain.PlayerTable, error) {
	var valued map[domain.Population]*domain.PlayerTable
	err := p.stage(ctx, StageValue, func() (int, error) {
		res, err := valuation.CalculateDollarValues(tables[domain.Hitters], tables[domain.Pitchers], cfg)
		if err != nil {
			return 0, err
		}
		valued = map[domain.Population]*domain.PlayerTable{
			domain.Hitters:  res.Hitters,
			domain.Pitchers: res.Pitchers,
		}

		n := 0
		for _, s := range res.Summaries {
			p.metrics.SetPlayersValued(string(s.Population), s.Projected)
			p.log.Info().
				Str("population", string(s.Population)).
				Float64("budget", s.Budget).
				Float64("replacement_points", s.ReplacementPoints).
				Float64("dollars_per_point", s.DollarsPerPoint).
				Int("valued", s.Valued).
				Msg("Valued population")
			n += s.Projected
		}
		report.Summaries = res.Summaries
		return n, nil
	})
	return valued, err
}

// train matches history against the tables and fits the model
func (p *Pipeline) train(ctx context.Context, tables map[domain.Population]*domain.PlayerTable) (*pricing.Artifacts, *pricing.TrainResult, error) {
	var (
		art    *pricing.Artifacts
		result *pricing.TrainResult
	)
	err := p.stage(ctx, StageTrain, func() (int, error) {
		records, err := p.history.GetAll()
		if err != nil {
			return 0, err
		}

		matches := make(map[domain.Population][]history.Match, len(tables))
		for pop, table := range tables {
			matches[pop] = history.MatchPlayers(records, table)
		}

		result, art, err = p.pricing.Train(tables, matches)
		if err != nil {
			return 0, err
		}
		p.metrics.SetModelFit(result.R2, result.MatchedCount)
		return result.MatchedCount, nil
	})
	if err != nil {
		return nil, nil, err
	}

	if p.events != nil {
		p.events.EmitTyped("pipeline", &events.ModelTrainedData{R2: result.R2, MatchedCount: result.MatchedCount})
	}
	return art, result, nil
}

// finish predicts prices when a model is available, then recomputes surplus in memory
func (p *Pipeline) finish(ctx context.Context, tables map[domain.Population]*domain.PlayerTable, art *pricing.Artifacts) error {
	if art != nil {
		if err := p.stage(ctx, StagePredict, func() (int, error) {
			n := 0
			for pop, table := range tables {
				predicted, count := p.pricing.Predict(table, art)
				tables[pop] = predicted
				n += count
			}
			return n, nil
		}); err != nil {
			return err
		}
	}

	return p.stage(ctx, StageSurplus, func() (int, error) {
		for pop, table := range tables {
			tables[pop] = valuation.ApplySurplus(table)
		}
		return countRecords(tables), nil
	})
}

func (p *Pipeline) existingArtifacts() (*pricing.Artifacts, error) {
	art, err := p.pricing.LoadArtifacts()
	if errors.Is(err, domain.ErrNoModel) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load price model: %w", err)
	}
	return art, nil
}

func (p *Pipeline) loadTables() (map[domain.Population]*domain.PlayerTable, error) {
	tables := make(map[domain.Population]*domain.PlayerTable, len(domain.Populations))
	for _, pop := range domain.Populations {
		table, err := p.players.Load(pop)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", pop, err)
		}
		tables[pop] = table
	}
	return tables, nil
}

// persistValuations writes the valuation fields of both populations in one transaction
func (p *Pipeline) persistValuations(ctx context.Context, tables map[domain.Population]*domain.PlayerTable) error {
	return p.stage(ctx, StagePersist, func() (int, error) {
		ordered := make([]*domain.PlayerTable, 0, len(domain.Populations))
		for _, pop := range domain.Populations {
			if table, ok := tables[pop]; ok {
				ordered = append(ordered, table)
			}
		}
		return countRecords(tables), p.players.UpdateValuations(ordered...)
	})
}

// stage runs fn with timing, logging, metrics and a completion event
func (p *Pipeline) stage(ctx context.Context, name string, fn func() (int, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	rows, err := fn()
	elapsed := time.Since(start)
	p.metrics.ObserveStage(name, elapsed, err)

	if err != nil {
		if !errors.Is(err, domain.ErrInsufficientTrainingData) && p.events != nil {
			p.events.EmitError("pipeline", err, map[string]interface{}{"stage": name})
		}
		return fmt.Errorf("%s stage failed: %w", name, err)
	}

	p.log.Debug().Str("stage", name).Int("rows", rows).Dur("duration_ms", elapsed).Msg("Stage completed")
	if p.events != nil {
		p.events.EmitTyped("pipeline", &events.StageCompletedData{
			Stage:      name,
			Rows:       rows,
			DurationMs: float64(elapsed.Microseconds()) / 1000,
		})
	}
	return nil
}

func (p *Pipeline) emit(eventType events.EventType, data map[string]interface{}) {
	if p.events != nil {
		p.events.Emit(eventType, "pipeline", data)
	}
}

func countRecords(tables map[domain.Population]*domain.PlayerTable) int {
	n := 0
	for _, t := range tables {
		if t != nil {
			n += len(t.Records)
		}
	}
	return n
}
