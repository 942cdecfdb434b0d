package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/aristath/draftboard/internal/domain"
	"github.com/aristath/draftboard/internal/modules/pricing"
	"github.com/aristath/draftboard/internal/pipeline"
	"github.com/rs/zerolog"
)

var errPipelineBusy = errors.New("a pipeline operation is already running")

// maxHistoryUpload bounds an uploaded auction export
const maxHistoryUpload = 32 << 20

// guardedPipeline lets one pipeline operation run at a time.
// Callers that find it busy get errPipelineBusy instead of queueing.
type guardedPipeline struct {
	p  *pipeline.Pipeline
	mu sync.Mutex
}

func newGuardedPipeline(p *pipeline.Pipeline) *guardedPipeline {
	return &guardedPipeline{p: p}
}

func (g *guardedPipeline) Run(ctx context.Context) (*pipeline.Report, error) {
	if !g.mu.TryLock() {
		return nil, errPipelineBusy
	}
	defer g.mu.Unlock()
	return g.p.Run(ctx)
}

func (g *guardedPipeline) Recalculate(ctx context.Context, cfg domain.LeagueConfig) error {
	if !g.mu.TryLock() {
		return errPipelineBusy
	}
	defer g.mu.Unlock()
	return g.p.Recalculate(ctx, cfg)
}

func (g *guardedPipeline) Train(ctx context.Context) (*pricing.TrainResult, error) {
	if !g.mu.TryLock() {
		return nil, errPipelineBusy
	}
	defer g.mu.Unlock()
	return g.p.Train(ctx)
}

func (g *guardedPipeline) ImportHistory(ctx context.Context, r io.Reader, origin string, season int) (int, error) {
	if !g.mu.TryLock() {
		return 0, errPipelineBusy
	}
	defer g.mu.Unlock()
	return g.p.ImportHistory(ctx, r, origin, season)
}

// PipelineHandlers triggers pipeline operations
type PipelineHandlers struct {
	pipeline *guardedPipeline
	log      zerolog.Logger
}

// NewPipelineHandlers creates pipeline handlers
func NewPipelineHandlers(p *guardedPipeline, log zerolog.Logger) *PipelineHandlers {
	return &PipelineHandlers{
		pipeline: p,
		log:      log.With().Str("handler", "pipeline").Logger(),
	}
}

// HandleRun handles POST /api/pipeline/run
func (h *PipelineHandlers) HandleRun(w http.ResponseWriter, r *http.Request) {
	report, err := h.pipeline.Run(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, report)
}

// HandleTrain handles POST /api/pipeline/train
func (h *PipelineHandlers) HandleTrain(w http.ResponseWriter, r *http.Request) {
	result, err := h.pipeline.Train(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, result)
}

// HandleImportHistory handles POST /api/history/import?season=2024.
// The export is read from a multipart "file" field, or from the raw body otherwise.
func (h *PipelineHandlers) HandleImportHistory(w http.ResponseWriter, r *http.Request) {
	season := time.Now().Year() - 1
	if v := r.URL.Query().Get("season"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeJSON(w, h.log, http.StatusBadRequest, map[string]string{"error": "invalid season"})
			return
		}
		season = parsed
	}

	var (
		body   io.Reader
		origin = "upload"
	)
	r.Body = http.MaxBytesReader(w, r.Body, maxHistoryUpload)
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		body = file
		origin = header.Filename
	} else if errors.Is(err, http.ErrNotMultipart) {
		body = r.Body
	} else {
		writeJSON(w, h.log, http.StatusBadRequest, map[string]string{"error": "invalid upload: " + err.Error()})
		return
	}

	n, err := h.pipeline.ImportHistory(r.Context(), body, origin, season)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"imported": n,
		"season":   season,
		"source":   origin,
	})
}
