package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/aristath/draftboard/internal/domain"
	"github.com/aristath/draftboard/internal/modules/players"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// PlayerHandlers serves the player board
type PlayerHandlers struct {
	repo *players.Repository
	log  zerolog.Logger
}

// NewPlayerHandlers creates player handlers
func NewPlayerHandlers(repo *players.Repository, log zerolog.Logger) *PlayerHandlers {
	return &PlayerHandlers{
		repo: repo,
		log:  log.With().Str("handler", "players").Logger(),
	}
}

// PlayersResponse is the board for one population
type PlayersResponse struct {
	Population domain.Population      `json:"population"`
	Count      int                    `json:"count"`
	Players    []*domain.PlayerRecord `json:"players"`
}

// HandleListPlayers handles GET /api/players/{population}.
//
// Query parameters: search, position (comma separated), show_drafted, sort, asc, limit,
// and min_<column>/max_<column> for stat ranges.
func (h *PlayerHandlers) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	pop, err := domain.ParsePopulation(chi.URLParam(r, "population"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		writeJSON(w, h.log, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	records, err := h.repo.Query(pop, filter)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if records == nil {
		records = []*domain.PlayerRecord{}
	}

	writeJSON(w, h.log, http.StatusOK, PlayersResponse{
		Population: pop,
		Count:      len(records),
		Players:    records,
	})
}

// HandleColumns handles GET /api/players/{population}/columns
func (h *PlayerHandlers) HandleColumns(w http.ResponseWriter, r *http.Request) {
	pop, err := domain.ParsePopulation(chi.URLParam(r, "population"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	columns, err := h.repo.Columns(pop)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, map[string]interface{}{"columns": columns})
}

// HandleTeams handles GET /api/players/{population}/teams
func (h *PlayerHandlers) HandleTeams(w http.ResponseWriter, r *http.Request) {
	pop, err := domain.ParsePopulation(chi.URLParam(r, "population"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	teams, err := h.repo.Teams(pop)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if teams == nil {
		teams = []string{}
	}
	writeJSON(w, h.log, http.StatusOK, map[string]interface{}{"teams": teams})
}

func parseFilter(r *http.Request) (players.Filter, error) {
	q := r.URL.Query()
	f := players.Filter{
		Search: strings.TrimSpace(q.Get("search")),
		SortBy: q.Get("sort"),
	}

	if pos := q.Get("position"); pos != "" {
		for _, p := range strings.Split(pos, ",") {
			if p = strings.TrimSpace(p); p != "" {
				f.Positions = append(f.Positions, p)
			}
		}
	}

	var err error
	if v := q.Get("show_drafted"); v != "" {
		if f.ShowDrafted, err = strconv.ParseBool(v); err != nil {
			return f, err
		}
	}
	if v := q.Get("asc"); v != "" {
		if f.SortAsc, err = strconv.ParseBool(v); err != nil {
			return f, err
		}
	}
	if v := q.Get("limit"); v != "" {
		if f.Limit, err = strconv.Atoi(v); err != nil {
			return f, err
		}
	}

	for key, values := range q {
		var bound string
		switch {
		case strings.HasPrefix(key, "min_"):
			bound = "min"
		case strings.HasPrefix(key, "max_"):
			bound = "max"
		default:
			continue
		}
		v, err := strconv.ParseFloat(values[0], 64)
		if err != nil {
			return f, err
		}
		col := key[4:]
		if f.StatFilters == nil {
			f.StatFilters = make(map[string]players.Range)
		}
		rng := f.StatFilters[col]
		if bound == "min" {
			rng.Min = &v
		} else {
			rng.Max = &v
		}
		f.StatFilters[col] = rng
	}

	return f, nil
}
