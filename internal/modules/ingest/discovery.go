package ingest

import (
	"strings"

	"github.com/aristath/draftboard/internal/domain"
)

// FieldRule declares how one logical field is found among a file's headers.
//
// Contains rules select the first header (in file order) whose lowercased text
// contains any marker. Exact rules compare against lowercased, trimmed headers
// and prefer earlier candidates over earlier headers.
type FieldRule struct {
	Field    string
	Required bool
	Contains []string
	Exact    []string
}

// match returns the index of the selected header or -1
func (r FieldRule) match(headers []string) int {
	if len(r.Exact) > 0 {
		for _, candidate := range r.Exact {
			for i, h := range headers {
				if strings.ToLower(strings.TrimSpace(h)) == candidate {
					return i
				}
			}
		}
		return -1
	}

	for i, h := range headers {
		if isPlaceholderHeader(h) {
			continue
		}
		lower := strings.ToLower(h)
		for _, marker := range r.Contains {
			if strings.Contains(lower, marker) {
				return i
			}
		}
	}
	return -1
}

// ResolveFields resolves every rule once against the headers.
// Optional fields that are not found are absent from the result.
func ResolveFields(source string, headers []string, rules []FieldRule) (map[string]int, error) {
	resolved := make(map[string]int, len(rules))
	for _, rule := range rules {
		idx := rule.match(headers)
		if idx < 0 {
			if rule.Required {
				return nil, &domain.MissingColumnError{Source: source, Field: rule.Field, Headers: headers}
			}
			continue
		}
		resolved[rule.Field] = idx
	}
	return resolved, nil
}

// Logical fields discovered in ad-hoc exports
const (
	FieldName      = "name"
	FieldPosition  = "position"
	FieldTeam      = "team"
	FieldSalary    = "salary"
	FieldOwnership = "ownership"
	FieldPrice     = "price"
	FieldDate      = "date"
)

// PositionUniverseRules discovers columns of a league-platform player export
var PositionUniverseRules = []FieldRule{
	{Field: FieldName, Required: true, Contains: []string{"name"}},
	{Field: FieldPosition, Contains: []string{"pos"}},
	{Field: FieldTeam, Contains: []string{"fantasy", "team"}},
	{Field: FieldSalary, Contains: []string{"$"}},
	{Field: FieldOwnership, Contains: []string{"own", "rost"}},
}

// AuctionExportRules discovers columns of a historical auction export
var AuctionExportRules = []FieldRule{
	{Field: FieldName, Required: true, Exact: []string{"name", "player", "player_name", "player name"}},
	{Field: FieldPrice, Required: true, Exact: []string{"price", "salary", "cost", "$", "winning bid"}},
	{Field: FieldPosition, Exact: []string{"position", "pos", "positions"}},
	{Field: FieldDate, Exact: []string{"date", "auction_date", "auction date"}},
}
