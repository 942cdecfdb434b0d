package ingest

import (
	"io"
	"strings"

	"github.com/aristath/draftboard/internal/domain"
)

// ParseAuctionExport parses a free-agent auction export into historical records for one season.
// Names are kept as written; matching normalizes them later.
func (l *Loader) ParseAuctionExport(r io.Reader, origin string, season int) ([]domain.HistoricalAuctionRecord, error) {
	raw, err := readAll(r, origin)
	if err != nil {
		return nil, err
	}

	headers := make([]string, len(raw.headers))
	for i, h := range raw.headers {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	fields, err := ResolveFields(origin, headers, AuctionExportRules)
	if err != nil {
		return nil, err
	}

	records := make([]domain.HistoricalAuctionRecord, 0, len(raw.rows))
	for _, row := range raw.rows {
		name := strings.TrimSpace(raw.cell(row, fields[FieldName]))
		if name == "" {
			continue
		}

		rec := domain.HistoricalAuctionRecord{
			PlayerName: name,
			Season:     season,
			Price:      ParseAuctionPrice(raw.cell(row, fields[FieldPrice])),
		}
		if idx, ok := fields[FieldPosition]; ok {
			rec.Position = parseText(raw.cell(row, idx))
		}
		if idx, ok := fields[FieldDate]; ok {
			rec.AuctionDate = parseText(raw.cell(row, idx))
		}
		records = append(records, rec)
	}

	l.log.Info().
		Str("source", origin).
		Int("season", season).
		Int("records", len(records)).
		Msg("Parsed auction export")

	return records, nil
}
