package history

import (
	"github.com/aristath/draftboard/internal/domain"
	"github.com/aristath/draftboard/internal/modules/ingest"
)

// Match pairs a current player with its most recent realized auction price
type Match struct {
	Player *domain.PlayerRecord
	Price  int
	Season int
}

// MatchPlayers joins historical records to a population by case-insensitive normalized name.
// Records without a price are ignored, then the highest season wins per player.
// Players without a priced record are dropped.
// Results follow table order.
func MatchPlayers(records []domain.HistoricalAuctionRecord, table *domain.PlayerTable) []Match {
	latest := make(map[string]domain.HistoricalAuctionRecord, len(records))
	for _, rec := range records {
		key := ingest.MatchKey(rec.PlayerName)
		if key == "" || rec.Price == nil {
			continue
		}
		if prev, ok := latest[key]; !ok || rec.Season > prev.Season {
			latest[key] = rec
		}
	}

	var matches []Match
	for _, player := range table.Records {
		rec, ok := latest[ingest.MatchKey(player.Name)]
		if !ok {
			continue
		}
		matches = append(matches, Match{Player: player, Price: *rec.Price, Season: rec.Season})
	}
	return matches
}
