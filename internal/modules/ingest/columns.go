package ingest

import (
	"strings"

	"github.com/aristath/draftboard/internal/domain"
)

// headerRenames maps source header labels to internal column names.
// Headers not listed pass through unchanged.
var headerRenames = map[string]string{
	"Name":    domain.ColumnName,
	"Fantasy": domain.ColumnTeam,
	"$":       domain.ColumnSalary,

	// Hitter advanced
	"PA":    "pa",
	"BB%":   "bb_pct",
	"K%":    "k_pct",
	"BB/K":  "bb_per_k",
	"AVG":   "avg",
	"OBP":   "obp",
	"SLG":   "slg",
	"OPS":   "ops",
	"ISO":   "iso",
	"BABIP": "babip",
	"wOBA":  "woba",
	"wRC+":  "wrc_plus",

	// Hitter batted ball
	"GB/FB": "gb_per_fb",
	"LD%":   "ld_pct",
	"GB%":   "gb_pct",
	"FB%":   "fb_pct",
	"IFFB%": "iffb_pct",
	"HR/FB": "hr_per_fb",
	"IFH":   "ifh",
	"IFH%":  "ifh_pct",
	"BUH":   "buh",
	"BUH%":  "buh_pct",
	"Pull%": "pull_pct",
	"Cent%": "cent_pct",
	"Oppo%": "oppo_pct",
	"Soft%": "soft_pct",
	"Med%":  "med_pct",
	"Hard%": "hard_pct",

	// Hitter fantasy
	"AB":     "ab",
	"H":      "h",
	"2B":     "doubles",
	"3B":     "triples",
	"HR":     "hr",
	"BB":     "bb",
	"HBP":    "hbp",
	"SB":     "sb",
	"CS":     "cs",
	"FPTS/G": "fpts_per_g",
	"FPTS":   domain.ColumnPoints,

	// Pitcher fantasy
	"IP":      "ip",
	"SO":      "so",
	"SV":      "sv",
	"K/9":     "k_per_9",
	"HLD":     "hld",
	"FPTS/IP": "fpts_per_ip",

	// Pitcher advanced
	"W":        "w",
	"L":        "l",
	"G":        "g",
	"GS":       "gs",
	"BB/9":     "bb_per_9",
	"HR/9":     "hr_per_9",
	"LOB%":     "lob_pct",
	"vFA (pi)": "vfa",
	"ERA":      "era",
	"xERA":     "xera",
	"FIP":      "fip",
	"xFIP":     "xfip",
	"WAR":      "war",

	// Pitcher batted ball
	"Events":   "events",
	"EV":       "ev",
	"EV90":     "ev90",
	"maxEV":    "max_ev",
	"LA":       "la",
	"Barrels":  "barrels",
	"Barrel%":  "barrel_pct",
	"HardHit":  "hard_hit",
	"HardHit%": "hard_hit_pct",

	// Pitcher modeling
	"Stuff+":    "stuff_plus",
	"Location+": "location_plus",
	"Pitching+": "pitching_plus",
}

// percentHeaders carry "12.5%" style cells
var percentHeaders = map[string]bool{
	"BB%": true, "K%": true, "LOB%": true, "GB%": true, "FB%": true, "HR/FB": true,
	"LD%": true, "IFFB%": true, "IFH%": true, "BUH%": true, "Pull%": true, "Cent%": true,
	"Oppo%": true, "Soft%": true, "Med%": true, "Hard%": true, "Barrel%": true, "HardHit%": true,
}

// rankHeader is the source's row rank, meaningless once sources are merged
const rankHeader = "#"

// cellKind selects the parser applied to a column
type cellKind int

const (
	cellNumber cellKind = iota
	cellPercent
	cellCurrency
	cellText
)

// column is one retained source column
type column struct {
	index  int
	header string
	name   string
	kind   cellKind
}

// CanonicalName returns the internal name for a source header
func CanonicalName(header string) string {
	if renamed, ok := headerRenames[header]; ok {
		return renamed
	}
	return header
}

// isPlaceholderHeader reports blank headers and spreadsheet "Unnamed: N" fillers
func isPlaceholderHeader(header string) bool {
	h := strings.TrimSpace(header)
	return h == "" || strings.HasPrefix(h, "Unnamed")
}

// canonicalColumns resolves the retained columns of a source file in header order.
// The first occurrence of a duplicated internal name wins.
func canonicalColumns(headers []string) []column {
	cols := make([]column, 0, len(headers))
	seen := make(map[string]bool, len(headers))

	for i, raw := range headers {
		header := strings.TrimSpace(raw)
		if header == rankHeader || isPlaceholderHeader(header) {
			continue
		}

		name := CanonicalName(header)
		if seen[name] {
			continue
		}
		seen[name] = true

		kind := cellNumber
		switch {
		case name == domain.ColumnName || name == domain.ColumnTeam || name == domain.ColumnPosition:
			kind = cellText
		case name == domain.ColumnSalary:
			kind = cellCurrency
		case percentHeaders[header]:
			kind = cellPercent
		}
		cols = append(cols, column{index: i, header: header, name: name, kind: kind})
	}
	return cols
}
