package espn

import (
	"sort"
	"strings"
	"time"
)

var leagueNames = map[string]string{
	"eng.1":            "Premier League",
	"eng.2":            "Championship",
	"esp.1":            "La Liga",
	"ger.1":            "Bundesliga",
	"ita.1":            "Serie A",
	"fra.1":            "Ligue 1",
	"ned.1":            "Eredivisie",
	"por.1":            "Primeira Liga",
	"aut.1":            "Austrian Bundesliga",
	"uefa.champions":   "Champions League",
	"uefa.europa":      "Europa League",
	"uefa.europa.conf": "Conference League",
	"usa.1":            "MLS",
	"mex.1":            "Liga MX",
	"bra.1":            "Brasileirão",
	"arg.1":            "Argentine Primera",
	"fifa.world":       "World Cup",
	"uefa.euro":        "Euros",
}

// DefaultSearchLeagues are scanned by SearchTeams when no league is given.
var DefaultSearchLeagues = []string{"eng.1", "esp.1", "ger.1", "ita.1", "fra.1", "uefa.champions"}

type League struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LeagueName returns the display name of a league slug, or the slug itself.
func LeagueName(leagueID string) string {
	leagueID = strings.TrimSpace(leagueID)
	if name, ok := leagueNames[strings.ToLower(leagueID)]; ok {
		return name
	}
	return leagueID
}

// Leagues lists the known leagues sorted by display name.
func Leagues() []League {
	out := make([]League, 0, len(leagueNames))
	for id, name := range leagueNames {
		out = append(out, League{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func normalizeLeagues(leagues []string) []string {
	out := make([]string, 0, len(leagues))
	seen := make(map[string]struct{}, len(leagues))
	for _, league := range leagues {
		league = strings.ToLower(strings.TrimSpace(league))
		if league == "" {
			continue
		}
		if _, ok := seen[league]; ok {
			continue
		}
		seen[league] = struct{}{}
		out = append(out, league)
	}
	return out
}

func parseEventTime(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	layouts := []string{
		"2006-01-02T15:04Z07:00",
		time.RFC3339,
		"2006-01-02T15:04:05Z07:00",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func firstNonEmpty(values ...string) string {
	for _, item := range values {
		if strings.TrimSpace(item) != "" {
			return strings.TrimSpace(item)
		}
	}
	return ""
}
