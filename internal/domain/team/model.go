package team

import (
	"strings"
	"unicode"

	crerr "github.com/cockroachdb/errors"
)

const DefaultEmoji = "⚽"

// DefaultLeagues are searched when a tracked team lists no leagues.
var DefaultLeagues = []string{"eng.1", "uefa.champions"}

// Team is a club the ticker follows.
type Team struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ShortName string   `json:"short_name"`
	Emoji     string   `json:"emoji"`
	ESPNID    string   `json:"espn_id,omitempty"`
	Leagues   []string `json:"espn_leagues"`
	Enabled   bool     `json:"enabled"`
}

// Normalize fills derived fields the same way for every loader.
func (t Team) Normalize() Team {
	t.Name = strings.TrimSpace(t.Name)
	t.ShortName = strings.TrimSpace(t.ShortName)
	t.ESPNID = strings.TrimSpace(t.ESPNID)
	t.Emoji = strings.TrimSpace(t.Emoji)

	if t.ShortName == "" {
		if fields := strings.Fields(t.Name); len(fields) > 0 {
			t.ShortName = fields[0]
		}
	}
	if t.Emoji == "" {
		t.Emoji = DefaultEmoji
	}
	if strings.TrimSpace(t.ID) == "" {
		t.ID = Slug(t.Name)
	}

	leagues := make([]string, 0, len(t.Leagues))
	for _, league := range t.Leagues {
		if league = strings.ToLower(strings.TrimSpace(league)); league != "" {
			leagues = append(leagues, league)
		}
	}
	if len(leagues) == 0 {
		leagues = append(leagues, DefaultLeagues...)
	}
	t.Leagues = leagues
	return t
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return crerr.New("team id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return crerr.New("team name is required")
	}
	return nil
}

// Trackable reports whether the team can be polled at all.
func (t Team) Trackable() bool {
	return t.Enabled && t.ESPNID != ""
}

// Slug lower-cases a display name into an id: "Manchester United" -> "manchester-united".
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
