package message

import (
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/sports-ticker/internal/domain/alert"
	"github.com/riskibarqy/sports-ticker/internal/domain/fixture"
	"github.com/riskibarqy/sports-ticker/internal/domain/team"
	"github.com/valyala/bytebufferpool"
)

const unknownPlayer = "Unknown"

// Renderer formats notifications and fixtures as chat text with **bold**
// markers; notifiers translate the markers for their channel.
type Renderer struct {
	leagueName func(string) string
	location   *time.Location
}

type Option func(*Renderer)

// WithLeagueNames resolves league ids to display names.
func WithLeagueNames(fn func(string) string) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.leagueName = fn
		}
	}
}

// WithLocation sets the zone fixture times are printed in.
func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) {
		if loc != nil {
			r.location = loc
		}
	}
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		leagueName: func(id string) string { return id },
		location:   time.UTC,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) Render(item alert.Notification, tracked team.Team) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	emoji := tracked.Emoji
	if strings.TrimSpace(emoji) == "" {
		emoji = team.DefaultEmoji
	}

	switch item.Kind {
	case alert.KindKickoff:
		_, _ = buf.WriteString("🏟️ **KICK OFF!** " + emoji + "\n")
		_, _ = buf.WriteString(item.Home + " vs " + item.Away + "\n")
		_, _ = buf.WriteString(r.leagueName(item.LeagueID))
	case alert.KindGoal, alert.KindOwnGoal, alert.KindPenalty:
		_, _ = buf.WriteString(pick(item.ForTrackedTeam, "🎉", "😬"))
		_, _ = buf.WriteString(" **" + goalLabel(item.Kind) + "** " + item.Clock + "\n")
		_, _ = buf.WriteString("⚽ " + playerName(item.Player) + " (" + item.Team + ")\n")
		_, _ = buf.WriteString("**" + scoreLine(item) + "**")
	case alert.KindRedCard:
		_, _ = buf.WriteString(pick(item.ForTrackedTeam, "😱", "😈"))
		_, _ = buf.WriteString(" 🟥 **RED CARD!** " + item.Clock + "\n")
		_, _ = buf.WriteString(playerName(item.Player) + " (" + item.Team + ")")
	case alert.KindHalftime:
		_, _ = buf.WriteString("⏸️ **HALFTIME** " + emoji + "\n")
		_, _ = buf.WriteString(scoreLine(item))
	case alert.KindFulltime:
		label, badge := resultLabel(item.Result)
		_, _ = buf.WriteString("🏁 **FULL TIME - " + label + "** " + badge + " " + emoji + "\n")
		_, _ = buf.WriteString(scoreLine(item))
	default:
		_, _ = buf.WriteString("📋 " + string(item.Kind) + "\n")
		_, _ = buf.WriteString(scoreLine(item))
	}

	return buf.String()
}

// RenderSchedule lists one team's fixtures. compact prints one line each.
func (r *Renderer) RenderSchedule(tracked team.Team, items []fixture.Fixture, compact bool) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	emoji := tracked.Emoji
	if strings.TrimSpace(emoji) == "" {
		emoji = team.DefaultEmoji
	}
	_, _ = buf.WriteString(emoji + " **" + tracked.Name + "** - Upcoming Fixtures\n")

	if len(items) == 0 {
		_, _ = buf.WriteString("No fixtures found in the next period.")
		return buf.String()
	}

	for idx, item := range items {
		if idx > 0 && !compact {
			_, _ = buf.WriteString("\n")
		}
		_, _ = buf.WriteString("\n")
		if compact {
			_, _ = buf.WriteString(r.compactFixture(tracked, item))
			continue
		}
		_, _ = buf.WriteString(r.fullFixture(item))
	}
	return buf.String()
}

// RenderDigest joins several team schedules with a rule line.
func (r *Renderer) RenderDigest(sections []string) string {
	if len(sections) == 0 {
		return "No teams with ESPN IDs configured."
	}
	return strings.Join(sections, "\n"+strings.Repeat("─", 40)+"\n")
}

func (r *Renderer) compactFixture(tracked team.Team, item fixture.Fixture) string {
	at := item.KickoffAt.In(r.location).Format("02/01 15:04")
	loc, opponent := "@", item.HomeTeam
	if isHome(tracked, item) {
		loc, opponent = "vs", item.AwayTeam
	}
	return "  " + at + " " + loc + " " + opponent + " (" + r.fixtureLeague(item) + ")"
}

func (r *Renderer) fullFixture(item fixture.Fixture) string {
	lines := []string{
		"📅 " + item.KickoffAt.In(r.location).Format("Mon 02 Jan 15:04"),
		"⚽ " + item.HomeTeam + " vs " + item.AwayTeam,
		"🏆 " + r.fixtureLeague(item),
	}
	if venue := strings.TrimSpace(item.Venue); venue != "" {
		lines = append(lines, "📍 "+venue)
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) fixtureLeague(item fixture.Fixture) string {
	if name := strings.TrimSpace(item.LeagueName); name != "" {
		return name
	}
	return r.leagueName(item.LeagueID)
}

func isHome(tracked team.Team, item fixture.Fixture) bool {
	if tracked.ESPNID != "" && item.HomeTeamID != "" {
		return item.HomeTeamID == tracked.ESPNID
	}
	return strings.Contains(strings.ToLower(item.HomeTeam), strings.ToLower(tracked.ShortName))
}

func goalLabel(kind alert.Kind) string {
	switch kind {
	case alert.KindOwnGoal:
		return "OWN GOAL!"
	case alert.KindPenalty:
		return "PENALTY!"
	default:
		return "GOAL!"
	}
}

func resultLabel(result alert.Result) (string, string) {
	switch result {
	case alert.ResultWin:
		return "WIN!", "🎉✅"
	case alert.ResultLoss:
		return "LOSS", "😢❌"
	default:
		return "DRAW", "🤝"
	}
}

func scoreLine(item alert.Notification) string {
	return item.Home + " " + strconv.Itoa(item.HomeScore) + "-" + strconv.Itoa(item.AwayScore) + " " + item.Away
}

func playerName(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return unknownPlayer
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
