package espn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/sports-ticker/internal/domain/fixture"
	"github.com/riskibarqy/sports-ticker/internal/domain/match"
	"github.com/riskibarqy/sports-ticker/internal/domain/team"
	"github.com/riskibarqy/sports-ticker/internal/platform/logging"
	"github.com/riskibarqy/sports-ticker/internal/platform/resilience"
	"github.com/riskibarqy/sports-ticker/internal/usecase"
	"github.com/stretchr/testify/require"
)

const scoreboardInProgress = `{
  "events": [
    {
      "id": "700",
      "date": "2026-10-18T11:30Z",
      "competitions": [{
        "competitors": [
          {"homeAway": "home", "score": "0", "team": {"id": "111", "displayName": "Everton"}},
          {"homeAway": "away", "score": "0", "team": {"id": "112", "displayName": "Fulham"}}
        ]
      }],
      "status": {"displayClock": "12'", "type": {"state": "in", "name": "STATUS_FIRST_HALF", "description": "First Half"}}
    },
    {
      "id": "401",
      "date": "2026-10-18T14:00Z",
      "competitions": [{
        "competitors": [
          {"homeAway": "home", "score": "1", "team": {"id": "363", "displayName": "Chelsea"}},
          {"homeAway": "away", "score": "2", "team": {"id": "359", "displayName": "Arsenal"}}
        ]
      }],
      "status": {"displayClock": "45'+2'", "type": {"state": "in", "name": "STATUS_HALFTIME", "description": "Halftime"}}
    }
  ]
}`

const summaryWithEvents = `{
  "keyEvents": [
    {"id": "k1", "type": {"text": "Goal"}, "clock": {"value": 540, "displayValue": "9'"},
     "team": {"id": "359", "displayName": "Arsenal"},
     "participants": [{"athlete": {"displayName": "Bukayo Saka"}}]},
    {"type": {"text": "Yellow Card"}, "clock": {"value": 1200, "displayValue": "20'"},
     "team": {"id": "363", "displayName": "Chelsea"}, "participants": []}
  ]
}`

func newTestClient(t *testing.T, handler http.Handler, breaker resilience.CircuitBreakerConfig) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		HTTPClient:        server.Client(),
		BaseURL:           server.URL,
		RequestsPerMinute: 6000,
		ScoreboardTTL:     time.Minute,
		Logger:            logging.NewNop(),
		CircuitBreaker:    breaker,
	})
}

func arsenal() team.Team {
	return team.Team{ID: "arsenal", Name: "Arsenal", ESPNID: "359", Enabled: true, Leagues: []string{"eng.1", "uefa.champions"}}
}

func TestClient_FetchSnapshot_FirstLeagueWithMatch(t *testing.T) {
	t.Parallel()

	var scoreboardHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/soccer/eng.1/scoreboard", func(w http.ResponseWriter, r *http.Request) {
		scoreboardHits.Add(1)
		_, _ = w.Write([]byte(scoreboardInProgress))
	})
	mux.HandleFunc("/soccer/uefa.champions/scoreboard", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"events": []}`))
	})
	mux.HandleFunc("/soccer/eng.1/summary", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("event") != "401" {
			http.Error(w, "unknown event", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(summaryWithEvents))
	})
	client := newTestClient(t, mux, resilience.CircuitBreakerConfig{})

	snapshot, found, err := client.FetchSnapshot(context.Background(), arsenal())
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "401", snapshot.MatchID)
	require.Equal(t, "eng.1", snapshot.LeagueID)
	require.Equal(t, match.PhaseHalftime, snapshot.Phase)
	require.Equal(t, match.SideAway, snapshot.TrackedSide)
	require.Equal(t, "Chelsea", snapshot.Home.Name)
	require.Equal(t, 1, *snapshot.HomeScore)
	require.Equal(t, 2, *snapshot.AwayScore)
	require.Len(t, snapshot.Events, 2)
	require.Equal(t, "k1", snapshot.Events[0].ID)
	require.Equal(t, []string{"Bukayo Saka"}, snapshot.Events[0].Participants)
	require.Empty(t, snapshot.Events[1].ID)
	require.Equal(t, float64(1200), snapshot.Events[1].ClockValue)

	_, _, err = client.FetchSnapshot(context.Background(), arsenal())
	require.NoError(t, err)
	require.Equal(t, int32(1), scoreboardHits.Load(), "scoreboard should be served from cache")
}

func TestClient_FetchSnapshot_NoMatch(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/soccer/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"events": []}`))
	})
	client := newTestClient(t, mux, resilience.CircuitBreakerConfig{})

	_, found, err := client.FetchSnapshot(context.Background(), arsenal())
	require.NoError(t, err)
	require.False(t, found)
}

func TestClient_FetchSnapshot_SummaryFailureIsError(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/soccer/eng.1/scoreboard", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(scoreboardInProgress))
	})
	mux.HandleFunc("/soccer/uefa.champions/scoreboard", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"events": []}`))
	})
	mux.HandleFunc("/soccer/eng.1/summary", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	client := newTestClient(t, mux, resilience.CircuitBreakerConfig{})

	_, found, err := client.FetchSnapshot(context.Background(), arsenal())
	require.Error(t, err)
	require.False(t, found)
	require.Contains(t, err.Error(), "status=502")
}

func TestClient_FetchSnapshot_AllScoreboardsFail(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/soccer/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	client := newTestClient(t, mux, resilience.CircuitBreakerConfig{})

	_, found, err := client.FetchSnapshot(context.Background(), arsenal())
	require.Error(t, err)
	require.False(t, found)
}

func TestClient_CircuitOpensOnServerErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/soccer/", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	})
	client := newTestClient(t, mux, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Hour,
		HalfOpenMaxReq:   1,
	})

	single := team.Team{ID: "arsenal", ESPNID: "359", Enabled: true, Leagues: []string{"eng.1"}}
	for i := 0; i < 2; i++ {
		_, _, err := client.FetchSnapshot(context.Background(), single)
		require.Error(t, err)
	}

	_, _, err := client.FetchSnapshot(context.Background(), single)
	require.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
	require.Equal(t, int32(2), hits.Load())
}

func TestClient_NotFoundDoesNotOpenCircuit(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/soccer/", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	})
	client := newTestClient(t, mux, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Hour,
		HalfOpenMaxReq:   1,
	})

	single := team.Team{ID: "arsenal", ESPNID: "359", Enabled: true, Leagues: []string{"eng.1"}}
	for i := 0; i < 3; i++ {
		_, _, err := client.FetchSnapshot(context.Background(), single)
		require.Error(t, err)
		require.NotErrorIs(t, err, usecase.ErrDependencyUnavailable)
	}
	require.Equal(t, int32(3), hits.Load())
}

func TestClient_ListByTeam(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/soccer/eng.1/teams/359/schedule", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fixture") != "true" {
			http.Error(w, "missing fixture flag", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"events": [
		  {"id": "402", "date": "2026-10-25T16:30Z", "competitions": [{
		    "venue": {"fullName": "Emirates Stadium"},
		    "competitors": [
		      {"homeAway": "home", "team": {"id": "359", "displayName": "Arsenal"}},
		      {"homeAway": "away", "team": {"id": "367", "displayName": "Tottenham Hotspur"}}
		    ],
		    "status": {"type": {"state": "pre", "name": "STATUS_SCHEDULED"}}
		  }]},
		  {"id": "401", "date": "2026-10-18T14:00Z", "competitions": [{
		    "competitors": [
		      {"homeAway": "home", "score": {"value": 1.0, "displayValue": "1"}, "team": {"id": "363", "displayName": "Chelsea"}},
		      {"homeAway": "away", "score": {"value": 2.0, "displayValue": "2"}, "team": {"id": "359", "displayName": "Arsenal"}}
		    ],
		    "status": {"type": {"state": "post", "name": "STATUS_FULL_TIME", "completed": true}}
		  }]},
		  {"id": "", "date": "2026-11-01T15:00Z"}
		]}`))
	})
	mux.HandleFunc("/soccer/uefa.champions/teams/359/schedule", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	client := newTestClient(t, mux, resilience.CircuitBreakerConfig{})

	items, err := client.ListByTeam(context.Background(), arsenal())
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.Equal(t, "401", items[0].MatchID)
	require.Equal(t, fixture.StatusFinished, items[0].Status)
	require.Equal(t, 1, *items[0].HomeScore)
	require.Equal(t, 2, *items[0].AwayScore)

	require.Equal(t, "402", items[1].MatchID)
	require.Equal(t, fixture.StatusScheduled, items[1].Status)
	require.Equal(t, "Premier League", items[1].LeagueName)
	require.Equal(t, "Emirates Stadium", items[1].Venue)
	require.Equal(t, "arsenal", items[1].TeamID)
	require.Nil(t, items[1].HomeScore)
	require.Equal(t, time.Date(2026, 10, 25, 16, 30, 0, 0, time.UTC), items[1].KickoffAt)
}

func TestClient_SearchTeams(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/soccer/eng.1/teams", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"sports": [{"leagues": [{"teams": [
		  {"team": {"id": "359", "displayName": "Arsenal", "shortDisplayName": "Arsenal", "nickname": "Gunners"}},
		  {"team": {"id": "382", "displayName": "Manchester City", "shortDisplayName": "Man City"}},
		  {"team": {"id": "360", "displayName": "Manchester United", "shortDisplayName": "Man United"}}
		]}]}]}`))
	})
	mux.HandleFunc("/soccer/esp.1/teams", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	client := newTestClient(t, mux, resilience.CircuitBreakerConfig{})

	results, err := client.SearchTeams(context.Background(), "man", []string{"eng.1", "esp.1"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "382", results[0].ID)
	require.Equal(t, "Premier League", results[0].LeagueName)

	results, err = client.SearchTeams(context.Background(), "gunners", []string{"eng.1"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	_, err = client.SearchTeams(context.Background(), " ", nil)
	require.Error(t, err)
}

func TestMapPhase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status statusTypePayload
		want   match.Phase
	}{
		{status: statusTypePayload{State: "pre"}, want: match.PhaseScheduled},
		{status: statusTypePayload{State: "in", Name: "STATUS_SECOND_HALF"}, want: match.PhaseInProgress},
		{status: statusTypePayload{State: "in", Description: "Halftime"}, want: match.PhaseHalftime},
		{status: statusTypePayload{State: "post", Name: "STATUS_FULL_TIME"}, want: match.PhaseFinal},
		{status: statusTypePayload{State: "post", Name: "STATUS_POSTPONED"}, want: match.PhaseScheduled},
		{status: statusTypePayload{State: "post", Description: "Abandoned"}, want: match.PhaseScheduled},
		{status: statusTypePayload{}, want: ""},
	}

	for _, tc := range tests {
		if got := mapPhase(tc.status); got != tc.want {
			t.Fatalf("mapPhase(%+v): got=%q want=%q", tc.status, got, tc.want)
		}
	}
}

func TestBuildSnapshot_MissingScores(t *testing.T) {
	t.Parallel()

	competition := competitionPayload{Competitors: []competitorPayload{
		{HomeAway: "home", Team: teamPayload{ID: "359", DisplayName: "Arsenal"}},
		{HomeAway: "away", Team: teamPayload{ID: "363", DisplayName: "Chelsea"}},
	}}

	pre := buildSnapshot("eng.1", eventPayload{ID: "1", Status: statusPayload{Type: statusTypePayload{State: "pre"}}}, competition, "359", nil)
	require.NotNil(t, pre.HomeScore)
	require.Equal(t, 0, *pre.HomeScore)
	require.Equal(t, match.SideHome, pre.TrackedSide)

	live := buildSnapshot("eng.1", eventPayload{ID: "1", Status: statusPayload{Type: statusTypePayload{State: "in"}}}, competition, "359", nil)
	require.Nil(t, live.HomeScore)
	require.Nil(t, live.AwayScore)
}

func TestLeagueName(t *testing.T) {
	t.Parallel()

	if got := LeagueName("uefa.champions"); got != "Champions League" {
		t.Fatalf("unexpected league name: %s", got)
	}
	if got := LeagueName("xyz.9"); got != "xyz.9" {
		t.Fatalf("unknown league should echo slug, got %s", got)
	}

	leagues := Leagues()
	for i := 1; i < len(leagues); i++ {
		if strings.Compare(leagues[i-1].Name, leagues[i].Name) > 0 {
			t.Fatalf("leagues not sorted by name at %d", i)
		}
	}
}
