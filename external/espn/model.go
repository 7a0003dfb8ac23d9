package espn

import (
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

type scoreboardEnvelope struct {
	Events []eventPayload `json:"events"`
}

type eventPayload struct {
	ID           string               `json:"id"`
	Date         string               `json:"date"`
	Name         string               `json:"name"`
	Competitions []competitionPayload `json:"competitions"`
	Status       statusPayload        `json:"status"`
	League       *leaguePayload       `json:"league,omitempty"`
}

type competitionPayload struct {
	ID          string              `json:"id"`
	Date        string              `json:"date"`
	Venue       venuePayload        `json:"venue"`
	Competitors []competitorPayload `json:"competitors"`
	Status      *statusPayload      `json:"status,omitempty"`
}

type venuePayload struct {
	FullName string `json:"fullName"`
}

type competitorPayload struct {
	ID       string      `json:"id"`
	HomeAway string      `json:"homeAway"`
	Score    score       `json:"score"`
	Team     teamPayload `json:"team"`
}

type teamPayload struct {
	ID               string `json:"id"`
	DisplayName      string `json:"displayName"`
	ShortDisplayName string `json:"shortDisplayName"`
	Nickname         string `json:"nickname"`
	Abbreviation     string `json:"abbreviation"`
	Location         string `json:"location"`
}

type statusPayload struct {
	DisplayClock string            `json:"displayClock"`
	Type         statusTypePayload `json:"type"`
}

type statusTypePayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	State       string `json:"state"`
	Completed   bool   `json:"completed"`
	Description string `json:"description"`
	Detail      string `json:"detail"`
	ShortDetail string `json:"shortDetail"`
}

type leaguePayload struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Slug         string `json:"slug"`
}

type summaryEnvelope struct {
	KeyEvents []keyEventPayload `json:"keyEvents"`
}

type keyEventPayload struct {
	ID           string               `json:"id"`
	Type         keyEventTypePayload  `json:"type"`
	Text         string               `json:"text"`
	Clock        clockPayload         `json:"clock"`
	Team         teamPayload          `json:"team"`
	Participants []participantPayload `json:"participants"`
	ScoringPlay  bool                 `json:"scoringPlay"`
}

type keyEventTypePayload struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Type string `json:"type"`
}

type clockPayload struct {
	Value        float64 `json:"value"`
	DisplayValue string  `json:"displayValue"`
}

type participantPayload struct {
	Athlete struct {
		DisplayName string `json:"displayName"`
	} `json:"athlete"`
}

type teamsEnvelope struct {
	Sports []struct {
		Leagues []struct {
			Teams []teamEntry `json:"teams"`
		} `json:"leagues"`
	} `json:"sports"`
}

type teamEntry struct {
	Team teamPayload `json:"team"`
}

type teamScheduleEnvelope struct {
	Events []eventPayload `json:"events"`
}

// score accepts the shapes ESPN uses for a competitor score: a string on the
// scoreboard, an object with value/displayValue on team schedules, or a bare
// number. Missing or blank scores decode to an unset value.
type score struct {
	value *int
}

func (s *score) UnmarshalJSON(raw []byte) error {
	s.value = nil
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return nil
	}

	switch text[0] {
	case '"':
		var value string
		if err := sonic.Unmarshal(raw, &value); err != nil {
			return err
		}
		s.value = parseScore(value)
	case '{':
		var obj struct {
			Value        *float64 `json:"value"`
			DisplayValue string   `json:"displayValue"`
		}
		if err := sonic.Unmarshal(raw, &obj); err != nil {
			return err
		}
		if obj.Value != nil {
			v := int(*obj.Value)
			s.value = &v
			return nil
		}
		s.value = parseScore(obj.DisplayValue)
	default:
		s.value = parseScore(text)
	}
	return nil
}

func (s score) Int() *int {
	if s.value == nil {
		return nil
	}
	v := *s.value
	return &v
}

func parseScore(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if value, err := strconv.Atoi(raw); err == nil {
		return &value
	}
	if value, err := strconv.ParseFloat(raw, 64); err == nil {
		v := int(value)
		return &v
	}
	return nil
}
