package match

import "strings"

const syntheticKeyPrefix = "synthetic:"

// EventKey returns the identity used to de-duplicate a raw event across polls.
// Provider ids are used verbatim. Without one, the key is built from type,
// clock, team and first participant; two distinct events sharing all four
// collide and are treated as one.
func EventKey(event RawEvent) string {
	if id := strings.TrimSpace(event.ID); id != "" {
		return id
	}

	team := strings.TrimSpace(event.Team.ID)
	if team == "" {
		team = event.Team.Name
	}

	parts := []string{
		event.Type,
		event.Clock,
		team,
		event.FirstParticipant(),
	}
	for i, part := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(part))
	}
	return syntheticKeyPrefix + strings.Join(parts, "|")
}

func IsSyntheticKey(key string) bool {
	return strings.HasPrefix(key, syntheticKeyPrefix)
}
