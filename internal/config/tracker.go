package config

import (
	"os"
	"path/filepath"
	"strings"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/sports-ticker/internal/domain/alert"
	"github.com/riskibarqy/sports-ticker/internal/domain/team"
	"gopkg.in/yaml.v3"
)

const (
	TrackerFormatYAML = "yaml"
	TrackerFormatJSON = "json"
)

// TrackerFile is the on-disk list of followed teams and alert toggles.
type TrackerFile struct {
	Teams  []TrackerTeam   `yaml:"teams" json:"teams" validate:"dive"`
	Alerts map[string]bool `yaml:"alerts,omitempty" json:"alerts,omitempty"`
}

type TrackerTeam struct {
	Name      string   `yaml:"name" json:"name" validate:"required"`
	ShortName string   `yaml:"short_name,omitempty" json:"short_name,omitempty"`
	Emoji     string   `yaml:"emoji,omitempty" json:"emoji,omitempty"`
	ESPNID    string   `yaml:"espn_id,omitempty" json:"espn_id,omitempty" validate:"omitempty,numeric"`
	Leagues   []string `yaml:"espn_leagues,omitempty" json:"espn_leagues,omitempty" validate:"omitempty,dive,required"`
	Enabled   *bool    `yaml:"enabled,omitempty" json:"enabled,omitempty"`
}

// Tracker is the decoded tracker file. Disabled teams are dropped.
type Tracker struct {
	Teams            []team.Team
	Policy           alert.Policy
	UnknownAlertKeys []string
}

var trackerValidator = validator.New()

// TrackerFormat picks the decoder from the file extension; anything that is
// not .json is read as YAML.
func TrackerFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return TrackerFormatJSON
	}
	return TrackerFormatYAML
}

func LoadTracker(path string) (Tracker, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Tracker{}, crerr.New("tracker file path is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tracker{}, crerr.Wrapf(err, "read tracker file %s", path)
	}
	tracker, err := ParseTracker(raw, TrackerFormat(path))
	if err != nil {
		return Tracker{}, crerr.Wrapf(err, "tracker file %s", path)
	}
	return tracker, nil
}

func ParseTracker(raw []byte, format string) (Tracker, error) {
	file, err := decodeTrackerFile(raw, format)
	if err != nil {
		return Tracker{}, err
	}
	if err := trackerValidator.Struct(file); err != nil {
		return Tracker{}, crerr.Wrap(err, "validate tracker file")
	}

	teams := make([]team.Team, 0, len(file.Teams))
	seen := make(map[string]struct{}, len(file.Teams))
	for _, item := range file.Teams {
		enabled := item.Enabled == nil || *item.Enabled
		if !enabled {
			continue
		}
		tracked := team.Team{
			Name:      item.Name,
			ShortName: item.ShortName,
			Emoji:     item.Emoji,
			ESPNID:    item.ESPNID,
			Leagues:   item.Leagues,
			Enabled:   true,
		}.Normalize()
		if err := tracked.Validate(); err != nil {
			return Tracker{}, crerr.Wrapf(err, "team %q", item.Name)
		}
		if _, dup := seen[tracked.ID]; dup {
			return Tracker{}, crerr.Newf("team %q is listed twice", item.Name)
		}
		seen[tracked.ID] = struct{}{}
		teams = append(teams, tracked)
	}

	policy, unknown := alert.NewPolicy(file.Alerts)
	return Tracker{Teams: teams, Policy: policy, UnknownAlertKeys: unknown}, nil
}

// AddTrackedTeam appends a team to the tracker file, creating it if missing.
func AddTrackedTeam(path string, item TrackerTeam) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return crerr.New("tracker file path is required")
	}
	if err := trackerValidator.Struct(item); err != nil {
		return crerr.Wrap(err, "validate team")
	}

	format := TrackerFormat(path)
	file := TrackerFile{}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if file, err = decodeTrackerFile(raw, format); err != nil {
			return crerr.Wrapf(err, "tracker file %s", path)
		}
	case os.IsNotExist(err):
	default:
		return crerr.Wrapf(err, "read tracker file %s", path)
	}

	id := team.Slug(item.Name)
	for _, existing := range file.Teams {
		if team.Slug(existing.Name) == id {
			return crerr.Newf("team %q is already tracked", item.Name)
		}
	}

	normalized := team.Team{Name: item.Name, ShortName: item.ShortName, Emoji: item.Emoji, ESPNID: item.ESPNID, Leagues: item.Leagues}.Normalize()
	enabled := true
	file.Teams = append(file.Teams, TrackerTeam{
		Name:      normalized.Name,
		ShortName: normalized.ShortName,
		Emoji:     normalized.Emoji,
		ESPNID:    normalized.ESPNID,
		Leagues:   normalized.Leagues,
		Enabled:   &enabled,
	})

	encoded, err := encodeTrackerFile(file, format)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return crerr.Wrapf(err, "create tracker dir %s", dir)
		}
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return crerr.Wrapf(err, "write tracker file %s", path)
	}
	return nil
}

func decodeTrackerFile(raw []byte, format string) (TrackerFile, error) {
	var file TrackerFile
	if len(strings.TrimSpace(string(raw))) == 0 {
		return file, nil
	}
	switch format {
	case TrackerFormatJSON:
		if err := sonic.Unmarshal(raw, &file); err != nil {
			return TrackerFile{}, crerr.Wrap(err, "decode json tracker file")
		}
	default:
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return TrackerFile{}, crerr.Wrap(err, "decode yaml tracker file")
		}
	}
	return file, nil
}

func encodeTrackerFile(file TrackerFile, format string) ([]byte, error) {
	if format == TrackerFormatJSON {
		out, err := sonic.ConfigStd.MarshalIndent(file, "", "  ")
		if err != nil {
			return nil, crerr.Wrap(err, "encode json tracker file")
		}
		return append(out, '\n'), nil
	}
	out, err := yaml.Marshal(file)
	if err != nil {
		return nil, crerr.Wrap(err, "encode yaml tracker file")
	}
	return out, nil
}

// FindTeam matches name against team names and short names, case-insensitively.
func FindTeam(teams []team.Team, name string) (team.Team, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return team.Team{}, false
	}
	for _, item := range teams {
		if item.ID == needle ||
			strings.Contains(strings.ToLower(item.Name), needle) ||
			strings.Contains(strings.ToLower(item.ShortName), needle) {
			return item, true
		}
	}
	return team.Team{}, false
}
