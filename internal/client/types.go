package client

import (
	"fmt"
	"strings"
	"time"
)

// UpcomingMatch is one row of the source's upcoming match listing. Only
// the match page URL is stable enough to act as an identifier; full
// detail is fetched separately.
type UpcomingMatch struct {
	Team1          string `json:"team1"`
	Team2          string `json:"team2"`
	MatchPage      string `json:"match_page"`
	MatchEvent     string `json:"match_event"`
	MatchSeries    string `json:"match_series"`
	TimeUntilMatch string `json:"time_until_match"`
}

// ExternalID returns the source match id embedded in the match page URL.
func (u *UpcomingMatch) ExternalID() string {
	return ExtractIDFromURL(u.MatchPage)
}

// MatchTeam is one side of a match as reported by the source.
type MatchTeam struct {
	Name    string `json:"name"`
	Link    string `json:"link"`
	LogoURL string `json:"logo_url"`
	Score   *int   `json:"score,omitempty"`
}

// MatchEvent is the tournament context of a match.
type MatchEvent struct {
	Name   string `json:"name"`
	Series string `json:"series"`
	Link   string `json:"link"`
}

// MatchDetail is the full match record, covering both the upcoming and
// the finished shape. Status discriminates: "final" means scores are
// present.
type MatchDetail struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	UTCTimestamp string     `json:"utc_timestamp"`
	BestOf       string     `json:"best_of"`
	MatchPage    string     `json:"match_page"`
	Team1        MatchTeam  `json:"team1"`
	Team2        MatchTeam  `json:"team2"`
	Event        MatchEvent `json:"event"`
}

// IsFinal reports whether the source considers the match finished.
func (m *MatchDetail) IsFinal() bool {
	return strings.EqualFold(strings.TrimSpace(m.Status), "final")
}

// IsLive reports whether the match is in progress.
func (m *MatchDetail) IsLive() bool {
	return strings.EqualFold(strings.TrimSpace(m.Status), "live")
}

// startTimeLayouts are the timestamp formats the source has been seen
// emitting.
var startTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// StartTime parses the match start timestamp. An unparsable timestamp
// is an error, never defaulted: a match without a real start time must
// be skipped by the caller.
func (m *MatchDetail) StartTime() (time.Time, error) {
	raw := strings.TrimSpace(m.UTCTimestamp)
	if raw == "" {
		return time.Time{}, fmt.Errorf("match %s has no start timestamp", m.ID)
	}
	for _, layout := range startTimeLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("match %s has unparsable start timestamp %q", m.ID, raw)
}

// RosterPlayer is one roster entry of a team detail record.
type RosterPlayer struct {
	Name     string `json:"name"`
	RealName string `json:"real_name"`
	Country  string `json:"country"`
}

// TeamDetail is the extended team record including the roster.
type TeamDetail struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	LogoURL string         `json:"logo_url"`
	Region  string         `json:"region"`
	Roster  []RosterPlayer `json:"roster"`
}
