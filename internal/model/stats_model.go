package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Visit is one contiguous period a domain was the focused tab content.
// EndTime and Duration stay zero while the visit is open.
type Visit struct {
	Domain    string
	URL       string
	TabID     int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

func (v *Visit) Open() bool {
	return v.EndTime.IsZero()
}

// Close stamps the end of the visit. A clock that went backwards yields a zero duration.
// Durations are rounded to whole milliseconds, the unit stats are persisted in.
func (v *Visit) Close(now time.Time) {
	v.EndTime = now
	v.Duration = now.Sub(v.StartTime).Round(time.Millisecond)
	if v.Duration < 0 {
		v.Duration = 0
	}
}

// DomainStats accumulates usage for a single domain.
type DomainStats struct {
	TotalTime time.Duration
	Visits    int
	Category  Category
}

type domainStatsJSON struct {
	TotalTime int64    `json:"totalTime"` // milliseconds
	Visits    int      `json:"visits"`
	Category  Category `json:"category"`
}

func (s DomainStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(domainStatsJSON{
		TotalTime: s.TotalTime.Milliseconds(),
		Visits:    s.Visits,
		Category:  s.Category,
	})
}

func (s *DomainStats) UnmarshalJSON(data []byte) error {
	var raw domainStatsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.TotalTime = time.Duration(raw.TotalTime) * time.Millisecond
	s.Visits = raw.Visits
	s.Category = raw.Category
	return nil
}

// DomainEntry is a (domain, stats) pair. On the wire it is a two element array.
type DomainEntry struct {
	Domain string
	Stats  DomainStats
}

func (e DomainEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{e.Domain, e.Stats})
}

func (e *DomainEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("domain entry: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.Domain); err != nil {
		return fmt.Errorf("domain entry key: %w", err)
	}
	if err := json.Unmarshal(pair[1], &e.Stats); err != nil {
		return fmt.Errorf("domain entry stats: %w", err)
	}
	return nil
}
