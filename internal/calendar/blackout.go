// Package calendar supplies the event-blackout and weekly-limit checks the
// admission gate consumes.
package calendar

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Window is one no-trade window around a scheduled event (FOMC, CPI, ...).
type Window struct {
	Name  string    `yaml:"name"`
	Start time.Time `yaml:"start"`
	End   time.Time `yaml:"end"`
}

// Calendar answers "are we inside an event blackout right now".
type Calendar struct {
	windows []Window
}

func NewCalendar(windows []Window) (*Calendar, error) {
	for i, w := range windows {
		if !w.End.After(w.Start) {
			return nil, fmt.Errorf("calendar: window %d (%s) end must be after start", i, w.Name)
		}
	}
	return &Calendar{windows: windows}, nil
}

// LoadCalendar reads blackout windows from a YAML file.
func LoadCalendar(path string) (*Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blackout calendar: %w", err)
	}

	var doc struct {
		Windows []Window `yaml:"windows"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse blackout YAML: %w", err)
	}
	return NewCalendar(doc.Windows)
}

// InBlackout reports whether now falls inside any window, and which.
func (c *Calendar) InBlackout(now time.Time) (bool, string) {
	for _, w := range c.windows {
		if !now.Before(w.Start) && now.Before(w.End) {
			return true, w.Name
		}
	}
	return false, ""
}
