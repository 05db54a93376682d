// Package holiday resolves public holidays from a static table of fixed and
// year-specific (lunar-derived) dates, optionally substituted by an external
// provider.
package holiday

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the canonical key format for holiday dates.
const DateLayout = "2006-01-02"

//go:embed holidays.yaml
var defaultTable []byte

// Holiday is a single public holiday keyed by its calendar date.
type Holiday struct {
	Date      string `json:"date"`
	Name      string `json:"name"`
	IsHoliday bool   `json:"is_holiday"`
}

// Table holds the raw holiday data. Fixed entries are keyed by MM-DD and recur
// every year; Shifting entries are keyed by year and then MM-DD.
type Table struct {
	Fixed    map[string]string         `yaml:"fixed"`
	Shifting map[int]map[string]string `yaml:"shifting"`
}

// LoadTable decodes a YAML holiday table and validates every MM-DD key.
func LoadTable(r io.Reader) (Table, error) {
	var table Table
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&table); err != nil {
		return Table{}, fmt.Errorf("holiday: decode table: %w", err)
	}
	for key := range table.Fixed {
		if err := validateMonthDay(key); err != nil {
			return Table{}, err
		}
	}
	for year, entries := range table.Shifting {
		for key := range entries {
			if err := validateMonthDay(key); err != nil {
				return Table{}, fmt.Errorf("holiday: year %d: %w", year, err)
			}
		}
	}
	return table, nil
}

func validateMonthDay(key string) error {
	// 2000 is a leap year, so 02-29 is accepted.
	if _, err := time.Parse(DateLayout, "2000-"+key); err != nil {
		return fmt.Errorf("holiday: invalid MM-DD key %q", key)
	}
	return nil
}

// Calendar answers holiday queries from a static Table. It is immutable and
// safe for concurrent use.
type Calendar struct {
	table Table
}

// NewCalendar constructs a Calendar over the provided table.
func NewCalendar(table Table) *Calendar {
	return &Calendar{table: table}
}

// DefaultCalendar returns a Calendar over the embedded holiday table.
func DefaultCalendar() (*Calendar, error) {
	table, err := LoadTable(bytes.NewReader(defaultTable))
	if err != nil {
		return nil, err
	}
	return NewCalendar(table), nil
}

// HolidayFor reports the holiday falling on the date's calendar day. The fixed
// table is consulted before the year table; the first match wins.
func (c *Calendar) HolidayFor(date time.Time) (Holiday, bool) {
	if c == nil {
		return Holiday{}, false
	}
	key := date.Format("01-02")
	if name, ok := c.table.Fixed[key]; ok {
		return newHoliday(date.Year(), key, name), true
	}
	if name, ok := c.table.Shifting[date.Year()][key]; ok {
		return newHoliday(date.Year(), key, name), true
	}
	return Holiday{}, false
}

// HolidaysForMonth lists the holidays of the given month ordered by date.
func (c *Calendar) HolidaysForMonth(year int, month time.Month) []Holiday {
	if c == nil {
		return nil
	}
	prefix := fmt.Sprintf("%02d-", int(month))
	return c.collect(year, func(key string) bool { return key[:3] == prefix })
}

// HolidaysForYear lists every holiday of the year ordered by date.
func (c *Calendar) HolidaysForYear(year int) []Holiday {
	if c == nil {
		return nil
	}
	return c.collect(year, func(string) bool { return true })
}

func (c *Calendar) collect(year int, match func(key string) bool) []Holiday {
	seen := make(map[string]struct{})
	out := make([]Holiday, 0)

	for key, name := range c.table.Fixed {
		if !match(key) || !existsIn(year, key) {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, newHoliday(year, key, name))
	}
	for key, name := range c.table.Shifting[year] {
		if !match(key) {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, newHoliday(year, key, name))
	}

	sortByDate(out)
	return out
}

// existsIn filters 02-29 in non-leap years.
func existsIn(year int, key string) bool {
	_, err := time.Parse(DateLayout, fmt.Sprintf("%04d-%s", year, key))
	return err == nil
}

func newHoliday(year int, key, name string) Holiday {
	return Holiday{Date: fmt.Sprintf("%04d-%s", year, key), Name: name, IsHoliday: true}
}

func sortByDate(holidays []Holiday) {
	sort.SliceStable(holidays, func(i, j int) bool { return holidays[i].Date < holidays[j].Date })
}
