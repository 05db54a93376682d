package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// ClockLayout is the wall-clock format of rule start and end times.
const ClockLayout = "15:04"

// MaxOccurrences caps the occurrences produced by a single expansion.
const MaxOccurrences = 1000

// Frequency represents supported recurrence intervals.
type Frequency int

const (
	// FrequencyWeekly generates occurrences for the selected weekdays.
	FrequencyWeekly Frequency = iota
	// FrequencyDaily generates occurrences for each day, optionally filtered
	// by weekday.
	FrequencyDaily
)

// ParseFrequency maps a stored frequency name to a Frequency. A blank name is
// weekly.
func ParseFrequency(value string) (Frequency, error) {
	switch value {
	case "", "weekly":
		return FrequencyWeekly, nil
	case "daily":
		return FrequencyDaily, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidFrequency, value)
	}
}

func (f Frequency) String() string {
	switch f {
	case FrequencyWeekly:
		return "weekly"
	case FrequencyDaily:
		return "daily"
	default:
		return fmt.Sprintf("Frequency(%d)", int(f))
	}
}

// Rule describes a recurring schedule slot. StartClock and EndClock are local
// wall-clock times in the engine's location; an EndClock earlier than
// StartClock ends on the following day.
type Rule struct {
	ID         string
	Frequency  Frequency
	Weekdays   []time.Weekday
	StartClock string
	EndClock   string
	StartsOn   time.Time
	EndsOn     *time.Time
	// Except lists calendar dates on which the slot does not start. Only the
	// year, month and day of each value are read.
	Except []time.Time
}

// Occurrence represents a generated instance of a recurrence rule.
type Occurrence struct {
	RuleID string
	Start  time.Time
	End    time.Time
}

var (
	// ErrNoWeekdays indicates a weekly rule without any weekday.
	ErrNoWeekdays = errors.New("recurrence: weekly rule requires at least one weekday")
	// ErrInvalidClock indicates an unparsable start or end clock.
	ErrInvalidClock = errors.New("recurrence: invalid clock time")
	// ErrInvalidDuration indicates the end clock equals the start clock.
	ErrInvalidDuration = errors.New("recurrence: end clock must differ from start clock")
	// ErrInvalidFrequency indicates the recurrence frequency is not supported.
	ErrInvalidFrequency = errors.New("recurrence: invalid frequency")
)

// Engine expands recurrence rules into occurrences.
type Engine struct {
	location *time.Location
}

// NewEngine constructs an Engine that interprets clocks in loc. A nil loc
// uses UTC.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{location: loc}
}

// Location reports the engine's time zone.
func (e *Engine) Location() *time.Location {
	if e == nil || e.location == nil {
		return time.UTC
	}
	return e.location
}

// Expand produces the occurrences of rule whose start falls in
// [rangeStart, rangeEnd). Validity bounds are inclusive calendar dates.
func (e *Engine) Expand(rule Rule, rangeStart, rangeEnd time.Time) ([]Occurrence, error) {
	loc := e.Location()

	startHour, startMinute, err := parseClock(rule.StartClock)
	if err != nil {
		return nil, err
	}
	endHour, endMinute, err := parseClock(rule.EndClock)
	if err != nil {
		return nil, err
	}
	duration := time.Duration(endHour-startHour)*time.Hour + time.Duration(endMinute-startMinute)*time.Minute
	if duration == 0 {
		return nil, ErrInvalidDuration
	}
	if duration < 0 {
		duration += 24 * time.Hour
	}

	option := rrule.ROption{}
	switch rule.Frequency {
	case FrequencyWeekly:
		if len(rule.Weekdays) == 0 {
			return nil, ErrNoWeekdays
		}
		option.Freq = rrule.WEEKLY
	case FrequencyDaily:
		option.Freq = rrule.DAILY
	default:
		return nil, ErrInvalidFrequency
	}
	for _, day := range rule.Weekdays {
		option.Byweekday = append(option.Byweekday, toRRuleWeekday(day))
	}

	y, m, d := rule.StartsOn.In(loc).Date()
	option.Dtstart = time.Date(y, m, d, startHour, startMinute, 0, 0, loc)
	if rule.EndsOn != nil {
		ey, em, ed := rule.EndsOn.In(loc).Date()
		option.Until = time.Date(ey, em, ed, 23, 59, 59, 0, loc)
	}

	r, err := rrule.NewRRule(option)
	if err != nil {
		return nil, fmt.Errorf("recurrence: build rule: %w", err)
	}

	var set rrule.Set
	set.RRule(r)
	for _, ex := range rule.Except {
		xy, xm, xd := ex.Date()
		set.ExDate(time.Date(xy, xm, xd, startHour, startMinute, 0, 0, loc))
	}

	starts := set.Between(rangeStart.In(loc), rangeEnd.In(loc), true)
	occurrences := make([]Occurrence, 0, len(starts))
	for _, start := range starts {
		if !start.Before(rangeEnd) {
			continue
		}
		if len(occurrences) == MaxOccurrences {
			break
		}
		start = start.In(loc)
		occurrences = append(occurrences, Occurrence{
			RuleID: rule.ID,
			Start:  start,
			End:    start.Add(duration),
		})
	}
	return occurrences, nil
}

func parseClock(value string) (int, int, error) {
	parsed, err := time.Parse(ClockLayout, value)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return parsed.Hour(), parsed.Minute(), nil
}

func toRRuleWeekday(day time.Weekday) rrule.Weekday {
	switch day {
	case time.Monday:
		return rrule.MO
	case time.Tuesday:
		return rrule.TU
	case time.Wednesday:
		return rrule.WE
	case time.Thursday:
		return rrule.TH
	case time.Friday:
		return rrule.FR
	case time.Saturday:
		return rrule.SA
	default:
		return rrule.SU
	}
}
