package holiday

import (
	"strings"
	"testing"
	"time"
)

func mustDefault(t *testing.T) *Calendar {
	t.Helper()
	cal, err := DefaultCalendar()
	if err != nil {
		t.Fatalf("DefaultCalendar returned error: %v", err)
	}
	return cal
}

func TestHolidayForFixedDate(t *testing.T) {
	t.Parallel()

	cal := mustDefault(t)
	for _, year := range []int{2019, 2025, 2031} {
		got, ok := cal.HolidayFor(time.Date(year, time.March, 1, 13, 0, 0, 0, time.UTC))
		if !ok {
			t.Fatalf("expected March 1 %d to be a holiday", year)
		}
		if got.Name != "삼일절" || !got.IsHoliday {
			t.Fatalf("unexpected holiday %+v", got)
		}
		if got.Date != time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC).Format(DateLayout) {
			t.Fatalf("unexpected date key %q", got.Date)
		}
	}
}

func TestHolidayForShiftingDateOnlyInListedYear(t *testing.T) {
	t.Parallel()

	cal := mustDefault(t)
	if got, ok := cal.HolidayFor(time.Date(2025, time.January, 29, 0, 0, 0, 0, time.UTC)); !ok || got.Name != "설날" {
		t.Fatalf("expected 설날 on 2025-01-29, got %+v ok=%v", got, ok)
	}
	if _, ok := cal.HolidayFor(time.Date(2026, time.January, 29, 0, 0, 0, 0, time.UTC)); ok {
		t.Fatalf("2026-01-29 must not be a holiday")
	}
	if _, ok := cal.HolidayFor(time.Date(2040, time.February, 12, 0, 0, 0, 0, time.UTC)); ok {
		t.Fatalf("years outside the table must yield no shifting holidays")
	}
}

func TestHolidayForPrefersFixedEntry(t *testing.T) {
	t.Parallel()

	// 2025-05-05 appears in both tables.
	cal := mustDefault(t)
	got, ok := cal.HolidayFor(time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC))
	if !ok || got.Name != "어린이날" {
		t.Fatalf("expected fixed entry to win, got %+v", got)
	}

	listed := cal.HolidaysForMonth(2025, time.May)
	count := 0
	for _, h := range listed {
		if h.Date == "2025-05-05" {
			count++
			if h.Name != "어린이날" {
				t.Fatalf("expected fixed name in listing, got %q", h.Name)
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected one entry for 2025-05-05, got %d", count)
	}
}

func TestHolidaysForMonthSortedAndScoped(t *testing.T) {
	t.Parallel()

	cal := mustDefault(t)
	got := cal.HolidaysForMonth(2024, time.February)
	want := []string{"2024-02-09", "2024-02-10", "2024-02-11", "2024-02-12"}
	if len(got) != len(want) {
		t.Fatalf("expected %d holidays, got %+v", len(want), got)
	}
	for i, h := range got {
		if h.Date != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], h.Date)
		}
	}

	if got := cal.HolidaysForMonth(2024, time.November); len(got) != 0 {
		t.Fatalf("expected no holidays in November, got %+v", got)
	}
}

func TestHolidaysForYearIncludesFixedAndShifting(t *testing.T) {
	t.Parallel()

	cal := mustDefault(t)
	year := cal.HolidaysForYear(2026)
	if len(year) < 8 {
		t.Fatalf("expected at least the fixed holidays, got %d", len(year))
	}
	for i := 1; i < len(year); i++ {
		if year[i-1].Date >= year[i].Date {
			t.Fatalf("listing not strictly ordered at %d: %s >= %s", i, year[i-1].Date, year[i].Date)
		}
	}

	onlyFixed := cal.HolidaysForYear(2099)
	if len(onlyFixed) != 8 {
		t.Fatalf("expected only fixed holidays for 2099, got %d", len(onlyFixed))
	}
}

func TestLeapDayFixedEntrySkippedInCommonYears(t *testing.T) {
	t.Parallel()

	table, err := LoadTable(strings.NewReader("fixed:\n  \"02-29\": 윤일\n"))
	if err != nil {
		t.Fatalf("LoadTable returned error: %v", err)
	}
	cal := NewCalendar(table)
	if got := cal.HolidaysForMonth(2023, time.February); len(got) != 0 {
		t.Fatalf("expected no leap day in 2023, got %+v", got)
	}
	if got := cal.HolidaysForMonth(2024, time.February); len(got) != 1 {
		t.Fatalf("expected leap day in 2024, got %+v", got)
	}
}

func TestLoadTableRejectsInvalidKeys(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"fixed":    "fixed:\n  \"13-01\": bad\n",
		"shifting": "shifting:\n  2024:\n    \"02-30\": bad\n",
		"syntax":   "fixed: [",
	}
	for name, doc := range cases {
		doc := doc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := LoadTable(strings.NewReader(doc)); err == nil {
				t.Fatalf("expected error for %q", doc)
			}
		})
	}
}

func TestNilCalendarIsEmpty(t *testing.T) {
	t.Parallel()

	var cal *Calendar
	if _, ok := cal.HolidayFor(time.Now()); ok {
		t.Fatalf("nil calendar must not report holidays")
	}
	if got := cal.HolidaysForMonth(2024, time.January); got != nil {
		t.Fatalf("expected nil listing, got %+v", got)
	}
}
