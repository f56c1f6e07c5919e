package timeutil

import (
	"fmt"
	"sync"
	"time"
)

var (
	mu  sync.RWMutex
	loc = defaultLocation()
)

func defaultLocation() *time.Location {
	l, err := time.LoadLocation("America/Fortaleza")
	if err != nil {
		// Fortaleza has no daylight saving, a fixed zone is exact
		return time.FixedZone("BRT", -3*60*60)
	}
	return l
}

// SetLocation switches the zone used for report dates and filenames
func SetLocation(name string) error {
	l, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("load location %q: %w", name, err)
	}
	mu.Lock()
	loc = l
	mu.Unlock()
	return nil
}

// Location returns the configured zone
func Location() *time.Location {
	mu.RLock()
	defer mu.RUnlock()
	return loc
}

// Now returns the current time in the configured zone
func Now() time.Time {
	return time.Now().In(Location())
}

// YearMonth formats t as YYYY-MM in the configured zone
func YearMonth(t time.Time) string {
	return t.In(Location()).Format(YearMonthLayout)
}

// FormatDate formats the calendar day of t as dd/mm/yyyy in the configured zone
func FormatDate(t time.Time) string {
	return t.In(Location()).Format(DateLayout)
}

const (
	YearMonthLayout = "2006-01"
	DateLayout      = "02/01/2006"
)
