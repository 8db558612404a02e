// Package session models the trading session of the exchange the desk trades on.
package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a time of day in minutes since midnight
type Clock int

// NewClock builds a clock from hour and minute
func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ClockOf returns the time of day of t in its own location
func ClockOf(t time.Time) Clock {
	return NewClock(t.Hour(), t.Minute())
}

// ParseClock parses "HH:MM"
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return NewClock(h, m), nil
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

// Add moves the clock by n minutes
func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

// String formats the clock as HH:MM
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// CeilTo rounds the clock up to the next multiple of step minutes.
func (c Clock) CeilTo(step int) Clock {
	if step <= 0 {
		return c
	}
	rem := int(c) % step
	if rem == 0 {
		return c
	}
	return c + Clock(step-rem)
}

// Hours is a single-session trading day in a fixed location
type Hours struct {
	Open     Clock
	Close    Clock
	Location *time.Location
}

// IST is the fixed Indian Standard Time zone used when tzdata is unavailable
var IST = time.FixedZone("IST", 5*60*60+30*60)

// Default returns the NSE cash session, 09:15 to 15:30 IST
func Default() Hours {
	return Hours{
		Open:     NewClock(9, 15),
		Close:    NewClock(15, 30),
		Location: IST,
	}
}

// Parse builds session hours from "HH:MM" strings and an IANA zone name.
// An empty zone keeps IST.
func Parse(open, close, zone string) (Hours, error) {
	o, err := ParseClock(open)
	if err != nil {
		return Hours{}, fmt.Errorf("session open: %w", err)
	}
	c, err := ParseClock(close)
	if err != nil {
		return Hours{}, fmt.Errorf("session close: %w", err)
	}
	if c <= o {
		return Hours{}, fmt.Errorf("session close %s must be after open %s", c, o)
	}

	loc := IST
	if zone != "" {
		loc, err = time.LoadLocation(zone)
		if err != nil {
			return Hours{}, fmt.Errorf("session timezone %q: %w", zone, err)
		}
	}
	return Hours{Open: o, Close: c, Location: loc}, nil
}

func (h Hours) location() *time.Location {
	if h.Location == nil {
		return IST
	}
	return h.Location
}

// Local converts t into the session location
func (h Hours) Local(t time.Time) time.Time {
	return t.In(h.location())
}

// Length is the session length in minutes
func (h Hours) Length() int {
	return int(h.Close - h.Open)
}

// MinutesToClose is the whole minutes from t until today's close, never negative
func (h Hours) MinutesToClose(t time.Time) int {
	local := h.Local(t)
	closeAt := time.Date(local.Year(), local.Month(), local.Day(), h.Close.Hour(), h.Close.Minute(), 0, 0, local.Location())
	d := closeAt.Sub(local)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// MinutesUntil is the signed minutes from t until the clock c today
func (h Hours) MinutesUntil(t time.Time, c Clock) int {
	local := h.Local(t)
	at := time.Date(local.Year(), local.Month(), local.Day(), c.Hour(), c.Minute(), 0, 0, local.Location())
	return int(at.Sub(local) / time.Minute)
}

// IsOpen reports whether t falls on a weekday inside [open, close)
func (h Hours) IsOpen(t time.Time) bool {
	local := h.Local(t)
	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return false
	}
	now := ClockOf(local)
	return now >= h.Open && now < h.Close
}

// Clamp limits c to [open, close]
func (h Hours) Clamp(c Clock) Clock {
	if c < h.Open {
		return h.Open
	}
	if c > h.Close {
		return h.Close
	}
	return c
}
