// Package calendar classifies timestamps for an NSE-style equities exchange.
package calendar

import "time"

// Session type constants returned by ValidateTradingSession.
const (
	SessionPreOpen   = "pre_open"
	SessionRegular   = "regular"
	SessionPostClose = "post_close"
)

// Closed reason constants.
const (
	ReasonWeekend    = "weekend"
	ReasonHoliday    = "holiday"
	ReasonAfterHours = "after_hours"
)

// Session windows in exchange-local minutes from midnight.
const (
	preOpenStart = 9 * 60     // 09:00
	regularStart = 9*60 + 15  // 09:15
	regularEnd   = 15*60 + 30 // 15:30
	postCloseEnd = 16 * 60    // 16:00
)

// SessionInfo is the classification of one timestamp.
type SessionInfo struct {
	IsMarketOpen bool   `json:"is_market_open"`
	SessionType  string `json:"session_type,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// Calendar classifies instants against a static holiday table in a fixed
// exchange timezone. All operations are pure and deterministic.
type Calendar struct {
	loc      *time.Location
	holidays map[string]bool // "2006-01-02" keys in exchange-local dates
}

// New creates a calendar for the given location and holiday dates
// (formatted "2006-01-02").
func New(loc *time.Location, holidays []string) *Calendar {
	set := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		set[h] = true
	}
	return &Calendar{loc: loc, holidays: set}
}

// NewNSE creates a calendar with the bundled NSE holiday table in IST.
func NewNSE() *Calendar {
	return New(IST, nseHolidays)
}

// NewNSEIn creates a calendar with the bundled NSE holiday table in loc, for
// deployments that override the exchange timezone.
func NewNSEIn(loc *time.Location) *Calendar {
	return New(loc, nseHolidays)
}

// Location returns the exchange timezone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// IsTradingDay reports whether the date of t (in exchange time) is a weekday
// that is not an exchange holiday.
func (c *Calendar) IsTradingDay(t time.Time) bool {
	local := t.In(c.loc)
	wd := local.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !c.holidays[local.Format("2006-01-02")]
}

// ValidateTradingSession classifies a timestamp into an open session type or
// a closed reason.
func (c *Calendar) ValidateTradingSession(t time.Time) SessionInfo {
	local := t.In(c.loc)
	wd := local.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return SessionInfo{Reason: ReasonWeekend}
	}
	if c.holidays[local.Format("2006-01-02")] {
		return SessionInfo{Reason: ReasonHoliday}
	}

	hm := local.Hour()*60 + local.Minute()
	switch {
	case hm >= preOpenStart && hm < regularStart:
		return SessionInfo{IsMarketOpen: true, SessionType: SessionPreOpen}
	case hm >= regularStart && hm < regularEnd:
		return SessionInfo{IsMarketOpen: true, SessionType: SessionRegular}
	case hm >= regularEnd && hm < postCloseEnd:
		return SessionInfo{IsMarketOpen: true, SessionType: SessionPostClose}
	default:
		return SessionInfo{Reason: ReasonAfterHours}
	}
}

// Session returns the session type for a timestamp, or the closed reason when
// the market is shut. Used by the pipeline to label bronze rows.
func (c *Calendar) Session(t time.Time) string {
	info := c.ValidateTradingSession(t)
	if info.IsMarketOpen {
		return info.SessionType
	}
	return info.Reason
}
