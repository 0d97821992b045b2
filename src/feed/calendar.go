package feed

import (
	"strings"
	"time"

	"marketpulse/src/logger"

	"github.com/scmhub/calendar"
)

// TradingCalendar answers whether a market is open right now, backed by
// scmhub/calendar's MIC-keyed calendars, with a Mon-Fri 9:30-16:00
// America/New_York fallback when no calendar can be loaded.
type TradingCalendar struct {
	cal      *calendar.Calendar
	fallback bool
	loc      *time.Location
}

// micForSymbol maps a symbol's exchange suffix to an ISO 10383 MIC code, US
// NYSE by default.
func micForSymbol(symbol string) string {
	switch {
	case strings.HasSuffix(symbol, ".L"):
		return "xlon"
	case strings.HasSuffix(symbol, ".PA"):
		return "xpar"
	case strings.HasSuffix(symbol, ".DE"):
		return "xfra"
	case strings.HasSuffix(symbol, ".T"):
		return "xtks"
	case strings.HasSuffix(symbol, ".HK"):
		return "xhkg"
	case strings.HasSuffix(symbol, ".AX"):
		return "xasx"
	default:
		return "xnys"
	}
}

// CalendarFor resolves the trading calendar for symbol, falling back to the
// xnys calendar if the symbol's own can't be loaded, and logging and falling
// back to the simple Mon-Fri window if xnys can't be loaded either.
func CalendarFor(symbol string, log *logger.Logger) *TradingCalendar {
	mic := micForSymbol(symbol)

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}
	if cal == nil {
		log.Warning("no calendar available for MIC %q or fallback xnys, using Mon-Fri 9:30-16:00 America/New_York", mic)
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			loc = time.UTC
		}
		return &TradingCalendar{fallback: true, loc: loc}
	}

	return &TradingCalendar{cal: cal, loc: cal.Loc}
}

// IsOpen reports whether the market is open at t.
func (tc *TradingCalendar) IsOpen(t time.Time) bool {
	if tc.loc != nil {
		t = t.In(tc.loc)
	}

	if tc.fallback {
		weekday := t.Weekday()
		if weekday == time.Saturday || weekday == time.Sunday {
			return false
		}
		hour, minute := t.Hour(), t.Minute()
		return (hour > 9 || (hour == 9 && minute >= 30)) && hour < 16
	}

	return tc.cal.IsOpen(t)
}
