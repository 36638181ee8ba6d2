package orb

import (
	"strings"
	"time"
	_ "time/tzdata"
)

// Session is the regular trading session open of an exchange.
type Session struct {
	Exchange   string
	Location   *time.Location
	OpenHour   int
	OpenMinute int
}

type sessionDef struct {
	suffix   string
	exchange string
	zone     string
	hour     int
	minute   int
}

// Listed by symbol suffix; anything else trades in New York.
var sessionTable = []sessionDef{
	{".NS", "NSE", "Asia/Kolkata", 9, 15},
	{".BO", "BSE", "Asia/Kolkata", 9, 15},
	{".L", "LSE", "Europe/London", 8, 0},
	{".T", "TSE", "Asia/Tokyo", 9, 0},
	{".HK", "HKEX", "Asia/Hong_Kong", 9, 30},
	{".DE", "XETRA", "Europe/Berlin", 9, 0},
	{".TO", "TSX", "America/Toronto", 9, 30},
	{".AX", "ASX", "Australia/Sydney", 10, 0},
}

var usSession = sessionDef{"", "US", "America/New_York", 9, 30}

// SessionFor returns the session of the exchange a symbol trades on.
func SessionFor(symbol string) Session {
	upper := strings.ToUpper(symbol)
	def := usSession
	for _, s := range sessionTable {
		if strings.HasSuffix(upper, s.suffix) {
			def = s
			break
		}
	}
	loc, err := time.LoadLocation(def.zone)
	if err != nil {
		loc = time.UTC
	}
	return Session{Exchange: def.exchange, Location: loc, OpenHour: def.hour, OpenMinute: def.minute}
}

// OpenOn returns the session open on the exchange-local date of t.
func (s Session) OpenOn(t time.Time) time.Time {
	local := t.In(s.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), s.OpenHour, s.OpenMinute, 0, 0, s.Location)
}
