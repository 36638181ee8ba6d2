package backtest

import (
	"math"
	"time"

	"QuantSentinel/internal/model"
)

// MonthlySeries is the aligned monthly view the strategy legs read from.
// Index i refers to the same month for every symbol.
type MonthlySeries interface {
	// Len is the number of months on the reference calendar.
	Len() int
	// Time returns the unix time of month i on the reference calendar.
	Time(i int) int64
	// Closes returns the close prices of symbol indexed like the reference
	// calendar. Missing months hold NaN. ok is false for an unknown symbol.
	Closes(symbol string) (closes []float64, ok bool)
}

// IndexAligned assumes every symbol walks the same monthly index as the
// reference symbol, with all series ending on the same month. A shorter
// series is padded with NaN at the front and a longer one keeps only its
// latest months. Timestamps of the other symbols are ignored.
type IndexAligned struct {
	series    model.SeriesMap
	reference []model.Candle
}

// NewIndexAligned builds an index-aligned view. The calendar comes from
// reference, or from the longest series when reference is absent.
func NewIndexAligned(series model.SeriesMap, reference string) *IndexAligned {
	return &IndexAligned{series: series, reference: series[referenceSymbol(series, reference)]}
}

func (a *IndexAligned) Len() int { return len(a.reference) }

func (a *IndexAligned) Time(i int) int64 { return a.reference[i].Time }

func (a *IndexAligned) Closes(symbol string) ([]float64, bool) {
	bars, ok := a.series[symbol]
	if !ok || len(bars) == 0 {
		return nil, false
	}
	closes := make([]float64, len(a.reference))
	offset := len(closes) - len(bars)
	for i := range closes {
		if j := i - offset; j >= 0 {
			closes[i] = bars[j].Close
		} else {
			closes[i] = math.NaN()
		}
	}
	return closes, true
}

// CalendarAligned matches every symbol to the reference calendar by year and
// month. Months a symbol does not trade are NaN.
type CalendarAligned struct {
	reference []model.Candle
	closes    map[string][]float64
}

// NewCalendarAligned builds a calendar-aligned view over series.
func NewCalendarAligned(series model.SeriesMap, reference string) *CalendarAligned {
	ref := series[referenceSymbol(series, reference)]
	slot := make(map[int]int, len(ref))
	for i, b := range ref {
		slot[monthKey(b.Time)] = i
	}

	closes := make(map[string][]float64, len(series))
	for sym, bars := range series {
		if len(bars) == 0 {
			continue
		}
		aligned := make([]float64, len(ref))
		for i := range aligned {
			aligned[i] = math.NaN()
		}
		for _, b := range bars {
			if i, ok := slot[monthKey(b.Time)]; ok {
				aligned[i] = b.Close
			}
		}
		closes[sym] = aligned
	}
	return &CalendarAligned{reference: ref, closes: closes}
}

func (a *CalendarAligned) Len() int { return len(a.reference) }

func (a *CalendarAligned) Time(i int) int64 { return a.reference[i].Time }

func (a *CalendarAligned) Closes(symbol string) ([]float64, bool) {
	c, ok := a.closes[symbol]
	return c, ok
}

func monthKey(unix int64) int {
	t := time.Unix(unix, 0).UTC()
	return t.Year()*12 + int(t.Month()) - 1
}

// referenceSymbol returns preferred when it has data, otherwise the symbol
// with the longest series (ties broken alphabetically).
func referenceSymbol(series model.SeriesMap, preferred string) string {
	if len(series[preferred]) > 0 {
		return preferred
	}
	best := ""
	for _, sym := range series.Symbols() {
		if len(series[sym]) > len(series[best]) {
			best = sym
		}
	}
	return best
}
