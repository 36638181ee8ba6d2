package collector

import (
	"time"

	"QuantSentinel/internal/model"
)

// aggregateBars folds consecutive bars sharing a bucket key into one bar.
// The aggregated bar keeps the time of the first bar in the bucket.
func aggregateBars(bars []model.Candle, key func(time.Time) int) []model.Candle {
	if len(bars) == 0 {
		return nil
	}
	var out []model.Candle
	cur := bars[0]
	curKey := key(cur.At())
	for _, b := range bars[1:] {
		k := key(b.At())
		if k != curKey {
			out = append(out, cur)
			cur, curKey = b, k
			continue
		}
		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	return append(out, cur)
}

// AggregateDailyToWeekly converts daily bars into ISO-week bars.
func AggregateDailyToWeekly(daily []model.Candle) []model.Candle {
	return aggregateBars(daily, func(t time.Time) int {
		y, w := t.ISOWeek()
		return y*100 + w
	})
}

// AggregateDailyToMonthly converts daily bars into calendar-month bars.
func AggregateDailyToMonthly(daily []model.Candle) []model.Candle {
	return aggregateBars(daily, func(t time.Time) int {
		return t.Year()*100 + int(t.Month())
	})
}
