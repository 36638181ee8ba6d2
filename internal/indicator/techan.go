package indicator

import (
	"fmt"
	"time"

	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"

	"QuantSentinel/internal/model"
)

// TechanEngine computes indicators with github.com/sdcoffey/techan.
type TechanEngine struct{}

// Compute converts candles to a techan series and evaluates each indicator.
// big.Float panics on 0/0 (e.g. RSI over a flat window); that surfaces as an error.
func (TechanEngine) Compute(candles []model.Candle, p model.IndicatorParams) (set model.IndicatorSet, err error) {
	if err := validate(p); err != nil {
		return model.IndicatorSet{}, err
	}
	defer func() {
		if r := recover(); r != nil {
			set, err = model.IndicatorSet{}, fmt.Errorf("techan compute: %v", r)
		}
	}()
	set = emptySet()
	series, times := toTimeSeries(candles)
	if len(times) == 0 {
		return set, nil
	}

	closes := techan.NewClosePriceIndicator(series)
	middle := techan.NewSimpleMovingAverage(closes, p.BBPeriod)
	upper := techan.NewBollingerUpperBandIndicator(closes, p.BBPeriod, p.BBStdDev)
	lower := techan.NewBollingerLowerBandIndicator(closes, p.BBPeriod, p.BBStdDev)
	macd := techan.NewMACDIndicator(closes, p.MACDFast, p.MACDSlow)
	signal, lineFrom := signalLine(macd, len(times), p)
	rsi := techan.NewRelativeStrengthIndexIndicator(closes, p.RSIPeriod)

	bandsFrom, macdFrom, rsiFrom := warmup(p)
	for i, t := range times {
		if i >= bandsFrom {
			set.Bands = append(set.Bands, model.BandPoint{
				Time:   t,
				Upper:  upper.Calculate(i).Float(),
				Middle: middle.Calculate(i).Float(),
				Lower:  lower.Calculate(i).Float(),
			})
		}
		if i >= macdFrom {
			line := macd.Calculate(i).Float()
			sig := signal.Calculate(i - lineFrom).Float()
			set.MACD = append(set.MACD, model.MACDPoint{
				Time:      t,
				MACD:      line,
				Signal:    sig,
				Histogram: line - sig,
			})
		}
		if i >= rsiFrom {
			set.RSI = append(set.RSI, model.ValuePoint{Time: t, Value: rsi.Calculate(i).Float()})
		}
	}
	return set, nil
}

// signalLine runs the signal EMA over the MACD line from index MACDSlow-1,
// the first index where the slow EMA is defined. techan reports zero for an
// EMA before its window fills, so earlier MACD values are the fast EMA alone
// and would skew the signal for many bars. Index k of the returned indicator
// is series index lineFrom+k.
func signalLine(macd techan.Indicator, n int, p model.IndicatorParams) (techan.Indicator, int) {
	lineFrom := p.MACDSlow - 1
	var values []float64
	for i := lineFrom; i < n; i++ {
		values = append(values, macd.Calculate(i).Float())
	}
	return techan.NewEMAIndicator(techan.NewFixedIndicator(values...), p.MACDSignal), lineFrom
}

// toTimeSeries converts candles into a techan series. The candle period is
// the smallest gap between consecutive candles; candles techan rejects as out
// of order are left out, so times lists the accepted ones by series index.
func toTimeSeries(candles []model.Candle) (*techan.TimeSeries, []int64) {
	series := techan.NewTimeSeries()
	period := candlePeriod(candles)
	times := make([]int64, 0, len(candles))
	for _, c := range candles {
		tc := techan.NewCandle(techan.NewTimePeriod(c.At(), period))
		tc.OpenPrice = big.NewDecimal(c.Open)
		tc.ClosePrice = big.NewDecimal(c.Close)
		tc.MaxPrice = big.NewDecimal(c.High)
		tc.MinPrice = big.NewDecimal(c.Low)
		tc.Volume = big.NewDecimal(c.Volume)
		if series.AddCandle(tc) {
			times = append(times, c.Time)
		}
	}
	return series, times
}

func candlePeriod(candles []model.Candle) time.Duration {
	var smallest int64
	for i := 1; i < len(candles); i++ {
		if d := candles[i].Time - candles[i-1].Time; d > 0 && (smallest == 0 || d < smallest) {
			smallest = d
		}
	}
	if smallest == 0 {
		return time.Minute
	}
	return time.Duration(smallest) * time.Second
}
