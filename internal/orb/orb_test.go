package orb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantSentinel/internal/model"
)

// 2024-03-15 09:30 in New York (EDT) is 13:30 UTC.
var usOpen = time.Date(2024, time.March, 15, 13, 30, 0, 0, time.UTC)

func minuteBar(at time.Time, high, low, close, volume float64) model.Candle {
	return model.Candle{Time: at.Unix(), Open: close, High: high, Low: low, Close: close, Volume: volume}
}

// session builds two premarket bars and a 15-minute range between 99 and 101.
func session() []model.Candle {
	var bars []model.Candle
	bars = append(bars, minuteBar(usOpen.Add(-30*time.Minute), 120, 80, 100, 50))
	bars = append(bars, minuteBar(usOpen.Add(-time.Minute), 105, 95, 100, 50))
	for m := 0; m < 15; m++ {
		high, low := 100.5, 99.5
		if m == 3 {
			high = 101
		}
		if m == 9 {
			low = 99
		}
		bars = append(bars, minuteBar(usOpen.Add(time.Duration(m)*time.Minute), high, low, 100, 100))
	}
	return bars
}

func after(m int) time.Time { return usOpen.Add(time.Duration(15+m) * time.Minute) }

func TestSessionFor(t *testing.T) {
	tests := []struct {
		symbol   string
		exchange string
		openUTC  time.Time
	}{
		{"SPY", "US", usOpen},
		{"RELIANCE.NS", "NSE", time.Date(2024, time.March, 15, 3, 45, 0, 0, time.UTC)},
		{"VOD.L", "LSE", time.Date(2024, time.March, 15, 8, 0, 0, 0, time.UTC)},
		{"7203.T", "TSE", time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)},
	}
	ref := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			s := SessionFor(tt.symbol)
			assert.Equal(t, tt.exchange, s.Exchange)
			assert.True(t, tt.openUTC.Equal(s.OpenOn(ref)), "got %s", s.OpenOn(ref).UTC())
		})
	}
}

func TestDetectOpeningRange(t *testing.T) {
	bars := append(session(), minuteBar(after(0), 100.6, 100.2, 100.4, 100))

	rng := DetectOpeningRange("SPY", bars, 15)
	require.NotNil(t, rng)
	assert.Equal(t, 101.0, rng.High)
	assert.Equal(t, 99.0, rng.Low)
	assert.Equal(t, 15, rng.Candles)
	assert.Equal(t, usOpen.Unix(), rng.Start)
	assert.Equal(t, usOpen.Add(15*time.Minute).Unix(), rng.End)
	assert.Equal(t, 2.0, rng.Width())
}

func TestDetectOpeningRangeWithoutSessionCandles(t *testing.T) {
	bars := []model.Candle{minuteBar(usOpen.Add(-time.Hour), 101, 99, 100, 10)}
	assert.Nil(t, DetectOpeningRange("SPY", bars, 15))
	assert.Nil(t, DetectOpeningRange("SPY", nil, 15))
	assert.Nil(t, DetectOpeningRange("SPY", session(), 0))
}

func TestDetectBreakoutLong(t *testing.T) {
	bars := append(session(),
		minuteBar(after(0), 100.8, 100.2, 100.5, 100),
		minuteBar(after(1), 101.6, 101.0, 101.5, 200),
		minuteBar(after(2), 99.0, 97.5, 98.0, 200),
	)
	rng := DetectOpeningRange("SPY", bars, 15)
	require.NotNil(t, rng)

	sig := DetectBreakout("SPY", bars, rng, DefaultBreakoutConfig())
	require.NotNil(t, sig)
	assert.Equal(t, model.DirectionLong, sig.Direction)
	assert.Equal(t, after(1).Unix(), sig.Time)
	assert.Equal(t, 101.5, sig.Entry)
	assert.InDelta(t, 103.5, sig.Target1, 1e-9)
	assert.InDelta(t, 104.5, sig.Target2, 1e-9)
	assert.InDelta(t, 98.99, sig.Stop, 1e-9)
	assert.Less(t, sig.VWAP, sig.Entry)
}

func TestDetectBreakoutVWAPFilter(t *testing.T) {
	bars := append(session(),
		// wide bar with heavy volume lifts VWAP above the range
		minuteBar(after(0), 110, 100, 100.5, 10000),
		minuteBar(after(1), 101.6, 101.4, 101.5, 100),
		minuteBar(after(2), 98.2, 97.8, 98.0, 100),
	)
	rng := DetectOpeningRange("SPY", bars, 15)
	require.NotNil(t, rng)

	filtered := DetectBreakout("SPY", bars, rng, BreakoutConfig{VWAPFilter: true, TickBuffer: 0.05})
	require.NotNil(t, filtered)
	assert.Equal(t, model.DirectionShort, filtered.Direction)
	assert.Equal(t, 98.0, filtered.Entry)
	assert.InDelta(t, 96.0, filtered.Target1, 1e-9)
	assert.InDelta(t, 95.0, filtered.Target2, 1e-9)
	assert.InDelta(t, 101.05, filtered.Stop, 1e-9)

	unfiltered := DetectBreakout("SPY", bars, rng, BreakoutConfig{})
	require.NotNil(t, unfiltered)
	assert.Equal(t, model.DirectionLong, unfiltered.Direction)
}

func TestDetectBreakoutNone(t *testing.T) {
	bars := append(session(), minuteBar(after(0), 100.8, 99.2, 100.0, 100))
	rng := DetectOpeningRange("SPY", bars, 15)

	assert.Nil(t, DetectBreakout("SPY", bars, rng, DefaultBreakoutConfig()))
	assert.Nil(t, DetectBreakout("SPY", bars, nil, DefaultBreakoutConfig()))
}

func TestScreen(t *testing.T) {
	st := Screen(model.PremarketSnapshot{
		Symbol:              "AAA",
		PreMarketPrice:      105,
		PreMarketChange:     5,
		PreMarketVolume:     300_000,
		RegularMarketVolume: 1_000_000,
	}, DefaultScreenerConfig())

	assert.InDelta(t, 5.0, st.PreChangePct, 1e-9)
	assert.InDelta(t, 3.0, st.RVol, 1e-9)
	assert.True(t, st.HasCatalyst)
}

func TestFilterCandidates(t *testing.T) {
	cfg := DefaultScreenerConfig()
	snapshots := []model.PremarketSnapshot{
		{Symbol: "AAA", PreMarketPrice: 105, PreMarketChange: 5, PreMarketVolume: 300_000, RegularMarketVolume: 1_000_000},
		{Symbol: "BBB", PreMarketPrice: 50, PreMarketChange: -2, PreMarketVolume: 500_000, RegularMarketVolume: 1_000_000},
		{Symbol: "LOWRVOL", PreMarketPrice: 20, PreMarketChange: 2, PreMarketVolume: 100_000, RegularMarketVolume: 1_000_000},
		{Symbol: "FLAT", PreMarketPrice: 101, PreMarketChange: 1, PreMarketVolume: 900_000, RegularMarketVolume: 1_000_000},
		{Symbol: "NOVOL", PreMarketPrice: 30, PreMarketChange: 3, PreMarketVolume: 900_000},
	}

	got := FilterCandidates(snapshots, cfg)

	require.Len(t, got, 2)
	assert.Equal(t, "BBB", got[0].Symbol)
	assert.Equal(t, "AAA", got[1].Symbol)
	assert.False(t, got[0].HasCatalyst)
	for _, s := range got {
		assert.GreaterOrEqual(t, s.RVol, cfg.MinRVol)
	}
	assert.Empty(t, FilterCandidates(nil, cfg))
}
