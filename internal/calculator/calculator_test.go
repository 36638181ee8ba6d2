package calculator

import (
	"math"
	"testing"

	"QuantSentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bars(closes ...float64) []model.Candle {
	out := make([]model.Candle, len(closes))
	for i, c := range closes {
		out[i] = model.Candle{Time: int64(i) * 60, Open: c, High: c + 1, Low: c - 1, Close: c, Volume: float64(100 * (i + 1))}
	}
	return out
}

func TestSMAAt(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}
	tests := []struct {
		i, period int
		want      float64
		wantErr   bool
	}{
		{4, 5, 3, false},
		{4, 2, 4.5, false},
		{2, 3, 2, false},
		{1, 3, 0, true},
		{5, 1, 0, true},
		{4, 0, 0, true},
	}
	for _, tt := range tests {
		got, err := SMAAt(prices, tt.i, tt.period)
		if tt.wantErr {
			assert.Error(t, err, "i=%d period=%d", tt.i, tt.period)
			continue
		}
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-12)
	}

	sma, err := CalculateSMA(prices, 5)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, sma, 1e-12)
}

func TestAverageVolume_ExcludesCurrent(t *testing.T) {
	b := bars(1, 1, 1, 1) // volumes 100,200,300,400
	avg, err := AverageVolume(b, 3, 3)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, avg, 1e-12)

	_, err = AverageVolume(b, 2, 3)
	assert.Error(t, err)
}

func TestReturnOver(t *testing.T) {
	closes := []float64{100, 110, 121}
	r, err := ReturnOver(closes, 2, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.21, r, 1e-12)

	_, err = ReturnOver(closes, 1, 2)
	assert.Error(t, err)

	_, err = ReturnOver([]float64{0, 1}, 1, 1)
	assert.Error(t, err, "zero base price must not divide")
}

func TestIndexAtOrAfter(t *testing.T) {
	b := bars(1, 2, 3)
	assert.Equal(t, 0, IndexAtOrAfter(b, -5))
	assert.Equal(t, 1, IndexAtOrAfter(b, 30))
	assert.Equal(t, 2, IndexAtOrAfter(b, 120))
	assert.Equal(t, -1, IndexAtOrAfter(b, 121))
}

func TestHighLow(t *testing.T) {
	h, l, err := HighLow(bars(5, 9, 3))
	require.NoError(t, err)
	assert.Equal(t, 10.0, h)
	assert.Equal(t, 2.0, l)

	_, _, err = HighLow(nil)
	assert.Error(t, err)
}

func TestCalculateRSI(t *testing.T) {
	up := make([]float64, 20)
	for i := range up {
		up[i] = float64(100 + i)
	}
	rsi, err := CalculateRSI(bars(up...), 14)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rsi, "monotonic rise has no losses")

	rsi, err = CalculateRSI(bars(1, 2, 3), 14)
	require.NoError(t, err)
	assert.Equal(t, 50.0, rsi, "insufficient data defaults to neutral")

	series := RSISeries(up, 14)
	assert.True(t, math.IsNaN(series[13]))
	assert.False(t, math.IsNaN(series[14]))
}

func TestBollingerSeries_ConstantInput(t *testing.T) {
	closes := []float64{10, 10, 10, 10, 10}
	mid, upper, lower := BollingerSeries(closes, 3, 2)
	assert.True(t, math.IsNaN(mid[1]))
	for i := 2; i < len(closes); i++ {
		assert.InDelta(t, 10.0, mid[i], 1e-12)
		assert.InDelta(t, 10.0, upper[i], 1e-12)
		assert.InDelta(t, 10.0, lower[i], 1e-12)
	}
}

func TestMACDSeries_Warmup(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + math.Sin(float64(i)/5)*5
	}
	line, sig, hist := MACDSeries(closes, 12, 26, 9)
	assert.True(t, math.IsNaN(line[24]))
	assert.False(t, math.IsNaN(line[25]))
	assert.True(t, math.IsNaN(sig[32]))
	assert.False(t, math.IsNaN(sig[33]))
	assert.InDelta(t, line[40]-sig[40], hist[40], 1e-12)
}
