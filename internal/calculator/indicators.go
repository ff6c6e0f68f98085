package calculator

import (
	"math"

	"StockScreener/internal/model"
)

// DirectionalIndex holds the ADX series and its directional indicators.
type DirectionalIndex struct {
	ADX     []float64
	PlusDI  []float64
	MinusDI []float64
}

// TrueRange returns max(high-low, |high-prevClose|, |low-prevClose|) per
// bar. The first bar has no previous close and is 0.
func TrueRange(f *model.PriceFrame) []float64 {
	tr := make([]float64, f.Len())
	for i := 1; i < f.Len(); i++ {
		prevClose := f.Close[i-1]
		tr[i] = math.Max(f.High[i]-f.Low[i], math.Max(
			math.Abs(f.High[i]-prevClose),
			math.Abs(f.Low[i]-prevClose),
		))
	}
	return tr
}

// ADX computes the average directional index with EMA smoothing of the true
// range and directional movement.
func ADX(f *model.PriceFrame, period int) DirectionalIndex {
	n := f.Len()
	tr := TrueRange(f)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		up := f.High[i] - f.High[i-1]
		down := f.Low[i-1] - f.Low[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	trEMA := EMA(tr, period)
	plusEMA := EMA(plusDM, period)
	minusEMA := EMA(minusDM, period)

	di := DirectionalIndex{
		PlusDI:  make([]float64, n),
		MinusDI: make([]float64, n),
	}
	dx := make([]float64, n)
	for i := 0; i < n; i++ {
		if trEMA[i] == 0 {
			continue
		}
		pdi := plusEMA[i] / trEMA[i] * 100
		mdi := minusEMA[i] / trEMA[i] * 100
		di.PlusDI[i] = pdi
		di.MinusDI[i] = mdi
		if sum := pdi + mdi; sum != 0 {
			dx[i] = math.Abs(pdi-mdi) / sum * 100
		}
	}
	di.ADX = EMA(dx, period)
	return di
}

// ATR is the simple rolling mean of the true range.
func ATR(f *model.PriceFrame, period int) []float64 {
	return RollingMean(TrueRange(f), period)
}

// BollingerBands returns sma ± 2 standard deviations. Positions without a
// full window are NaN in both bands.
func BollingerBands(values []float64, window int) (upper, lower []float64) {
	sma := RollingMean(values, window)
	std := RollingStd(values, window)
	upper = make([]float64, len(values))
	lower = make([]float64, len(values))
	for i := range values {
		if math.IsNaN(sma[i]) || math.IsNaN(std[i]) {
			upper[i] = math.NaN()
			lower[i] = math.NaN()
			continue
		}
		upper[i] = sma[i] + 2*std[i]
		lower[i] = sma[i] - 2*std[i]
	}
	return upper, lower
}

// RSI computes the relative strength index over simple averages of the last
// period gains and losses. Position 0 is NaN.
func RSI(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	out[0] = math.NaN()
	gains := make([]float64, 0, period+1)
	losses := make([]float64, 0, period+1)
	for i := 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gains = append(gains, math.Max(change, 0))
		losses = append(losses, math.Max(-change, 0))
		if len(gains) > period {
			gains = gains[1:]
			losses = losses[1:]
		}
		avgGain := Mean(gains)
		avgLoss := Mean(losses)
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		out[i] = 100 - 100/(1+avgGain/avgLoss)
	}
	return out
}
