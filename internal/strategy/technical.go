package strategy

import (
	"math"

	"StockScreener/internal/calculator"
	"StockScreener/internal/model"
)

// ErrNoPriceData is the soft error reported by AnalyzeTechnicals for an
// empty price series.
const ErrNoPriceData = "No price data found"

// subSignal is a technical sub-strategy verdict with its raw confidence.
type subSignal struct {
	signal     model.Signal
	confidence float64
	metrics    map[string]float64
}

func (s subSignal) report() model.StrategySignal {
	metrics := make(map[string]float64, len(s.metrics))
	for k, v := range s.metrics {
		metrics[k] = finite(v)
	}
	return model.StrategySignal{
		Signal:     s.signal,
		Confidence: percent(s.confidence),
		Metrics:    metrics,
	}
}

// AnalyzeTechnicals runs the trend, mean reversion, momentum and volatility
// strategies over chronologically ascending bars and combines them. An empty
// series yields a result carrying only the "No price data found" error.
func AnalyzeTechnicals(bars []model.PriceBar) *model.TechnicalResult {
	if len(bars) == 0 {
		return &model.TechnicalResult{Error: ErrNoPriceData}
	}
	f := model.NewPriceFrame(bars)

	trend := trendSignal(f)
	meanRev := meanReversionSignal(f)
	momentum := momentumSignal(f)
	volatility := volatilitySignal(f)

	signal, score := CombineSignals([]WeightedSignal{
		{Name: "trend", Signal: trend.signal, Weight: TechnicalWeights["trend"], Confidence: trend.confidence},
		{Name: "meanReversion", Signal: meanRev.signal, Weight: TechnicalWeights["meanReversion"], Confidence: meanRev.confidence},
		{Name: "momentum", Signal: momentum.signal, Weight: TechnicalWeights["momentum"], Confidence: momentum.confidence},
		{Name: "volatility", Signal: volatility.signal, Weight: TechnicalWeights["volatility"], Confidence: volatility.confidence},
	})

	return &model.TechnicalResult{
		Signal:     signal,
		Confidence: percent(score),
		StrategySignals: &model.StrategySignals{
			TrendFollowing: trend.report(),
			MeanReversion:  meanRev.report(),
			Momentum:       momentum.report(),
			Volatility:     volatility.report(),
		},
	}
}

// trendSignal compares EMA(8/21/55) alignment, weighted by ADX(14).
func trendSignal(f *model.PriceFrame) subSignal {
	ema8 := calculator.Last(calculator.EMA(f.Close, 8))
	ema21 := calculator.Last(calculator.EMA(f.Close, 21))
	ema55 := calculator.Last(calculator.EMA(f.Close, 55))
	adx := calculator.Last(calculator.ADX(f, 14).ADX)
	strength := adx / 100

	s := subSignal{signal: model.Neutral, confidence: 0.5}
	switch {
	case ema8 > ema21 && ema21 > ema55:
		s.signal, s.confidence = model.Bullish, strength
	case ema8 < ema21 && ema21 < ema55:
		s.signal, s.confidence = model.Bearish, strength
	}
	s.metrics = map[string]float64{
		"adx":           adx,
		"trendStrength": strength,
	}
	return s
}

// meanReversionSignal looks for prices stretched beyond the 50-day mean and
// outside the 20-day Bollinger Bands.
func meanReversionSignal(f *model.PriceFrame) subSignal {
	closePrice := calculator.Last(f.Close)
	mean50 := calculator.Last(calculator.RollingMean(f.Close, 50))
	std50 := calculator.Last(calculator.RollingStd(f.Close, 50))

	z := 0.0
	if std50 != 0 && !math.IsNaN(std50) {
		z = (closePrice - mean50) / std50
	}

	upper, lower := calculator.BollingerBands(f.Close, 20)
	lastUpper, lastLower := calculator.Last(upper), calculator.Last(lower)
	priceVsBB := 0.5
	if width := lastUpper - lastLower; width != 0 && !math.IsNaN(width) {
		priceVsBB = (closePrice - lastLower) / width
	}

	s := classifyMeanReversion(z, priceVsBB)
	s.metrics = map[string]float64{
		"zScore":    z,
		"priceVsBb": priceVsBB,
		"rsi14":     calculator.Last(calculator.RSI(f.Close, 14)),
		"rsi28":     calculator.Last(calculator.RSI(f.Close, 28)),
	}
	return s
}

// momentumSignal blends 1/3/6 month return sums and requires above-average
// volume to confirm.
func momentumSignal(f *model.PriceFrame) subSignal {
	returns := calculator.PctChange(f.Close)
	mom1m := calculator.Last(calculator.RollingSum(returns, 21))
	mom3m := calculator.Last(calculator.RollingSum(returns, 63))
	mom6m := calculator.Last(calculator.RollingSum(returns, 126))
	score := 0.4*mom1m + 0.3*mom3m + 0.3*mom6m

	volMean := calculator.Last(calculator.RollingMean(f.Volume, 21))
	if volMean == 0 || math.IsNaN(volMean) {
		volMean = 1
	}
	volumeMomentum := calculator.Last(f.Volume) / volMean
	confirmed := volumeMomentum > 1

	s := subSignal{signal: model.Neutral, confidence: 0.5}
	switch {
	case score > 0.05 && confirmed:
		s.signal, s.confidence = model.Bullish, math.Min(math.Abs(score)*5, 1)
	case score < -0.05 && confirmed:
		s.signal, s.confidence = model.Bearish, math.Min(math.Abs(score)*5, 1)
	}
	s.metrics = map[string]float64{
		"momentum1m":     mom1m,
		"momentum3m":     mom3m,
		"momentum6m":     mom6m,
		"volumeMomentum": volumeMomentum,
	}
	return s
}

// classifyMeanReversion is bullish when price sits two deviations below its
// mean in the lower Bollinger band, bearish in the mirror case.
func classifyMeanReversion(z, priceVsBB float64) subSignal {
	s := subSignal{signal: model.Neutral, confidence: 0.5}
	switch {
	case z < -2 && priceVsBB < 0.2:
		s.signal, s.confidence = model.Bullish, math.Min(math.Abs(z)/4, 1)
	case z > 2 && priceVsBB > 0.8:
		s.signal, s.confidence = model.Bearish, math.Min(math.Abs(z)/4, 1)
	}
	return s
}

// volatilitySignal compares annualised 21-day volatility with its 63-day
// regime. Low and falling volatility is bullish.
func volatilitySignal(f *model.PriceFrame) subSignal {
	returns := calculator.PctChange(f.Close)
	histVol := calculator.RollingStd(returns, 21)
	for i := range histVol {
		histVol[i] *= math.Sqrt(252)
	}
	vol := calculator.Last(histVol)

	// The running sums see the NaN warm-up of histVol, so regime and z-score
	// stay NaN and never trigger.
	volMean := calculator.Last(calculator.RollingMean(histVol, 63))
	volStd := calculator.Last(calculator.RollingStd(histVol, 63))
	regime, volZ := math.NaN(), math.NaN()
	if !math.IsNaN(volMean) && !math.IsNaN(volStd) {
		base := volMean
		if base == 0 {
			base = 1
		}
		regime = vol / base
		volZ = 0
		if volStd != 0 {
			volZ = (vol - volMean) / volStd
		}
	}

	atrRatio := 0.0
	if closePrice := calculator.Last(f.Close); closePrice != 0 {
		atrRatio = calculator.Last(calculator.ATR(f, 14)) / closePrice
	}

	s := classifyVolatility(regime, volZ)
	s.metrics = map[string]float64{
		"historicalVolatility": vol,
		"volatilityRegime":     regime,
		"volatilityZScore":     volZ,
		"atrRatio":             atrRatio,
	}
	return s
}

// classifyVolatility is bullish in a calm, contracting regime and bearish
// in an elevated, expanding one. NaN inputs are never decisive.
func classifyVolatility(regime, volZ float64) subSignal {
	s := subSignal{signal: model.Neutral, confidence: 0.5}
	switch {
	case regime < 0.8 && volZ < -1:
		s.signal, s.confidence = model.Bullish, math.Min(math.Abs(volZ)/3, 1)
	case regime > 1.2 && volZ > 1:
		s.signal, s.confidence = model.Bearish, math.Min(math.Abs(volZ)/3, 1)
	}
	return s
}
