package l2_service

import (
	"fmt"

	"dailytrader/internal/domain"

	"github.com/montanaflynn/stats"
)

type vote int

const (
	voteNone vote = iota
	voteBuy
	voteSell
)

// indicator is one independent check. It is skipped when the series is
// shorter than minBars
type indicator struct {
	name     string
	minBars  int
	evaluate func(series domain.PriceSeries) (vote, string)
}

const (
	smaShortWindow = 20
	smaLongWindow  = 50
	rsiWindow      = 14
	rsiOversold    = 30
	rsiOverbought  = 70

	volumeWindow        = 20
	volumeSurgeRatio    = 1.5
	momentumSessions    = 5
	momentumThresholdPc = 3
)

var indicators = []indicator{
	{
		name:     "sma_crossover",
		minBars:  smaLongWindow,
		evaluate: smaCrossover,
	},
	{
		name:     "rsi",
		minBars:  rsiWindow + 1,
		evaluate: rsiExtremes,
	},
	{
		name:     "volume_surge",
		minBars:  volumeWindow + 1,
		evaluate: volumeSurge,
	},
	{
		name:     "momentum",
		minBars:  momentumSessions + 1,
		evaluate: momentum,
	},
}

func mean(data []float64) float64 {
	m, err := stats.Mean(data)
	if err != nil {
		return 0
	}
	return m
}

// sma of the last n values, caller guarantees len(values) >= n
func sma(values []float64, n int) float64 {
	return mean(values[len(values)-n:])
}

func smaCrossover(series domain.PriceSeries) (vote, string) {
	closes := series.Closes()
	short := sma(closes, smaShortWindow)
	long := sma(closes, smaLongWindow)
	switch {
	case short > long:
		return voteBuy, fmt.Sprintf("SMA%d %.2f above SMA%d %.2f", smaShortWindow, short, smaLongWindow, long)
	case short < long:
		return voteSell, fmt.Sprintf("SMA%d %.2f below SMA%d %.2f", smaShortWindow, short, smaLongWindow, long)
	}
	return voteNone, ""
}

// rsi over the last n close to close changes using simple averages
func rsi(closes []float64, n int) float64 {
	gains := make([]float64, 0, n)
	losses := make([]float64, 0, n)
	for i := len(closes) - n; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}
	avgGain, avgLoss := mean(gains), mean(losses)
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

func rsiExtremes(series domain.PriceSeries) (vote, string) {
	value := rsi(series.Closes(), rsiWindow)
	switch {
	case value < rsiOversold:
		return voteBuy, fmt.Sprintf("RSI %.1f oversold", value)
	case value > rsiOverbought:
		return voteSell, fmt.Sprintf("RSI %.1f overbought", value)
	}
	return voteNone, ""
}

func volumeSurge(series domain.PriceSeries) (vote, string) {
	volumes := series.Volumes()
	n := len(volumes)
	avg := mean(volumes[n-1-volumeWindow : n-1])
	if avg <= 0 {
		return voteNone, ""
	}
	ratio := volumes[n-1] / avg
	if ratio < volumeSurgeRatio {
		return voteNone, ""
	}

	change, ok := series.LastChangePercent()
	switch {
	case !ok:
		return voteNone, ""
	case change > 0:
		return voteBuy, fmt.Sprintf("high volume breakout (%.1fx avg, %+.2f%%)", ratio, change)
	case change < 0:
		return voteSell, fmt.Sprintf("high volume selling (%.1fx avg, %+.2f%%)", ratio, change)
	}
	return voteNone, ""
}

func momentum(series domain.PriceSeries) (vote, string) {
	closes := series.Closes()
	n := len(closes)
	start := closes[n-1-momentumSessions]
	if start <= 0 {
		return voteNone, ""
	}
	change := 100 * (closes[n-1] - start) / start
	switch {
	case change >= momentumThresholdPc:
		return voteBuy, fmt.Sprintf("%d session momentum %+.2f%%", momentumSessions, change)
	case change <= -momentumThresholdPc:
		return voteSell, fmt.Sprintf("%d session momentum %+.2f%%", momentumSessions, change)
	}
	return voteNone, ""
}

// Classify runs every indicator the series is long enough for and turns
// the votes into a signal for symbol. Ties, including no votes at all, are
// HOLD. series.Symbol is not consulted
func Classify(symbol string, series domain.PriceSeries) domain.Signal {
	buyScore, sellScore := 0, 0
	reasons := []string{}
	for _, ind := range indicators {
		if series.Len() < ind.minBars {
			continue
		}
		v, reason := ind.evaluate(series)
		switch v {
		case voteBuy:
			buyScore++
			reasons = append(reasons, "BUY: "+reason)
		case voteSell:
			sellScore++
			reasons = append(reasons, "SELL: "+reason)
		}
	}
	return domain.NewSignal(symbol, buyScore, sellScore, reasons)
}
