package domain

import "time"

type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// PriceSeries holds bars for one symbol, most recent last
type PriceSeries struct {
	Symbol string
	Bars   []Bar
}

func (p PriceSeries) Len() int {
	return len(p.Bars)
}

func (p PriceSeries) Closes() []float64 {
	out := make([]float64, len(p.Bars))
	for i, b := range p.Bars {
		out[i] = b.Close
	}
	return out
}

func (p PriceSeries) Volumes() []float64 {
	out := make([]float64, len(p.Bars))
	for i, b := range p.Bars {
		out[i] = b.Volume
	}
	return out
}

// LastChangePercent is the close to close change of the most recent session
func (p PriceSeries) LastChangePercent() (float64, bool) {
	n := len(p.Bars)
	if n < 2 {
		return 0, false
	}
	prev := p.Bars[n-2].Close
	if prev <= 0 {
		return 0, false
	}
	return 100 * (p.Bars[n-1].Close - prev) / prev, true
}

type TradingDay struct {
	Date  time.Time
	Open  string
	Close string
}
