package model

import "time"

// PriceBar represents a single daily candlestick.
type PriceBar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceFrame holds price bars as parallel series of equal length,
// chronologically ascending.
type PriceFrame struct {
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

// NewPriceFrame splits bars into parallel series.
func NewPriceFrame(bars []PriceBar) *PriceFrame {
	f := &PriceFrame{
		Open:   make([]float64, len(bars)),
		High:   make([]float64, len(bars)),
		Low:    make([]float64, len(bars)),
		Close:  make([]float64, len(bars)),
		Volume: make([]float64, len(bars)),
	}
	for i, b := range bars {
		f.Open[i] = b.Open
		f.High[i] = b.High
		f.Low[i] = b.Low
		f.Close[i] = b.Close
		f.Volume[i] = b.Volume
	}
	return f
}

// Len returns the number of bars in the frame.
func (f *PriceFrame) Len() int { return len(f.Close) }
