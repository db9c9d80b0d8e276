package tools

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Technicals is the output payload of compute_technical_indicators. All
// values are derived locally from a reconstructed price series, never
// fetched, which is why this tool is always tagged synthetic.
type Technicals struct {
	Ticker     string  `json:"ticker"`
	Window     int     `json:"window"`
	SMA        float64 `json:"sma"`
	EMA        float64 `json:"ema"`
	RSI        float64 `json:"rsi"`
	Volatility float64 `json:"volatility"`
	Trend      string  `json:"trend"`
}

type technicalsArgs struct {
	Ticker string `mapstructure:"ticker"`
	Window int    `mapstructure:"window"`
}

// TechnicalsExecutor backs the compute_technical_indicators tool.
type TechnicalsExecutor struct{}

func NewTechnicalsExecutor() *TechnicalsExecutor {
	return &TechnicalsExecutor{}
}

func (e *TechnicalsExecutor) Execute(ctx context.Context, params map[string]interface{}) (*Result, error) {
	var args technicalsArgs
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &args,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	ticker := strings.ToUpper(args.Ticker)
	window := args.Window
	if window <= 1 || window > 200 {
		window = 14
	}

	series := priceSeries(ticker, window*2)
	tech := computeTechnicals(ticker, window, series)

	return &Result{
		Output: tech,
		Summary: fmt.Sprintf("%s %d-day: SMA %.2f, RSI %.1f, %s trend",
			ticker, window, tech.SMA, tech.RSI, tech.Trend),
		Provenance: ProvenanceSynthetic,
	}, nil
}

// priceSeries reconstructs a deterministic pseudo price history for the
// ticker. The walk is seeded by the symbol so repeated runs agree.
func priceSeries(ticker string, length int) []float64 {
	seed := tickerSeed(ticker)
	price := 20.0 + float64(seed%48000)/100.0

	series := make([]float64, length)
	state := seed
	for i := 0; i < length; i++ {
		// xorshift step
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		step := float64(int64(state%200)-100) / 100.0
		price = math.Max(1.0, price*(1+step/100.0))
		series[i] = price
	}
	return series
}

func computeTechnicals(ticker string, window int, series []float64) *Technicals {
	recent := series[len(series)-window:]

	var sum float64
	for _, p := range recent {
		sum += p
	}
	sma := sum / float64(window)

	k := 2.0 / float64(window+1)
	ema := recent[0]
	for _, p := range recent[1:] {
		ema = p*k + ema*(1-k)
	}

	var gains, losses float64
	for i := 1; i < len(recent); i++ {
		delta := recent[i] - recent[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	rsi := 100.0
	if losses > 0 {
		rs := gains / losses
		rsi = 100.0 - 100.0/(1.0+rs)
	}

	var variance float64
	for _, p := range recent {
		variance += (p - sma) * (p - sma)
	}
	volatility := math.Sqrt(variance/float64(window)) / sma

	trend := "sideways"
	last := recent[len(recent)-1]
	switch {
	case last > sma*1.02:
		trend = "up"
	case last < sma*0.98:
		trend = "down"
	}

	return &Technicals{
		Ticker:     ticker,
		Window:     window,
		SMA:        sma,
		EMA:        ema,
		RSI:        rsi,
		Volatility: volatility,
		Trend:      trend,
	}
}
