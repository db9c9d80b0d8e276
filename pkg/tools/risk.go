package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// RiskReport is the output payload of assess_portfolio_risk. It comes
// from an internal heuristic model, not any external provider.
type RiskReport struct {
	Tickers           []string `json:"tickers"`
	PortfolioVol      float64  `json:"portfolio_volatility"`
	MaxDrawdownEst    float64  `json:"max_drawdown_estimate"`
	ConcentrationRisk string   `json:"concentration_risk"`
	RiskScore         float64  `json:"risk_score"`
}

type riskArgs struct {
	Tickers []string `mapstructure:"tickers"`
}

// RiskExecutor backs the assess_portfolio_risk tool.
type RiskExecutor struct{}

func NewRiskExecutor() *RiskExecutor {
	return &RiskExecutor{}
}

func (e *RiskExecutor) Execute(ctx context.Context, params map[string]interface{}) (*Result, error) {
	var args riskArgs
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
	if len(args.Tickers) == 0 {
		return nil, fmt.Errorf("tickers list is empty")
	}

	tickers := make([]string, 0, len(args.Tickers))
	for _, t := range args.Tickers {
		tickers = append(tickers, strings.ToUpper(t))
	}
	sort.Strings(tickers)

	report := assessRisk(tickers)
	return &Result{
		Output: report,
		Summary: fmt.Sprintf("portfolio of %d: vol %.1f%%, est. max drawdown %.1f%%, %s concentration",
			len(tickers), report.PortfolioVol*100, report.MaxDrawdownEst*100, report.ConcentrationRisk),
		Provenance: ProvenanceInternal,
	}, nil
}

func assessRisk(tickers []string) *RiskReport {
	var volSum float64
	for _, t := range tickers {
		series := priceSeries(t, 60)
		tech := computeTechnicals(t, 30, series)
		volSum += tech.Volatility
	}
	avgVol := volSum / float64(len(tickers))

	// Naive diversification credit: more names, less portfolio vol.
	portfolioVol := avgVol / (1.0 + float64(len(tickers)-1)*0.15)

	concentration := "high"
	switch {
	case len(tickers) >= 10:
		concentration = "low"
	case len(tickers) >= 4:
		concentration = "moderate"
	}

	score := portfolioVol * 10
	if score > 1 {
		score = 1
	}

	return &RiskReport{
		Tickers:           tickers,
		PortfolioVol:      portfolioVol,
		MaxDrawdownEst:    portfolioVol * 2.5,
		ConcentrationRisk: concentration,
		RiskScore:         score,
	}
}
