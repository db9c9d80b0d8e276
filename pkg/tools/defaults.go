package tools

import (
	"github.com/Aspect5/fintel-v2-sub000/pkg/config"
)

// DefaultCatalog returns the built-in financial tool catalog. Live vs
// mock execution is decided per tool by whether its provider credential
// is present in cfg.
func DefaultCatalog(cfg config.ToolsConfig) *Catalog {
	catalog, err := NewCatalog(
		Definition{
			Name:        "get_market_data",
			Description: "Fetch the current quote for a ticker: price, daily change, volume and 52-week range.",
			Parameters: map[string]Parameter{
				"ticker": {Type: "string", Required: true, Description: "Stock ticker symbol, e.g. AAPL"},
			},
			Executor: NewMarketDataExecutor(cfg.MarketData),
		},
		Definition{
			Name:        "get_financial_statements",
			Description: "Fetch the latest annual financial statement snapshot for a ticker: revenue, margins, cash flow, debt.",
			Parameters: map[string]Parameter{
				"ticker": {Type: "string", Required: true, Description: "Stock ticker symbol, e.g. AAPL"},
			},
			Executor: NewFinancialsExecutor(cfg.MarketData),
		},
		Definition{
			Name:        "get_company_news",
			Description: "Fetch recent news headlines for a ticker.",
			Parameters: map[string]Parameter{
				"ticker": {Type: "string", Required: true, Description: "Stock ticker symbol, e.g. AAPL"},
				"limit":  {Type: "integer", Required: false, Description: "Maximum number of headlines (default 5)"},
			},
			Executor: NewNewsExecutor(cfg.News),
		},
		Definition{
			Name:        "compute_technical_indicators",
			Description: "Compute technical indicators (SMA, EMA, RSI, volatility, trend) for a ticker over a lookback window. Values are derived, not fetched.",
			Parameters: map[string]Parameter{
				"ticker": {Type: "string", Required: true, Description: "Stock ticker symbol, e.g. AAPL"},
				"window": {Type: "integer", Required: false, Description: "Lookback window in trading days (default 14)"},
			},
			Executor: NewTechnicalsExecutor(),
		},
		Definition{
			Name:        "assess_portfolio_risk",
			Description: "Estimate portfolio-level risk (volatility, drawdown, concentration) for a set of tickers using an internal model.",
			Parameters: map[string]Parameter{
				"tickers": {Type: "array", Required: true, Description: "List of ticker symbols"},
			},
			Executor: NewRiskExecutor(),
		},
	)
	if err != nil {
		// Definitions above are static; a failure here is a programming error.
		panic(err)
	}
	return catalog
}
