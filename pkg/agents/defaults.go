package agents

// DefaultCatalog returns the built-in analyst roster. Tool names refer to
// the built-in tool catalog in pkg/tools.
func DefaultCatalog() *Catalog {
	catalog, err := NewCatalog(
		Definition{
			Name:        "market_analyst",
			Description: "Analyzes current market data: price action, volume, valuation multiples and momentum for specific tickers.",
			Instructions: "You are a market analyst. Ground every claim in the tool data you collected. " +
				"Lead with the current picture (price, trend, volume), then what it implies. " +
				"Flag any figure that came from a mocked or derived source.",
			Tools: []string{"get_market_data", "compute_technical_indicators"},
		},
		Definition{
			Name:        "risk_assessor",
			Description: "Evaluates downside risk: volatility, drawdown, concentration and portfolio-level exposure.",
			Instructions: "You are a risk assessor. Quantify risk wherever the tool data allows " +
				"(volatility, beta, drawdown) and state the key uncertainties explicitly. " +
				"Be conservative: when data quality is degraded, say so and widen your ranges.",
			Tools: []string{"get_market_data", "assess_portfolio_risk"},
		},
		Definition{
			Name:        "fundamentals_analyst",
			Description: "Reads financial statements: revenue, margins, cash flow, balance-sheet strength and valuation.",
			Instructions: "You are a fundamentals analyst. Work from the reported statements, compute the " +
				"ratios that matter for the question asked, and separate facts from estimates.",
			Tools: []string{"get_financial_statements", "get_market_data"},
		},
		Definition{
			Name:        "news_analyst",
			Description: "Surveys recent company news and sentiment relevant to an investment question.",
			Instructions: "You are a news analyst. Summarize the material developments, date each item, " +
				"and weigh how likely each is to move the stock. Ignore noise.",
			Tools: []string{"get_company_news", "get_market_data"},
		},
		Definition{
			Name:        "quant_strategist",
			Description: "Runs quantitative screens: technical indicators, cross-sectional comparisons and derived signals.",
			Instructions: "You are a quantitative strategist. Describe the signals your indicators produce, " +
				"their lookback windows, and their historical reliability caveats. Derived numbers must be " +
				"labeled as derived.",
			Tools: []string{"compute_technical_indicators", "get_market_data", "assess_portfolio_risk"},
		},
	)
	if err != nil {
		// Definitions above are static; a failure here is a programming error.
		panic(err)
	}
	return catalog
}
