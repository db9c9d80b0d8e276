package config

import (
	"fmt"
	"os"
)

// ToolsConfig configures the built-in tool executors. Live data access
// is opt-in: a tool runs against its external provider only when the
// matching credential is present, and falls back to a deterministic
// mock otherwise.
type ToolsConfig struct {
	MarketData MarketDataConfig `yaml:"market_data"`
	News       NewsConfig       `yaml:"news"`

	// Timeout is the per-tool-call deadline in seconds.
	Timeout int `yaml:"timeout"`
}

// MarketDataConfig configures the market-data provider proxy used by
// get_market_data and get_financial_statements.
type MarketDataConfig struct {
	APIKey string `yaml:"api_key"`
	Host   string `yaml:"host"`
}

// NewsConfig configures the company-news provider used by get_company_news.
type NewsConfig struct {
	APIKey string `yaml:"api_key"`
	Host   string `yaml:"host"`
}

func (c *ToolsConfig) SetDefaults() {
	if c.MarketData.APIKey == "" {
		c.MarketData.APIKey = os.Getenv("FINTEL_MARKET_DATA_API_KEY")
	}
	if c.MarketData.Host == "" {
		c.MarketData.Host = "https://www.alphavantage.co"
	}
	if c.News.APIKey == "" {
		c.News.APIKey = os.Getenv("FINTEL_NEWS_API_KEY")
	}
	if c.News.Host == "" {
		c.News.Host = "https://newsapi.org"
	}
	if c.Timeout == 0 {
		c.Timeout = 30
	}
}

func (c *ToolsConfig) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("tools.timeout cannot be negative")
	}
	return nil
}
