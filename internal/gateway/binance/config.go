package binance

import (
	"strings"
	"time"
)

const (
	DefaultRESTBaseURL = "https://api.binance.com"
	TestnetRESTBaseURL = "https://testnet.binance.vision"
	defaultHTTPTimeout = 15 * time.Second
)

// Config 描述现货网关的连接参数。
type Config struct {
	RESTBaseURL string
	// Testnet selects the spot testnet when RESTBaseURL is empty.
	Testnet     bool
	HTTPTimeout time.Duration

	APIKey    string
	SecretKey string

	ProxyEnabled bool
	RESTProxyURL string
}

func (c Config) withDefaults() Config {
	c.RESTBaseURL = strings.TrimRight(strings.TrimSpace(c.RESTBaseURL), "/")
	if c.RESTBaseURL == "" {
		c.RESTBaseURL = DefaultRESTBaseURL
		if c.Testnet {
			c.RESTBaseURL = TestnetRESTBaseURL
		}
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = defaultHTTPTimeout
	}
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.SecretKey = strings.TrimSpace(c.SecretKey)
	c.RESTProxyURL = strings.TrimSpace(c.RESTProxyURL)
	return c
}
