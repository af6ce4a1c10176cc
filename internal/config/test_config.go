package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.API.BaseURL = "http://127.0.0.1"
	cfg.API.HTTPTimeout = 5 * time.Second
	cfg.API.UserAgent = "kn-test/1.0"
	cfg.Database.Path = ":memory:"
	cfg.Database.SearchIndex = ""
	cfg.UI.Debounce = 0
	cfg.Submit.PollInterval = 10 * time.Millisecond
	cfg.Submit.Timeout = 2 * time.Second
	return cfg
}
