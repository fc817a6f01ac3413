package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the trading core service.
type Config struct {
	Port     int
	LogLevel string

	MaxOrders           int
	MaxSymbols          int
	EnableTransactions  bool
	MaxTransactions     int
	QuoteSize           int
	QuoteBufferCapacity int
	MarketDataBuffers   int
	AutoStart           bool

	MonitorInterval time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
//
// Sizes may be zero; the trading manager decides whether zero is usable.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	cfg := &Config{Port: port, LogLevel: logLevel}

	sizes := []struct {
		key string
		def int
		dst *int
	}{
		{"MAX_ORDERS", 10000, &cfg.MaxOrders},
		{"MAX_SYMBOLS", 1000, &cfg.MaxSymbols},
		{"MAX_TRANSACTIONS", 0, &cfg.MaxTransactions},
		{"QUOTE_SIZE", 64, &cfg.QuoteSize},
		{"QUOTE_BUFFER_CAPACITY", 16, &cfg.QuoteBufferCapacity},
		{"MARKET_DATA_BUFFERS", 256, &cfg.MarketDataBuffers},
	}
	for _, s := range sizes {
		v, err := getSize(s.key, s.def)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", s.key, err)
		}
		*s.dst = v
	}

	cfg.EnableTransactions, err = getBool("ENABLE_TRANSACTIONS", true)
	if err != nil {
		return nil, fmt.Errorf("invalid ENABLE_TRANSACTIONS: %w", err)
	}

	cfg.AutoStart, err = getBool("AUTO_START", false)
	if err != nil {
		return nil, fmt.Errorf("invalid AUTO_START: %w", err)
	}

	cfg.MonitorInterval, err = getDuration("MONITOR_INTERVAL", 1*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid MONITOR_INTERVAL: %w", err)
	}
	if cfg.MonitorInterval <= 0 {
		return nil, fmt.Errorf("invalid MONITOR_INTERVAL: %v, must be positive", cfg.MonitorInterval)
	}

	cfg.ReadTimeout, err = getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	cfg.WriteTimeout, err = getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	cfg.IdleTimeout, err = getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getSize(key string, defaultVal int) (int, error) {
	n, err := getInt(key, defaultVal)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%d, must not be negative", n)
	}
	return n, nil
}

func getBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseBool(v)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
