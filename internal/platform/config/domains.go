package config

import "time"

// TelegramConfig holds Bot API polling and sending settings.
type TelegramConfig struct {
	Token          string
	APIEndpoint    string
	PollTimeout    time.Duration
	PollHTTP       time.Duration
	SendTimeout    time.Duration
	PollErrorPause time.Duration
	PersistMode    string
}

// CursorConfig holds delivery cursor storage settings.
type CursorConfig struct {
	Backend     string
	OffsetFile  string
	Stream      string
	PostgresDSN string
}

// LLMConfig holds language model settings.
type LLMConfig struct {
	APIKey           string
	BaseURL          string
	Model            string
	Timeout          time.Duration
	RateLimitRPS     float64
	CircuitThreshold int
	CircuitTimeout   time.Duration
}

// NotionConfig holds Notion API settings.
type NotionConfig struct {
	APIKey      string
	DatabaseID  string
	BaseURL     string
	Version     string
	Timeout     time.Duration
	RPS         float64
	SourceLabel string
}

// TelegramCfg returns the Telegram configuration.
func (c *Config) TelegramCfg() TelegramConfig {
	return TelegramConfig{
		Token:          c.BotToken,
		APIEndpoint:    c.TelegramAPIEndpoint,
		PollTimeout:    c.PollTimeout,
		PollHTTP:       c.PollHTTPTimeout,
		SendTimeout:    c.SendTimeout,
		PollErrorPause: c.PollErrorPause,
		PersistMode:    c.CursorPersistMode,
	}
}

// CursorCfg returns the cursor store configuration.
func (c *Config) CursorCfg() CursorConfig {
	return CursorConfig{
		Backend:     c.CursorBackend,
		OffsetFile:  c.OffsetFile,
		Stream:      c.CursorStream,
		PostgresDSN: c.PostgresDSN,
	}
}

// LLMCfg returns the language model configuration.
func (c *Config) LLMCfg() LLMConfig {
	return LLMConfig{
		APIKey:           c.LLMAPIKey,
		BaseURL:          c.LLMBaseURL,
		Model:            c.LLMModel,
		Timeout:          c.LLMTimeout,
		RateLimitRPS:     c.LLMRateLimitRPS,
		CircuitThreshold: c.LLMCircuitThreshold,
		CircuitTimeout:   c.LLMCircuitTimeout,
	}
}

// NotionCfg returns the Notion configuration.
func (c *Config) NotionCfg() NotionConfig {
	return NotionConfig{
		APIKey:      c.NotionAPIKey,
		DatabaseID:  c.NotionDatabaseID,
		BaseURL:     c.NotionBaseURL,
		Version:     c.NotionVersion,
		Timeout:     c.NotionTimeout,
		RPS:         c.NotionRPS,
		SourceLabel: c.SourceLabel,
	}
}
