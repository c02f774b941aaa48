package speech

import (
	"fmt"
	"time"
)

// Config contains all speech and translation configuration options.
type Config struct {
	// Language settings
	SourceLang string `yaml:"source_lang" env:"LB_SOURCE_LANG" envDefault:"en"`
	TargetLang string `yaml:"target_lang" env:"LB_TARGET_LANG" envDefault:"fa"`

	// Playback settings
	Rate        float64       `yaml:"rate" env:"LB_RATE" envDefault:"1.0"`
	Voice       string        `yaml:"voice" env:"LB_VOICE"`
	SentenceGap time.Duration `yaml:"sentence_gap" env:"LB_SENTENCE_GAP" envDefault:"400ms"`

	// Engine selection: azure or mock
	Engine string `yaml:"engine" env:"LB_ENGINE" envDefault:"azure"`

	Azure        AzureConfig        `yaml:"azure"`
	Translate    TranslateConfig    `yaml:"translate"`
	Conversation ConversationConfig `yaml:"conversation"`
	Audio        AudioConfig        `yaml:"audio"`
}

// AzureConfig contains the speech service credentials and endpoints.
type AzureConfig struct {
	Region      string        `yaml:"region" env:"LB_AZURE_REGION" envDefault:"eastus"`
	Key         string        `yaml:"key" env:"LB_AZURE_KEY"`
	Endpoint    string        `yaml:"endpoint" env:"LB_AZURE_ENDPOINT"`
	WSEndpoint  string        `yaml:"ws_endpoint" env:"LB_AZURE_WS_ENDPOINT"`
	HTTPTimeout time.Duration `yaml:"http_timeout" env:"LB_AZURE_HTTP_TIMEOUT" envDefault:"30s"`
}

// TranslateConfig contains the translation backend settings.
type TranslateConfig struct {
	Endpoint          string  `yaml:"endpoint" env:"LB_TRANSLATE_ENDPOINT"`
	Key               string  `yaml:"key" env:"LB_TRANSLATE_KEY"`
	CacheSize         int     `yaml:"cache_size" env:"LB_TRANSLATE_CACHE_SIZE" envDefault:"100"`
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"LB_TRANSLATE_RPS" envDefault:"10"`
}

// AudioConfig contains local audio output settings.
type AudioConfig struct {
	SampleRate int `yaml:"sample_rate" env:"LB_AUDIO_SAMPLE_RATE" envDefault:"16000"`
	Channels   int `yaml:"channels" env:"LB_AUDIO_CHANNELS" envDefault:"1"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SourceLang:  "en",
		TargetLang:  "fa",
		Rate:        1.0,
		SentenceGap: 400 * time.Millisecond,
		Engine:      "azure",
		Azure: AzureConfig{
			Region:      "eastus",
			HTTPTimeout: 30 * time.Second,
		},
		Translate: TranslateConfig{
			CacheSize:         100,
			RequestsPerSecond: 10,
		},
		Conversation: DefaultConversationConfig(),
		Audio: AudioConfig{
			SampleRate: 16000,
			Channels:   1,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.Rate < 0.5 || c.Rate > 3.0 {
		return fmt.Errorf("rate must be between 0.5 and 3.0, got %.2f", c.Rate)
	}
	if c.SentenceGap < 0 || c.SentenceGap > 5*time.Second {
		return fmt.Errorf("sentence_gap must be between 0 and 5s, got %s", c.SentenceGap)
	}
	if c.Engine != "azure" && c.Engine != "mock" {
		return fmt.Errorf("engine must be azure or mock, got %q", c.Engine)
	}
	if c.Translate.CacheSize < 1 || c.Translate.CacheSize > 10000 {
		return fmt.Errorf("translate cache_size must be between 1 and 10000, got %d", c.Translate.CacheSize)
	}
	if c.Translate.RequestsPerSecond <= 0 {
		return fmt.Errorf("translate requests_per_second must be positive, got %.2f", c.Translate.RequestsPerSecond)
	}
	if c.Conversation.TurnTimeout < time.Second {
		return fmt.Errorf("conversation turn timeout must be at least 1s, got %s", c.Conversation.TurnTimeout)
	}
	if c.Audio.Channels != 1 && c.Audio.Channels != 2 {
		return fmt.Errorf("audio channels must be 1 or 2, got %d", c.Audio.Channels)
	}
	if !SupportedLanguage(c.SourceLang) || !SupportedLanguage(c.TargetLang) {
		// Unsupported codes still work through the en fallback, but the
		// configuration should name real entries.
		return fmt.Errorf("unsupported language pair %s -> %s", c.SourceLang, c.TargetLang)
	}
	return nil
}

// ControllerConfig derives the read controller tunables.
func (c Config) ControllerConfig() ControllerConfig {
	return ControllerConfig{
		SourceLang:  c.SourceLang,
		TargetLang:  c.TargetLang,
		Voice:       c.Voice,
		Rate:        c.Rate,
		SentenceGap: c.SentenceGap,
	}
}
