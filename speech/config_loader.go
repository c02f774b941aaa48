package speech

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// LoadConfigFromViper builds the speech configuration from Viper, falling
// back to defaults for unset keys, then applies environment overrides.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("speech.source_lang") {
		cfg.SourceLang = viper.GetString("speech.source_lang")
	}
	if viper.IsSet("speech.target_lang") {
		cfg.TargetLang = viper.GetString("speech.target_lang")
	}
	if viper.IsSet("speech.rate") {
		cfg.Rate = viper.GetFloat64("speech.rate")
	}
	if viper.IsSet("speech.voice") {
		cfg.Voice = viper.GetString("speech.voice")
	}
	if viper.IsSet("speech.sentence_gap") {
		cfg.SentenceGap = viper.GetDuration("speech.sentence_gap")
	}
	if viper.IsSet("speech.engine") {
		cfg.Engine = viper.GetString("speech.engine")
	}

	if viper.IsSet("speech.azure.region") {
		cfg.Azure.Region = viper.GetString("speech.azure.region")
	}
	if viper.IsSet("speech.azure.key") {
		cfg.Azure.Key = viper.GetString("speech.azure.key")
	}
	if viper.IsSet("speech.azure.endpoint") {
		cfg.Azure.Endpoint = viper.GetString("speech.azure.endpoint")
	}
	if viper.IsSet("speech.azure.ws_endpoint") {
		cfg.Azure.WSEndpoint = viper.GetString("speech.azure.ws_endpoint")
	}
	if viper.IsSet("speech.azure.http_timeout") {
		cfg.Azure.HTTPTimeout = viper.GetDuration("speech.azure.http_timeout")
	}

	if viper.IsSet("speech.translate.endpoint") {
		cfg.Translate.Endpoint = viper.GetString("speech.translate.endpoint")
	}
	if viper.IsSet("speech.translate.key") {
		cfg.Translate.Key = viper.GetString("speech.translate.key")
	}
	if viper.IsSet("speech.translate.cache_size") {
		cfg.Translate.CacheSize = viper.GetInt("speech.translate.cache_size")
	}
	if viper.IsSet("speech.translate.requests_per_second") {
		cfg.Translate.RequestsPerSecond = viper.GetFloat64("speech.translate.requests_per_second")
	}

	if viper.IsSet("speech.conversation.teacher_lang") {
		cfg.Conversation.TeacherLang = viper.GetString("speech.conversation.teacher_lang")
	}
	if viper.IsSet("speech.conversation.student_lang") {
		cfg.Conversation.StudentLang = viper.GetString("speech.conversation.student_lang")
	}
	if viper.IsSet("speech.conversation.turn_timeout") {
		cfg.Conversation.TurnTimeout = viper.GetDuration("speech.conversation.turn_timeout")
	}

	if viper.IsSet("speech.audio.sample_rate") {
		cfg.Audio.SampleRate = viper.GetInt("speech.audio.sample_rate")
	}
	if viper.IsSet("speech.audio.channels") {
		cfg.Audio.Channels = viper.GetInt("speech.audio.channels")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid speech configuration: %w", err)
	}
	return cfg, nil
}

// ConfigFromEnv builds the configuration purely from environment variables
// and the envDefault tags, for running without a config file.
func ConfigFromEnv() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid speech configuration: %w", err)
	}
	return cfg, nil
}
