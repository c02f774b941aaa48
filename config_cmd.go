package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# LanguageBridge configuration

speech:
  # Language of the input text
  source_lang: "en"
  # Language to translate into and speak
  target_lang: "fa"
  # Speech rate multiplier (0.5 to 3.0)
  rate: 1.0
  # Optional voice override, e.g. "fa-IR-DilaraNeural"
  # voice: ""
  # Pause between sentences
  sentence_gap: "400ms"
  # Speech engine: azure or mock
  engine: "azure"

  # Speech service credentials
  azure:
    region: "eastus"
    # key: "your-speech-key"
    # endpoint: ""
    # ws_endpoint: ""
    http_timeout: "30s"

  # Translation backend
  translate:
    # endpoint: "https://your-translation-endpoint/translate"
    # key: "your-translation-key"
    cache_size: 100
    requests_per_second: 10

  # Conversation mode
  conversation:
    teacher_lang: "en"
    student_lang: "fa"
    turn_timeout: "10s"

  # Local audio output
  audio:
    sample_rate: 16000
    channels: 1
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the languagebridge config file",
	Long:    "\nEdit the languagebridge config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.",
	Example: "languagebridge config\nlanguagebridge config --config path/to/config.yml",
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("LanguageBridge", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
