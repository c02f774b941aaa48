// Package main provides the entry point for the LanguageBridge CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/JustinDev-afk/languagebridge/internal/audio"
	"github.com/JustinDev-afk/languagebridge/internal/pathutil"
	"github.com/JustinDev-afk/languagebridge/selection"
	"github.com/JustinDev-afk/languagebridge/settings"
	"github.com/JustinDev-afk/languagebridge/speech"
	"github.com/JustinDev-afk/languagebridge/speech/engines/azure"
	"github.com/JustinDev-afk/languagebridge/speech/engines/mock"
	"github.com/JustinDev-afk/languagebridge/speech/segment"
	"github.com/JustinDev-afk/languagebridge/translate"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	fromLang   string
	toLang     string
	voice      string
	rateFlag   float64
	engineName string
	debug      bool

	cfg speech.Config

	rootCmd = &cobra.Command{
		Use:   "languagebridge [TEXT|FILE]",
		Short: "Translate text and read it aloud, one sentence at a time",
		Long: "\nLanguageBridge translates text between languages and speaks the " +
			"translation sentence by sentence, with pause and resume. Text can " +
			"come from arguments, a file, or stdin.",
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: executeRead,
	}
)

// validateOptions resolves the effective configuration: defaults, then the
// config file, then persisted user settings, then command-line flags.
func validateOptions(cmd *cobra.Command) error {
	var err error
	cfg, err = speech.LoadConfigFromViper()
	if err != nil {
		return err
	}

	applySavedSettings(&cfg)

	if cmd.Flags().Changed("from") {
		cfg.SourceLang = fromLang
	}
	if cmd.Flags().Changed("to") {
		cfg.TargetLang = toLang
	}
	if cmd.Flags().Changed("voice") {
		cfg.Voice = voice
	}
	if cmd.Flags().Changed("rate") {
		cfg.Rate = rateFlag
	}
	if cmd.Flags().Changed("engine") {
		cfg.Engine = engineName
	}

	if debug {
		log.SetLevel(log.DebugLevel)
	}

	return cfg.Validate()
}

// applySavedSettings overlays preferences persisted with "languagebridge set"
// onto the configuration.
func applySavedSettings(cfg *speech.Config) {
	path, err := settingsPath()
	if err != nil {
		return
	}
	store, err := settings.Open(path)
	if err != nil {
		log.Warn("could not open settings", "path", path, "err", err)
		return
	}
	defer store.Close() //nolint:errcheck

	cfg.SourceLang = store.GetString(settings.KeySourceLang, cfg.SourceLang)
	cfg.TargetLang = store.GetString(settings.KeyTargetLang, cfg.TargetLang)
	cfg.Rate = store.GetFloat(settings.KeyRate, cfg.Rate)
}

func settingsPath() (string, error) {
	scope := gap.NewScope(gap.User, "languagebridge")
	return scope.DataPath("settings.yml")
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to stat stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// textFromArgs resolves the input text: stdin when piped, a file's contents
// when the single argument names a file, otherwise the arguments joined.
func textFromArgs(args []string) (string, error) {
	if yes, err := stdinIsPipe(); err != nil {
		return "", err
	} else if yes {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("unable to read stdin: %w", err)
		}
		return string(b), nil
	}

	if len(args) == 0 {
		return "", errors.New("missing text: pass text, a file path, or pipe to stdin")
	}

	if len(args) == 1 {
		if st, err := os.Stat(args[0]); err == nil && !st.IsDir() {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return "", fmt.Errorf("unable to read file: %w", err)
			}
			return string(b), nil
		}
	}

	return strings.Join(args, " "), nil
}

// stack bundles the wired speech components for one CLI invocation.
type stack struct {
	engine     speech.Engine
	recognizer speech.Recognizer
	player     speech.Player
	translator *translate.Client
}

func (s *stack) close() {
	_ = s.player.Stop()
	_ = s.engine.Shutdown()
}

// buildStack wires the translation client, speech engine, and audio player
// from the configuration.
func buildStack() (*stack, error) {
	translator := translate.NewClient(translate.Options{
		Endpoint:          cfg.Translate.Endpoint,
		Key:               cfg.Translate.Key,
		CacheSize:         cfg.Translate.CacheSize,
		RequestsPerSecond: cfg.Translate.RequestsPerSecond,
	})
	translator.OnFault(reportFault)

	if cfg.Engine == "mock" {
		return &stack{
			engine:     mock.NewEngine(),
			recognizer: mock.NewRecognizer(),
			player:     mock.NewPlayer(),
			translator: translator,
		}, nil
	}

	client := azure.NewClient(azure.Options{
		Region:      cfg.Azure.Region,
		Key:         cfg.Azure.Key,
		Endpoint:    cfg.Azure.Endpoint,
		WSEndpoint:  cfg.Azure.WSEndpoint,
		HTTPTimeout: cfg.Azure.HTTPTimeout,
	})
	player, err := audio.NewPlayer(audio.Config{
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing audio output: %w", err)
	}
	return &stack{
		engine:     client,
		recognizer: client,
		player:     player,
		translator: translator,
	}, nil
}

func reportFault(f speech.Fault) {
	log.Warn("service fault", "kind", f.Kind, "component", f.Component, "err", f.Err)
}

func executeRead(_ *cobra.Command, args []string) error {
	text, err := textFromArgs(args)
	if err != nil {
		return err
	}

	st, err := buildStack()
	if err != nil {
		return err
	}
	defer st.close()

	ctrl := speech.NewReadController(
		st.translator, st.engine, st.player, segment.NewSplitter(), cfg.ControllerConfig())
	ctrl.OnFault(reportFault)

	finished := make(chan struct{}, 1)
	ctrl.OnStateChange(func(state speech.SessionState) {
		if state == speech.StateIdle {
			select {
			case finished <- struct{}{}:
			default:
			}
		}
	})
	ctrl.OnSentenceChange(func(index int) {
		if snap := ctrl.Snapshot(); snap != nil {
			fmt.Printf("[%d/%d]\n", index, len(snap.Sentences))
		}
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	adapter := selection.NewAdapter(ctrl)
	adapter.OnTruncate(func(dropped int) {
		fmt.Fprintf(os.Stderr, "input truncated, %d characters dropped\n", dropped)
	})
	if err := adapter.Submit(ctx, text); err != nil {
		return err
	}

	if snap := ctrl.Snapshot(); snap != nil {
		fmt.Println(snap.Translated)
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		go keyLoop(ctrl, cancel)
		fmt.Fprintln(os.Stderr, "space pauses and resumes, q stops")
	}

	select {
	case <-finished:
	case <-ctx.Done():
		return ctrl.Stop()
	}
	return nil
}

// keyLoop reads single keystrokes in raw mode: space toggles pause and
// resume, q or ctrl-c stops.
func keyLoop(ctrl *speech.ReadController, cancel context.CancelFunc) {
	fd := int(os.Stdin.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		log.Debug("raw mode unavailable", "err", err)
		return
	}
	defer term.Restore(fd, old) //nolint:errcheck

	buf := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buf); err != nil {
			return
		}
		switch buf[0] {
		case ' ':
			if ctrl.State() == speech.StatePaused {
				if err := ctrl.Resume(); err != nil {
					log.Debug("resume", "err", err)
				}
			} else if err := ctrl.Pause(); err != nil {
				log.Debug("pause", "err", err)
			}
		case 'q', 3: // ctrl-c
			cancel()
			return
		}
	}
}

var converseTurns int

var converseCmd = &cobra.Command{
	Use:   "converse",
	Short: "Run spoken conversation turns between two languages",
	Long: "\nConverse alternates recognition turns between a teacher and a " +
		"student: each turn listens for speech, translates the final " +
		"transcript, and speaks the translation to the other party.",
	Args: cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		st, err := buildStack()
		if err != nil {
			return err
		}
		defer st.close()

		conv := speech.NewConversationController(
			st.recognizer, st.translator, st.engine, st.player, cfg.Conversation)
		conv.OnFault(reportFault)
		conv.OnInterim(func(party speech.Party, text string) {
			fmt.Printf("\r%s: %s", party, text)
		})

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		party := speech.PartyTeacher
		for i := 0; i < converseTurns; i++ {
			fmt.Printf("--- turn %d: %s speaks ---\n", i+1, party)
			ex, err := conv.TakeTurn(ctx, party)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					break
				}
				log.Error("turn failed", "party", party, "err", err)
				continue
			}
			fmt.Printf("\r%s said: %s\n   spoken as: %s\n", ex.Party, ex.Heard, ex.Spoken)
			if party == speech.PartyTeacher {
				party = speech.PartyStudent
			} else {
				party = speech.PartyTeacher
			}
		}

		for _, ex := range conv.Transcript() {
			fmt.Printf("%s  %s: %s\n", ex.At.Format(time.Kitchen), ex.Party, ex.Heard)
		}
		return nil
	},
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the supported languages and their voices",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tNAME\tRECOGNITION\tVOICE")
		for _, l := range speech.Locales() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.Code, l.Name, l.Recognition, l.Voice)
		}
		return w.Flush()
	},
}

var setCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Persist a preference (source_lang, target_lang, rate, ...)",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		path, err := settingsPath()
		if err != nil {
			return fmt.Errorf("resolving settings path: %w", err)
		}
		store, err := settings.Open(path)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck
		return store.Set(args[0], args[1])
	},
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().StringVarP(&fromLang, "from", "f", "en", "source language of the input text")
	rootCmd.Flags().StringVarP(&toLang, "to", "t", "fa", "language to translate into and speak")
	rootCmd.Flags().StringVar(&voice, "voice", "", "voice override, e.g. fa-IR-DilaraNeural")
	rootCmd.Flags().Float64VarP(&rateFlag, "rate", "r", 1.0, "speech rate multiplier (0.5 to 3.0)")
	rootCmd.Flags().StringVar(&engineName, "engine", "", "speech engine (azure or mock)")

	converseCmd.Flags().IntVar(&converseTurns, "turns", 2, "number of conversation turns")

	// Config bindings
	_ = viper.BindPFlag("speech.source_lang", rootCmd.Flags().Lookup("from"))
	_ = viper.BindPFlag("speech.target_lang", rootCmd.Flags().Lookup("to"))
	_ = viper.BindPFlag("speech.voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("speech.rate", rootCmd.Flags().Lookup("rate"))
	_ = viper.BindPFlag("speech.engine", rootCmd.Flags().Lookup("engine"))

	rootCmd.AddCommand(configCmd, converseCmd, languagesCmd, setCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "languagebridge")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find the configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(pathutil.ExpandPath(c), "languagebridge")}, dirs...)
	}

	if c := os.Getenv("LB_CONFIG_HOME"); c != "" {
		dirs = append([]string{pathutil.ExpandPath(c)}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("languagebridge")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("lb")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "languagebridge.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
