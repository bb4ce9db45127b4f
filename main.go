// Package main provides the entry point for the tysa CLI, the yapping
// track announcer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/tysa/internal/announcer"
	"github.com/dgnsrekt/tysa/internal/audio"
	"github.com/dgnsrekt/tysa/internal/cache"
	"github.com/dgnsrekt/tysa/internal/config"
	"github.com/dgnsrekt/tysa/internal/player"
	"github.com/dgnsrekt/tysa/internal/simplify"
	"github.com/dgnsrekt/tysa/internal/tts"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	runOnce    bool
	engineName string
	outputDir  string
	interval   int
	volume     float64
	noSimplify bool
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "tysa",
		Short: "Announce the currently playing track, with yapping",
		Long: paragraph(
			fmt.Sprintf("\nPolls your media player and %s each new track out loud: the title is simplified by a language model, voiced by a TTS provider, cached, and played locally.", keyword("announces")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	// grab config values from Viper
	engineName = viper.GetString("engine")
	debug = viper.GetBool("debug")

	if engineName != "" {
		if err := tts.ValidateEngineSelection(engineName); err != nil {
			return err
		}
	}

	// flags that only make sense with explicit values
	if cmd.Flags().Changed("interval") && interval < 1 {
		return fmt.Errorf("interval must be at least 1 second, got %d", interval)
	}
	if cmd.Flags().Changed("volume") && (volume < 0.0 || volume > 1.0) {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %.2f", volume)
	}

	return nil
}

func execute(cmd *cobra.Command, _ []string) error {
	applyFlagOverrides(cmd)

	settings, err := config.Load()
	if err != nil {
		return err
	}

	return runAnnouncer(settings)
}

// applyFlagOverrides pushes flag-only settings into viper before the
// config is resolved, so validation sees them. Without this a key-free
// run like `--engine say --no-simplify` would be rejected for the
// missing OpenAI key the disabled rewrite step no longer needs.
func applyFlagOverrides(cmd *cobra.Command) {
	if noSimplify {
		viper.Set("simplify", false)
	}
	if cmd.Flags().Changed("once") && runOnce {
		viper.Set("mode", "once")
	}
}

func runAnnouncer(settings *config.Settings) error {
	source, err := player.New()
	if err != nil {
		return err
	}

	engine, err := tts.NewEngine(settings.Engine, tts.FactoryConfig{
		ElevenLabsAPIKey:  settings.ElevenLabsAPIKey,
		VoiceID:           settings.ElevenLabsVoiceID,
		OpenAIAPIKey:      settings.OpenAIAPIKey,
		OpenAIVoice:       settings.OpenAIVoice,
		RequestsPerMinute: settings.TTSRequestsPerMinute,
	})
	if err != nil {
		return err
	}
	if err := engine.Validate(); err != nil {
		return fmt.Errorf("TTS engine validation failed: %w", err)
	}
	log.Info("TTS engine selected", "engine", settings.Engine, "voice", engine.GetInfo().Voice)

	var simplifier announcer.Simplifier
	if settings.Simplify {
		s, err := simplify.New(simplify.Config{
			APIKey:            settings.OpenAIAPIKey,
			Model:             settings.LLMModel,
			RequestsPerMinute: settings.LLMRequestsPerMinute,
		})
		if err != nil {
			return err
		}
		simplifier = s
	}

	speaker, err := audio.NewSpeaker(settings.Volume)
	if err != nil {
		return fmt.Errorf("no playback path available: %w", err)
	}

	var audioCache *cache.Manager
	if !settings.DisableCache {
		dir := settings.CacheDir
		if dir == "" {
			dir = config.DefaultCacheDir()
		}
		audioCache, err = cache.NewManager(cache.ManagerConfig{
			Dir:       dir,
			DiskLimit: int64(settings.CacheMaxSizeMB) * 1024 * 1024,
		})
		if err != nil {
			// The cache is an optimization; run without it.
			log.Warn("Audio cache unavailable", "err", err)
			audioCache = nil
		}
	}

	textPath := settings.TextCachePath
	if textPath == "" {
		textPath = filepath.Join(config.DefaultDataDir(), "announcements.json")
	}
	texts, err := cache.NewTextStore(textPath)
	if err != nil {
		log.Warn("Text store unavailable", "err", err)
		texts = nil
	}

	a, err := announcer.New(announcer.Config{
		Source:       source,
		Simplifier:   simplifier,
		Engine:       engine,
		Speaker:      speaker,
		AudioCache:   audioCache,
		TextStore:    texts,
		OutputDir:    settings.OutputDir,
		PollInterval: settings.PollInterval,
	})
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if settings.RunMode == "once" {
		return a.RunOnce(ctx)
	}

	watchConfig(a)
	return a.Run(ctx)
}

// watchConfig applies poll interval and volume changes from the config
// file without a restart. Engine and credential changes still require one.
func watchConfig(a *announcer.Announcer) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Debug("Config file changed", "file", e.Name)
		if secs := viper.GetInt("poll_interval"); secs > 0 {
			a.SetPollInterval(time.Duration(secs) * time.Second)
			log.Info("Poll interval updated", "interval", a.PollInterval())
		}
		if viper.IsSet("volume") {
			if err := a.SetVolume(viper.GetFloat64("volume")); err != nil {
				log.Warn("Unable to update volume", "err", err)
			}
		}
	})
	viper.WatchConfig()
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
	rootCmd.Flags().BoolVarP(&runOnce, "once", "1", false, "announce the current track once and exit")
	rootCmd.Flags().StringVarP(&engineName, "engine", "e", "", "TTS engine (elevenlabs/openai/say)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for announcement audio files")
	rootCmd.Flags().IntVarP(&interval, "interval", "i", 0, "poll interval in seconds")
	rootCmd.Flags().Float64VarP(&volume, "volume", "v", 1.0, "playback volume (0.0 to 1.0)")
	rootCmd.Flags().BoolVarP(&noSimplify, "no-simplify", "n", false, "announce titles as-is, skipping the LLM rewrite")
	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "verbose logging")

	// Config bindings
	_ = viper.BindPFlag("engine", rootCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("output_dir", rootCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("poll_interval", rootCmd.Flags().Lookup("interval"))
	_ = viper.BindPFlag("volume", rootCmd.Flags().Lookup("volume"))
	_ = viper.BindPFlag("debug", rootCmd.Flags().Lookup("debug"))

	viper.SetDefault("engine", config.DefaultEngine)
	viper.SetDefault("simplify", true)
	viper.SetDefault("volume", 1.0)
	viper.SetDefault("cache.max_size", 100)

	rootCmd.AddCommand(configCmd, cacheCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	dirs := config.ConfigDirs()
	if len(dirs) == 0 {
		fmt.Println("Could not find a configuration directory.")
		os.Exit(1)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("tysa")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("tysa")
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
		configFile = filepath.Join(dirs[0], "tysa.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
