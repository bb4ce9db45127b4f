package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/tysa/internal/cache"
	"github.com/dgnsrekt/tysa/internal/config"
)

const defaultConfig = `# TTS engine: elevenlabs, openai, or say
engine: "elevenlabs"
# ElevenLabs voice ID (default is Sarah)
voice: "EXAVITQu4vr4xnSDxMaL"
# rewrite track titles with an LLM before announcing
simplify: true
# seconds between media player polls
poll_interval: 5
# playback volume (0.0 to 1.0)
volume: 1.0
# run mode: continuous or once
mode: "continuous"
# directory for announcement audio files
output_dir: "output"
# verbose logging
debug: false

llm:
  # chat model for title simplification
  model: "gpt-4o-mini"
  requests_per_minute: 30

openai:
  # voice for the OpenAI TTS engine
  voice: "onyx"

tts:
  requests_per_minute: 30

cache:
  # disk cache size limit in MB
  max_size: 100
  disabled: false
  # dir: "/path/to/cache"
  # text_path: "/path/to/announcements.json"

# API keys are read from the environment:
#   OPENAI_API_KEY, ELEVENLABS_API_KEY
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the tysa config file",
	Long:    paragraph(fmt.Sprintf("\n%s the tysa config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("tysa config\ntysa config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Tysa", configFile)
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

	if !config.IsYAMLPath(configFile) {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", path.Ext(configFile), ".yaml", ".yml")
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

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the audio cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache usage",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		m, err := openCache()
		if err != nil {
			return err
		}
		defer m.Close() //nolint:errcheck

		s := m.DiskStats()
		fmt.Println("Cache directory:", cacheDir())
		fmt.Printf("Entries: %d\n", s.ItemCount)
		fmt.Printf("Size: %s of %s\n", humanize.Bytes(uint64(s.Size)), humanize.Bytes(uint64(s.Capacity))) //nolint:gosec
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached audio",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		m, err := openCache()
		if err != nil {
			return err
		}
		defer m.Close() //nolint:errcheck

		if err := m.Clear(); err != nil {
			return fmt.Errorf("unable to clear cache: %w", err)
		}
		fmt.Println("Cleared cache at:", cacheDir())
		return nil
	},
}

func cacheDir() string {
	if dir := viper.GetString("cache.dir"); dir != "" {
		return config.ExpandPath(dir)
	}
	return config.DefaultCacheDir()
}

func openCache() (*cache.Manager, error) {
	return cache.NewManager(cache.ManagerConfig{
		Dir:       cacheDir(),
		DiskLimit: int64(viper.GetInt("cache.max_size")) * 1024 * 1024,
	})
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
}
