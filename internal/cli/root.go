package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/concordia/internal/model"
)

// Version is set at build time
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "concordia",
	Short: "Concordia - Lincoln source consistency analysis",
	Long: `Concordia compares how Abraham Lincoln's own papers and later
biographies describe the same historical events.

It retrieves event-relevant passages from each document, asks a language
model to extract factual claims, groups the claims by event and source,
and asks the model to judge how consistent the two sides are. Robustness
experiments re-judge every event under different prompts and repeated
sampling, and measure the agreement between prompting strategies.

Every stage reads its inputs from disk and appends to its own output log,
so stages can be run, resumed and repeated independently.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number for Concordia.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("concordia v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.concordia/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	flags.Bool("fresh", false, "truncate output logs instead of resuming")
	flags.String("events", "", "event registry file (YAML or TOML, default: builtin events)")
	flags.String("provider", "", "LLM provider (openai, anthropic, ollama)")
	flags.String("model", "", "LLM model name")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("output.fresh", flags.Lookup("fresh"))
	_ = viper.BindPFlag("paths.events_file", flags.Lookup("events"))
	_ = viper.BindPFlag("llm.provider", flags.Lookup("provider"))
	_ = viper.BindPFlag("llm.model", flags.Lookup("model"))
	_ = viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", flags.Lookup("log-format"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in .env, the config file and ENV variables
func initConfig() {
	// A local .env may carry API keys; the real environment wins
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to read .env: %v\n", err)
	}

	if err := setDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading defaults: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".concordia"))
		}
	}

	// Read in environment variables that match CONCORDIA_* (CONCORDIA_LLM_MODEL -> llm.model)
	viper.SetEnvPrefix("CONCORDIA")
	viper.SetEnvKeyReplacer(envKeyReplacer())
	viper.AutomaticEnv()
	for _, key := range optionalKeys {
		_ = viper.BindEnv(key)
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func envKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// optionalKeys are omitted from the marshaled defaults when empty
var optionalKeys = []string{
	"llm.api_key", "llm.base_url", "llm.http_proxy", "llm.https_proxy", "llm.no_proxy",
	"ingest.http_proxy", "ingest.https_proxy", "ingest.no_proxy", "metrics.file",
}

// setDefaults registers every default so env variables can override any key
func setDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	flatten("", tree, func(key string, value any) {
		v.SetDefault(key, value)
	})
	return nil
}

func flatten(prefix string, tree map[string]any, set func(string, any)) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			flatten(key, sub, set)
			continue
		}
		set(key, val)
	}
}

// loadConfig resolves the effective configuration: flags, env, file, defaults
func loadConfig() (*model.Config, error) {
	// Defaults are registered in viper, so decode into a zero value; decoding
	// over DefaultConfig would leave the tail of default lists behind
	cfg := &model.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Output.Verbose && !rootCmd.PersistentFlags().Changed("log-level") {
		cfg.Logging.Level = "debug"
	}

	// Get API key from environment
	if cfg.LLM.APIKey == "" {
		switch strings.ToLower(cfg.LLM.Provider) {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if strings.EqualFold(cfg.LLM.Provider, "ollama") && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	return cfg, nil
}
