package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/answermirror/internal/model"
)

// Version is set at build time
var Version = "v0.1.0"

var (
	cfgFile string
	envFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "answermirror",
	Short: "answermirror - mirror substantive answers from a forum into a companion forum",
	Long: `answermirror polls the hot threads of a source subreddit, detects
top-level comments that look like real answers, and links each new answer
from a companion post in a destination subreddit.

Answers that later disappear from the source thread are reported instead of
mirrored again.`,
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
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("answermirror %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml or $HOME/.answermirror/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with credentials")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", envFile, err)
		}
	}

	if err := setDefaults(model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting defaults: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".answermirror"))
		}
	}

	// ANSWERMIRROR_REDDIT_CLIENT_ID overrides reddit.client_id, and so on
	viper.SetEnvPrefix("ANSWERMIRROR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Conventional names for secrets
	_ = viper.BindEnv("reddit.client_id", "ANSWERMIRROR_REDDIT_CLIENT_ID", "REDDIT_CLIENT_ID")
	_ = viper.BindEnv("reddit.client_secret", "ANSWERMIRROR_REDDIT_CLIENT_SECRET", "REDDIT_CLIENT_SECRET")
	_ = viper.BindEnv("reddit.username", "ANSWERMIRROR_REDDIT_USERNAME", "REDDIT_USERNAME")
	_ = viper.BindEnv("reddit.password", "ANSWERMIRROR_REDDIT_PASSWORD", "REDDIT_PASSWORD")
	_ = viper.BindEnv("remediation.discord_webhook_url", "ANSWERMIRROR_REMEDIATION_DISCORD_WEBHOOK_URL", "DISCORD_WEBHOOK_URL")

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every field of cfg with viper so that environment
// variables can override keys absent from the config file.
func setDefaults(cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	setTree("", tree)
	return nil
}

func setTree(prefix string, tree map[string]any) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			setTree(key, sub)
			continue
		}
		viper.SetDefault(key, v)
	}
}

// loadConfig builds the effective configuration
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if viper.GetBool("verbose") {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}
