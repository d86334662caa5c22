package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"hotel-rates-scraper/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// defaultConfigPath is loaded when present and --config is not given
const defaultConfigPath = "config.yaml"

// globalOptions are shared by every subcommand
type globalOptions struct {
	configPath string
	envFile    string
	verbose    bool
	logFormat  string

	logger *slog.Logger
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "hotel-rates",
		Short: "Sample hotel room rates across a booking horizon",
		Long: `hotel-rates fetches the public room tables of one or more hotels for one
sampled week per month, and reports the cheapest offer per stay and room type.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(opts.envFile); err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), opts.logFormat, opts.verbose)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to configuration file (default: ./config.yaml when present)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded into the environment when present")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")

	cmd.AddCommand(newScrapeCmd(opts))
	cmd.AddCommand(newDatesCmd(opts))
	return cmd
}

// Execute runs the command tree and exits non-zero on failure
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration file, falling back to defaults
// when no file is given and ./config.yaml does not exist
func (o *globalOptions) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err != nil {
			return config.GetDefaultConfig(), nil
		}
		path = defaultConfigPath
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("loaded configuration", "path", path)
	return cfg, nil
}

// loadEnvFile loads KEY=value pairs without overriding the environment.
// A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// newLogger creates the process logger writing to w
func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	handlerOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		handlerOpts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text", "":
		handler = slog.NewTextHandler(w, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return slog.New(handler), nil
}
