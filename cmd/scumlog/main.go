// Command scumlog relays SCUM dedicated server log events to Discord.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix prefixes environment overrides, e.g. SCUMLOG_LOG_LEVEL.
const envPrefix = "SCUMLOG"

var rootCmd = &cobra.Command{
	Use:   "scumlog",
	Short: "Relay SCUM server log events to Discord",
	Long: `scumlog watches the log files of a SCUM dedicated server, parses
each new line into a typed event and posts it to the Discord channel
configured for its category.

Settings may be given as flags or environment variables:
  --config      SCUMLOG_CONFIG
  --log-level   SCUMLOG_LOG_LEVEL
  --log-format  SCUMLOG_LOG_FORMAT`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initSettings)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "scumlog.yaml", "configuration file")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text, json")
	for _, name := range []string{"config", "log-level", "log-format"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

func initSettings() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// newLogger builds the process logger from the level and format settings.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (want text or json)", format)
	}
}

func loggerFromSettings(cmd *cobra.Command) (*slog.Logger, error) {
	return newLogger(cmd.ErrOrStderr(), viper.GetString("log-level"), viper.GetString("log-format"))
}
