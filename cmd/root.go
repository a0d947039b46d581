package cmd

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eduwrench/simclient/sim/scenario"
	"github.com/eduwrench/simclient/sim/session"
)

var (
	logLevel    string // Log verbosity level
	sessionPath string // Session file; empty uses the per-user default
	catalogPath string // Optional scenario catalog YAML
	historyPath string // History database; empty uses the per-user default
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "simclient",
	Short: "Run pedagogic distributed-computing simulations from the terminal",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
	SilenceUsage: true,
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openSessions returns the session service backed by the session file.
func openSessions() (*session.Service, error) {
	path := sessionPath
	if path == "" {
		p, err := session.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return session.NewService(session.NewFileStore(path))
}

// loadCatalog returns the --catalog file when given, else the built-in scenarios.
func loadCatalog() (*scenario.Catalog, error) {
	if catalogPath == "" {
		return scenario.Builtin(), nil
	}
	return scenario.LoadCatalog(catalogPath)
}

// resolveHistoryPath returns --history-db or <config dir>/simclient/history.db.
func resolveHistoryPath() (string, error) {
	if historyPath != "" {
		return historyPath, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(dir, "simclient"), 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "simclient", "history.db"), nil
}

// init sets up persistent flags shared by every subcommand
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session-file", "", "Session file (default: <user config dir>/simclient/session.yaml)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Scenario catalog YAML (default: built-in scenarios)")
	rootCmd.PersistentFlags().StringVar(&historyPath, "history-db", "", "Submission history database (default: <user config dir>/simclient/history.db)")
}
