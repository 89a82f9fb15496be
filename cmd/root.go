package cmd

import (
	"github.com/spf13/cobra"

	"github.com/maxkimambo/taskboard/internal/config"
	"github.com/maxkimambo/taskboard/internal/logger"
)

var (
	configPath string
	serverURL  string
	debug      bool
	verbose    bool
	jsonLogs   bool
	quiet      bool
	version    = "v0.1.0"

	// cfg is resolved once per invocation in PersistentPreRunE.
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "taskboard",
		Short: "A task list with an in-memory server and an optimistic client",
		Long: `taskboard keeps an ordered task list on a small HTTP server and edits it
from the command line.

Run 'taskboard serve' in one terminal, then use list, add, toggle, done, undone,
edit and rm from another. Tasks are addressed by the number shown in 'taskboard list'.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}
)

// Execute runs the command tree and renders any error.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(rootCmd, err)
	}
	return err
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (default $"+config.EnvConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Task server URL (default "+config.DefaultServerURL+")")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(undoneCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(pingCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	logger.Setup(verbose || debug, jsonLogs, quiet)

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if serverURL != "" {
		loaded.Client.Server = serverURL
		if err := loaded.Validate(); err != nil {
			return err
		}
	}
	cfg = loaded

	logger.Op.WithFields(map[string]interface{}{
		"server": cfg.Client.BaseURL(),
		"config": configPath,
	}).Debug("Configuration loaded")
	return nil
}
