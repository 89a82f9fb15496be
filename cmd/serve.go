package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/taskboard/internal/config"
	"github.com/maxkimambo/taskboard/internal/logger"
	"github.com/maxkimambo/taskboard/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the task server",
	Long: `Runs the HTTP server holding the task list in memory. The list is lost when
the server stops.

Example:
taskboard serve
taskboard serve --addr 127.0.0.1:9000
`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default "+config.DefaultAddr+")")
}

func runServe(cmd *cobra.Command, args []string) error {
	serverCfg := cfg.Server
	if serveAddr != "" {
		serverCfg.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := server.NewStore(ctx, server.SeedTasks(serverCfg.Seed)...)
	srv := server.New(serverCfg, store)

	logger.Op.WithFields(map[string]interface{}{
		"addr":   serverCfg.Addr,
		"seeded": len(serverCfg.Seed),
	}).Debug("Starting task server")

	if err := srv.Run(ctx); err != nil {
		return err
	}
	logger.User.Success("Task server stopped")
	return nil
}
