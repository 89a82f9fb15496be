package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/maxkimambo/taskboard/internal/app"
	"github.com/maxkimambo/taskboard/internal/logger"
	"github.com/maxkimambo/taskboard/internal/ticker"
	"github.com/maxkimambo/taskboard/internal/view"
)

var (
	watchFor  time.Duration
	watchPage string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the live task page",
	Long: `Mounts the task page with its clock and prints a new frame every time the
task list or the clock changes. Runs until interrupted or, with --for, until the
duration has passed.

Example:
taskboard watch
taskboard watch --for 5s
taskboard watch --page /about
`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchFor, "for", 0, "Stop after this long (0 runs until interrupted)")
	watchCmd.Flags().StringVar(&watchPage, "page", string(app.PageTasks), "Page to open: /tasks or /about")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if watchFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, watchFor)
		defer cancel()
	}

	s := newSession(cmd)
	defer s.close()

	out := cmd.OutOrStdout()
	a := app.New(
		s.store,
		ticker.New(s.loop, cfg.Client.TickInterval),
		s.loop,
		view.New(lipgloss.NewRenderer(out)),
		out,
	)

	var err error
	s.loop.Do(func() { err = a.State().Navigate(watchPage) })
	if err != nil {
		return err
	}
	s.loop.Do(a.Start)

	<-ctx.Done()

	var frames int
	s.loop.Do(func() { frames = a.Frames() })
	logger.Op.WithFields(map[string]interface{}{
		"frames": frames,
	}).Debug("Watch stopped")

	return s.settle()
}
