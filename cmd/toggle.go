package cmd

import (
	"github.com/spf13/cobra"

	"github.com/maxkimambo/taskboard/internal/logger"
	"github.com/maxkimambo/taskboard/internal/taskstore"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle <n>",
	Short: "Flip a task between done and pending",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetDone(cmd, args[0], nil)
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <n>",
	Short: "Mark a task done",
	Long: `Marks task n (as numbered by 'taskboard list') done.

Example:
taskboard done 1
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		done := true
		return runSetDone(cmd, args[0], &done)
	},
}

var undoneCmd = &cobra.Command{
	Use:   "undone <n>",
	Short: "Mark a task pending again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		done := false
		return runSetDone(cmd, args[0], &done)
	},
}

// runSetDone sets the done flag of task raw, or flips it when done is nil.
func runSetDone(cmd *cobra.Command, raw string, done *bool) error {
	s := newSession(cmd)
	defer s.close()

	index, task, err := s.taskAt(raw, "Toggle task")
	if err != nil {
		return err
	}

	next := !task.Done
	if done != nil {
		next = *done
	}
	if next == task.Done {
		logger.User.Infof("Task %s is already %s", raw, statusWord(next))
		return nil
	}

	if err := s.run(func(store *taskstore.Store) error {
		return store.SetDone(index, next)
	}); err != nil {
		return err
	}

	logger.User.Updatef("Task %s marked %s: %s", raw, statusWord(next), task.Title)
	return nil
}

func statusWord(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}
