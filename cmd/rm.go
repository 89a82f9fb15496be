package cmd

import (
	"github.com/spf13/cobra"

	"github.com/maxkimambo/taskboard/internal/logger"
	"github.com/maxkimambo/taskboard/internal/taskstore"
	"github.com/maxkimambo/taskboard/internal/utils"
)

var rmInteractive bool

var rmCmd = &cobra.Command{
	Use:     "rm <n>",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Long: `Deletes task n. Every task after it moves up one number.

Example:
taskboard rm 1
taskboard rm 1 --interactive
`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

func init() {
	rmCmd.Flags().BoolVarP(&rmInteractive, "interactive", "i", false, "Ask before deleting")
}

func runRm(cmd *cobra.Command, args []string) error {
	s := newSession(cmd)
	defer s.close()

	index, task, err := s.taskAt(args[0], "Delete task")
	if err != nil {
		return err
	}

	ok, err := utils.PromptForConfirmation(cmd.InOrStdin(), cmd.OutOrStdout(), !rmInteractive, "delete task "+args[0], task.Title)
	if err != nil {
		return err
	}
	if !ok {
		logger.User.Info("Nothing deleted")
		return nil
	}

	if err := s.run(func(store *taskstore.Store) error {
		return store.Delete(index)
	}); err != nil {
		return err
	}

	logger.User.Deletef("Deleted task %s: %s", args[0], task.Title)
	return nil
}
