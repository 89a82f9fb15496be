package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/taskboard/internal/logger"
	"github.com/maxkimambo/taskboard/internal/taskstore"
	"github.com/maxkimambo/taskboard/internal/utils"
)

var editCmd = &cobra.Command{
	Use:   "edit <n> [title...]",
	Short: "Rename a task",
	Long: `Replaces the title of task n. Without a title on the command line you are
prompted for one.

Example:
taskboard edit 2 Buy oat milk
taskboard edit 2
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	s := newSession(cmd)
	defer s.close()

	index, task, err := s.taskAt(args[0], "Edit task")
	if err != nil {
		return err
	}

	title := strings.Join(args[1:], " ")
	if len(args) == 1 {
		title, err = utils.PromptForInput(cmd.InOrStdin(), cmd.OutOrStdout(), "New title")
		if err != nil {
			return err
		}
	}

	if err := s.run(func(store *taskstore.Store) error {
		return store.Edit(index, title)
	}); err != nil {
		return err
	}

	logger.User.Updatef("Task %s renamed: %s → %s", args[0], task.Title, title)
	return nil
}
