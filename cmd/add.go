package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/taskboard/internal/logger"
	"github.com/maxkimambo/taskboard/internal/taskstore"
)

var addCmd = &cobra.Command{
	Use:   "add <title...>",
	Short: "Append a task",
	Long: `Appends an unfinished task to the end of the list. All arguments are joined
into the title.

Example:
taskboard add Buy milk
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")

	s := newSession(cmd)
	defer s.close()

	if err := s.load(); err != nil {
		return err
	}

	var number int
	err := s.run(func(store *taskstore.Store) error {
		number = len(store.Snapshot()) + 1
		return store.Add(title)
	})
	if err != nil {
		return err
	}

	logger.User.Createf("Added task %d: %s", number, title)
	return nil
}
