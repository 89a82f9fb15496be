package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/taskboard/internal/utils"
	"github.com/maxkimambo/taskboard/internal/view"
)

var listStatus string

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show the task list",
	Long: `Fetches the task list from the server and prints it as a table. The number in
the first column is what the other commands take.

Example:
taskboard list
taskboard list --status pending
`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		_, err := utils.ParseStatusFilter(listStatus)
		return err
	},
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "all", "Show only tasks with this status: all, done or pending")
}

func runList(cmd *cobra.Command, args []string) error {
	filter, _ := utils.ParseStatusFilter(listStatus)

	s := newSession(cmd)
	defer s.close()

	if err := s.load(); err != nil {
		return err
	}

	tasks := s.store.Snapshot()
	out := cmd.OutOrStdout()
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks yet")
		return nil
	}

	table := utils.TaskTable(tasks, filter)
	fmt.Fprint(out, table.String())
	fmt.Fprintln(out, view.Total(len(tasks)))
	return nil
}
