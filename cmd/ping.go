package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/taskboard/internal/client"
	"github.com/maxkimambo/taskboard/internal/utils"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the task server is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(cfg.Client)
		if err := c.Ping(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), utils.Success("Task server is up", c.BaseURL()))
		return nil
	},
}
