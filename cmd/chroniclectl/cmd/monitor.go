package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Oracle request monitoring",
}

var monitorRequestsCmd = &cobra.Command{
	Use:     "requests",
	Aliases: []string{"ls"},
	Short:   "List recent oracle requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return call(http.MethodGet, fmt.Sprintf("/api/v1/monitor/requests?limit=%d", limit))
	},
}

var monitorStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate oracle request stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(http.MethodGet, "/api/v1/monitor/stats")
	},
}

func init() {
	monitorRequestsCmd.Flags().Int("limit", 50, "maximum records to return")

	monitorCmd.AddCommand(monitorRequestsCmd)
	monitorCmd.AddCommand(monitorStatsCmd)

	rootCmd.AddCommand(monitorCmd)
}
