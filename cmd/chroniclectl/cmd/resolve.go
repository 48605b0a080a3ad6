package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [date]",
	Short: "Resolve a contradicted date",
	Long:  "Run one resolution attempt for a contradicted event (date in YYYY-MM-DD form)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := args[0]
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return fmt.Errorf("date must be YYYY-MM-DD: %q", date)
		}
		return call(http.MethodPost, "/api/v1/resolve/"+date)
	},
}

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Bulk re-verification control",
}

var bulkStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a bulk re-verification run",
	Long:  "Resolve every contradicted, not-yet-re-verified event in the background",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(http.MethodPost, "/api/v1/resolve/bulk")
	},
}

var bulkStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running bulk re-verification",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(http.MethodPost, "/api/v1/resolve/stop")
	},
}

var bulkProgressCmd = &cobra.Command{
	Use:     "progress",
	Aliases: []string{"status"},
	Short:   "Show bulk re-verification progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(http.MethodGet, "/api/v1/resolve/progress")
	},
}

func init() {
	bulkCmd.AddCommand(bulkStartCmd)
	bulkCmd.AddCommand(bulkStopCmd)
	bulkCmd.AddCommand(bulkProgressCmd)

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(bulkCmd)
}
