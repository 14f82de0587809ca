// ABOUTME: Health command for hived-validate CLI
// ABOUTME: Checks backend connectivity and catalog status

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/markalston/hived-validator/cli/internal/client"
	"github.com/markalston/hived-validator/cli/internal/styles"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend connectivity",
	Long:  `Check connectivity to the hived validator backend and report its scheduler and resource unit catalog.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runHealth(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// runHealth executes the health check and returns exit code.
// A degraded backend (no resource units loaded) exits 1.
func runHealth(ctx context.Context, w io.Writer) int {
	url := GetAPIURL()
	c := client.New(url)

	resp, err := c.Health(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatHealthJSON(url, resp))
	} else {
		fmt.Fprintln(w, formatHealthHuman(url, resp))
	}

	if resp.Status != "ok" {
		return 1
	}
	return 0
}

// formatHealthHuman formats health response for human readability
func formatHealthHuman(url string, resp *client.HealthResponse) string {
	status := styles.StatusOK.Render(resp.Status)
	if resp.Status != "ok" {
		status = styles.StatusWarning.Render(resp.Status)
	}
	return fmt.Sprintf(`Backend:         %s
Status:          %s
HiveD Scheduler: %s
Resource Units:  %d`, url, status, resp.HivedScheduler, resp.ResourceUnits)
}

// formatHealthJSON formats health response as JSON
func formatHealthJSON(url string, resp *client.HealthResponse) string {
	output := map[string]interface{}{
		"backend":         url,
		"status":          resp.Status,
		"hived_scheduler": resp.HivedScheduler,
		"resource_units":  resp.ResourceUnits,
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
