// ABOUTME: Cells command for hived-validate CLI
// ABOUTME: Lists the cell types a virtual cluster offers with quota and capacity

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/markalston/hived-validator/cli/internal/client"
	"github.com/markalston/hived-validator/cli/internal/styles"
	"github.com/spf13/cobra"
)

var cellsCmd = &cobra.Command{
	Use:   "cells VIRTUAL_CLUSTER",
	Short: "Show a virtual cluster's cell types",
	Long:  `Show every cell type of a virtual cluster with its quota and per-cell GPU, CPU and memory, as the validator sees them.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runCells(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(cellsCmd)
}

// runCells fetches the cell type table and returns exit code
func runCells(ctx context.Context, w io.Writer, vc string) int {
	c := client.New(GetAPIURL())

	cells, err := c.VirtualClusterCells(ctx, vc)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(cells, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintln(w, formatCellsHuman(cells))
	}
	return 0
}

// formatCellsHuman renders the table in the order the backend returned it
func formatCellsHuman(cells *client.VirtualClusterCells) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Virtual cluster " + cells.VirtualCluster))
	fmt.Fprintf(&b, "\nLeaf cell quota: %d\n\n", cells.LeafQuota)
	b.WriteString(styles.TableHeader.Render(fmt.Sprintf("%-16s %-6s %-6s %-6s %-10s %s",
		"CELL TYPE", "QUOTA", "GPU", "CPU", "MEMORY MB", "LEAF")))
	for _, cell := range cells.Cells {
		leaf := ""
		if cell.IsLeafCell {
			leaf = "yes"
		}
		fmt.Fprintf(&b, "\n%-16s %-6d %-6g %-6g %-10g %s",
			cell.CellType, cell.Quota, cell.GPU, cell.CPU, cell.Memory, leaf)
	}
	return b.String()
}
