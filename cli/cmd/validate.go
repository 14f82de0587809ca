// ABOUTME: Validate command for hived-validate CLI
// ABOUTME: Submits a job protocol for compilation and reports the scheduling directives

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/markalston/hived-validator/cli/internal/client"
	"github.com/markalston/hived-validator/cli/internal/styles"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Validate a job protocol",
	Long: `Validate a YAML or JSON job protocol against the live topology of its
virtual cluster. Use - to read the protocol from stdin.

Exit codes:
  0 - Protocol is valid
  1 - Protocol was rejected
  2 - Error (file unreadable, backend or scheduler unreachable)`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runValidate(ctx, os.Stdout, args[0], os.Stdin)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// runValidate validates the protocol at path and returns exit code
func runValidate(ctx context.Context, w io.Writer, path string, stdin io.Reader) int {
	protocol, err := readProtocol(path, stdin)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	c := client.New(GetAPIURL())
	job, err := c.ValidateJob(ctx, protocol, contentTypeFor(path))
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Rejected() {
			if IsJSONOutput() {
				fmt.Fprintln(w, formatRejectionJSON(apiErr))
			} else {
				fmt.Fprintln(w, formatRejectionHuman(apiErr))
			}
			return 1
		}
		fmt.Fprintf(w, "Error: %v\n", err)
		if apiErr != nil && apiErr.Details != "" {
			fmt.Fprintf(w, "  %s\n", apiErr.Details)
		}
		return 2
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatValidatedJSON(job))
	} else {
		fmt.Fprintln(w, formatValidatedHuman(job))
	}
	return 0
}

func readProtocol(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read protocol: %w", err)
	}
	return data, nil
}

// contentTypeFor picks the request content type from the file extension.
// The backend accepts YAML for both, so unknown extensions go as YAML.
func contentTypeFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "application/json"
	}
	return "application/yaml"
}

// formatValidatedHuman summarizes each task role's directive, sorted by name
func formatValidatedHuman(job *client.ValidatedJob) string {
	names := make([]string, 0, len(job.TaskRoles))
	for name := range job.TaskRoles {
		names = append(names, name)
	}
	sort.Strings(names)

	var vc string
	if len(names) > 0 {
		vc = job.TaskRoles[names[0]].HivedPodSpec.VirtualCluster
	}

	var b strings.Builder
	b.WriteString(styles.StatusOK.Render("✓"))
	fmt.Fprintf(&b, " Job %s is valid (virtual cluster %s)\n\n", job.Name, vc)
	b.WriteString(styles.TableHeader.Render(fmt.Sprintf("%-16s %-10s %-12s %-6s %-9s %s",
		"TASK ROLE", "INSTANCES", "CELL TYPE", "CELLS", "PRIORITY", "PINNED CELL")))
	for _, name := range names {
		tr := job.TaskRoles[name]
		spec := tr.HivedPodSpec
		fmt.Fprintf(&b, "\n%-16s %-10d %-12s %-6d %-9s %s",
			name, tr.Instances, orDash(spec.CellType), spec.CellNumber, priorityString(spec.Priority), orDash(spec.PinnedCellID))
	}
	return b.String()
}

// formatValidatedJSON prints the annotated protocol exactly as returned
func formatValidatedJSON(job *client.ValidatedJob) string {
	var out bytes.Buffer
	if err := json.Indent(&out, job.Raw, "", "  "); err != nil {
		return string(job.Raw)
	}
	return out.String()
}

func formatRejectionHuman(apiErr *client.APIError) string {
	kind := apiErr.Type
	if kind == "" {
		kind = "rejected"
	}
	return fmt.Sprintf("%s Job rejected: %s\n  %s", styles.StatusCritical.Render("✗"), kind, apiErr.Message)
}

func formatRejectionJSON(apiErr *client.APIError) string {
	output := map[string]interface{}{
		"valid": false,
		"type":  apiErr.Type,
		"error": apiErr.Message,
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func priorityString(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *p)
}
