package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/philipp01105/syslogconsole/chunker"
	"github.com/philipp01105/syslogconsole/core"
	"github.com/philipp01105/syslogconsole/diag"
)

// newReassembleCommand constructs the `reassemble` command.
func newReassembleCommand(reporter diag.Reporter) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reassemble",
		Short: "Join framed fragments from stdin into complete payloads",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stripSeverity, _ := cmd.Flags().GetBool("strip-severity")
			maxPending, _ := cmd.Flags().GetInt("max-pending")

			r := chunker.NewReassembler(maxPending)
			out := cmd.OutOrStdout()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			scanner.Buffer(make([]byte, 64*1024), maxLine)

			for line := 1; scanner.Scan(); line++ {
				text := scanner.Text()
				if stripSeverity {
					text = trimSeverity(text)
				}
				payload, done, err := r.Add(text)
				if err != nil {
					reporter.ReportInternalError("reassemble", fmt.Errorf("line %d: %w", line, err))
					continue
				}
				if done {
					if _, err := fmt.Fprintln(out, payload); err != nil {
						return err
					}
				}
			}
			if err := scanner.Err(); err != nil {
				return err
			}
			if n := r.Pending(); n > 0 {
				reporter.ReportInternalError("reassemble", fmt.Errorf("%d incomplete payloads at end of input", n))
			}
			return nil
		},
	}

	cmd.Flags().Bool("strip-severity", false, `Drop a leading "<severity> " as written by the console transport`)
	cmd.Flags().Int("max-pending", chunker.DefaultMaxPending, "Incomplete payloads kept before the oldest is evicted")
	return cmd
}

// trimSeverity removes a leading severity label and one space
func trimSeverity(line string) string {
	label, rest, ok := strings.Cut(line, " ")
	if !ok {
		return line
	}
	if _, err := core.ParseSeverity(label); err != nil {
		return line
	}
	return rest
}
