// Package cli contains the Cobra commands of the syslogconsole binary.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/philipp01105/syslogconsole/diag"
)

// NewRoot constructs the root command. reporter receives malformed
// input and other swallowed failures; nil uses diag.Default().
func NewRoot(reporter diag.Reporter) *cobra.Command {
	if reporter == nil {
		reporter = diag.Default()
	}

	root := &cobra.Command{
		Use:           "syslogconsole",
		Short:         "Structured, chunked logging to syslog and friends",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newSendCommand(reporter),
		newReassembleCommand(reporter),
		newFingerprintCommand(),
		newDigestCommand(),
	)
	return root
}
