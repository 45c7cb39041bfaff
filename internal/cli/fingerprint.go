package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/philipp01105/syslogconsole/core"
	"github.com/philipp01105/syslogconsole/fingerprint"
)

// newFingerprintCommand constructs the `fingerprint` command.
func newFingerprintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print a run fingerprint for a domain",
		RunE: func(cmd *cobra.Command, _ []string) error {
			domain, _ := cmd.Flags().GetString("domain")
			facilityName, _ := cmd.Flags().GetString("facility")
			pid, _ := cmd.Flags().GetInt("pid")

			facility, err := core.ParseFacility(facilityName)
			if err != nil {
				return err
			}
			state := fingerprint.NewRunState(domain, facility, fingerprint.WithPID(pid))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), state.RunFingerprint())
			return err
		},
	}

	cmd.Flags().String("domain", "syslogconsole", "Domain name")
	cmd.Flags().String("facility", "local0", "Syslog facility")
	cmd.Flags().Int("pid", os.Getpid(), "Process id mixed into the fingerprint")
	return cmd
}

// newDigestCommand constructs the `digest` command.
func newDigestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "digest [payload]",
		Short: "Print the content digest of a payload (arguments or stdin)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload string
			if len(args) > 0 {
				payload = strings.Join(args, " ")
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				payload = strings.TrimSuffix(string(data), "\n")
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), fingerprint.ContentDigest(payload))
			return err
		},
	}
}
