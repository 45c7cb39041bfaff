package main

import (
	"fmt"
	"os"

	"github.com/philipp01105/syslogconsole/diag"
	"github.com/philipp01105/syslogconsole/internal/cli"
)

func main() {
	reporter := diag.Default()
	if err := cli.NewRoot(reporter).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "syslogconsole:", err)
		os.Exit(1)
	}
}
