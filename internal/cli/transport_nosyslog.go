//go:build windows || plan9

package cli

import (
	"errors"

	"github.com/philipp01105/syslogconsole/config"
	"github.com/philipp01105/syslogconsole/core"
	"github.com/philipp01105/syslogconsole/handler"
)

func newSyslogHandler(*config.Config, core.Facility) (handler.Handler, error) {
	return nil, errors.New("syslog transport is not supported on this platform")
}
