//go:build !windows && !plan9

package cli

import (
	"github.com/philipp01105/syslogconsole/config"
	"github.com/philipp01105/syslogconsole/core"
	"github.com/philipp01105/syslogconsole/handler"
	"github.com/philipp01105/syslogconsole/handler/sysloghandler"
)

func newSyslogHandler(cfg *config.Config, facility core.Facility) (handler.Handler, error) {
	return sysloghandler.New(sysloghandler.Config{
		Network:  cfg.Transport.Syslog.Network,
		Addr:     cfg.Transport.Syslog.Addr,
		Tag:      cfg.Domain,
		Facility: facility,
	})
}
