package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/philipp01105/syslogconsole/config"
	"github.com/philipp01105/syslogconsole/core"
	"github.com/philipp01105/syslogconsole/diag"
	"github.com/philipp01105/syslogconsole/metric"
)

// maxLine bounds a single input line
const maxLine = 4 * 1024 * 1024

// newSendCommand constructs the `send` command.
func newSendCommand(reporter diag.Reporter) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send stdin lines as messages",
		Long: "Reads one message per line from stdin. Lines holding a JSON value are sent " +
			"as structured messages, anything else as plain text.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sevLabel, _ := cmd.Flags().GetString("severity")
			severity, err := core.ParseSeverity(sevLabel)
			if err != nil {
				return err
			}
			plain, _ := cmd.Flags().GetBool("plain")
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

			var m *metric.Metrics
			if cfg.Metrics.Enabled || metricsAddr != "" {
				reg := prometheus.NewRegistry()
				m = metric.New(reg)
				if metricsAddr != "" {
					srv := serveMetrics(metricsAddr, reg, reporter)
					defer srv.Close()
				}
			}

			h, err := newHandler(cfg, cmd.OutOrStdout(), reporter)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg, h, reporter, m)
			if err != nil {
				h.Close()
				return err
			}

			sendErr := sendLines(cmd, log.Send, severity, plain)
			return multierr.Append(sendErr, log.Close())
		},
	}

	addConfigFlags(cmd)
	cmd.Flags().String("severity", "notice", "Severity of every message")
	cmd.Flags().Bool("plain", false, "Send every line as text, even if it is JSON")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address while sending")
	return cmd
}

func sendLines(cmd *cobra.Command, send func(core.Severity, interface{}) error, severity core.Severity, plain bool) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 64*1024), maxLine)

	for line := 1; scanner.Scan(); line++ {
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		if err := send(severity, decodeLine(text, plain)); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return scanner.Err()
}

// decodeLine returns the JSON value of text, or text itself
func decodeLine(text string, plain bool) interface{} {
	if plain {
		return text
	}
	var v interface{}
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return text
	}
	return v
}

func serveMetrics(addr string, reg *prometheus.Registry, reporter diag.Reporter) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			reporter.ReportInternalError("metrics", err)
		}
	}()
	return srv
}

// addConfigFlags registers the flags shared by commands that build a logger
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "YAML configuration file")
	cmd.Flags().String("domain", "", "Domain tagging every message (overrides config)")
	cmd.Flags().String("facility", "", "Syslog facility (overrides config)")
	cmd.Flags().String("transport", "", "syslog, journald, kafka, file or console (overrides config)")
	cmd.Flags().Int("max-fragment", 0, "Maximum fragment size in characters (overrides config)")
}

// loadConfig reads --config, if any, and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	domain, _ := cmd.Flags().GetString("domain")

	var cfg *config.Config
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		if domain == "" {
			domain = "syslogconsole"
		}
		cfg = config.New(domain)
	}

	if domain != "" {
		cfg.Domain = domain
	}
	if f, _ := cmd.Flags().GetString("facility"); f != "" {
		cfg.Facility = f
	}
	if t, _ := cmd.Flags().GetString("transport"); t != "" {
		cfg.Transport.Type = config.TransportType(t)
	}
	if n, _ := cmd.Flags().GetInt("max-fragment"); n != 0 {
		cfg.MaxFragment = n
	}
	return cfg, cfg.Validate()
}
