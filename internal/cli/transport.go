package cli

import (
	"io"

	"github.com/philipp01105/syslogconsole/config"
	"github.com/philipp01105/syslogconsole/diag"
	"github.com/philipp01105/syslogconsole/handler"
	"github.com/philipp01105/syslogconsole/handler/consolehandler"
	"github.com/philipp01105/syslogconsole/handler/filehandler"
	"github.com/philipp01105/syslogconsole/handler/journaldhandler"
	"github.com/philipp01105/syslogconsole/handler/kafkahandler"
	"github.com/philipp01105/syslogconsole/logger"
	"github.com/philipp01105/syslogconsole/metric"
)

// newHandler builds the configured transport. Console output goes to out.
func newHandler(cfg *config.Config, out io.Writer, reporter diag.Reporter) (handler.Handler, error) {
	facility, err := cfg.FacilityValue()
	if err != nil {
		return nil, err
	}

	var h handler.Handler
	switch cfg.Transport.Type {
	case config.TransportSyslog:
		h, err = newSyslogHandler(cfg, facility)
	case config.TransportJournald:
		h = journaldhandler.New(journaldhandler.Config{
			Identifier: cfg.Domain,
			Facility:   facility,
		})
	case config.TransportKafka:
		h, err = kafkahandler.New(kafkahandler.Config{
			Brokers:      cfg.Transport.Kafka.Brokers,
			Topic:        cfg.Transport.Kafka.Topic,
			Key:          cfg.Domain,
			Facility:     facility,
			WriteTimeout: cfg.Transport.Kafka.WriteTimeout,
		})
	case config.TransportFile:
		h, err = filehandler.NewFileHandler(filehandler.FileConfig{
			Filename:       cfg.Transport.File.Filename,
			MaxSize:        cfg.Transport.File.MaxSize,
			MaxBackups:     cfg.Transport.File.MaxBackups,
			RotateInterval: cfg.Transport.File.RotateInterval,
		})
	default:
		h = consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{Writer: out})
	}
	if err != nil {
		return nil, err
	}

	if cfg.Async.Enabled {
		h = handler.NewAsyncHandler(h, handler.AsyncConfig{
			BufferSize:   cfg.Async.BufferSize,
			BlockTimeout: cfg.Async.BlockTimeout,
			Reporter:     reporter,
		})
	}
	return h, nil
}

// newLogger wires a Logger from configuration
func newLogger(cfg *config.Config, h handler.Handler, reporter diag.Reporter, m *metric.Metrics) (*logger.Logger, error) {
	facility, err := cfg.FacilityValue()
	if err != nil {
		return nil, err
	}
	errorCheck, err := cfg.ErrorCheckSeverity()
	if err != nil {
		return nil, err
	}

	return logger.NewBuilder(cfg.Domain).
		WithFacility(facility).
		WithHandler(h).
		WithMaxFragment(cfg.MaxFragment).
		WithErrorCheck(errorCheck).
		WithTTY(cfg.TTY).
		WithPersist(logger.Fields(cfg.Persist)...).
		WithReporter(reporter).
		WithMetrics(m).
		Build(), nil
}
