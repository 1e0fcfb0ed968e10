// Package common provides the logger shared by the dashboard server and CLI.
package common

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/phuslu/log"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
	"github.com/ternarybob/arbor/writers"
)

const (
	defaultLogFile    = "logs/vire-dashboard.log"
	defaultMaxSize    = 500 * 1024
	defaultMaxBackups = 20
)

// LoggingConfig is the [logging] section: level, outputs (console, file) and
// the file writer's format ("json" or "text") and rotation.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// Logger wraps arbor.ILogger to provide a consistent interface
type Logger struct {
	arbor.ILogger
}

// writerConfigs maps the configured outputs onto arbor writers. Outputs it
// does not recognise are returned so they can be reported once logging works.
func (cfg LoggingConfig) writerConfigs(console io.Writer) ([]models.WriterConfiguration, []string) {
	outputs := cfg.Outputs
	if len(outputs) == 0 {
		outputs = []string{"console"}
	}

	var (
		out     []models.WriterConfiguration
		unknown []string
	)
	for _, name := range outputs {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "console", "stderr":
			out = append(out, models.WriterConfiguration{
				Type:       models.LogWriterTypeConsole,
				Writer:     console,
				TimeFormat: time.RFC3339,
			})
		case "file":
			out = append(out, cfg.fileWriter())
		default:
			unknown = append(unknown, name)
		}
	}
	return out, unknown
}

func (cfg LoggingConfig) fileWriter() models.WriterConfiguration {
	w := models.WriterConfiguration{
		Type:       models.LogWriterTypeFile,
		FileName:   cfg.FilePath,
		MaxSize:    int64(cfg.MaxSizeMB) * 1024 * 1024,
		MaxBackups: cfg.MaxBackups,
		TimeFormat: time.RFC3339,
		OutputType: models.OutputFormatLogfmt,
	}
	if w.FileName == "" {
		w.FileName = defaultLogFile
	}
	if w.MaxSize <= 0 {
		w.MaxSize = defaultMaxSize
	}
	if w.MaxBackups <= 0 {
		w.MaxBackups = defaultMaxBackups
	}
	if strings.EqualFold(cfg.Format, "json") {
		w.OutputType = models.OutputFormatJSON
	}
	return w
}

// NewLoggerFromConfig builds the server logger. A memory writer is always
// attached so correlated request logs can be read back.
func NewLoggerFromConfig(cfg LoggingConfig) *Logger {
	level := cfg.Level
	if level == "" {
		level = "info"
	}

	configs, unknown := cfg.writerConfigs(os.Stderr)

	l := arbor.NewLogger()
	for _, wc := range configs {
		if wc.Type == models.LogWriterTypeFile {
			l = l.WithFileWriter(wc)
		} else {
			l = l.WithConsoleWriter(wc)
		}
	}
	l = l.WithMemoryWriter(models.WriterConfiguration{
		Type: models.LogWriterTypeMemory,
	}).WithLevelFromString(level)

	logger := &Logger{ILogger: l}
	if len(unknown) > 0 {
		logger.Warn().Strs("outputs", unknown).Msg("ignoring unknown log outputs")
	}
	return logger
}

// lineWriter renders arbor's JSON events as "LEVEL message key=value" lines
// with sorted keys, so tests and the CLI can match on stable text.
type lineWriter struct {
	out   io.Writer
	level log.Level
}

func (w *lineWriter) Write(p []byte) (int, error) {
	var evt models.LogEvent
	if err := json.Unmarshal(p, &evt); err != nil {
		return w.out.Write(p)
	}
	if evt.Level < w.level {
		return len(p), nil
	}

	var b strings.Builder
	b.WriteString(strings.ToUpper(evt.Level.String()))
	b.WriteByte(' ')
	b.WriteString(evt.Message)
	if evt.CorrelationID != "" {
		fmt.Fprintf(&b, " correlation_id=%s", evt.CorrelationID)
	}
	keys := make([]string, 0, len(evt.Fields))
	for k := range evt.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, evt.Fields[k])
	}
	if evt.Error != "" {
		fmt.Fprintf(&b, " error=%s", evt.Error)
	}
	b.WriteByte('\n')

	if _, err := io.WriteString(w.out, b.String()); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *lineWriter) WithLevel(level log.Level) writers.IWriter {
	w.level = level
	return w
}

func (w *lineWriter) GetFilePath() string { return "" }
func (w *lineWriter) Close() error        { return nil }

// NewLoggerWithOutput creates a logger writing plain lines to w.
func NewLoggerWithOutput(level string, w io.Writer) *Logger {
	arbor.RegisterWriter(arbor.WRITER_CONSOLE, &lineWriter{out: w, level: log.TraceLevel})

	l := arbor.NewLogger().
		WithMemoryWriter(models.WriterConfiguration{
			Type: models.LogWriterTypeMemory,
		}).
		WithLevelFromString(level)

	return &Logger{ILogger: l}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error)             { return len(p), nil }
func (d discardWriter) WithLevel(_ log.Level) writers.IWriter { return d }
func (discardWriter) GetFilePath() string                     { return "" }
func (discardWriter) Close() error                            { return nil }

// NewSilentLogger creates a logger that discards all output, including the
// globally registered console writer.
func NewSilentLogger() *Logger {
	return &Logger{ILogger: arbor.NewLogger().WithWriters([]writers.IWriter{discardWriter{}})}
}

// WithCorrelationId returns a new Logger tagged with a request correlation id.
func (l *Logger) WithCorrelationId(id string) *Logger {
	return &Logger{ILogger: l.ILogger.WithCorrelationId(id)}
}

// WithComponent returns a new Logger whose lines carry a component prefix,
// for example "mcp" or "cli".
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{ILogger: l.ILogger.WithPrefix(name)}
}
