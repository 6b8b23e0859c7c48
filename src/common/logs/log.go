// Package logs configures the charm logger used by bazaard and bazaarctl.
// Output goes to stdout or, when available, to systemd journald.
package logs

import (
	"io"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"
)

// LogOutput selects where log lines are written
type LogOutput string

const (
	OutputStdout   LogOutput = "stdout"
	OutputJournald LogOutput = "journald"
	// OutputAuto picks journald when the host runs systemd, stdout otherwise
	OutputAuto LogOutput = "auto"
)

// Logger wraps a charm logger and remembers the resolved output
type Logger struct {
	*log.Logger
	output LogOutput
}

// Config holds the logger configuration
type Config struct {
	Output LogOutput
	// Level is one of debug, info, warn, error
	Level  string
	Prefix string
	// Writer overrides Output when set
	Writer io.Writer
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	return Config{
		Output: OutputAuto,
		Level:  "info",
	}
}

func journaldAvailable() bool {
	if _, err := exec.LookPath("systemd-cat"); err != nil {
		return false
	}
	_, err := os.Stat("/run/systemd/journal/socket")
	return err == nil
}

func parseLevel(level string) log.Level {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// New creates a Logger from cfg
func New(cfg Config) *Logger {
	writer, output := resolveOutput(cfg)

	logger := log.NewWithOptions(writer, log.Options{
		Level:           parseLevel(cfg.Level),
		Prefix:          cfg.Prefix,
		ReportTimestamp: true,
	})

	return &Logger{
		Logger: logger,
		output: output,
	}
}

func resolveOutput(cfg Config) (io.Writer, LogOutput) {
	if cfg.Writer != nil {
		return cfg.Writer, OutputStdout
	}
	switch cfg.Output {
	case OutputJournald, OutputAuto:
		if journaldAvailable() {
			return newJournaldWriter(cfg.Prefix), OutputJournald
		}
	}
	return os.Stdout, OutputStdout
}

// NewDefault creates a Logger with DefaultConfig
func NewDefault() *Logger {
	return New(DefaultConfig())
}

// Output returns the resolved output destination
func (l *Logger) Output() LogOutput {
	return l.output
}

// journaldWriter pipes each write through systemd-cat
type journaldWriter struct {
	identifier string
}

func newJournaldWriter(identifier string) *journaldWriter {
	if identifier == "" {
		identifier = "bazaar"
	}
	return &journaldWriter{identifier: identifier}
}

func (w *journaldWriter) Write(p []byte) (int, error) {
	cmd := exec.Command("systemd-cat", "-t", w.identifier)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return os.Stdout.Write(p)
	}
	if err := cmd.Start(); err != nil {
		return os.Stdout.Write(p)
	}

	n, _ := stdin.Write(p)
	stdin.Close()
	// the message has been handed to journald; its exit status is not ours to report
	_ = cmd.Wait()

	return n, nil
}
