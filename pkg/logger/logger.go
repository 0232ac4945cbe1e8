package logger

import (
	"io"
	"os"
	"strings"
	"time"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"

	"github.com/akam1o/tna-routegen/pkg/errors"
)

const (
	FieldComponent = "component"
	FieldCategory  = "category"
)

// Logger provides structured logging for tna-routegen components
type Logger struct {
	*logrus.Entry
	component string
}

// Config holds logger configuration
type Config struct {
	Level        logrus.Level
	ReportCaller bool
	// Output defaults to stderr so that interactive prompts on stdout stay readable
	Output io.Writer
}

// DefaultConfig returns default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:  logrus.InfoLevel,
		Output: os.Stderr,
	}
}

// New creates a new logger for a specific component
func New(component string, cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	base := logrus.New()
	base.SetOutput(out)
	base.SetLevel(cfg.Level)
	base.SetReportCaller(cfg.ReportCaller)
	base.SetFormatter(&formatter.Formatter{
		TimestampFormat: time.RFC3339,
		TrimMessages:    true,
		NoFieldsSpace:   true,
		HideKeys:        true,
		FieldsOrder:     []string{FieldComponent, FieldCategory},
	})

	return &Logger{
		Entry:     base.WithField(FieldComponent, component),
		component: component,
	}
}

// Discard returns a logger that drops everything, for tests and nil-safe defaults
func Discard() *Logger {
	return New("discard", &Config{Level: logrus.PanicLevel, Output: io.Discard})
}

// WithField adds a field to the logger context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{
		Entry:     l.Entry.WithField(key, value),
		component: l.component,
	}
}

// WithCategory scopes the logger to a sub-category of the component
func (l *Logger) WithCategory(category string) *Logger {
	return l.WithField(FieldCategory, category)
}

// ErrorWithCause logs an error with cause and suggested action
func (l *Logger) ErrorWithCause(msg string, err error, cause string, action string) {
	fields := logrus.Fields{
		"error":  err,
		"cause":  cause,
		"action": action,
	}
	var coded *errors.Error
	if errors.As(err, &coded) {
		fields["code"] = coded.Code
	}
	l.Entry.WithFields(fields).Error(msg)
}

// Component returns the logger's component name
func (l *Logger) Component() string {
	return l.component
}

// ParseLevel maps a config/flag level name to a logrus level
func ParseLevel(level string) (logrus.Level, error) {
	return logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
}
