package audit

import (
	"io"
	"os"
	"path/filepath"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Action names written to the audit trail.
const (
	ActionCommissionProfileUpserted = "commission_profile.upserted"
	ActionTaskMoved                 = "task.moved"
	ActionTaskDeleted               = "task.deleted"
	ActionTimerStopped              = "timer.stopped"
)

// Logger is an append-only trail of money and ordering changes.
type Logger struct {
	log    *logrus.Logger
	closer io.Closer
}

// New writes JSON lines to a rotated file, or stdout when no file is configured.
func New(cfg config.AuditConfig) (*Logger, error) {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "action",
		},
	})
	l.SetLevel(logrus.InfoLevel)

	a := &Logger{log: l}
	if cfg.File == "" {
		l.SetOutput(os.Stdout)
		return a, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o750); err != nil {
		return nil, err
	}
	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	l.SetOutput(file)
	a.closer = file
	return a, nil
}

// NewWithWriter is used by tests to capture entries.
func NewWithWriter(w io.Writer) *Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{logrus.FieldKeyMsg: "action"},
	})
	l.SetOutput(w)
	return &Logger{log: l}
}

// Discard drops every entry.
func Discard() *Logger {
	return NewWithWriter(io.Discard)
}

// Record appends one entry. actor may be empty for system actions.
func (a *Logger) Record(action, actor string, fields map[string]interface{}) {
	if a == nil {
		return
	}
	entry := a.log.WithField("actor", actor)
	if len(fields) > 0 {
		entry = entry.WithFields(logrus.Fields(fields))
	}
	entry.Info(action)
}

func (a *Logger) Close() error {
	if a == nil || a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
