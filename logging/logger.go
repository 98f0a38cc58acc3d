// Package logging configures the process-wide structured logger used
// by the scenario builder, the clock, lifecycle reactors, and the live
// server — grounded on
// kaanevranportfolio-RideSharing/shared/logger, trimmed to the fields a
// single-process simulator actually emits (no gRPC/HTTP-request
// helpers; those belong to the optional live-telemetry server instead).
package logging

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Fields is a convenience alias so callers don't need to import logrus
// directly just to build a field set.
type Fields = logrus.Fields

// New builds a *logrus.Logger configured for level and env. An
// unparseable level falls back to Info; env == "production" selects
// JSON output, anything else a colored text formatter (grounded on the
// teacher corpus's dev-vs-prod formatter switch).
func New(level, env string) *logrus.Logger {
	log := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if env == "production" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	return log
}

// WithRun returns an Entry tagged with the run's identifying fields, the
// base every reactor/component-scoped logger in a scenario run derives
// from.
func WithRun(log *logrus.Logger, runID string, seed int64) *logrus.Entry {
	return log.WithFields(Fields{"run_id": runID, "seed": seed})
}

// WithComponent tags an entry with the emitting component's name
// (e.g. "reactors", "reposition", "scenario").
func WithComponent(entry *logrus.Entry, component string) *logrus.Entry {
	return entry.WithField("component", component)
}

// WithReactor tags an entry with the reactor name and the current event
// kind it is responding to, the pair every per-event debug line needs.
func WithReactor(entry *logrus.Entry, reactor, eventKind string) *logrus.Entry {
	return entry.WithFields(Fields{"reactor": reactor, "event_kind": eventKind})
}
