// internal/writer/log.go
package writer

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/mate3-sunspec/internal/poller"
)

// logWriter reports each cycle through logrus: the common block once, then
// one entry per block that carries measurements.
type logWriter struct {
	log logrus.FieldLogger
}

// NewLogWriter returns a sink that logs results.
func NewLogWriter(log logrus.FieldLogger) Writer {
	return &logWriter{log: log}
}

func (w *logWriter) Write(_ context.Context, res poller.PollResult) error {
	l := w.log.WithField("device", res.DeviceID)

	if res.Err != nil {
		l.WithError(res.Err).Warn("poll cycle failed")
		return nil
	}

	if c := res.Common; c != nil {
		l.WithFields(logrus.Fields{
			"manufacturer":   c.Manufacturer,
			"model":          c.Model,
			"version":        c.Version,
			"serial":         c.SerialNumber,
			"device_address": c.DeviceAddress,
		}).Info("common block")
	}

	for _, b := range res.Blocks {
		bl := l.WithFields(logrus.Fields{
			"block":   b.Name,
			"did":     b.DID,
			"address": b.Address,
		})

		if len(b.Measurements) == 0 {
			bl.Debug("block")
			continue
		}

		fields := make(logrus.Fields, len(b.Measurements))
		for name, v := range b.Measurements {
			fields[name] = v
		}
		bl.WithFields(fields).Info("measurements")
	}

	l.WithFields(logrus.Fields{
		"blocks":   len(res.Blocks),
		"duration": res.Duration,
	}).Debug("poll cycle complete")

	return nil
}
