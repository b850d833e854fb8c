// internal/poller/builder.go
package poller

import (
	"time"

	"github.com/sirupsen/logrus"

	cfg "github.com/tamzrod/mate3-sunspec/internal/config"
	pmodbus "github.com/tamzrod/mate3-sunspec/internal/poller/modbus"
)

// Build constructs a Poller and wires Modbus client lifecycle.
// Connection is reused while healthy.
// On transport death, Poller discards the client and uses factory on a future tick.
func Build(d cfg.DeviceConfig, log logrus.FieldLogger) (*Poller, func() error, error) {
	// client factory: ONE attempt per call
	factory := func() (Client, error) {
		c, err := pmodbus.New(pmodbus.Config{
			Endpoint: d.Source.Endpoint,
			UnitID:   d.Source.UnitID,
			Timeout:  time.Duration(d.Source.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	// initial client (fail fast at startup)
	client, err := factory()
	if err != nil {
		return nil, nil, err
	}

	p, err := New(
		Config{
			DeviceID:    d.ID,
			BaseAddress: d.Source.Base(),
			Interval:    time.Duration(d.Poll.IntervalMs) * time.Millisecond,
			Once:        d.Poll.Once,
			Log:         log,
		},
		client,
		factory,
	)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	return p, p.Close, nil
}
