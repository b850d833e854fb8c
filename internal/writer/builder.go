// internal/writer/builder.go
package writer

import (
	"context"

	"github.com/sirupsen/logrus"

	cfg "github.com/tamzrod/mate3-sunspec/internal/config"
)

// Build creates every configured sink. The log sink is always present.
func Build(ctx context.Context, c *cfg.Config, log logrus.FieldLogger) (Writer, func() error, error) {
	names := []string{"log"}
	sinks := []Writer{NewLogWriter(log)}

	var closers []func() error

	if c.Redis.Enabled {
		rw, err := NewRedisWriter(ctx, c.Redis, log)
		if err != nil {
			return nil, nil, err
		}
		names = append(names, "redis")
		sinks = append(sinks, rw)
		closers = append(closers, rw.Close)
	}

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	return New(names, sinks), closeAll, nil
}
