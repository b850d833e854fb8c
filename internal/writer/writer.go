// internal/writer/writer.go
package writer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/mate3-sunspec/internal/poller"
)

// multiWriter fans one result out to every sink.
// A failing sink does not stop delivery to the others.
type multiWriter struct {
	sinks map[string]Writer
	order []string
}

// New combines named sinks. Delivery follows the order given.
func New(names []string, sinks []Writer) Writer {
	w := &multiWriter{sinks: make(map[string]Writer, len(sinks))}
	for i, s := range sinks {
		w.sinks[names[i]] = s
		w.order = append(w.order, names[i])
	}
	return w
}

func (w *multiWriter) Write(ctx context.Context, res poller.PollResult) error {
	var errs []string

	for _, name := range w.order {
		if err := w.sinks[name].Write(ctx, res); err != nil {
			errs = append(errs, fmt.Sprintf(
				"writer: sink=%s device=%s err=%v",
				name, res.DeviceID, err,
			))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}

	return nil
}
