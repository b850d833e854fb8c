// internal/poller/poller.go
package poller

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/mate3-sunspec/internal/sunspec"
)

// Client is the register source the poller walks, plus its lifecycle.
type Client interface {
	sunspec.RegisterSource
	Close() error
}

// ClientFactory makes ONE connection attempt per call.
type ClientFactory func() (Client, error)

// Config is the minimal runtime config the poller needs.
type Config struct {
	DeviceID    string
	BaseAddress uint16
	Interval    time.Duration
	Once        bool
	Log         logrus.FieldLogger
}

// Poller runs SunSpec discovery cycles against one device.
// Cycles are sequential: one goroutine per device. Close may be called from
// another goroutine; it waits for an in-flight cycle.
type Poller struct {
	cfg     Config
	factory ClientFactory
	log     logrus.FieldLogger

	mu     sync.Mutex // guards client and closed; held for a whole cycle
	client Client
	closed bool
}

// New creates a poller with immutable config.
// client may be nil when factory is set; it is then created on the first cycle.
func New(cfg Config, client Client, factory ClientFactory) (*Poller, error) {
	if cfg.DeviceID == "" {
		return nil, errors.New("poller: device id required")
	}
	if !cfg.Once && cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if client == nil && factory == nil {
		return nil, errors.New("poller: client or factory required")
	}
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Poller{
		cfg:     cfg,
		client:  client,
		factory: factory,
		log:     log.WithField("device", cfg.DeviceID),
	}, nil
}

// PollOnce performs exactly one discovery + decode cycle.
// All-or-nothing: any failure aborts the cycle and no blocks are committed.
func (p *Poller) PollOnce() (res PollResult) {
	res = PollResult{
		DeviceID: p.cfg.DeviceID,
		At:       time.Now(),
	}
	defer func() { res.Duration = time.Since(res.At) }()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureClient(); err != nil {
		res.Err = err
		return res
	}

	common, blocks, err := p.walk(sunspec.NewWalker(p.client))
	if err != nil {
		if errors.Is(err, sunspec.ErrUnavailable) {
			p.dropClient()
		}
		res.Err = err
		return res
	}

	// Commit only if the whole chain was walked
	res.Common = &common
	res.Blocks = blocks
	return res
}

func (p *Poller) walk(w *sunspec.Walker) (sunspec.CommonBlock, []BlockReport, error) {
	base := p.cfg.BaseAddress

	size, err := w.FindRoot(base)
	if err != nil {
		return sunspec.CommonBlock{}, nil, err
	}
	p.log.Debug("SunSpec Outback Power device found")

	common, err := w.DecodeCommonBlock(base)
	if err != nil {
		return sunspec.CommonBlock{}, nil, err
	}

	start, err := sunspec.ChainStart(base, size)
	if err != nil {
		return sunspec.CommonBlock{}, nil, err
	}

	var blocks []BlockReport

	it := w.Walk(start)
	for it.Next() {
		b := it.Block()
		rep := BlockReport{
			Address: b.Address,
			DID:     b.Header.DID,
			Name:    b.Name(),
			Length:  b.Header.Length,
			Known:   b.Known,
		}

		if !b.Known {
			p.log.WithFields(logrus.Fields{
				"did":     b.Header.DID,
				"address": b.Address,
			}).Warn("unknown device type, skipping block")
		}

		if b.Known && len(b.Schema.Fields) > 0 {
			words, err := w.ReadBlock(b)
			if err != nil {
				return sunspec.CommonBlock{}, nil, fmt.Errorf("poller: block %d at %d: %w", b.Header.DID, b.Address, err)
			}
			rep.Measurements = sunspec.DecodeMeasurements(b.Header.DID, words)
		}

		blocks = append(blocks, rep)
	}
	if err := it.Err(); err != nil {
		return sunspec.CommonBlock{}, nil, err
	}

	return common, blocks, nil
}

func (p *Poller) ensureClient() error {
	if p.closed {
		return fmt.Errorf("%w: poller closed", sunspec.ErrUnavailable)
	}
	if p.client != nil {
		return nil
	}
	if p.factory == nil {
		return fmt.Errorf("%w: no client", sunspec.ErrUnavailable)
	}
	c, err := p.factory()
	if err != nil {
		return fmt.Errorf("%w: connect: %w", sunspec.ErrUnavailable, err)
	}
	p.client = c
	return nil
}

// dropClient discards a client after transport death.
// Without a factory the client is kept and reused.
func (p *Poller) dropClient() {
	if p.factory == nil || p.client == nil {
		return
	}
	if err := p.client.Close(); err != nil {
		p.log.WithError(err).Debug("close after transport failure")
	}
	p.client = nil
}

// Close releases the current client. Later cycles fail with ErrUnavailable
// instead of reconnecting.
func (p *Poller) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}
