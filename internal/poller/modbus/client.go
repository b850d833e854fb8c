// internal/poller/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// maxReadQuantity is the Modbus FC3 per-request register limit.
const maxReadQuantity = 125

// Client implements poller.Client over Modbus TCP holding registers.
// This adapter is geometry-only: it issues reads and unpacks raw words.
type Client struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

// Config is minimal transport config.
type Config struct {
	Endpoint string
	UnitID   uint8
	Timeout  time.Duration
}

// New creates a connected Modbus TCP client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus client: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.SlaveId = cfg.UnitID
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("modbus client: connect %s: %w", cfg.Endpoint, err)
	}

	return &Client{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

// Close closes the TCP connection.
func (c *Client) Close() error {
	if c == nil || c.handler == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// ReadWords reads count holding registers starting at addr.
// Spans larger than one Modbus request are split and reassembled in order.
func (c *Client) ReadWords(addr, count uint16) ([]uint16, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("modbus client: not connected")
	}
	if count == 0 {
		return nil, nil
	}
	if uint32(addr)+uint32(count) > 0x10000 {
		return nil, fmt.Errorf("modbus client: read %d@%d exceeds register space", count, addr)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]uint16, 0, count)
	for remaining := count; remaining > 0; {
		qty := remaining
		if qty > maxReadQuantity {
			qty = maxReadQuantity
		}

		raw, err := c.client.ReadHoldingRegisters(addr, qty)
		if err != nil {
			return nil, err
		}
		if len(raw) != int(qty)*2 {
			return nil, fmt.Errorf("modbus: read-registers payload %d bytes, want %d", len(raw), int(qty)*2)
		}
		out = append(out, unpackRegisters(raw)...)

		addr += qty
		remaining -= qty
	}

	return out, nil
}

// ---- helpers (pure geometry) ----

func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
