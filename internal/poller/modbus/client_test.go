// internal/poller/modbus/client_test.go
package modbus

import (
	"encoding/binary"
	"io"
	"net"
	"sync"
	"testing"
	"time"
)

// fakeSlave answers FC3 with each register holding its own address.
type fakeSlave struct {
	ln net.Listener

	mu       sync.Mutex
	requests [][2]uint16 // addr, qty
}

func startFakeSlave(t *testing.T) *fakeSlave {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := &fakeSlave{ln: ln}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go s.serve(conn)
		}
	}()

	return s
}

func (s *fakeSlave) serve(c net.Conn) {
	defer c.Close()
	for {
		// MBAP: TID(2) PID(2) LEN(2) UID(1)
		hdr := make([]byte, 7)
		if _, err := io.ReadFull(c, hdr); err != nil {
			return
		}
		length := int(binary.BigEndian.Uint16(hdr[4:6]))
		pdu := make([]byte, length-1)
		if _, err := io.ReadFull(c, pdu); err != nil {
			return
		}

		fc := pdu[0]
		addr := binary.BigEndian.Uint16(pdu[1:3])
		qty := binary.BigEndian.Uint16(pdu[3:5])

		s.mu.Lock()
		s.requests = append(s.requests, [2]uint16{addr, qty})
		s.mu.Unlock()

		resp := []byte{fc, byte(qty * 2)}
		for i := uint16(0); i < qty; i++ {
			resp = binary.BigEndian.AppendUint16(resp, addr+i)
		}

		adu := make([]byte, 7, 7+len(resp))
		copy(adu[0:2], hdr[0:2])
		binary.BigEndian.PutUint16(adu[4:6], uint16(1+len(resp)))
		adu[6] = hdr[6]
		adu = append(adu, resp...)

		if _, err := c.Write(adu); err != nil {
			return
		}
	}
}

func TestClient_ReadWords(t *testing.T) {
	s := startFakeSlave(t)

	c, err := New(Config{Endpoint: s.ln.Addr().String(), UnitID: 1, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	defer c.Close()

	words, err := c.ReadWords(40000, 2)
	if err != nil {
		t.Fatalf("ReadWords err=%v", err)
	}
	if len(words) != 2 || words[0] != 40000 || words[1] != 40001 {
		t.Fatalf("unexpected words %v", words)
	}
}

func TestClient_ReadWordsSplitsLargeSpans(t *testing.T) {
	s := startFakeSlave(t)

	c, err := New(Config{Endpoint: s.ln.Addr().String(), UnitID: 1, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	defer c.Close()

	words, err := c.ReadWords(1000, 200)
	if err != nil {
		t.Fatalf("ReadWords err=%v", err)
	}
	if len(words) != 200 {
		t.Fatalf("expected 200 words, got %d", len(words))
	}
	for i, w := range words {
		if w != uint16(1000+i) {
			t.Fatalf("word %d got=%d want=%d", i, w, 1000+i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(s.requests))
	}
	if s.requests[0] != [2]uint16{1000, 125} || s.requests[1] != [2]uint16{1125, 75} {
		t.Fatalf("unexpected request geometry %v", s.requests)
	}
}

func TestNew_EndpointRequired(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for empty endpoint")
	}
}
