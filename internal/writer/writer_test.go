// internal/writer/writer_test.go
package writer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/tamzrod/mate3-sunspec/internal/poller"
	"github.com/tamzrod/mate3-sunspec/internal/sunspec"
)

// ---- fakes ----

type fakeSink struct {
	calls int
	err   error
}

func (f *fakeSink) Write(_ context.Context, _ poller.PollResult) error {
	f.calls++
	return f.err
}

type fakeRedis struct {
	published  map[string][][]byte
	lists      map[string][][]byte
	trims      map[string][2]int64
	publishErr error
	closed     bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		published: map[string][][]byte{},
		lists:     map[string][][]byte{},
		trims:     map[string][2]int64{},
	}
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.publishErr != nil {
		cmd.SetErr(f.publishErr)
		return cmd
	}
	f.published[channel] = append(f.published[channel], message.([]byte))
	cmd.SetVal(1)
	return cmd
}

func (f *fakeRedis) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	for _, v := range values {
		f.lists[key] = append([][]byte{v.([]byte)}, f.lists[key]...)
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(f.lists[key])))
	return cmd
}

func (f *fakeRedis) LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd {
	f.trims[key] = [2]int64{start, stop}
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func okResult() poller.PollResult {
	return poller.PollResult{
		DeviceID: "mate3",
		At:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration: 120 * time.Millisecond,
		Common:   &sunspec.CommonBlock{Manufacturer: "OUTBACK_POWER", Model: "MATE3"},
		Blocks: []poller.BlockReport{
			{
				Address:      40069,
				DID:          sunspec.DIDSinglePhaseRadian,
				Name:         sunspec.Name(sunspec.DIDSinglePhaseRadian),
				Length:       40,
				Known:        true,
				Measurements: sunspec.Measurements{"battery_voltage": 25.5},
			},
			{Address: 40111, DID: sunspec.DIDEndOfSunSpec, Name: "End of SunSpec", Known: true},
		},
	}
}

// ---- tests ----

func TestMultiWriter_AllSinksCalledAndErrorsJoined(t *testing.T) {
	a := &fakeSink{err: errors.New("down")}
	b := &fakeSink{}
	c := &fakeSink{err: errors.New("full")}

	w := New([]string{"a", "b", "c"}, []Writer{a, b, c})

	err := w.Write(context.Background(), okResult())
	if err == nil {
		t.Fatalf("expected joined error, got nil")
	}
	if a.calls != 1 || b.calls != 1 || c.calls != 1 {
		t.Fatalf("every sink must be called once: %d %d %d", a.calls, b.calls, c.calls)
	}
	if !strings.Contains(err.Error(), "sink=a") || !strings.Contains(err.Error(), "sink=c") {
		t.Fatalf("unexpected error text %q", err.Error())
	}
}

func TestRedisWriter_PublishAndHistory(t *testing.T) {
	fake := newFakeRedis()
	log, _ := test.NewNullLogger()
	w := newRedisWriter(fake, "mate3", 100, log)

	if err := w.Write(context.Background(), okResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := fake.published["mate3"]
	if len(msgs) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(msgs))
	}

	var r Report
	if err := json.Unmarshal(msgs[0], &r); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if !r.OK || r.DeviceID != "mate3" || r.DurationMs != 120 {
		t.Fatalf("unexpected report %+v", r)
	}
	if len(r.Blocks) != 2 || r.Blocks[0].Measurements["battery_voltage"] != 25.5 {
		t.Fatalf("unexpected blocks %+v", r.Blocks)
	}
	if r.Common == nil || r.Common.Model != "MATE3" {
		t.Fatalf("unexpected common %+v", r.Common)
	}

	key := HistoryKey("mate3")
	if len(fake.lists[key]) != 1 {
		t.Fatalf("expected history entry under %s", key)
	}
	if fake.trims[key] != [2]int64{0, 99} {
		t.Fatalf("unexpected trim %v", fake.trims[key])
	}
}

func TestRedisWriter_PublishFailure(t *testing.T) {
	fake := newFakeRedis()
	fake.publishErr = errors.New("connection refused")
	log, _ := test.NewNullLogger()
	w := newRedisWriter(fake, "mate3", 0, log)

	if err := w.Write(context.Background(), okResult()); err == nil {
		t.Fatalf("expected publish error, got nil")
	}
	if len(fake.lists) != 0 {
		t.Fatalf("history must not be written after a failed publish")
	}
}

func TestRedisWriter_FailedCycleReport(t *testing.T) {
	fake := newFakeRedis()
	log, _ := test.NewNullLogger()
	w := newRedisWriter(fake, "mate3", 0, log)

	res := poller.PollResult{DeviceID: "mate3", At: time.Now(), Err: sunspec.ErrChainNotTerminated}
	if err := w.Write(context.Background(), res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var r Report
	if err := json.Unmarshal(fake.published["mate3"][0], &r); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if r.OK || r.Error == "" || r.Common != nil || r.Blocks != nil {
		t.Fatalf("unexpected failed report %+v", r)
	}
}

func TestLogWriter_Measurements(t *testing.T) {
	log, hook := test.NewNullLogger()
	w := NewLogWriter(log)

	if err := w.Write(context.Background(), okResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var found bool
	for _, e := range hook.AllEntries() {
		if e.Message == "measurements" && e.Data["battery_voltage"] == 25.5 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a measurements entry with battery_voltage")
	}
}

func TestLogWriter_Failure(t *testing.T) {
	log, hook := test.NewNullLogger()
	w := NewLogWriter(log)

	res := poller.PollResult{DeviceID: "mate3", Err: sunspec.ErrNotOutback}
	if err := w.Write(context.Background(), res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hook.LastEntry() == nil || hook.LastEntry().Level != logrus.WarnLevel {
		t.Fatalf("expected a warning entry")
	}
}
