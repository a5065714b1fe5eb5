package push

import (
	"context"
	"errors"
	"testing"
)

type memPusher struct {
	events []any
	fail   bool
}

func (m *memPusher) Push(_ context.Context, event any) error {
	if m.fail {
		return errors.New("write failed")
	}
	m.events = append(m.events, event)
	return nil
}

func TestBindSupersedesPriorChannel(t *testing.T) {
	d := NewDirectory()
	old, cur := &memPusher{}, &memPusher{}
	d.Bind("alice", old)
	d.Bind("alice", cur)
	if d.Lookup("alice") != cur {
		t.Fatalf("lookup did not return the latest channel")
	}
}

func TestReleaseIgnoresStaleChannel(t *testing.T) {
	d := NewDirectory()
	old, cur := &memPusher{}, &memPusher{}
	d.Bind("alice", old)
	d.Bind("alice", cur)

	// the superseded connection tears down last; it must not evict its successor
	d.Release("alice", old)
	if d.Lookup("alice") != cur {
		t.Fatalf("stale release evicted the live channel")
	}
	d.Release("alice", cur)
	if d.Lookup("alice") != nil {
		t.Fatalf("release of the live channel left a binding")
	}
}

func TestPublishSkipsMissingChannels(t *testing.T) {
	d := NewDirectory()
	bus := NewDispatcher(d)
	a := &memPusher{}
	d.Bind("alice", a)

	bus.Publish(context.Background(), []string{"alice", "ghost"}, "hello")
	if len(a.events) != 1 {
		t.Fatalf("bound channel got %d events, want 1", len(a.events))
	}
	if bus.PushTo(context.Background(), "ghost", "hello") {
		t.Fatalf("push to unbound identity reported success")
	}
}

func TestPushToReportsWriteFailure(t *testing.T) {
	d := NewDirectory()
	bus := NewDispatcher(d)
	d.Bind("alice", &memPusher{fail: true})
	if bus.PushTo(context.Background(), "alice", "hello") {
		t.Fatalf("failed write reported success")
	}
}
