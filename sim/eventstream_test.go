// sim/eventstream_test.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"testing"

	"github.com/gismap/gismap/log"
)

func TestEventStreamBasic(t *testing.T) {
	es := NewEventStream(log.Discard())
	defer es.Destroy()

	sub := es.Subscribe()

	es.Post(Event{Type: StatusMessageEvent, Message: "one"})
	es.Post(Event{Type: StatusMessageEvent, Message: "two"})

	events := sub.Get()
	if len(events) != 2 || events[0].Message != "one" || events[1].Message != "two" {
		t.Errorf("Get returned %v", events)
	}

	// Consumed events are not returned again.
	if events := sub.Get(); len(events) != 0 {
		t.Errorf("second Get returned %v", events)
	}
}

func TestEventStreamSubscribeOffset(t *testing.T) {
	es := NewEventStream(log.Discard())
	defer es.Destroy()

	early := es.Subscribe()
	es.Post(Event{Type: StatusMessageEvent, Message: "before"})

	// Events posted before Subscribe are not delivered to the new
	// subscriber.
	late := es.Subscribe()
	es.Post(Event{Type: StatusMessageEvent, Message: "after"})

	if events := early.Get(); len(events) != 2 {
		t.Errorf("early subscriber got %v", events)
	}
	if events := late.Get(); len(events) != 1 || events[0].Message != "after" {
		t.Errorf("late subscriber got %v", events)
	}
}

func TestEventStreamNoSubscribers(t *testing.T) {
	es := NewEventStream(log.Discard())
	defer es.Destroy()

	// With no subscribers, posts are dropped rather than accumulated.
	es.Post(Event{Type: StatusMessageEvent, Message: "dropped"})

	sub := es.Subscribe()
	if events := sub.Get(); len(events) != 0 {
		t.Errorf("subscriber saw pre-subscription event: %v", events)
	}
}

func TestEventStreamCompact(t *testing.T) {
	es := NewEventStream(log.Discard())
	defer es.Destroy()

	sub := es.Subscribe()
	for i := 0; i < 100; i++ {
		es.Post(Event{Type: StatusMessageEvent})
	}
	sub.Get()

	es.mu.Lock()
	es.compact()
	n := len(es.events)
	es.mu.Unlock()
	if n != 0 {
		t.Errorf("%d events retained after compact with all consumed", n)
	}

	// Posting after compaction still delivers.
	es.Post(Event{Type: StatusMessageEvent, Message: "post-compact"})
	if events := sub.Get(); len(events) != 1 {
		t.Errorf("got %v after compact", events)
	}
}
