package events

import "testing"

func TestAppendAndQuery(t *testing.T) {
	el := NewEventLog(0)
	el.Append(
		NewEvent(EventTypeSessionStarted, "s1", 1, nil),
		NewEvent(EventTypeFragmentMoved, "s1", 1, map[string]int{"id": 3}),
		NewEvent(EventTypeLevelAdvanced, "s1", 2, nil),
		NewEvent(EventTypeFragmentMoved, "s1", 2, map[string]int{"id": 4}),
	)

	if el.Len() != 4 {
		t.Fatalf("expected 4 events, got %d", el.Len())
	}
	if got := el.GetByType(EventTypeFragmentMoved); len(got) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(got))
	}
	if got := el.GetByLevel(2); len(got) != 2 || got[0].Type != EventTypeLevelAdvanced {
		t.Fatalf("unexpected level 2 events: %+v", got)
	}

	replay := el.Replay()
	if replay[0].ID == "" || replay[0].ID == replay[1].ID {
		t.Fatalf("events must carry unique IDs")
	}
	replay[0].Type = EventTypeSessionReset
	if el.Replay()[0].Type != EventTypeSessionStarted {
		t.Fatalf("replay must return a copy")
	}
}

func TestLimitDropsOldest(t *testing.T) {
	el := NewEventLog(3)
	for level := 1; level <= 5; level++ {
		el.Append(NewEvent(EventTypeLevelAdvanced, "s1", level, nil))
	}

	replay := el.Replay()
	if len(replay) != 3 {
		t.Fatalf("expected 3 retained events, got %d", len(replay))
	}
	if replay[0].Level != 3 || replay[2].Level != 5 {
		t.Fatalf("expected levels 3..5, got %d..%d", replay[0].Level, replay[2].Level)
	}
}

func TestSubscribersSeeEventsInOrder(t *testing.T) {
	el := NewEventLog(10)
	var seen []EventType
	var lenAtDelivery []int
	el.Subscribe(func(e GameEvent) {
		seen = append(seen, e.Type)
		// Subscribers run outside the lock and may query the log.
		lenAtDelivery = append(lenAtDelivery, el.Len())
	})

	el.Append(
		NewEvent(EventTypeFragmentRotated, "s1", 1, nil),
		NewEvent(EventTypePatternSolved, "s1", 1, nil),
	)
	el.Append()

	if len(seen) != 2 || seen[0] != EventTypeFragmentRotated || seen[1] != EventTypePatternSolved {
		t.Fatalf("unexpected delivery order %v", seen)
	}
	if lenAtDelivery[0] != 2 {
		t.Fatalf("batch should be fully appended before delivery, saw len %d", lenAtDelivery[0])
	}
}
