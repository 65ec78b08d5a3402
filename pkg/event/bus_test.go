package event

import "testing"

func TestPublishDeliversInOrder(t *testing.T) {
	b := NewBus()

	var got []string
	b.Subscribe(TopicPostExplode, func(id string) { got = append(got, "a:"+id) })
	b.Subscribe(TopicPostExplode, func(id string) { got = append(got, "b:"+id) })

	b.Publish(TopicPostExplode, "G1")

	if len(got) != 2 || got[0] != "a:G1" || got[1] != "b:G1" {
		t.Errorf("delivery order wrong: %v", got)
	}
}

func TestPublishUnknownTopicIsNoop(t *testing.T) {
	b := NewBus()
	b.Publish("nobody:listens", "G1") // must not panic
}

func TestTopicsAreIndependent(t *testing.T) {
	b := NewBus()

	calls := 0
	b.Subscribe(TopicPreImplode, func(string) { calls++ })

	b.Publish(TopicPostImplode, "G1")
	if calls != 0 {
		t.Errorf("listener on a different topic was invoked %d times", calls)
	}
	b.Publish(TopicPreImplode, "G1")
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
