// Package event provides the string-keyed notification bus used to announce
// explode/implode lifecycle transitions. Delivery is synchronous: listeners
// run inside the tick that published, in subscription order, so by the time
// a listener runs the manager's state for that notification is final.
package event

// Topics published by the explode manager.
const (
	TopicPreExplode   = "explode:pre"
	TopicPostExplode  = "explode:post"
	TopicPreImplode   = "implode:pre"
	TopicPostImplode  = "implode:post"
	TopicGroupChanged = "group:changed"
)

// Listener receives the group id the notification concerns.
type Listener func(groupID string)

// Bus is a synchronous listener-list-per-topic broadcaster. It is mutated
// only from the single tick driver, so it carries no locking.
type Bus struct {
	listeners map[string][]Listener
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[string][]Listener)}
}

// Subscribe registers fn for a topic. Registration order is delivery order.
func (b *Bus) Subscribe(topic string, fn Listener) {
	b.listeners[topic] = append(b.listeners[topic], fn)
}

// Publish delivers groupID to every listener on topic, synchronously.
// Topics with no listeners are a no-op.
func (b *Bus) Publish(topic, groupID string) {
	for _, fn := range b.listeners[topic] {
		fn(groupID)
	}
}
