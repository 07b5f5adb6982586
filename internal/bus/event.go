package bus

import "time"

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// Op names the kind of write that produced a Change.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// Change is the payload of every store write event. Keys carries the ids a
// live query may filter on (conversation id, participant ids, owner id).
type Change struct {
	Collection string
	DocID      string
	Op         Op
	Keys       []string
}

// HasKey reports whether key is one of the change's keys.
func (c Change) HasKey(key string) bool {
	for _, k := range c.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Kind returns the event kind for a write to collection, e.g. "messages.created".
func Kind(collection string, op Op) string {
	return collection + "." + string(op)
}

// Namespace returns the subscription prefix matching every write to collection.
func Namespace(collection string) string {
	return collection + "."
}

// StatusChanged is published when the daemon health state moves.
const StatusChanged = "daemon.status_changed"
