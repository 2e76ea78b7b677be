package sim

import "time"

// Status classifies the outcome a unit observed on a resource.
type Status int

const (
	// StatusOK indicates the operation succeeded; never queued as an event.
	StatusOK Status = iota
	// StatusEmpty indicates a convert found the resource fully depleted.
	StatusEmpty
	// StatusLow indicates a resource is running low. Units never report it
	// themselves, but the coordinator classifies it like a shortage.
	StatusLow
	// StatusInsufficient indicates a convert found a positive amount below
	// the required quantity.
	StatusInsufficient
	// StatusCapacity indicates a store could not flush the full buffer.
	StatusCapacity
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusEmpty:
		return "EMPTY"
	case StatusLow:
		return "LOW"
	case StatusInsufficient:
		return "INSUFFICIENT"
	case StatusCapacity:
		return "CAPACITY"
	default:
		return "UNKNOWN"
	}
}

// Priority orders events in the queue. Higher values dequeue first.
type Priority int

const (
	// PriorityLow is used for capacity reports from failed stores.
	PriorityLow Priority = iota
	// PriorityHigh is used for shortage reports from failed converts.
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "LOW"
	case PriorityHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// Event is an immutable report that a unit observed a condition on a
// resource. Events are copied by value into the queue and have no identity
// beyond their fields.
type Event struct {
	Unit     *Unit
	Resource *Resource
	Status   Status
	Priority Priority
	// Magnitude is the quantity involved: the required amount for a failed
	// convert, the pre-store buffered amount for a failed store.
	Magnitude int
}

// DrainedEvent is an event as observed by the coordinator: stamped with the
// coordinator's logical sequence and a wall timestamp, with unit and resource
// flattened to names so it can leave the process (journal, logs).
type DrainedEvent struct {
	Seq       int64
	Unit      string
	Resource  string
	Status    Status
	Priority  Priority
	Magnitude int
	At        time.Time
}

// Recorder receives every drained event in sequence order. Implementations
// must tolerate being called from the coordinator goroutine only.
type Recorder interface {
	Record(ev DrainedEvent) error
}
