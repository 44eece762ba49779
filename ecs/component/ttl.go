package component

// TTL is a simple frame-based time-to-live component. Systems may add this
// component to an entity to have it destroyed during cleanup once the given
// number of update ticks has passed. Frames <= 1 means end of this frame.
type TTL struct {
	Frames int
}

var TTLComponent = NewComponent[TTL]()
