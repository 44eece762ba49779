package component

import "github.com/milk9111/pickups/common"

// Waypoints moves an actor along Points at Speed world units per second.
type Waypoints struct {
	Points []common.Vec3
	Speed  float64
	Loop   bool
	Next   int
}

var WaypointsComponent = NewComponent[Waypoints]()
