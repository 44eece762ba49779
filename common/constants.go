package common

import "time"

const (
	// DefaultSensorRadius is the pickup sensor radius when a catalog entry
	// does not set one.
	DefaultSensorRadius = 1.0
	// DefaultActorRadius is used for actors spawned without an explicit radius.
	DefaultActorRadius = 0.4
	// DefaultPickupCooldown is how long consumable kinds stay disabled
	// after a touch unless the catalog says otherwise.
	DefaultPickupCooldown = 30 * time.Second
)
