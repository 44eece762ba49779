package component

// ObjectType tags the kind of world object an entity represents.
type ObjectType int

const (
	ObjectInstance ObjectType = iota
	ObjectCharacter
	ObjectVehicle
	ObjectPickup
	ObjectProjectile
)

func (t ObjectType) String() string {
	switch t {
	case ObjectInstance:
		return "instance"
	case ObjectCharacter:
		return "character"
	case ObjectVehicle:
		return "vehicle"
	case ObjectPickup:
		return "pickup"
	case ObjectProjectile:
		return "projectile"
	default:
		return "unknown"
	}
}

// ParseObjectType maps a catalog/config name back to its ObjectType.
func ParseObjectType(s string) (ObjectType, bool) {
	for t := ObjectInstance; t <= ObjectProjectile; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}
