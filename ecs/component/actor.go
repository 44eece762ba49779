package component

// Actor marks a mobile entity the physics world tracks for pickup overlap.
// Radius is the horizontal and vertical reach of its body.
type Actor struct {
	Name   string
	Type   ObjectType
	Radius float64
	Player bool
}

var ActorComponent = NewComponent[Actor]()
