package component

import "github.com/milk9111/pickups/common"

type Transform struct {
	Position common.Vec3
	Heading  float64
}

var TransformComponent = NewComponent[Transform]()
