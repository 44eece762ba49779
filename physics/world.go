package physics

import (
	"fmt"
	"sort"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/pickups/common"
	"github.com/milk9111/pickups/ecs"
	"github.com/milk9111/pickups/ecs/component"
	"go.uber.org/zap"
)

const (
	collisionTypeActor cp.CollisionType = iota + 1
	collisionTypeSensor
)

// SensorID names a registered overlap sensor. The zero value is never issued.
type SensorID uint32

// Touch is one actor found overlapping a sensor.
type Touch struct {
	Entity   ecs.Entity
	Type     component.ObjectType
	Player   bool
	Position common.Vec3
}

type actorInfo struct {
	entity ecs.Entity
	body   *cp.Body
	shape  *cp.Shape
	radius float64
	z      float64
	typ    component.ObjectType
	player bool
}

func (a *actorInfo) position() common.Vec3 {
	p := a.body.Position()
	return common.Vec3{X: p.X, Y: p.Y, Z: a.z}
}

type sensorInfo struct {
	shape  *cp.Shape
	center common.Vec3
	radius float64
}

// World owns the Chipmunk space used as the broad-phase for pickup sensors.
// Chipmunk is planar, so shapes live in the XY plane and the vertical axis is
// resolved with a sphere test after the broad-phase hit.
//
// World is not safe for concurrent use; mutations belong between frames.
type World struct {
	space *cp.Space
	log   *zap.Logger

	actors       map[ecs.Entity]*actorInfo
	shapeToActor map[*cp.Shape]*actorInfo
	sensors      map[SensorID]*sensorInfo
	nextSensor   SensorID
}

// NewWorld creates an empty physics world. A nil logger discards output.
func NewWorld(log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	space := cp.NewSpace()
	space.Iterations = 10
	return &World{
		space:        space,
		log:          log.Named("physics"),
		actors:       make(map[ecs.Entity]*actorInfo),
		shapeToActor: make(map[*cp.Shape]*actorInfo),
		sensors:      make(map[SensorID]*sensorInfo),
	}
}

// Space returns the underlying Chipmunk space.
func (pw *World) Space() *cp.Space {
	if pw == nil {
		return nil
	}
	return pw.space
}

// AddActor registers e as a kinematic circle at pos. Adding an entity that is
// already tracked updates its placement and shape instead.
func (pw *World) AddActor(e ecs.Entity, pos common.Vec3, actor component.Actor) {
	mustFinite("AddActor", pos)
	radius := actor.Radius
	if radius <= 0 {
		radius = common.DefaultActorRadius
	}
	if existing, ok := pw.actors[e]; ok {
		if existing.radius == radius {
			existing.typ = actor.Type
			existing.player = actor.Player
			pw.MoveActor(e, pos)
			return
		}
		pw.RemoveActor(e)
	}

	body := cp.NewKinematicBody()
	body.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})
	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetCollisionType(collisionTypeActor)

	pw.space.AddBody(body)
	pw.space.AddShape(shape)

	info := &actorInfo{
		entity: e,
		body:   body,
		shape:  shape,
		radius: radius,
		z:      pos.Z,
		typ:    actor.Type,
		player: actor.Player,
	}
	pw.actors[e] = info
	pw.shapeToActor[shape] = info
	pw.log.Debug("actor added", zap.Stringer("entity", e), zap.Stringer("type", actor.Type), zap.Float64("radius", radius))
}

// MoveActor teleports a tracked actor. Unknown entities are ignored.
func (pw *World) MoveActor(e ecs.Entity, pos common.Vec3) {
	info, ok := pw.actors[e]
	if !ok {
		return
	}
	mustFinite("MoveActor", pos)
	info.z = pos.Z
	// Re-adding the shape re-inserts it into the spatial index at the new
	// position, so queries see the move before the next Step.
	pw.space.RemoveShape(info.shape)
	info.body.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})
	pw.space.AddShape(info.shape)
}

// RemoveActor drops e from the space.
func (pw *World) RemoveActor(e ecs.Entity) {
	info, ok := pw.actors[e]
	if !ok {
		return
	}
	pw.space.RemoveShape(info.shape)
	pw.space.RemoveBody(info.body)
	delete(pw.shapeToActor, info.shape)
	delete(pw.actors, e)
	pw.log.Debug("actor removed", zap.Stringer("entity", e))
}

// HasActor reports whether e is tracked.
func (pw *World) HasActor(e ecs.Entity) bool {
	_, ok := pw.actors[e]
	return ok
}

// Actors returns the tracked actor entities.
func (pw *World) Actors() []ecs.Entity {
	out := make([]ecs.Entity, 0, len(pw.actors))
	for e := range pw.actors {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AddSensor registers a non-colliding sphere of radius at pos. The sensor is
// a static shape: it produces no contact response and never moves.
func (pw *World) AddSensor(pos common.Vec3, radius float64) SensorID {
	mustFinite("AddSensor", pos)
	if radius <= 0 {
		radius = common.DefaultSensorRadius
	}
	shape := cp.NewCircle(pw.space.StaticBody, radius, cp.Vector{X: pos.X, Y: pos.Y})
	shape.SetSensor(true)
	shape.SetCollisionType(collisionTypeSensor)
	pw.space.AddShape(shape)

	pw.nextSensor++
	id := pw.nextSensor
	pw.sensors[id] = &sensorInfo{shape: shape, center: pos, radius: radius}
	pw.log.Debug("sensor added", zap.Uint32("sensor", uint32(id)), zap.Float64("radius", radius))
	return id
}

// Overlaps returns the actors intersecting sensor id, one Touch per actor,
// ordered by entity. Unknown or removed sensors report nothing.
func (pw *World) Overlaps(id SensorID) []Touch {
	sensor, ok := pw.sensors[id]
	if !ok {
		return nil
	}

	var hits []*actorInfo
	seen := make(map[ecs.Entity]bool)
	pw.space.ShapeQuery(sensor.shape, func(shape *cp.Shape, _ *cp.ContactPointSet) {
		actor, ok := pw.shapeToActor[shape]
		if !ok || seen[actor.entity] {
			return
		}
		reach := sensor.radius + actor.radius
		// Touching spheres do not overlap, matching cp's circle test.
		if actor.position().DistSq(sensor.center) >= reach*reach {
			return
		}
		seen[actor.entity] = true
		hits = append(hits, actor)
	})
	if len(hits) == 0 {
		return nil
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].entity < hits[j].entity })
	out := make([]Touch, 0, len(hits))
	for _, a := range hits {
		out = append(out, Touch{Entity: a.entity, Type: a.typ, Player: a.player, Position: a.position()})
	}
	return out
}

// RemoveSensor deregisters a sensor. Removing an unknown id is a no-op.
func (pw *World) RemoveSensor(id SensorID) {
	sensor, ok := pw.sensors[id]
	if !ok {
		return
	}
	pw.space.RemoveShape(sensor.shape)
	delete(pw.sensors, id)
	pw.log.Debug("sensor removed", zap.Uint32("sensor", uint32(id)))
}

// SensorCount returns the number of live sensors.
func (pw *World) SensorCount() int {
	return len(pw.sensors)
}

// Step advances the space. Actor bodies are kinematic and sensors static, so
// this only refreshes the broad-phase; nothing receives a contact response.
func (pw *World) Step(dt time.Duration) {
	if pw == nil || pw.space == nil || dt <= 0 {
		return
	}
	pw.space.Step(dt.Seconds())
}

func mustFinite(op string, pos common.Vec3) {
	if !pos.Finite() {
		panic(fmt.Sprintf("physics: %s: non-finite position %+v", op, pos))
	}
}
