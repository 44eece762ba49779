package physics

import (
	"testing"

	"github.com/milk9111/pickups/common"
	"github.com/milk9111/pickups/ecs"
	"github.com/milk9111/pickups/ecs/component"
)

func character() component.Actor {
	return component.Actor{Type: component.ObjectCharacter, Radius: 0.5}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name    string
		actorAt common.Vec3
		want    int
	}{
		{"centered", common.Vec3{}, 1},
		{"edge_inside", common.Vec3{X: 1.4}, 1},
		{"outside_plane", common.Vec3{X: 3}, 0},
		{"above_in_plane", common.Vec3{Z: 4}, 0},
		{"diagonal_outside_sphere", common.Vec3{X: 1.2, Z: 1.2}, 0},
		{"slightly_above", common.Vec3{Z: 1.2}, 1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			pw := NewWorld(nil)
			w := ecs.NewWorld()
			e := w.CreateEntity()

			pw.AddActor(e, c.actorAt, character())
			id := pw.AddSensor(common.Vec3{}, 1.0)

			got := pw.Overlaps(id)
			if len(got) != c.want {
				t.Fatalf("expected %d touches, got %d (%+v)", c.want, len(got), got)
			}
			if c.want == 1 && (got[0].Entity != e || got[0].Type != component.ObjectCharacter) {
				t.Fatalf("unexpected touch %+v", got[0])
			}
		})
	}
}

func TestOverlapBoundaryIsExclusive(t *testing.T) {
	cases := []struct {
		name    string
		actorAt common.Vec3
		want    int
	}{
		{"touching_along_x", common.Vec3{X: 1.5}, 0},
		{"touching_along_z", common.Vec3{Z: 1.5}, 0},
		{"inside_along_x", common.Vec3{X: 1.49}, 1},
		{"inside_along_z", common.Vec3{Z: 1.49}, 1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			pw := NewWorld(nil)
			w := ecs.NewWorld()
			e := w.CreateEntity()

			pw.AddActor(e, c.actorAt, character())
			id := pw.AddSensor(common.Vec3{}, 1.0)

			if got := pw.Overlaps(id); len(got) != c.want {
				t.Fatalf("expected %d touches, got %d (%+v)", c.want, len(got), got)
			}
		})
	}
}

func TestMoveActorUpdatesBroadphase(t *testing.T) {
	pw := NewWorld(nil)
	w := ecs.NewWorld()
	e := w.CreateEntity()

	pw.AddActor(e, common.Vec3{X: 10}, character())
	id := pw.AddSensor(common.Vec3{}, 1.0)

	if got := pw.Overlaps(id); len(got) != 0 {
		t.Fatalf("expected no overlap before moving, got %+v", got)
	}
	pw.MoveActor(e, common.Vec3{X: 0.5, Y: 0.25})
	got := pw.Overlaps(id)
	if len(got) != 1 {
		t.Fatalf("expected overlap after moving, got %+v", got)
	}
	if got[0].Position.X != 0.5 || got[0].Position.Y != 0.25 {
		t.Fatalf("unexpected touch position %+v", got[0].Position)
	}
	pw.MoveActor(e, common.Vec3{X: 10})
	if got := pw.Overlaps(id); len(got) != 0 {
		t.Fatalf("expected no overlap after leaving, got %+v", got)
	}
}

func TestSensorsIgnoreEachOther(t *testing.T) {
	pw := NewWorld(nil)
	a := pw.AddSensor(common.Vec3{}, 1.0)
	pw.AddSensor(common.Vec3{X: 0.5}, 1.0)

	if got := pw.Overlaps(a); len(got) != 0 {
		t.Fatalf("sensors must not report each other, got %+v", got)
	}
}

func TestOverlapsOrderedAndDistinct(t *testing.T) {
	pw := NewWorld(nil)
	w := ecs.NewWorld()
	e1 := w.CreateEntity()
	e2 := w.CreateEntity()

	pw.AddActor(e2, common.Vec3{X: -0.3}, character())
	pw.AddActor(e1, common.Vec3{X: 0.3}, character())
	id := pw.AddSensor(common.Vec3{}, 1.0)

	got := pw.Overlaps(id)
	if len(got) != 2 || got[0].Entity != e1 || got[1].Entity != e2 {
		t.Fatalf("expected [e1 e2], got %+v", got)
	}
}

func TestRemoveSensorAndActor(t *testing.T) {
	pw := NewWorld(nil)
	w := ecs.NewWorld()
	e := w.CreateEntity()

	pw.AddActor(e, common.Vec3{}, character())
	id := pw.AddSensor(common.Vec3{}, 1.0)
	if pw.SensorCount() != 1 {
		t.Fatalf("expected 1 sensor, got %d", pw.SensorCount())
	}

	pw.RemoveActor(e)
	if pw.HasActor(e) {
		t.Fatalf("actor should be gone")
	}
	if got := pw.Overlaps(id); len(got) != 0 {
		t.Fatalf("removed actor still overlapping: %+v", got)
	}

	pw.RemoveSensor(id)
	pw.RemoveSensor(id)
	if pw.SensorCount() != 0 {
		t.Fatalf("expected 0 sensors, got %d", pw.SensorCount())
	}
	if got := pw.Overlaps(id); got != nil {
		t.Fatalf("query on removed sensor should be nil, got %+v", got)
	}
}

func TestAddSensorDefaultsRadius(t *testing.T) {
	pw := NewWorld(nil)
	w := ecs.NewWorld()
	e := w.CreateEntity()

	pw.AddActor(e, common.Vec3{X: common.DefaultSensorRadius + 0.3}, character())
	id := pw.AddSensor(common.Vec3{}, 0)
	if got := pw.Overlaps(id); len(got) != 1 {
		t.Fatalf("expected default radius to reach actor, got %+v", got)
	}
}

func TestAddSensorRejectsNonFinitePosition(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for NaN position")
		}
	}()
	pw := NewWorld(nil)
	nan := 0.0
	pw.AddSensor(common.Vec3{X: nan / nan}, 1)
}
