// Package component defines the component kinds stored in the ECS world and
// the plain data types behind them.
package component

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
)

// ComponentID indexes one component store. Zero is never allocated.
type ComponentID uint32

var (
	nextComponentID atomic.Uint32
	kindNames       sync.Map // ComponentID -> Go type name
)

// String names the component type for logs and errors.
func (id ComponentID) String() string {
	if name, ok := kindNames.Load(id); ok {
		return name.(string)
	}
	return fmt.Sprintf("component#%d", uint32(id))
}

// ComponentKind identifies the store holding values of T. Kinds are
// allocated once at package init and compared by id.
type ComponentKind[T any] struct {
	id ComponentID
}

func NewComponentKind[T any]() ComponentKind[T] {
	id := ComponentID(nextComponentID.Add(1))
	var zero T
	kindNames.Store(id, fmt.Sprintf("%T", zero))
	return ComponentKind[T]{id: id}
}

func (k ComponentKind[T]) ID() ComponentID {
	return k.id
}

func (k ComponentKind[T]) Valid() bool {
	return k.id != 0
}

func (k ComponentKind[T]) String() string {
	return k.id.String()
}

// ComponentHandle is the exported package-level value for a component, e.g.
// TransformComponent.
type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

func NewComponent[T any]() ComponentHandle[T] {
	return ComponentHandle[T]{kind: NewComponentKind[T]()}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] {
	return h.kind
}
