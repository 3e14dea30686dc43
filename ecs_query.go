package skyshow

import (
	"reflect"
)

// Queries visit every entity that has all of their component types. Types
// passed as optionals may be missing, in which case Map hands over nil.
// Iteration order is unspecified; callers that need one sort the results.
type Query1[A any] struct{ filter queryFilter }
type Query2[A, B any] struct{ filter queryFilter }
type Query3[A, B, C any] struct{ filter queryFilter }

type queryFilter struct {
	ecs     *Ecs
	without []any
}

func MakeQuery1[A any](cmd *Commands) Query1[A] { return Query1[A]{queryFilter{ecs: cmd.app.ecs}} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B] {
	return Query2[A, B]{queryFilter{ecs: cmd.app.ecs}}
}
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] {
	return Query3[A, B, C]{queryFilter{ecs: cmd.app.ecs}}
}

// Without skips entities carrying any of the given component types.
func (q Query1[A]) Without(components ...any) Query1[A] {
	q.filter = q.filter.exclude(components)
	return q
}

func (q Query2[A, B]) Without(components ...any) Query2[A, B] {
	q.filter = q.filter.exclude(components)
	return q
}

func (q Query3[A, B, C]) Without(components ...any) Query3[A, B, C] {
	q.filter = q.filter.exclude(components)
	return q
}

func (f queryFilter) exclude(components []any) queryFilter {
	f.without = append(append([]any(nil), f.without...), components...)
	return f
}

// archetypes yields the archetypes that pass the without filter.
func (f queryFilter) archetypes(visit func(*archetype) bool) {
	excluded := identifyOptionals(f.ecs, f.without...)
	for _, arch := range f.ecs.archetypes {
		if len(arch.entities) == 0 || hasAny(arch, excluded) {
			continue
		}
		if !visit(arch) {
			return
		}
	}
}

func hasAny(arch *archetype, ids set[componentId]) bool {
	for id := range ids {
		if _, ok := arch.componentData[id]; ok {
			return true
		}
	}
	return false
}

// column finds the typed slice for id in arch. ok is false when the
// archetype cannot match; a nil slice with ok set means an absent optional.
func column[T any](arch *archetype, id componentId, opt set[componentId]) (comps []T, ok bool) {
	if data, found := arch.componentData[id]; found {
		return data.([]T), true
	}
	_, optional := opt[id]
	return nil, optional
}

func at[T any](comps []T, r row) *T {
	if comps == nil {
		return nil
	}
	return &comps[r]
}

func (q Query1[A]) Map(m func(EntityId, *A) bool, optionals ...any) {
	id1 := identifyComponents1[A](q.filter.ecs)
	opt := identifyOptionals(q.filter.ecs, optionals...)

	q.filter.archetypes(func(arch *archetype) bool {
		comps1, ok := column[A](arch, id1, opt)
		if !ok {
			return true
		}
		for entityId, row := range arch.entities {
			if !m(entityId, at(comps1, row)) {
				return false
			}
		}
		return true
	})
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool, optionals ...any) {
	id1, id2 := identifyComponents2[A, B](q.filter.ecs)
	opt := identifyOptionals(q.filter.ecs, optionals...)

	q.filter.archetypes(func(arch *archetype) bool {
		comps1, ok := column[A](arch, id1, opt)
		if !ok {
			return true
		}
		comps2, ok := column[B](arch, id2, opt)
		if !ok {
			return true
		}
		for entityId, row := range arch.entities {
			if !m(entityId, at(comps1, row), at(comps2, row)) {
				return false
			}
		}
		return true
	})
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool, optionals ...any) {
	id1, id2, id3 := identifyComponents3[A, B, C](q.filter.ecs)
	opt := identifyOptionals(q.filter.ecs, optionals...)

	q.filter.archetypes(func(arch *archetype) bool {
		comps1, ok := column[A](arch, id1, opt)
		if !ok {
			return true
		}
		comps2, ok := column[B](arch, id2, opt)
		if !ok {
			return true
		}
		comps3, ok := column[C](arch, id3, opt)
		if !ok {
			return true
		}
		for entityId, row := range arch.entities {
			if !m(entityId, at(comps1, row), at(comps2, row), at(comps3, row)) {
				return false
			}
		}
		return true
	})
}

func identifyOptionals(ecs *Ecs, components ...any) set[componentId] {
	res := make(set[componentId])
	for _, c := range components {
		res[ecs.getComponentId(componentType(c))] = struct{}{}
	}
	return res
}

func identifyComponents1[A any](ecs *Ecs) componentId {
	return ecs.getComponentId(reflect.TypeOf((*A)(nil)).Elem())
}

func identifyComponents2[A, B any](ecs *Ecs) (componentId, componentId) {
	return identifyComponents1[A](ecs), identifyComponents1[B](ecs)
}

func identifyComponents3[A, B, C any](ecs *Ecs) (componentId, componentId, componentId) {
	return identifyComponents1[A](ecs), identifyComponents1[B](ecs), identifyComponents1[C](ecs)
}
