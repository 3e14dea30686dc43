package skyshow

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"reflect"
	"slices"
	"sync"
)

type EntityId uint64
type archetypeId uint64
type archetypeKey []componentId
type componentId uint32
type row int
type set[T comparable] map[T]struct{}

// Ecs stores components by archetype: every entity with the same set of
// component types shares one archetype, which keeps one typed slice per type.
type Ecs struct {
	archetypes  map[archetypeId]*archetype
	entityIndex map[EntityId]archetypeId

	idGeneratorLock sync.Mutex
	entityIdCounter EntityId

	componentIdCounterLock sync.Mutex
	componentIdCounter     componentId
	componentTypeIdMap     map[reflect.Type]componentId
	componentIdTypeMap     map[componentId]reflect.Type
}

func MakeEcs() Ecs {
	return Ecs{
		archetypes:         make(map[archetypeId]*archetype),
		entityIndex:        make(map[EntityId]archetypeId),
		componentTypeIdMap: make(map[reflect.Type]componentId),
		componentIdTypeMap: make(map[componentId]reflect.Type),
	}
}

type archetype struct {
	id            archetypeId
	key           archetypeKey
	entities      map[EntityId]row
	componentData map[componentId]any // []T per component type
	rows          int
	recycled      []row
}

func (ecs *Ecs) Len() int { return len(ecs.entityIndex) }

func (ecs *Ecs) Has(entityId EntityId) bool {
	_, ok := ecs.entityIndex[entityId]
	return ok
}

func (ecs *Ecs) addEntity(components ...any) EntityId {
	return ecs.insertEntity(ecs.nextEntityId(), components...)
}

func (ecs *Ecs) insertEntity(entityId EntityId, components ...any) EntityId {
	archId, arch := ecs.archetypeFromComponents(components...)

	row := ecs.archetypeReserveRow(arch)
	arch.entities[entityId] = row
	for _, component := range components {
		ecs.writeComponent(arch, row, component)
	}

	ecs.entityIndex[entityId] = archId
	return entityId
}

// removeEntity is a no-op for entities that are already gone.
func (ecs *Ecs) removeEntity(entityId EntityId) {
	if !ecs.Has(entityId) {
		return
	}
	ecs.recycleEntity(entityId)
}

func (ecs *Ecs) addComponents(entityId EntityId, components ...any) {
	if !ecs.Has(entityId) {
		return
	}
	srcArch := ecs.archetypes[ecs.entityIndex[entityId]]
	srcRow := srcArch.entities[entityId]

	dstKey := combineArchetypeKeys(srcArch.key, ecs.getArchetypeKey(components...))
	dstArchId, dstArch := ecs.getOrMakeArchetype(dstKey)
	if dstArch == srcArch {
		// Only overwrites.
		for _, component := range components {
			ecs.writeComponent(srcArch, srcRow, component)
		}
		return
	}
	dstRow := ecs.archetypeReserveRow(dstArch)

	ecs.moveComponents(srcArch, srcRow, dstArch, dstRow)
	for _, component := range components {
		ecs.writeComponent(dstArch, dstRow, component)
	}

	ecs.recycleEntity(entityId)

	dstArch.entities[entityId] = dstRow
	ecs.entityIndex[entityId] = dstArchId
}

func (ecs *Ecs) removeComponents(entityId EntityId, components ...any) {
	if !ecs.Has(entityId) {
		return
	}
	srcArch := ecs.archetypes[ecs.entityIndex[entityId]]
	srcRow := srcArch.entities[entityId]

	removeSet := make(set[componentId])
	for _, c := range components {
		removeSet[ecs.getComponentId(componentType(c))] = struct{}{}
	}

	var dstKey archetypeKey
	for _, compId := range srcArch.key {
		if _, shouldRemove := removeSet[compId]; !shouldRemove {
			dstKey = append(dstKey, compId)
		}
	}
	if len(dstKey) == len(srcArch.key) {
		return
	}

	dstArchId, dstArch := ecs.getOrMakeArchetype(dstKey)
	dstRow := ecs.archetypeReserveRow(dstArch)

	ecs.moveComponents(srcArch, srcRow, dstArch, dstRow)
	ecs.recycleEntity(entityId)

	dstArch.entities[entityId] = dstRow
	ecs.entityIndex[entityId] = dstArchId
}

// moveComponents copies the components both archetypes share.
func (ecs *Ecs) moveComponents(srcArch *archetype, srcRow row, dstArch *archetype, dstRow row) {
	key := dstArch.key
	if len(srcArch.key) <= len(dstArch.key) {
		key = srcArch.key
	}

	for _, componentId := range key {
		srcValue := reflectSliceGet(srcArch.componentData[componentId], int(srcRow))
		reflectSliceSet(dstArch.componentData[componentId], int(dstRow), srcValue)
	}
}

func (ecs *Ecs) writeComponent(dstArch *archetype, dstRow row, component any) {
	value := reflect.ValueOf(component)
	if value.Kind() == reflect.Pointer {
		value = value.Elem()
	}

	componentId := ecs.getComponentId(componentType(component))
	reflectSliceSet(dstArch.componentData[componentId], int(dstRow), value)
}

// recycleEntity frees the entity's row. The row is zeroed so the archetype
// does not keep buffers alive for a dead entity.
func (ecs *Ecs) recycleEntity(entityId EntityId) {
	arch := ecs.archetypes[ecs.entityIndex[entityId]]

	row := arch.entities[entityId]
	for componentId, data := range arch.componentData {
		reflectSliceSet(data, int(row), reflect.Zero(ecs.componentIdTypeMap[componentId]))
	}
	arch.recycled = append(arch.recycled, row)

	delete(arch.entities, entityId)
	delete(ecs.entityIndex, entityId)
}

func (ecs *Ecs) archetypeFromComponents(components ...any) (archetypeId, *archetype) {
	return ecs.getOrMakeArchetype(ecs.getArchetypeKey(components...))
}

func (ecs *Ecs) getOrMakeArchetype(key archetypeKey) (archetypeId, *archetype) {
	id := getArchetypeId(key)

	if arch, ok := ecs.archetypes[id]; ok {
		return id, arch
	}

	arch := &archetype{
		id:            id,
		key:           key,
		entities:      make(map[EntityId]row),
		componentData: make(map[componentId]any),
	}
	for _, componentId := range arch.key {
		arch.componentData[componentId] = reflectSliceMake(ecs.componentIdTypeMap[componentId])
	}

	ecs.archetypes[id] = arch
	return id, arch
}

func (ecs *Ecs) archetypeReserveRow(arch *archetype) row {
	if n := len(arch.recycled); n > 0 {
		row := arch.recycled[n-1]
		arch.recycled = arch.recycled[:n-1]
		return row
	}

	row := row(arch.rows)
	arch.rows++
	for _, componentId := range arch.key {
		arch.componentData[componentId] = reflectSliceAppend(
			arch.componentData[componentId],
			reflect.Zero(ecs.componentIdTypeMap[componentId]),
		)
	}
	return row
}

// getArchetypeKey returns the canonical key of a component set: its sorted,
// deduplicated component ids. The archetype id is a hash of that key.
func (ecs *Ecs) getArchetypeKey(components ...any) archetypeKey {
	var res archetypeKey
	for _, component := range components {
		res = append(res, ecs.getComponentId(componentType(component)))
	}
	return dedupAndSortArchetypeKey(res)
}

// componentType accepts a struct or a pointer to one and panics otherwise.
func componentType(component any) reflect.Type {
	t := reflect.TypeOf(component)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		panic(fmt.Errorf("component should be a struct or a pointer to a struct, got %T", component))
	}
	return t
}

func combineArchetypeKeys(a archetypeKey, b archetypeKey) archetypeKey {
	return dedupAndSortArchetypeKey(append(slices.Clone(a), b...))
}

func dedupAndSortArchetypeKey(key archetypeKey) archetypeKey {
	res := slices.Clone(key)
	slices.Sort(res)
	return slices.Compact(res)
}

func getArchetypeId(key archetypeKey) archetypeId {
	hash := fnv.New64a()
	b := make([]byte, 4)
	for _, componentId := range key {
		binary.LittleEndian.PutUint32(b, uint32(componentId))
		hash.Write(b)
	}
	return archetypeId(hash.Sum64())
}

func (ecs *Ecs) nextEntityId() EntityId {
	ecs.idGeneratorLock.Lock()
	defer ecs.idGeneratorLock.Unlock()

	id := ecs.entityIdCounter
	ecs.entityIdCounter++
	return id
}

func (ecs *Ecs) getComponentId(componentType reflect.Type) componentId {
	ecs.componentIdCounterLock.Lock()
	defer ecs.componentIdCounterLock.Unlock()

	if id, ok := ecs.componentTypeIdMap[componentType]; ok {
		return id
	}
	id := ecs.componentIdCounter
	ecs.componentIdCounter++

	ecs.componentTypeIdMap[componentType] = id
	ecs.componentIdTypeMap[id] = componentType
	return id
}

func (ecs *Ecs) getComponentType(componentId componentId) reflect.Type {
	if t, ok := ecs.componentIdTypeMap[componentId]; ok {
		return t
	}
	panic("component id not registered")
}

// component returns a pointer into the entity's storage for T.
func component[T any](ecs *Ecs, entityId EntityId) (*T, bool) {
	archId, ok := ecs.entityIndex[entityId]
	if !ok {
		return nil, false
	}
	arch := ecs.archetypes[archId]
	data, ok := arch.componentData[ecs.getComponentId(reflect.TypeOf((*T)(nil)).Elem())]
	if !ok {
		return nil, false
	}
	return &data.([]T)[arch.entities[entityId]], true
}
