package skyshow

import (
	"testing"

	"github.com/gekko3d/skyshow/particlert/rt/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformHierarchy(t *testing.T) {
	app := NewApp()
	app.UseModules(HierarchyModule{})
	cmd := app.Commands()

	rocket := core.NewTransform()
	rocket.Position = mgl32.Vec3{10, 0, 0}
	parent := cmd.AddEntity(TransformComponent{Transform: rocket})

	nozzle := core.NewTransform()
	child := cmd.AddEntity(
		Parent{Entity: parent},
		LocalAt(mgl32.Vec3{0, 5, 0}),
		TransformComponent{Transform: nozzle},
	)

	spark := core.NewTransform()
	cmd.AddEntity(
		Parent{Entity: child},
		LocalAt(mgl32.Vec3{0, 0, 2}),
		TransformComponent{Transform: spark},
	)
	app.FlushCommands()

	TransformHierarchySystem(cmd)
	assert.Equal(t, mgl32.Vec3{10, 5, 0}, nozzle.Position)
	assert.Equal(t, mgl32.Vec3{10, 5, 2}, spark.Position)
	assert.True(t, nozzle.Dirty)

	// A quarter turn about +Z swings the local +Y offset onto -X.
	rocket.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})
	rocket.Scale = mgl32.Vec3{2, 2, 2}
	TransformHierarchySystem(cmd)

	assert.Less(t, nozzle.Position.Sub(mgl32.Vec3{0, 0, 0}).Len(), float32(1e-4), "got %v", nozzle.Position)
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, nozzle.Scale)
	assert.Less(t, spark.Position.Sub(mgl32.Vec3{0, 0, 4}).Len(), float32(1e-4), "got %v", spark.Position)
}

func TestTransformHierarchy_RunsEveryTick(t *testing.T) {
	app := NewApp()
	app.UseModules(HierarchyModule{})
	cmd := app.Commands()

	body := core.NewTransform()
	parent := cmd.AddEntity(TransformComponent{Transform: body})
	trail := core.NewTransform()
	cmd.AddEntity(Parent{Entity: parent}, LocalAt(mgl32.Vec3{0, -7.5, 0}), TransformComponent{Transform: trail})
	app.FlushCommands()

	app.Tick()
	assert.InDelta(t, -7.5, trail.Position.Y(), 1e-6)

	body.Position = mgl32.Vec3{0, 110, 0}
	app.Tick()
	assert.InDelta(t, 102.5, trail.Position.Y(), 1e-4)
}

func TestTransformHierarchy_OrphanStaysPut(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()

	tr := core.NewTransform()
	tr.Position = mgl32.Vec3{1, 2, 3}
	cmd.AddEntity(Parent{Entity: 42}, LocalAt(mgl32.Vec3{9, 9, 9}), TransformComponent{Transform: tr})
	app.FlushCommands()

	require.NotPanics(t, func() { TransformHierarchySystem(cmd) })
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, tr.Position)
}
