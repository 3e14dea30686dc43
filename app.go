package skyshow

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

// Module wires resources and systems into an App.
type Module interface {
	Install(app *App, cmd *Commands)
}

// Validator is implemented by modules whose configuration can be checked
// before anything is installed.
type Validator interface {
	Validate() error
}

// App is the per-scene engine context. It owns every resource; nothing in the
// engine lives in package-level state.
type App struct {
	stateful           bool
	stateTransitioning bool
	initialState       State
	finalState         State
	nextState          State
	state              State
	started            bool
	finished           bool
	frame              uint64
	stages             []Stage
	systems            map[string]map[State]map[statePhase][]systemFn
	systemsStateless   map[string][]systemFn
	resources          map[reflect.Type]any
	ecs                *Ecs

	// Entity changes made through Commands land at the end of each stage.
	pendingAdditions    []pendingAdd
	pendingRemovals     []EntityId
	pendingCompAdds     []pendingComponents
	pendingCompRemovals []pendingComponents
}

type pendingAdd struct {
	eid        EntityId
	components []any
}

type pendingComponents struct {
	eid        EntityId
	components []any
}

func NewApp() *App {
	ecs := MakeEcs()
	app := &App{
		systems:          make(map[string]map[State]map[statePhase][]systemFn),
		systemsStateless: make(map[string][]systemFn),
		resources:        make(map[reflect.Type]any),
		ecs:              &ecs,
	}
	for _, stage := range defaultStages {
		app.stages = append(app.stages, stage)
		app.initStage(stage)
	}
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

func (app *App) UseModules(modules ...Module) *App {
	cmd := app.Commands()
	for _, module := range modules {
		module.Install(app, cmd)
	}
	app.FlushCommands()
	return app
}

func (app *App) State() State   { return app.state }
func (app *App) Frame() uint64  { return app.frame }
func (app *App) Finished() bool { return app.finished }
func (app *App) Entities() int  { return app.ecs.Len() }

// Tick runs exactly one frame: every stage in order, then any pending state
// change. Ticks never overlap; the caller drives them.
func (app *App) Tick() {
	if app.finished {
		return
	}
	if !app.started {
		app.started = true
		if app.stateful {
			app.state = app.initialState
			app.callSystems(app.state, enter)
		}
	}

	app.callSystems(app.state, execute)
	app.frame++

	if app.stateful {
		if app.stateTransitioning {
			app.stateTransitioning = false
			app.executeChangeState(app.nextState)
		}

		if app.state == app.finalState && app.finalState != app.initialState {
			app.callSystems(app.state, exit)
			app.finished = true
		}
	}
}

// Run ticks until ctx is cancelled or the final state is reached.
func (app *App) Run(ctx context.Context) error {
	if app.stateful {
		app.Logger().Infof("running in stateful mode, state %d -> %d", app.initialState, app.finalState)
	} else {
		app.Logger().Infof("running in stateless mode")
	}

	for !app.finished {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		app.Tick()
	}
	return nil
}

func (app *App) callSystems(state State, phase statePhase) {
	for _, stage := range app.stages {
		// Stateless systems only run on execute, before the stateful ones.
		if execute == phase {
			for _, system := range app.systemsStateless[stage.Name] {
				app.callSystem(system)
			}
		}

		if app.stateful {
			for _, system := range app.systems[stage.Name][state][phase] {
				app.callSystem(system)
			}
		}
		app.FlushCommands()
	}
}

func (app *App) changeState(newState State) {
	app.nextState = newState
	app.stateTransitioning = true
}

func (app *App) executeChangeState(newState State) {
	app.callSystems(app.state, exit)
	app.state = newState
	app.callSystems(app.state, enter)
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %s must be a pointer", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource returns the resource of type *T, or nil when none was added.
func Resource[T any](app *App) *T {
	if res, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]; ok {
		return res.(*T)
	}
	return nil
}

var typeOfCommands = reflect.TypeOf(Commands{})

// callSystem resolves each pointer argument of system against the resources
// (or hands it a *Commands) and calls it.
func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, ok := app.resources[underlyingType]; ok {
			args[i] = reflect.ValueOf(resource)
		} else {
			msg := fmt.Sprintf("unable to resolve system dependency\nsystem: %s\nsystem type: %s\ndependency: %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(),
				systemType,
				argType,
			)
			app.Logger().Errorf("%s", msg)
			panic(msg)
		}
	}
	systemValue.Call(args)
}

// FlushCommands applies the entity changes queued since the last flush.
// Removals go first so nothing is added to an entity that is going away.
func (app *App) FlushCommands() {
	if len(app.pendingAdditions) == 0 && len(app.pendingRemovals) == 0 &&
		len(app.pendingCompAdds) == 0 && len(app.pendingCompRemovals) == 0 {
		return
	}

	for _, eid := range app.pendingRemovals {
		app.ecs.removeEntity(eid)
	}
	clear(app.pendingRemovals)
	app.pendingRemovals = app.pendingRemovals[:0]

	for _, add := range app.pendingAdditions {
		app.ecs.insertEntity(add.eid, add.components...)
	}
	clear(app.pendingAdditions)
	app.pendingAdditions = app.pendingAdditions[:0]

	for _, add := range app.pendingCompAdds {
		app.ecs.addComponents(add.eid, add.components...)
	}
	clear(app.pendingCompAdds)
	app.pendingCompAdds = app.pendingCompAdds[:0]

	for _, rm := range app.pendingCompRemovals {
		app.ecs.removeComponents(rm.eid, rm.components...)
	}
	clear(app.pendingCompRemovals)
	app.pendingCompRemovals = app.pendingCompRemovals[:0]
}
