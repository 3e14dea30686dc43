package skyshow

import (
	"fmt"
)

type AppBuilder struct {
	app     *App
	modules []Module
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{app: NewApp()}
}

func (b *AppBuilder) UseStates(initialState State, finalState State) *AppBuilder {
	b.app.stateful = true
	b.app.initialState = initialState
	b.app.finalState = finalState
	b.app.state = initialState
	b.app.ensureStateTables()

	return b
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

// Build validates every module that can be validated and installs them in
// order. A configuration error refuses the whole scene.
func (b *AppBuilder) Build() (*App, error) {
	for _, module := range b.modules {
		if v, ok := module.(Validator); ok {
			if err := v.Validate(); err != nil {
				return nil, fmt.Errorf("module %T: %w", module, err)
			}
		}
	}

	app := b.app
	commands := &Commands{app: app}

	for _, module := range b.modules {
		module.Install(app, commands)
	}
	app.FlushCommands()

	return app, nil
}
