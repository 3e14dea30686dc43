package skyshow

import (
	"github.com/gekko3d/skyshow/particlert/rt/emitter"

	"github.com/google/uuid"
)

// FireworkComponent ties an entity to one launch of a pooled shell.
type FireworkComponent struct {
	Firework *emitter.Firework
	Launch   uuid.UUID
}

// Fireworks is the resource holding the pooled firework show. The pool owns
// the shells; each live launch is mirrored by an entity.
type Fireworks struct {
	Pool *emitter.Pool

	entities map[uuid.UUID]EntityId
	log      Logger
}

// LaunchMultiple queues n shells interval seconds apart.
func (f *Fireworks) LaunchMultiple(n int, interval float32) { f.Pool.LaunchMultiple(n, interval) }

func (f *Fireworks) Clear() { f.Pool.Clear() }

// Entities is the number of launches currently mirrored in the world.
func (f *Fireworks) Entities() int { return len(f.entities) }

type FireworksModule struct {
	Config emitter.PoolConfig
}

func (m FireworksModule) Validate() error { return m.Config.Validate() }

func (m FireworksModule) Install(app *App, cmd *Commands) {
	log := app.Logger().Named("fireworks")
	pool, err := emitter.NewPool(m.Config, log)
	if err != nil {
		panic(err)
	}
	cmd.AddResources(&Fireworks{
		Pool:     pool,
		entities: make(map[uuid.UUID]EntityId),
		log:      log,
	})
	app.UseSystem(System(fireworksSystem).InStage(Update))
	app.UseSystem(System(fireworkEntitySystem).InStage(PostUpdate))
}

func fireworksSystem(t *Time, fw *Fireworks) {
	fw.Pool.Update(t.DtSeconds())
}

// fireworkEntitySystem spawns an entity for every new launch and despawns the
// ones whose shell went back to the pool. A relaunched shell gets a new id,
// so its old entity is despawned too. Live entities draw whichever buffer
// their shell shows now.
func fireworkEntitySystem(fw *Fireworks, cmd *Commands) {
	MakeQuery2[FireworkComponent, CloudComponent](cmd).Map(func(eid EntityId, fc *FireworkComponent, cloud *CloudComponent) bool {
		cloud.Hidden = fc.Firework.ID != fc.Launch || fc.Firework.Done()
		cloud.Buffer = fc.Firework.Buffer()
		return true
	})

	live := make(map[uuid.UUID]struct{}, fw.Pool.Active())
	for _, shell := range fw.Pool.Fireworks() {
		live[shell.ID] = struct{}{}
		if _, ok := fw.entities[shell.ID]; ok {
			continue
		}
		fw.entities[shell.ID] = cmd.AddEntity(
			FireworkComponent{Firework: shell, Launch: shell.ID},
			CloudComponent{Name: "firework/" + shell.ID.String(), Buffer: shell.Buffer()},
		)
		fw.log.Debugf("launch %s at %v", shell.ID, shell.Position())
	}

	for id, eid := range fw.entities {
		if _, ok := live[id]; ok {
			continue
		}
		cmd.RemoveEntity(eid)
		delete(fw.entities, id)
	}
}
