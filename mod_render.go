package skyshow

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gekko3d/skyshow/particlert/rt/core"
)

// PointCloud is one drawable point buffer. A nil Transform means the buffer
// is already in world space.
type PointCloud struct {
	Name      string
	Buffer    *core.ParticleBuffer
	Transform *core.Transform
}

// Frame is everything visible on one tick. Buffers are only valid for the
// duration of Submit; the next tick mutates them in place.
type Frame struct {
	Number  uint64
	Elapsed time.Duration
	Clouds  []PointCloud
}

// Instances packs every cloud into world-space instances, ready for upload.
func (f Frame) Instances(dst []core.ParticleInstance) []core.ParticleInstance {
	for _, c := range f.Clouds {
		dst = c.Buffer.AppendInstances(dst, c.Transform)
	}
	return dst
}

// RenderSurface receives one frame per tick.
type RenderSurface interface {
	Submit(frame Frame)
}

// CloudComponent makes an entity drawable. Hidden and empty clouds stay in
// the world but are left out of frames.
type CloudComponent struct {
	Name   string
	Buffer *core.ParticleBuffer
	Hidden bool
}

// MemorySurface keeps a packed copy of the last submitted frame.
type MemorySurface struct {
	mu        sync.Mutex
	frames    int
	last      Frame
	instances []core.ParticleInstance
	names     []string
}

func (s *MemorySurface) Submit(frame Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	s.last = Frame{Number: frame.Number, Elapsed: frame.Elapsed}
	s.instances = frame.Instances(s.instances[:0])
	s.names = s.names[:0]
	for _, c := range frame.Clouds {
		s.names = append(s.names, c.Name)
	}
}

func (s *MemorySurface) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Last returns the header of the last frame, the names of its clouds and a
// copy of its packed instances.
func (s *MemorySurface) Last() (Frame, []string, []core.ParticleInstance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, slices.Clone(s.names), slices.Clone(s.instances)
}

// RendererTag marks that a render surface has been installed into the App.
type RendererTag struct {
	Name string
}

// ensureSingleRenderer fails fast when a second, different surface is installed.
func ensureSingleRenderer(app *App, name string) {
	t := reflect.TypeOf((*RendererTag)(nil)).Elem()
	if res, ok := app.resources[t]; ok {
		if tag := res.(*RendererTag); tag.Name != name {
			app.Logger().Errorf("multiple renderers installed: %s and %s", tag.Name, name)
			panic(fmt.Sprintf("multiple renderers installed: %s and %s", tag.Name, name))
		}
		return
	}
	app.addResources(&RendererTag{Name: name})
}

type RenderModule struct {
	Name    string
	Surface RenderSurface
}

type renderer struct {
	surface RenderSurface
	frame   Frame
}

func (m RenderModule) Validate() error {
	if m.Surface == nil {
		return invalidf("render module needs a surface")
	}
	return nil
}

func (m RenderModule) Install(app *App, cmd *Commands) {
	name := m.Name
	if name == "" {
		name = fmt.Sprintf("%T", m.Surface)
	}
	ensureSingleRenderer(app, name)
	cmd.AddResources(&renderer{surface: m.Surface})
	app.UseSystem(System(renderSystem).InStage(Render))
}

// renderSystem gathers every visible cloud, ordered by name so frames list
// clouds in a stable order, and submits them.
func renderSystem(r *renderer, t *Time, cmd *Commands) {
	r.frame.Number = t.Frame
	r.frame.Elapsed = t.Elapsed
	r.frame.Clouds = r.frame.Clouds[:0]

	MakeQuery2[CloudComponent, TransformComponent](cmd).Map(func(eid EntityId, cloud *CloudComponent, tr *TransformComponent) bool {
		if cloud.Hidden || cloud.Buffer == nil || cloud.Buffer.Len() == 0 {
			return true
		}
		pc := PointCloud{Name: cloud.Name, Buffer: cloud.Buffer}
		if tr != nil {
			pc.Transform = tr.Transform
		}
		r.frame.Clouds = append(r.frame.Clouds, pc)
		return true
	}, TransformComponent{})

	slices.SortFunc(r.frame.Clouds, func(a, b PointCloud) int { return strings.Compare(a.Name, b.Name) })

	r.surface.Submit(r.frame)

	for _, c := range r.frame.Clouds {
		c.Buffer.ClearDirty()
		if c.Transform != nil {
			c.Transform.Dirty = false
		}
	}
}
