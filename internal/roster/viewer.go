package roster

import (
	"math"
	"slices"

	"github.com/google/uuid"
)

// Viewer is a connected client the engine renders for.
type Viewer interface {
	ID() uuid.UUID
	Name() string
	HasPermission(perm string) bool
}

// Predicate decides whether something applies to a viewer.
type Predicate func(Viewer) bool

// RequirePermission is satisfied by viewers holding perm. An empty perm is
// satisfied by everyone.
func RequirePermission(perm string) Predicate {
	if perm == "" {
		return nil
	}
	return func(v Viewer) bool { return v.HasPermission(perm) }
}

// Location places a member in a world for distance sorting.
type Location struct {
	World   string
	X, Y, Z float64
}

// Distance between two locations; different worlds are infinitely far apart.
func (l Location) Distance(o Location) float64 {
	if l.World != o.World {
		return math.Inf(1)
	}
	dx, dy, dz := l.X-o.X, l.Y-o.Y, l.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Member is one present entity of the population. It also satisfies Viewer
// so connected members can be rendered for.
type Member struct {
	UUID        uuid.UUID
	Username    string
	Permissions []string
	Avatar      *Avatar
	Location    *Location
	Vars        map[string]string
	Mode        GameMode
	// Hidden members are only listed for themselves and for viewers
	// holding SeeHiddenPermission.
	Hidden bool
}

// SeeHiddenPermission lets a viewer see hidden members in population columns.
const SeeHiddenPermission = "rostertab.see-hidden"

func (m *Member) ID() uuid.UUID { return m.UUID }
func (m *Member) Name() string { return m.Username }

func (m *Member) HasPermission(perm string) bool {
	if perm == "" {
		return true
	}
	return slices.Contains(m.Permissions, perm) || slices.Contains(m.Permissions, "*")
}

// Clone returns a copy safe to mutate.
func (m *Member) Clone() *Member {
	c := *m
	c.Permissions = slices.Clone(m.Permissions)
	if m.Location != nil {
		loc := *m.Location
		c.Location = &loc
	}
	if m.Vars != nil {
		c.Vars = make(map[string]string, len(m.Vars))
		for k, v := range m.Vars {
			c.Vars[k] = v
		}
	}
	return &c
}
