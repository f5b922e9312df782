package roster

import (
	"sync"

	"github.com/google/uuid"
)

// Population enumerates the entities listed by population columns.
type Population interface {
	// Members returns the present members in enumeration order.
	Members() []*Member
	// Member looks one member up by id.
	Member(id uuid.UUID) (*Member, bool)
	// Visible reports whether viewer may see m listed.
	Visible(viewer Viewer, m *Member) bool
}

// MemberSet is an in-memory Population enumerating members in join order.
type MemberSet struct {
	mu      sync.RWMutex
	order   []uuid.UUID
	members map[uuid.UUID]*Member
}

func NewMemberSet() *MemberSet {
	return &MemberSet{members: make(map[uuid.UUID]*Member)}
}

// Put adds m, or replaces the member with the same id keeping its position.
func (s *MemberSet) Put(m *Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[m.UUID]; !ok {
		s.order = append(s.order, m.UUID)
	}
	s.members[m.UUID] = m.Clone()
}

// Update applies fn to a copy of the member and stores the result.
func (s *MemberSet) Update(id uuid.UUID, fn func(*Member)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return false
	}
	c := m.Clone()
	fn(c)
	c.UUID = id
	s.members[id] = c
	return true
}

func (s *MemberSet) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; !ok {
		return
	}
	delete(s.members, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *MemberSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *MemberSet) Members() []*Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Member, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.members[id])
	}
	return out
}

func (s *MemberSet) Member(id uuid.UUID) (*Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[id]
	return m, ok
}

func (s *MemberSet) Visible(viewer Viewer, m *Member) bool {
	if !m.Hidden {
		return true
	}
	return viewer.ID() == m.UUID || viewer.HasPermission(SeeHiddenPermission)
}
