package importer

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// fakeDirectory is an in-memory member directory for tests.
type fakeDirectory struct {
	mu      sync.Mutex
	members []*Member
	nextID  int

	failCreate error
	failUpdate error
	failLookup error

	created []string
	updated []string
}

func (d *fakeDirectory) add(m Member) *Member {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	if m.ID == "" {
		m.ID = fmt.Sprintf("member-%d", d.nextID)
	}
	copied := m
	d.members = append(d.members, &copied)
	return &copied
}

func (d *fakeDirectory) FindByEmail(ctx context.Context, email string) (*Member, error) {
	if d.failLookup != nil {
		return nil, d.failLookup
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, m := range d.members {
		if strings.EqualFold(m.Email, email) && m.Email != "" {
			return m, nil
		}
	}
	return nil, nil
}

func (d *fakeDirectory) FindByPhone(ctx context.Context, phone string) (*Member, error) {
	if d.failLookup != nil {
		return nil, d.failLookup
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, m := range d.members {
		if m.Phone == phone && m.Phone != "" {
			return m, nil
		}
	}
	return nil, nil
}

func (d *fakeDirectory) FindByNameAndBirthday(ctx context.Context, firstName, lastName, birthday string) (*Member, error) {
	if d.failLookup != nil {
		return nil, d.failLookup
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, m := range d.members {
		if strings.EqualFold(m.FirstName, firstName) &&
			strings.EqualFold(m.LastName, lastName) &&
			m.Birthday == birthday && m.Birthday != "" {
			return m, nil
		}
	}
	return nil, nil
}

func (d *fakeDirectory) Create(ctx context.Context, m *Member) error {
	if d.failCreate != nil {
		return d.failCreate
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	if m.ID == "" {
		m.ID = fmt.Sprintf("member-%d", d.nextID)
	}
	copied := *m
	d.members = append(d.members, &copied)
	d.created = append(d.created, m.ID)
	return nil
}

func (d *fakeDirectory) Update(ctx context.Context, m *Member) error {
	if d.failUpdate != nil {
		return d.failUpdate
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, existing := range d.members {
		if existing.ID == m.ID {
			copied := *m
			d.members[i] = &copied
			d.updated = append(d.updated, m.ID)
			return nil
		}
	}
	return fmt.Errorf("member %s not found", m.ID)
}

// fakeGroups is an in-memory group directory for tests.
type fakeGroups struct {
	groups map[string]string // lowercase name -> id
	err    error
}

func (g *fakeGroups) FindIDByName(ctx context.Context, name string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.groups[strings.ToLower(name)], nil
}

// memSessionStore is an in-memory SessionStore for tests.
type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]*Session)}
}

func (s *memSessionStore) Create(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *sess
	s.sessions[sess.ID] = &copied
	return nil
}

func (s *memSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *sess
	return &copied, nil
}

func (s *memSessionStore) Update(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; !ok {
		return ErrSessionNotFound
	}
	copied := *sess
	s.sessions[sess.ID] = &copied
	return nil
}

func (s *memSessionStore) ListByCreator(ctx context.Context, createdBy string, limit int) ([]*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Session
	for _, sess := range s.sessions {
		if sess.CreatedBy == createdBy {
			copied := *sess
			out = append(out, &copied)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
