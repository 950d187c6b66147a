// Package mocks holds in-memory repository fakes shared by handler and
// middleware tests.
package mocks

import (
	"context"
	"slices"

	"eventsapi/images"
	"eventsapi/models"
)

type MockUserRepo struct {
	Users map[string]models.User // keyed by username
}

func (m *MockUserRepo) Create(u *models.User) error {
	if _, ok := m.Users[u.Username]; ok {
		return models.ErrDuplicate
	}
	if u.CreatedEvents == nil {
		u.CreatedEvents = []string{}
	}
	m.Users[u.Username] = *u
	return nil
}

func (m *MockUserRepo) GetByUsername(username string) (models.User, error) {
	u, ok := m.Users[username]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return u, nil
}

func (m *MockUserRepo) UpdatePassword(username, plain string) error {
	u, ok := m.Users[username]
	if !ok {
		return models.ErrNotFound
	}
	u.Password = plain
	m.Users[username] = u
	return nil
}

func (m *MockUserRepo) Delete(username string) error {
	if _, ok := m.Users[username]; !ok {
		return models.ErrNotFound
	}
	delete(m.Users, username)
	return nil
}

func (m *MockUserRepo) AddCreatedEvent(username, eventID string) error {
	u, ok := m.Users[username]
	if !ok {
		return models.ErrNotFound
	}
	if !slices.Contains(u.CreatedEvents, eventID) {
		u.CreatedEvents = append(u.CreatedEvents, eventID)
	}
	m.Users[username] = u
	return nil
}

// ValidateCredentials compares plaintext; hashing is covered by the utils
// tests.
func (m *MockUserRepo) ValidateCredentials(username, plain string) (models.User, error) {
	u, ok := m.Users[username]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	if u.Password != plain {
		return models.User{}, models.ErrInvalidCredentials
	}
	return u, nil
}

type MockSessionRepo struct {
	Sessions map[string]string // username -> token
}

func (m *MockSessionRepo) Put(username, token string) error {
	m.Sessions[username] = token
	return nil
}

func (m *MockSessionRepo) Get(username string) (models.Session, error) {
	token, ok := m.Sessions[username]
	if !ok {
		return models.Session{}, models.ErrNotFound
	}
	return models.Session{Username: username, Token: token}, nil
}

func (m *MockSessionRepo) Delete(username string) error {
	delete(m.Sessions, username)
	return nil
}

type MockEventRepo struct {
	Items map[string]models.Event
}

func (m *MockEventRepo) GetAll() ([]models.Event, error) {
	out := make([]models.Event, 0, len(m.Items))
	for _, e := range m.Items {
		out = append(out, e)
	}
	return out, nil
}

func (m *MockEventRepo) GetByID(id string) (models.Event, error) {
	e, ok := m.Items[id]
	if !ok {
		return models.Event{}, models.ErrNotFound
	}
	return e, nil
}

func (m *MockEventRepo) GetByCreator(username string) ([]models.Event, error) {
	out := []models.Event{}
	for _, e := range m.Items {
		if e.Creator == username {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockEventRepo) Create(e *models.Event) error {
	m.Items[e.ID] = *e
	return nil
}

func (m *MockEventRepo) Update(e *models.Event) error {
	if _, ok := m.Items[e.ID]; !ok {
		return models.ErrNotFound
	}
	m.Items[e.ID] = *e
	return nil
}

func (m *MockEventRepo) Delete(id string) error {
	if _, ok := m.Items[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.Items, id)
	return nil
}

// MockMembershipRepo keeps rows in insertion order, like the SQL table
// ordered by id.
type MockMembershipRepo struct {
	Rows []models.Membership
}

func (m *MockMembershipRepo) Add(username, eventID string) error {
	for _, r := range m.Rows {
		if r.Username == username && r.EventID == eventID {
			return nil // unique index: silent no-op
		}
	}
	m.Rows = append(m.Rows, models.Membership{Username: username, EventID: eventID})
	return nil
}

func (m *MockMembershipRepo) Remove(username, eventID string) error {
	m.Rows = slices.DeleteFunc(m.Rows, func(r models.Membership) bool {
		return r.Username == username && r.EventID == eventID
	})
	return nil
}

func (m *MockMembershipRepo) RemoveAllForEvent(eventID string) error {
	m.Rows = slices.DeleteFunc(m.Rows, func(r models.Membership) bool {
		return r.EventID == eventID
	})
	return nil
}

func (m *MockMembershipRepo) UsernamesByEvent(eventID string) ([]string, error) {
	out := []string{}
	for _, r := range m.Rows {
		if r.EventID == eventID {
			out = append(out, r.Username)
		}
	}
	return out, nil
}

func (m *MockMembershipRepo) ListByUser(username string) ([]models.Membership, error) {
	out := []models.Membership{}
	for _, r := range m.Rows {
		if r.Username == username {
			out = append(out, r)
		}
	}
	return out, nil
}

// MockImageStore validates data URIs the same way the S3 store does.
type MockImageStore struct {
	Objects map[string]string // username -> data URI
}

func (m *MockImageStore) Put(_ context.Context, username, dataURI string) error {
	if _, _, err := images.DecodeDataURI(dataURI); err != nil {
		return err
	}
	m.Objects[username] = dataURI
	return nil
}

func (m *MockImageStore) Get(_ context.Context, username string) (string, error) {
	uri, ok := m.Objects[username]
	if !ok {
		return "", models.ErrNotFound
	}
	return uri, nil
}
