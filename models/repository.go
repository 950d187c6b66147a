package models

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ===== Users =====

// Password carries the bcrypt hash and never serializes into responses.
// AttendingEvents is derived from the memberships table at read time.
type User struct {
	Username        string   `bson:"_id" json:"username"`
	Password        string   `bson:"password" json:"-"`
	CreatedEvents   []string `bson:"created_events" json:"createdEvents"`
	AttendingEvents []string `bson:"-" json:"attendingEvents"`
}

type UserRepository interface {
	Create(u *User) error
	GetByUsername(username string) (User, error)
	UpdatePassword(username, plain string) error
	Delete(username string) error
	AddCreatedEvent(username, eventID string) error
	ValidateCredentials(username, plain string) (User, error)
}

// ===== Sessions =====

// At most one session per user; login upserts, logout deletes.
type Session struct {
	Username string `bson:"_id"`
	Token    string `bson:"token"`
}

type SessionRepository interface {
	Put(username, token string) error
	Get(username string) (Session, error)
	Delete(username string) error
}

// ===== Events =====

// Attendees and NumberOfAttendees are derived from memberships, not stored
// on the document.
type Event struct {
	ID                string   `bson:"_id" json:"id"`
	Title             string   `bson:"title" json:"title"`
	Description       string   `bson:"description" json:"description"`
	Creator           string   `bson:"creator" json:"creator"`
	StartTime         string   `bson:"start_time" json:"startTime"`
	EndTime           string   `bson:"end_time" json:"endTime"`
	Location          string   `bson:"location" json:"location"`
	PastEvent         bool     `bson:"past_event" json:"pastEvent"`
	Attendees         []string `bson:"-" json:"attendees"`
	NumberOfAttendees int      `bson:"-" json:"numberOfAttendees"`
}

type EventRepository interface {
	GetAll() ([]Event, error)
	GetByID(id string) (Event, error)
	GetByCreator(username string) ([]Event, error)
	Create(e *Event) error
	Update(e *Event) error
	Delete(id string) error
}

// ===== Memberships =====

// One row per (username, eventId) pair; the single source of truth for
// attendance. The attendee arrays on User and Event are read-time joins
// against this table.
type Membership struct {
	Username string `json:"username"`
	EventID  string `json:"eventId"`
}

type MembershipRepository interface {
	Add(username, eventID string) error
	Remove(username, eventID string) error
	RemoveAllForEvent(eventID string) error
	UsernamesByEvent(eventID string) ([]string, error)
	ListByUser(username string) ([]Membership, error)
}
