package models

import "database/sql"

type sqlMembershipRepo struct{ db *sql.DB }

func NewSQLMembershipRepository(db *sql.DB) MembershipRepository {
	return &sqlMembershipRepo{db}
}

// Add relies on UNIQUE(username, event_id); re-adding an existing attendee is
// a no-op, which gives the attendee list set semantics.
func (r *sqlMembershipRepo) Add(username, eventID string) error {
	_, err := r.db.Exec(
		`INSERT INTO memberships(username, event_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
		username, eventID)
	return err
}

func (r *sqlMembershipRepo) Remove(username, eventID string) error {
	_, err := r.db.Exec(`DELETE FROM memberships WHERE username=$1 AND event_id=$2`,
		username, eventID)
	return err
}

func (r *sqlMembershipRepo) RemoveAllForEvent(eventID string) error {
	_, err := r.db.Exec(`DELETE FROM memberships WHERE event_id=$1`, eventID)
	return err
}

// UsernamesByEvent orders by insertion id so attendee order is stable across
// reads.
func (r *sqlMembershipRepo) UsernamesByEvent(eventID string) ([]string, error) {
	rows, err := r.db.Query(
		`SELECT username FROM memberships WHERE event_id=$1 ORDER BY id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *sqlMembershipRepo) ListByUser(username string) ([]Membership, error) {
	rows, err := r.db.Query(
		`SELECT username, event_id FROM memberships WHERE username=$1 ORDER BY id`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Membership{}
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.Username, &m.EventID); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
