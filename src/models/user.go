package models

import "time"

// User is an opaque collaborator; authentication lives outside this service.
type User struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}
