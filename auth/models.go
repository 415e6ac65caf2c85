package auth

import "time"

// User represents a row in the users table. HashedPassword is the bcrypt
// hash of the registration password; plaintext is never stored.
type User struct {
	ID             int       `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}
