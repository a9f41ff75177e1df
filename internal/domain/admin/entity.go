package admin

import "time"

// User is an operator of the admin HTTP API. Unrelated to employees: admin
// credentials are bcrypt-hashed, employee secrets feed the wire handshake.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
