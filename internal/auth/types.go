package auth

import "time"

// User is an account that can authenticate against the service. The
// password is stored only as a bcrypt hash. Role is a weak reference to a
// Role by name; Permissions holds optional user-level overrides that are
// unioned with the role's permissions at token issuance.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Permissions  []string  `json:"permissions,omitempty"`
	CreatedDate  time.Time `json:"createdDate"`
}

// Role is a named bundle of permissions assignable to users.
type Role struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// EditRecord is an append-only audit entry written as a side effect of
// every mutating admin or self-service operation.
type EditRecord struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Op         string    `json:"op"`
	Collection string    `json:"collection"`
	Target     string    `json:"target"`
	Actor      Claims    `json:"auth"`
}

// UserUpdate carries a partial user update; nil fields are left untouched.
// Only the full name and password are updatable.
type UserUpdate struct {
	FullName     *string
	PasswordHash *string
}
