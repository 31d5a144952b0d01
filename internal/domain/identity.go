package domain

import "errors"

var (
	// ErrEmailTaken is returned when registering with an email that already has an account.
	ErrEmailTaken = errors.New("email already exists")
	// ErrUsernameTaken is returned when registering with a username that already has an account.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrIdentityNotFound is returned when looking up a non-existent identity.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrInvalidCredentials is returned when the email/password combination is incorrect.
	// Callers must not reveal whether the email or the password was at fault.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Identity represents a registered user account. Secret holds the derived
// credential (never the plaintext password) and must never reach a client;
// responses go through PublicIdentity instead.
type Identity struct {
	ID        int64
	Username  string
	Email     string
	Secret    string // derived credential, "hash.salt" hex halves
	Bio       string
	AvatarURL string
	IsAdmin   bool
	CreatedAt int64 // Unix timestamp of account creation
}

// PublicIdentity is the client-facing projection of an Identity. It has no
// field for the credential secret, so serializing it cannot leak one.
type PublicIdentity struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	IsAdmin   bool   `json:"isAdmin"`
	CreatedAt int64  `json:"createdAt"`
}

// Public returns the client-facing projection of the identity.
func (u *Identity) Public() PublicIdentity {
	return PublicIdentity{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}
