package auth

// Identity is the sanitized view of a user: never the password digest,
// pending-action token or audit fields.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
