package services

// Identity is the authenticated caller, resolved from a credential token.
// Operations that allow guest checkout take a nil *Identity.
type Identity struct {
	UserID   string
	Username string
	Email    string
	IsAdmin  bool
}
