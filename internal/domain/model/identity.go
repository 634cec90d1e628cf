package model

// User is the account bound to an authenticated session.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Identity is the tri-state session identity. Before the first authentication
// check it is unknown, which is distinct from a resolved anonymous session. A
// resolved identity is anonymous when User is nil.
type Identity struct {
	Resolved bool  `json:"resolved"`
	User     *User `json:"user"`
}

// UnknownIdentity is the not-yet-resolved state.
func UnknownIdentity() Identity {
	return Identity{}
}

// AnonymousIdentity is a resolved session without an authenticated user.
func AnonymousIdentity() Identity {
	return Identity{Resolved: true}
}

// ResolvedIdentity is a resolved session bound to user.
func ResolvedIdentity(user *User) Identity {
	return Identity{Resolved: true, User: user}
}

// IsUnknown reports whether the identity was never resolved.
func (i Identity) IsUnknown() bool {
	return !i.Resolved
}

// IsAnonymous reports whether the session resolved to no user.
func (i Identity) IsAnonymous() bool {
	return i.Resolved && i.User == nil
}

// Same reports whether two resolved identities denote the same principal.
// Users match on ID; an unknown identity matches nothing.
func (i Identity) Same(other Identity) bool {
	if !i.Resolved || !other.Resolved {
		return false
	}
	if i.User == nil || other.User == nil {
		return i.User == nil && other.User == nil
	}
	return i.User.ID == other.User.ID
}

// Key names the identity for cache scoping, so entries fetched for different
// identities never collide.
func (i Identity) Key() string {
	switch {
	case !i.Resolved:
		return "unknown"
	case i.User == nil:
		return "anonymous"
	default:
		return "user:" + i.User.ID
	}
}
