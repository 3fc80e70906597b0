package state

import "github.com/PawelWisn/Fleet-Flow/internal/fleet"

// Session is the read-only view of the signed-in user handed to screens.
type Session interface {
	User() (fleet.User, bool)
	SignedIn() bool
	HasRole(roles ...fleet.Role) bool
	Can(caps ...fleet.Capability) bool
	CanAccessUsers() bool
	CanManageAdmins() bool
}

// SessionStore is the mutable session owned by the model.
type SessionStore interface {
	Session
	SetUser(fleet.User)
	Clear()
}

type sessionStore struct {
	user     fleet.User
	signedIn bool
}

func NewSessionStore() SessionStore {
	return &sessionStore{}
}

func (s *sessionStore) User() (fleet.User, bool) {
	return s.user, s.signedIn
}

func (s *sessionStore) SignedIn() bool {
	return s.signedIn
}

func (s *sessionStore) HasRole(roles ...fleet.Role) bool {
	if !s.signedIn {
		return false
	}
	for _, role := range roles {
		if s.user.Role == role {
			return true
		}
	}
	return false
}

func (s *sessionStore) Can(caps ...fleet.Capability) bool {
	return s.signedIn && s.user.Role.Can(caps...)
}

func (s *sessionStore) CanAccessUsers() bool {
	return s.Can(fleet.CapViewUsers)
}

func (s *sessionStore) CanManageAdmins() bool {
	return s.Can(fleet.CapManageAdmins)
}

func (s *sessionStore) SetUser(user fleet.User) {
	s.user = user
	s.signedIn = true
}

func (s *sessionStore) Clear() {
	s.user = fleet.User{}
	s.signedIn = false
}
