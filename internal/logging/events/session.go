package events

import "github.com/PawelWisn/Fleet-Flow/internal/logging"

type SessionTracer struct{}

var Session = SessionTracer{}

func (SessionTracer) SignIn(email string) {
	logging.Trace("session.sign-in", map[string]interface{}{"email": email})
}

func (SessionTracer) SignedIn(userID int, role string) {
	logging.Trace("session.signed-in", map[string]interface{}{"user": userID, "role": role})
}

func (SessionTracer) Expired() {
	logging.Trace("session.expired", nil)
}

func (SessionTracer) Forbidden(resource string) {
	logging.Trace("session.forbidden", map[string]interface{}{"resource": resource})
}

func (SessionTracer) SignOut() {
	logging.Trace("session.sign-out", nil)
}
