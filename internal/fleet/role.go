package fleet

import "fmt"

// Role is the closed set of account roles known to the backend.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleWorker
	RoleManager
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleWorker:  "worker",
	RoleManager: "manager",
	RoleAdmin:   "admin",
}

// Roles lists every assignable role, most privileged first.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleWorker}
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseRole maps the backend's role string onto the enumeration.
func ParseRole(value string) (Role, error) {
	for role, name := range roleNames {
		if name == value {
			return role, nil
		}
	}
	return RoleUnknown, fmt.Errorf("unknown role %q", value)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if r == RoleUnknown {
		return []byte{}, nil
	}
	name, ok := roleNames[r]
	if !ok {
		return nil, fmt.Errorf("cannot marshal role %d", r)
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*r = RoleUnknown
		return nil
	}
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Capability represents a single permission granted by a role.
type Capability uint

const (
	CapViewUsers Capability = 1 << iota
	CapManageUsers
	CapManageAdmins
	CapManageFleet
	CapBook
)

// Capabilities is a container of capabilities with Has, With and Without helpers.
type Capabilities uint

// EmptyCapabilities has no capability set.
const EmptyCapabilities Capabilities = 0

// Has checks if every given capability is set.
func (cur Capabilities) Has(caps ...Capability) bool {
	for _, c := range caps {
		if uint(cur)&uint(c) == 0 {
			return false
		}
	}
	return true
}

// With returns a container with the given capabilities added.
func (cur Capabilities) With(caps ...Capability) Capabilities {
	val := uint(cur)
	for _, c := range caps {
		val |= uint(c)
	}
	return Capabilities(val)
}

// Without returns a container with the given capabilities removed.
func (cur Capabilities) Without(caps ...Capability) Capabilities {
	val := uint(cur)
	for _, c := range caps {
		val &= ^uint(c)
	}
	return Capabilities(val)
}

// Capabilities returns the permissions granted to the role.
func (r Role) Capabilities() Capabilities {
	switch r {
	case RoleAdmin:
		return EmptyCapabilities.With(CapViewUsers, CapManageUsers, CapManageAdmins, CapManageFleet, CapBook)
	case RoleManager:
		return EmptyCapabilities.With(CapViewUsers, CapManageUsers, CapManageFleet, CapBook)
	case RoleWorker:
		return EmptyCapabilities.With(CapBook)
	default:
		return EmptyCapabilities
	}
}

// Can reports whether the role grants all of the given capabilities. Calling it
// without capabilities always succeeds.
func (r Role) Can(caps ...Capability) bool {
	return r.Capabilities().Has(caps...)
}
