package enums

import "fmt"

// ActorKind identifies which of the mutually exclusive identities is active.
type ActorKind string

const (
	ActorKindOwner    ActorKind = "owner"
	ActorKindEmployee ActorKind = "employee"
	ActorKindTerminal ActorKind = "terminal"
	ActorKindNone     ActorKind = "none"
)

var validActorKinds = []ActorKind{
	ActorKindOwner,
	ActorKindEmployee,
	ActorKindTerminal,
	ActorKindNone,
}

// String implements fmt.Stringer.
func (k ActorKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known ActorKind.
func (k ActorKind) IsValid() bool {
	for _, candidate := range validActorKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseActorKind converts raw input into an ActorKind.
func ParseActorKind(value string) (ActorKind, error) {
	for _, candidate := range validActorKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor kind %q", value)
}
