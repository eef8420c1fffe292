package channel

import "fmt"

// Type classifies a channel. Values match Discord's channel type discriminants.
type Type int

const (
	TypeText     Type = 0
	TypeDM       Type = 1
	TypeVoice    Type = 2
	TypeGroupDM  Type = 3
	TypeCategory Type = 4

	numTypes = 5
)

// Capability describes what a channel variant can do beyond identity queries.
type Capability struct {
	// Messaging allows message, reaction, pin and typing operations.
	Messaging bool
}

// capabilities is indexed by Type. Adding a Type constant without extending
// this table fails to compile via the assertion below.
var capabilities = [...]Capability{
	TypeText:     {Messaging: true},
	TypeDM:       {Messaging: true},
	TypeVoice:    {Messaging: false},
	TypeGroupDM:  {Messaging: true},
	TypeCategory: {Messaging: true},
}

var (
	_ = [1]struct{}{}[len(capabilities)-numTypes]
	_ = [1]struct{}{}[len(typeNames)-numTypes]
)

var typeNames = [...]string{
	TypeText:     "text",
	TypeDM:       "dm",
	TypeVoice:    "voice",
	TypeGroupDM:  "group_dm",
	TypeCategory: "category",
}

// Valid reports whether t is one of the known variants.
func (t Type) Valid() bool {
	return t >= 0 && t < numTypes
}

// Capability returns the capability set of t. Unknown types have none.
func (t Type) Capability() Capability {
	if !t.Valid() {
		return Capability{}
	}
	return capabilities[t]
}

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType converts a name produced by Type.String back to a Type.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if name == s {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("unknown channel type %q", s)
}
