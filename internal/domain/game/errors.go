package game

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRole      = errors.New("invalid role")
	ErrNoNightAction    = errors.New("role has no night action")
	ErrMalformedContext = errors.New("malformed context")
)

// InvalidRoleError explains why a role was rejected.
type InvalidRoleError string

func (e InvalidRoleError) Error() string { return "invalid role: " + string(e) }

func (e InvalidRoleError) Unwrap() error { return ErrInvalidRole }

// ContextError names the field that made a RoleContext unusable for a role.
type ContextError struct {
	Role  RoleKind
	Field string
	Msg   string
}

func (e *ContextError) Error() string {
	if e.Role == "" {
		return fmt.Sprintf("malformed context: %s %s", e.Field, e.Msg)
	}
	return fmt.Sprintf("malformed %s context: %s %s", e.Role, e.Field, e.Msg)
}

func (e *ContextError) Unwrap() error { return ErrMalformedContext }

// Validate checks that the context carries what the role needs.
// Only structural problems are reported; an empty target pool is not an error.
func (rc *RoleContext) Validate(role RoleKind) error {
	if rc == nil {
		return &ContextError{Role: role, Field: "context", Msg: "is missing"}
	}
	if rc.Round < 1 {
		return &ContextError{Role: role, Field: "round", Msg: "must be positive"}
	}
	if rc.AlivePlayers == nil {
		return &ContextError{Role: role, Field: "alivePlayers", Msg: "is missing"}
	}
	for _, p := range rc.AlivePlayers {
		if p.ID < 1 {
			return &ContextError{Role: role, Field: "alivePlayers", Msg: fmt.Sprintf("contains invalid id %d", p.ID)}
		}
	}
	switch role {
	case RoleSeer:
		if rc.InvestigatedPlayers == nil {
			return &ContextError{Role: role, Field: "investigatedPlayers", Msg: "is missing"}
		}
	case RoleWitch:
		if rc.PotionUsed == nil {
			return &ContextError{Role: role, Field: "potionUsed", Msg: "is missing"}
		}
		if rc.KilledTonight < 0 {
			return &ContextError{Role: role, Field: "killedTonight", Msg: "must not be negative"}
		}
	}
	return nil
}
