package domain

import (
	"slices"

	"github.com/google/uuid"
)

const (
	RoleAdmin     = "admin"
	RoleMarketing = "marketing"
	RoleSales     = "sales"
)

// ActorContext is the explicit identity of the caller behind an intake
// attempt. Webhook deliveries carry the zero value.
type ActorContext struct {
	ActorID *uuid.UUID
	Roles   []string
}

// Anonymous is the actor of unauthenticated webhook deliveries.
func Anonymous() ActorContext {
	return ActorContext{}
}

// NewActor builds an authenticated actor.
func NewActor(id uuid.UUID, roles []string) ActorContext {
	return ActorContext{ActorID: &id, Roles: roles}
}

// IsAuthenticated reports whether an actor id is present.
func (a ActorContext) IsAuthenticated() bool {
	return a.ActorID != nil
}

// IsPrivileged reports whether the actor may override status and assignee.
func (a ActorContext) IsPrivileged() bool {
	return a.IsAuthenticated() &&
		(slices.Contains(a.Roles, RoleAdmin) || slices.Contains(a.Roles, RoleMarketing))
}
