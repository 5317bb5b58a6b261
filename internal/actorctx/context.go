package actorctx

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// ActorType identifies which kind of authenticated principal issued a request.
// The platform gateway authenticates sessions; the wallet core only performs
// ownership checks against the identity it is handed.
type ActorType string

const (
	ActorTypeConsultant ActorType = "consultant"
	ActorTypeSalesAgent ActorType = "sales_agent"
	ActorTypeCompany    ActorType = "company"
	ActorTypeAdmin      ActorType = "admin"
	ActorTypeSystem     ActorType = "system"
)

type Actor struct {
	Type ActorType
	ID   snowflake.ID
}

func (a Actor) IsAdmin() bool      { return a.Type == ActorTypeAdmin }
func (a Actor) IsConsultant() bool { return a.Type == ActorTypeConsultant }

type contextKey struct{}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, actor)
}

func FromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(contextKey{}).(Actor)
	return actor, ok
}

func ParseActorType(raw string) (ActorType, bool) {
	switch ActorType(raw) {
	case ActorTypeConsultant, ActorTypeSalesAgent, ActorTypeCompany, ActorTypeAdmin, ActorTypeSystem:
		return ActorType(raw), true
	default:
		return "", false
	}
}
