package auth

import (
	"context"

	"github.com/mailboxapp/mailbox/internal/apperr"
)

// ResourceKind names a class of owned resources routes can guard.
type ResourceKind string

const (
	KindMessage   ResourceKind = "message"
	KindReception ResourceKind = "reception"
	KindDossier   ResourceKind = "dossier"
	KindContact   ResourceKind = "contact"
)

// OwnerResolver maps a resource id to the user id allowed to act on it.
type OwnerResolver interface {
	OwnerID(ctx context.Context, id int64) (int64, error)
}

// OwnerRegistry holds one resolver per resource kind. It is populated once
// at startup and read-only afterwards.
type OwnerRegistry struct {
	resolvers map[ResourceKind]OwnerResolver
}

func NewOwnerRegistry() *OwnerRegistry {
	return &OwnerRegistry{resolvers: make(map[ResourceKind]OwnerResolver)}
}

func (r *OwnerRegistry) Register(kind ResourceKind, resolver OwnerResolver) {
	r.resolvers[kind] = resolver
}

// Check verifies that userID owns the resource. A missing resource surfaces
// as not-found, a foreign one as an authorization failure.
func (r *OwnerRegistry) Check(ctx context.Context, kind ResourceKind, id, userID int64) error {
	resolver, ok := r.resolvers[kind]
	if !ok {
		return apperr.NotFound("resource not found")
	}

	ownerID, err := resolver.OwnerID(ctx, id)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return apperr.Authorization("forbidden resource")
	}
	return nil
}
