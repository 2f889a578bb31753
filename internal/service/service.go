// Package service implements the business logic: the moderation state
// machine, the social graph engine, the reaction ledger and the post
// visibility gate. Services load documents through the store interfaces,
// check invariants, mutate and persist. Multi-document mutations are ordered
// sequences of idempotent single-document writes with no rollback; a failure
// between writes leaves a recoverable inconsistency that converges when the
// operation is retried.
package service

import (
	"errors"

	"ripple/internal/models"
	"ripple/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// wrapStoreErr converts a store lookup failure into the API error taxonomy:
// a missing document becomes NOT_FOUND for the named resource, anything else
// is an opaque store failure.
func wrapStoreErr(err error, resource string, id primitive.ObjectID) error {
	if errors.Is(err, store.ErrNoDocument) {
		return models.NewNotFoundError(resource, id.Hex())
	}
	return models.NewStoreError(err)
}
