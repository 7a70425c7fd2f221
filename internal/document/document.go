// Package document holds the reserved-metadata-field conventions every
// document shares: a value.Object IS a document, the way the teacher's
// Document aggregate used to be the thing itself rather than a wrapper
// around it — except this domain's fields are the open-ended ones a
// caller supplies, so there is no fixed id/content/tags struct left to
// validate, only the three reserved fields every document carries.
package document

import (
	"time"

	"github.com/google/uuid"

	"github.com/docudex/docudex/internal/domain"
	"github.com/docudex/docudex/internal/value"
)

// Reserved metadata field names. A caller may supply _id (Update requires
// it); EnsureID and Touch fill in whichever of the three are absent.
const (
	IDField       = "_id"
	CreatedField  = "_createdTimestamp"
	ModifiedField = "_modifiedTimestamp"
)

// ID returns the document's identifier and whether it has a valid one.
func ID(obj *value.Object) (uuid.UUID, bool) {
	v, ok := obj.Get(IDField)
	if !ok {
		return uuid.UUID{}, false
	}
	return v.AsGuid()
}

// EnsureID returns the document's existing id, generating and setting a
// fresh one if it is absent — the insert-time "generated on insert if
// absent" rule.
func EnsureID(obj *value.Object) uuid.UUID {
	if id, ok := ID(obj); ok {
		return id
	}
	id := uuid.New()
	obj.Set(IDField, value.Guid(id))
	return id
}

// RequireID returns the document's id, failing with ErrMissingID if one
// was not supplied and the caller did not ask EnsureID to generate one —
// used by update, where an absent id is a caller error rather than
// something to paper over.
func RequireID(obj *value.Object) (uuid.UUID, error) {
	id, ok := ID(obj)
	if !ok {
		return uuid.UUID{}, domain.ErrMissingID
	}
	return id, nil
}

// Touch stamps the reserved timestamps: _createdTimestamp is set only if
// absent, _modifiedTimestamp is always overwritten to now.
func Touch(obj *value.Object, now time.Time) {
	if _, ok := obj.Get(CreatedField); !ok {
		obj.Set(CreatedField, value.Timestamp(now))
	}
	obj.Set(ModifiedField, value.Timestamp(now))
}
