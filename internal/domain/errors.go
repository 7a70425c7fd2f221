// Package domain holds error types shared across the core: schema, projector,
// collection and database all report failures through these values so callers
// can branch with errors.Is/errors.As instead of matching strings.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingID signals an attempt to index or update a document without _id.
	ErrMissingID = errors.New("document has no _id")
	// ErrNotFound signals a missing document, schema row, or dropped collection.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument signals a blank name, non-positive paging parameter, or malformed query.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSchemaConflict signals a value type disagreeing with an already-established field type.
	ErrSchemaConflict = errors.New("schema type conflict")
	// ErrIllegalFieldName signals a field name containing characters forbidden for indexing.
	ErrIllegalFieldName = errors.New("illegal field name")
	// ErrFacetBuildFailure signals that the facet builder failed while rebuilding a document.
	ErrFacetBuildFailure = errors.New("facet build failure")
	// ErrDropped signals an operation against a collection that has already been dropped,
	// as opposed to one merely closed by a database shutdown.
	ErrDropped = errors.New("collection dropped")
)

// SchemaConflictError wraps ErrSchemaConflict with the field and the two disagreeing types.
type SchemaConflictError struct {
	Field        string
	StoredType   string
	IncomingType string
}

func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf(
		"%s: field %q is %s, got %s",
		ErrSchemaConflict.Error(), e.Field, e.StoredType, e.IncomingType,
	)
}

func (e *SchemaConflictError) Unwrap() error { return ErrSchemaConflict }

// NewSchemaConflict creates a schema conflict error for the given field.
func NewSchemaConflict(field, storedType, incomingType string) error {
	return &SchemaConflictError{Field: field, StoredType: storedType, IncomingType: incomingType}
}

// IllegalFieldNameError wraps ErrIllegalFieldName with the offending field name.
type IllegalFieldNameError struct {
	Field string
}

func (e *IllegalFieldNameError) Error() string {
	return fmt.Sprintf("%s: %q", ErrIllegalFieldName.Error(), e.Field)
}

func (e *IllegalFieldNameError) Unwrap() error { return ErrIllegalFieldName }

// NewIllegalFieldName creates an illegal field name error.
func NewIllegalFieldName(field string) error {
	return &IllegalFieldNameError{Field: field}
}
