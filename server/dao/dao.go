// Package dao provides data access objects for use in the conversion server.
package dao

import (
	"context"
	"errors"
	"time"

	"github.com/dekarrin/greibach/internal/grammar"
	"github.com/google/uuid"
)

var (
	ErrConstraintViolation = errors.New("a uniqueness constraint was violated")
	ErrNotFound            = errors.New("the requested resource was not found")
)

// Store holds all the repositories.
type Store interface {
	Conversions() ConversionRepository
	Close() error
}

// ConversionRepository persists Conversions. Implementations must be safe for
// concurrent use.
type ConversionRepository interface {

	// Create creates a new Conversion. All attributes except for
	// auto-generated fields are taken from the provided Conversion.
	Create(ctx context.Context, c Conversion) (Conversion, error)

	// GetAll returns every Conversion, oldest first.
	GetAll(ctx context.Context) ([]Conversion, error)

	GetByID(ctx context.Context, id uuid.UUID) (Conversion, error)
	Delete(ctx context.Context, id uuid.UUID) (Conversion, error)
	Close() error
}

// Conversion is a stored request to convert a grammar along with what came of
// it.
type Conversion struct {
	ID uuid.UUID

	// Subject is the subject of the token the conversion was requested with,
	// or empty if the server does not require tokens.
	Subject string

	Input grammar.Grammar

	// AllOrders is whether every ordering of the variables of Input was
	// tried. If false, Outcomes has exactly one element.
	AllOrders bool

	Outcomes []Outcome
	Created  time.Time
}

// Outcome is the result of converting a grammar with one ordering of its
// variables. Output is only meaningful if Error is empty.
type Outcome struct {
	Order  []string
	Output grammar.Grammar
	Error  string
}

// Succeeded returns whether the conversion produced a grammar.
func (o Outcome) Succeeded() bool {
	return o.Error == ""
}
