package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingRequiredColumn is returned when a source lacks a structurally required column
	ErrMissingRequiredColumn = errors.New("missing required column")
	// ErrInsufficientTrainingData is returned when too few matched rows exist to fit the price model
	ErrInsufficientTrainingData = errors.New("insufficient training data")
	// ErrPlayerNotFound is returned by draft actions on an unknown player
	ErrPlayerNotFound = errors.New("player not found")
	// ErrAlreadyDrafted is returned when drafting a player that is already marked drafted
	ErrAlreadyDrafted = errors.New("player already drafted")
	// ErrInvalidPrice is returned for a negative draft price
	ErrInvalidPrice = errors.New("invalid draft price")
	// ErrUnknownPopulation is returned for an unrecognized population tag
	ErrUnknownPopulation = errors.New("unknown population")
	// ErrNoModel is returned when prediction is requested before any model was trained
	ErrNoModel = errors.New("no trained price model")
)

// MissingColumnError names the source, the logical field and the headers actually found.
type MissingColumnError struct {
	Source  string
	Field   string
	Headers []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: could not find %s column (found: %s)",
		e.Source, e.Field, strings.Join(e.Headers, ", "))
}

// Unwrap lets errors.Is match ErrMissingRequiredColumn
func (e *MissingColumnError) Unwrap() error {
	return ErrMissingRequiredColumn
}

// InsufficientDataError reports how many valid training rows were available
type InsufficientDataError struct {
	Count int
	Min   int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("only %d valid training samples, need at least %d", e.Count, e.Min)
}

// Unwrap lets errors.Is match ErrInsufficientTrainingData
func (e *InsufficientDataError) Unwrap() error {
	return ErrInsufficientTrainingData
}
