// Package storage provides persistent storage for the restaurant roster.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no restaurant with the given name exists.
// It is not a failure: the add flow uses it to distinguish a fresh name from a
// duplicate.
var ErrNotFound = errors.New("restaurant not found")

// Restaurant is one entry in the lunch roster. Name is the primary key.
// A nil LastVisited means the restaurant has never been picked.
type Restaurant struct {
	Name        string     `json:"name"`
	LastVisited *time.Time `json:"last_visited"`
}

// Visited reports whether the restaurant has ever been picked.
func (r Restaurant) Visited() bool {
	return r.LastVisited != nil
}

// Store is a document store keyed by restaurant name.
type Store interface {
	// Get returns the restaurant with the given name, or ErrNotFound.
	Get(ctx context.Context, name string) (*Restaurant, error)

	// Insert creates a new restaurant. It fails if the name already exists.
	Insert(ctx context.Context, r *Restaurant) error

	// List returns every restaurant in the roster.
	List(ctx context.Context) ([]Restaurant, error)

	// SetLastVisited rewrites the restaurant's document with a new visit time.
	SetLastVisited(ctx context.Context, name string, visited time.Time) error
}
