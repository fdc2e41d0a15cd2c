// Package venue provides venue search for the restaurant add flow.
package venue

import "context"

// Venue is a single search result. Venues are transient: a session holds them
// only for the duration of a confirmation dialogue.
type Venue struct {
	ID      string
	Name    string
	Address string
}

// Lookup finds candidate venues for a free-text query near a fixed location.
type Lookup interface {
	// Search returns candidate venues ranked by the provider. An empty result
	// is not an error.
	Search(ctx context.Context, query string) ([]Venue, error)
}
