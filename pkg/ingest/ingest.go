// Package ingest defines the data-source workers that pull raw entities
// for one user, plus the registry the pipeline coordinator launches them
// from.
package ingest

import (
	"context"

	"github.com/haashim-ali/boggart/pkg/models"
)

// Credential is the handle ingestion workers use to call a data source
// on the user's behalf.
type Credential struct {
	AccessToken  string
	RefreshToken string
}

// Ingestor pulls raw, unmerged entities from one data source. An error
// return is isolated by the coordinator: the worker is marked failed and
// an empty result is substituted, never aborting the run.
type Ingestor interface {
	// Source names the data source this worker covers.
	Source() models.Source

	// Ingest fetches the user's data and maps it to entities.
	Ingest(ctx context.Context, cred Credential) (models.IngestionResult, error)
}

// Registry holds the named ingestion workers in launch order.
type Registry struct {
	order  []models.Source
	byName map[models.Source]Ingestor
}

// NewRegistry builds a registry preserving registration order. A later
// registration for the same source replaces the earlier one.
func NewRegistry(ingestors ...Ingestor) *Registry {
	r := &Registry{byName: make(map[models.Source]Ingestor)}
	for _, ing := range ingestors {
		name := ing.Source()
		if _, ok := r.byName[name]; !ok {
			r.order = append(r.order, name)
		}
		r.byName[name] = ing
	}
	return r
}

// Sources returns the registered source names in launch order.
func (r *Registry) Sources() []models.Source {
	out := make([]models.Source, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns the worker for a source.
func (r *Registry) Get(name models.Source) (Ingestor, bool) {
	ing, ok := r.byName[name]
	return ing, ok
}

// All returns the workers in launch order.
func (r *Registry) All() []Ingestor {
	out := make([]Ingestor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}
