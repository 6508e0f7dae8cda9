package services

import (
	"sort"

	"crop-yield-service/internal/core/domain"
)

// ModelRegistry serves the newest compatible artifact per (location, algorithm).
// It is immutable after construction and safe for concurrent reads.
type ModelRegistry struct {
	latest map[domain.ArtifactKey]*domain.ModelArtifact
}

// NewModelRegistry indexes artifacts that already passed validation.
func NewModelRegistry(artifacts []*domain.ModelArtifact) *ModelRegistry {
	r := &ModelRegistry{latest: make(map[domain.ArtifactKey]*domain.ModelArtifact)}
	for _, a := range artifacts {
		cur, ok := r.latest[a.Key]
		if !ok || a.Timestamp > cur.Timestamp {
			r.latest[a.Key] = a
		}
	}
	return r
}

// Select returns the artifact with the lexicographically greatest timestamp.
func (r *ModelRegistry) Select(location domain.Region, algo domain.Algorithm) (*domain.ModelArtifact, error) {
	if a, ok := r.latest[domain.ArtifactKey{Location: location, Algorithm: algo}]; ok {
		return a, nil
	}
	return nil, domain.ErrArtifactNotFound
}

// SelectAny tries the preferred algorithm first, then the others in their
// fixed order. ErrArtifactNotFound means the caller must use the heuristic.
func (r *ModelRegistry) SelectAny(location domain.Region, preferred domain.Algorithm) (*domain.ModelArtifact, error) {
	if preferred != "" {
		if a, err := r.Select(location, preferred); err == nil {
			return a, nil
		}
	}
	for _, algo := range domain.Algorithms {
		if a, err := r.Select(location, algo); err == nil {
			return a, nil
		}
	}
	return nil, domain.ErrArtifactNotFound
}

func (r *ModelRegistry) HasCompatible(location domain.Region) bool {
	_, err := r.SelectAny(location, "")
	return err == nil
}

func (r *ModelRegistry) Len() int { return len(r.latest) }

// List returns the served artifacts ordered by key.
func (r *ModelRegistry) List() []*domain.ModelArtifact {
	out := make([]*domain.ModelArtifact, 0, len(r.latest))
	for _, a := range r.latest {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out
}
