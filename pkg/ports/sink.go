package ports

import "context"

// ArtifactSink receives compiled artifacts.
type ArtifactSink interface {
	// Put stores data under name, replacing any previous artifact.
	Put(ctx context.Context, name string, data []byte) error
}

// ArtifactStore is a sink that can also read back what it stored.
type ArtifactStore interface {
	ArtifactSink

	// Get returns the artifact stored under name.
	// Returns domain.ErrArtifactNotFound if it does not exist.
	Get(ctx context.Context, name string) ([]byte, error)

	// List returns the names of all stored artifacts.
	List(ctx context.Context) ([]string, error)
}
