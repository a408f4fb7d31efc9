package storage

import "io"

// Storage defines the interface for run artefact storage (reports, transcripts).
type Storage interface {
	// Store writes an artefact of a run and returns the number of bytes written.
	Store(runID, name string, data io.Reader) (int64, error)

	// Retrieve returns a ReadCloser for a stored artefact.
	Retrieve(runID, name string) (io.ReadCloser, error)
}
