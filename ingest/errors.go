package ingest

import "errors"

var (
	// ErrFetcherRequired is returned when a fetcher is not provided.
	ErrFetcherRequired = errors.New("fetcher required")

	// ErrProcessorRequired is returned when a processor is not provided.
	ErrProcessorRequired = errors.New("processor required")

	// ErrUploaderRequired is returned when streaming mode is selected
	// without an uploader.
	ErrUploaderRequired = errors.New("uploader required for streaming mode")

	// ErrChunkFileRequired is returned when batch mode is selected
	// without a chunk file path.
	ErrChunkFileRequired = errors.New("chunk file required for batch mode")
)
