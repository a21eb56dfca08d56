package ingest

// State is the position of one URL in the ingestion state machine.
type State string

const (
	StatePending   State = "PENDING"
	StateLoaded    State = "LOADED"
	StateProcessed State = "PROCESSED"
	StateUploaded  State = "UPLOADED"
	StateDone      State = "DONE"
	StateFailed    State = "FAILED"
)

// Mode selects where processed chunks go.
type Mode string

const (
	// ModeStream uploads chunks to the document store as each URL
	// finishes processing.
	ModeStream Mode = "stream"

	// ModeBatch appends chunks to the serialized chunk file; upload
	// happens once during finalization.
	ModeBatch Mode = "batch"
)

// Failure records one URL that ended in StateFailed, with a
// human-readable reason for the run summary.
type Failure struct {
	URL    string
	Reason string
}
