// Package ingest orchestrates document ingestion runs.
//
// The Orchestrator drives each URL through a fixed state machine:
//
//	PENDING -> LOADED -> PROCESSED -> (UPLOADED) -> DONE
//
// with FAILED reachable from any step. URLs are processed by a bounded
// worker pool, throttled by a per-domain token bucket so a multi-domain
// batch does not serialize behind one slow site while a single-domain
// batch cannot hammer its target.
//
// A run makes two passes: the second pass re-attempts every URL from
// the failed log using the JS-rendering strategy exclusively, since
// most first-pass failures are script-only pages. Finalization flushes
// the accumulated links and, in batch mode, re-reads the chunk file
// and uploads its records in one sweep.
package ingest
