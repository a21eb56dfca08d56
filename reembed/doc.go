// Package reembed regenerates the embeddings of already-ingested
// documents, for when the embedding model changes or a higher-quality
// backend becomes available.
//
// The store is walked in batches; each batch is embedded with the new
// provider and written back with retry and exponential backoff.
// Progress is reported to a configurable writer.
package reembed
