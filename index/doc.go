// Package index provides catalog loading and indexing orchestration.
//
// The Pipeline type manages the indexing workflow for catalog products, including:
//   - Loading and validating products from JSON catalog files
//   - Generating embeddings concurrently using worker pools
//   - Storing products in upload batches
//
// The Reembedder type regenerates embeddings for an existing catalog, with
// checkpointed progress so interrupted runs resume where they left off.
// Embedding calls are retried with exponential backoff.
package index
