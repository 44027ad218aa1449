// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CollectionStore: Durable persistence of the document collection
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Turns text into vectors. Without it, callers must supply embeddings.
//   - SnapshotCache: Read-through cache of the collection. Without it, every read hits storage.
//   - EmbeddingCache: Cache of query embeddings. Without it, every text query calls the provider.
//   - ChangeWatcher: Notifies long-running processes of writes made by other processes.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
