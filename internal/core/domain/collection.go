package domain

import "fmt"

// CollectionVersion is the persisted collection format written by this build.
const CollectionVersion = 1

// Collection is the single logical set of documents owned by a store.
// Each write replaces the persisted image as a whole.
type Collection struct {
	// Version tags the persisted format.
	Version int

	// Dimensions is the embedding length shared by every document.
	// Zero until the first document is added.
	Dimensions int

	// NextSeq is the sequence number the next document will receive.
	NextSeq uint64

	// Documents are held in insertion order.
	Documents []Document
}

// NewCollection returns an empty collection at the current version.
func NewCollection() *Collection {
	return &Collection{
		Version: CollectionVersion,
		NextSeq: 1,
	}
}

// Clone returns a deep copy of the collection.
func (c *Collection) Clone() *Collection {
	out := &Collection{
		Version:    c.Version,
		Dimensions: c.Dimensions,
		NextSeq:    c.NextSeq,
		Documents:  make([]Document, len(c.Documents)),
	}
	for i := range c.Documents {
		out.Documents[i] = c.Documents[i].Clone()
	}
	return out
}

// Contains reports whether a document with id exists.
func (c *Collection) Contains(id string) bool {
	for i := range c.Documents {
		if c.Documents[i].ID == id {
			return true
		}
	}
	return false
}

// Find returns the document with id, or nil.
func (c *Collection) Find(id string) *Document {
	for i := range c.Documents {
		if c.Documents[i].ID == id {
			return &c.Documents[i]
		}
	}
	return nil
}

// Validate checks the structural invariants of a decoded collection.
// Failures wrap ErrCorrupt.
func (c *Collection) Validate() error {
	if c.Version < 1 || c.Version > CollectionVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorrupt, c.Version)
	}
	if c.Dimensions < 0 {
		return fmt.Errorf("%w: negative dimensions %d", ErrCorrupt, c.Dimensions)
	}

	seen := make(map[string]struct{}, len(c.Documents))
	var lastSeq uint64
	for i := range c.Documents {
		doc := &c.Documents[i]
		if doc.ID == "" {
			return fmt.Errorf("%w: document %d has no id", ErrCorrupt, i)
		}
		if _, dup := seen[doc.ID]; dup {
			return fmt.Errorf("%w: duplicate document id %q", ErrCorrupt, doc.ID)
		}
		seen[doc.ID] = struct{}{}

		if doc.Seq <= lastSeq {
			return fmt.Errorf("%w: document %q is out of sequence", ErrCorrupt, doc.ID)
		}
		lastSeq = doc.Seq
	}
	if c.NextSeq <= lastSeq {
		return fmt.Errorf("%w: next sequence %d does not exceed %d", ErrCorrupt, c.NextSeq, lastSeq)
	}
	return nil
}
