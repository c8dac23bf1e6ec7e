// Package store persists source documents for the viewer service.
//
// This package defines the storage interface with implementations for
// different backends:
//   - memory: In-memory storage for development/testing
//   - mongo: MongoDB-backed storage for production deployments
//
// Documents are the raw YAML/JSON bytes a tree is built from, plus naming
// and bookkeeping metadata. Layout results are not stored here; they are
// recomputed on demand and cached separately.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/treescope/treescope/pkg/cache"
	"github.com/treescope/treescope/pkg/errors"
)

// Document is a stored source document.
type Document struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Content     []byte    `json:"content" bson:"content"`
	ContentHash string    `json:"content_hash" bson:"content_hash"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// Store is the interface for document storage backends.
type Store interface {
	// Put stores a document. A document with an empty ID gets a fresh one;
	// an existing ID is updated in place. Returns the stored document with
	// ID, hash, and timestamps filled in.
	Put(ctx context.Context, doc Document) (Document, error)

	// Get retrieves a document by ID.
	// Returns ErrCodeDocumentNotFound when no such document exists.
	Get(ctx context.Context, id string) (Document, error)

	// List returns all documents ordered by last update, newest first.
	// Content bytes are included; callers listing for display should drop them.
	List(ctx context.Context) ([]Document, error)

	// Delete removes a document.
	// Returns ErrCodeDocumentNotFound when no such document exists.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// prepare validates and fills in the bookkeeping fields shared by all
// backends before a put.
func prepare(doc Document, now time.Time) (Document, error) {
	if err := errors.ValidateDocumentName(doc.Name); err != nil {
		return Document{}, err
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
		doc.CreatedAt = now
	} else if err := errors.ValidateDocumentID(doc.ID); err != nil {
		return Document{}, err
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	doc.ContentHash = cache.Hash(doc.Content)
	return doc, nil
}
