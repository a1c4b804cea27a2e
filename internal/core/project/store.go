package project

import (
	"context"
	"time"
)

// Record is a saved project.
type Record struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Revision    int       `json:"revision"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Document    *Document `json:"document,omitempty"`
}

// NewRecord builds a record for doc, taking name and description from its
// metadata.
func NewRecord(id string, doc *Document) *Record {
	return &Record{
		ID:          id,
		Name:        doc.Metadata.Name,
		Description: doc.Metadata.Description,
		Document:    doc,
	}
}

// Validate ensures record integrity
func (r *Record) Validate() error {
	if r.ID == "" {
		return ErrInvalidProjectID
	}
	if r.Document == nil {
		return ErrNilDocument
	}
	return nil
}

// Store persists project records. Save assigns the revision and the
// timestamps: a new id starts at revision 1, every later save increments it.
type Store interface {
	Save(ctx context.Context, record *Record) error
	Load(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, filter Filter) ([]*Record, error)
	Delete(ctx context.Context, id string) error
}

// Filter narrows List results. Records are returned most recently updated
// first.
type Filter struct {
	Name   string     `json:"name,omitempty"`
	Limit  int        `json:"limit,omitempty"`
	Offset int        `json:"offset,omitempty"`
	Since  *time.Time `json:"since,omitempty"`
	Before *time.Time `json:"before,omitempty"`
}

// Validate ensures filter parameters are valid
func (f *Filter) Validate() error {
	if f.Limit < 0 {
		return ErrInvalidLimit
	}
	if f.Offset < 0 {
		return ErrInvalidOffset
	}
	if f.Since != nil && f.Before != nil && f.Since.After(*f.Before) {
		return ErrInvalidTimeRange
	}
	return nil
}

// Matches reports whether r passes the name and time constraints of f.
// Name matches exactly.
func (f *Filter) Matches(r *Record) bool {
	if f.Name != "" && r.Name != f.Name {
		return false
	}
	if f.Since != nil && r.UpdatedAt.Before(*f.Since) {
		return false
	}
	if f.Before != nil && !r.UpdatedAt.Before(*f.Before) {
		return false
	}
	return true
}
