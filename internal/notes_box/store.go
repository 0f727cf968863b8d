package notes_box

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/2beens/notesservice/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrNoteNotFound   = errors.New("note not found")
	ErrContentMissing = errors.New("content missing")
)

// Store is the in-memory, insertion ordered notes collection. It is the only
// owner of the notes, all reads and writes go through its lock.
type Store struct {
	mu    sync.RWMutex
	notes []Note
}

func NewStore(seed ...Note) *Store {
	notes := make([]Note, len(seed))
	copy(notes, seed)
	return &Store{
		notes: notes,
	}
}

func (s *Store) List(ctx context.Context) []Note {
	_, span := tracing.GlobalTracer.Start(ctx, "store.notes.list")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	notes := make([]Note, len(s.notes))
	copy(notes, s.notes)

	span.SetAttributes(attribute.Int("notes.count", len(notes)))
	return notes
}

func (s *Store) Get(ctx context.Context, id int) (*Note, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.notes.get",
		trace.WithAttributes(attribute.Int("note.id", id)),
	)
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notes {
		if n.ID == id {
			note := n
			return &note, nil
		}
	}

	span.SetStatus(codes.Error, ErrNoteNotFound.Error())
	return nil, ErrNoteNotFound
}

// Add appends a new note. Its id is one more than the current max id, so ids
// of deleted notes can come back once they are the largest again.
func (s *Store) Add(ctx context.Context, content string, important bool, now time.Time) (*Note, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.notes.add")
	defer span.End()

	if content == "" {
		span.SetStatus(codes.Error, ErrContentMissing.Error())
		return nil, ErrContentMissing
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	note := Note{
		ID:        s.nextID(),
		Content:   content,
		Date:      now,
		Important: important,
	}
	s.notes = append(s.notes, note)

	span.SetAttributes(attribute.Int("note.id", note.ID))
	return &note, nil
}

// Delete removes the notes with the given id and reports whether any existed.
func (s *Store) Delete(ctx context.Context, id int) bool {
	_, span := tracing.GlobalTracer.Start(ctx, "store.notes.delete",
		trace.WithAttributes(attribute.Int("note.id", id)),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.notes[:0]
	for _, n := range s.notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	deleted := len(kept) != len(s.notes)
	// clear the tail so removed notes are not retained by the backing array
	clear(s.notes[len(kept):])
	s.notes = kept

	span.SetAttributes(attribute.Bool("note.deleted", deleted))
	return deleted
}

func (s *Store) Len(context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// nextID must be called with the write lock held.
func (s *Store) nextID() int {
	maxID := 0
	for _, n := range s.notes {
		if n.ID > maxID {
			maxID = n.ID
		}
	}
	return maxID + 1
}
