package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/svelte-expert/internal/domain"
)

// StateStore keeps each chat log in a "panel_state/{key}" document with
// one "entries" sub-document per message.
type StateStore struct {
	client *firestore.Client
}

// NewStateStore creates a Firestore-backed state store for projectID.
func NewStateStore(ctx context.Context, projectID string) (*StateStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &StateStore{client: client}, nil
}

func (s *StateStore) Close() error {
	return s.client.Close()
}

func (s *StateStore) stateDoc(key string) *firestore.DocumentRef {
	return s.client.Collection("panel_state").Doc(key)
}

func (s *StateStore) entriesCol(key string) *firestore.CollectionRef {
	return s.stateDoc(key).Collection("entries")
}

type stateDoc struct {
	Count     int       `firestore:"count"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type entryDoc struct {
	Seq       int       `firestore:"seq"`
	ID        string    `firestore:"id"`
	Sender    string    `firestore:"sender"`
	Text      string    `firestore:"text"`
	CreatedAt time.Time `firestore:"created_at"`
}

func (s *StateStore) LoadEntries(ctx context.Context, key string) ([]domain.ChatEntry, error) {
	snap, err := s.stateDoc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("firestore LoadEntries: %w", err)
	}

	var state stateDoc
	if err := snap.DataTo(&state); err != nil {
		return nil, fmt.Errorf("decode stateDoc: %w", err)
	}

	iter := s.entriesCol(key).Where("seq", "<", state.Count).OrderBy("seq", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []domain.ChatEntry
	for {
		snap, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("firestore LoadEntries: %w", err)
		}

		var doc entryDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode entryDoc: %w", err)
		}
		out = append(out, domain.ChatEntry{
			ID:        domain.EntryID(doc.ID),
			Sender:    domain.Sender(doc.Sender),
			Text:      doc.Text,
			CreatedAt: doc.CreatedAt,
		})
	}
	return out, nil
}

// SaveEntries overwrites the stored log. Entry docs are keyed by position, so
// only new or changed positions are written and positions past the end are
// deleted. Writes go through a BulkWriter, which has no per-commit write
// limit. The count on the state doc is set after the entries land, and
// LoadEntries never reads past it.
func (s *StateStore) SaveEntries(ctx context.Context, key string, entries []domain.ChatEntry) error {
	snaps, err := s.entriesCol(key).Documents(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("firestore SaveEntries: %w", err)
	}
	stored := make(map[string]entryDoc, len(snaps))
	for _, snap := range snaps {
		var doc entryDoc
		if err := snap.DataTo(&doc); err != nil {
			return fmt.Errorf("decode entryDoc: %w", err)
		}
		stored[snap.Ref.ID] = doc
	}

	sets, deletes := planWrites(stored, entries)

	bw := s.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	wait := func() error {
		bw.Flush()
		for _, j := range jobs {
			if _, err := j.Results(); err != nil {
				return err
			}
		}
		jobs = jobs[:0]
		return nil
	}

	err = func() error {
		for _, i := range sets {
			j, err := bw.Set(s.entriesCol(key).Doc(entryDocID(i)), toEntryDoc(i, entries[i]))
			if err != nil {
				return err
			}
			jobs = append(jobs, j)
		}
		if err := wait(); err != nil {
			return err
		}

		j, err := bw.Set(s.stateDoc(key), stateDoc{Count: len(entries), UpdatedAt: time.Now().UTC()})
		if err != nil {
			return err
		}
		jobs = append(jobs, j)
		for _, id := range deletes {
			j, err := bw.Delete(s.entriesCol(key).Doc(id))
			if err != nil {
				return err
			}
			jobs = append(jobs, j)
		}
		return wait()
	}()
	bw.End()
	if err != nil {
		return fmt.Errorf("firestore SaveEntries: %w", err)
	}
	return nil
}

func entryDocID(seq int) string { return fmt.Sprintf("%06d", seq) }

func toEntryDoc(seq int, e domain.ChatEntry) entryDoc {
	return entryDoc{
		Seq:       seq,
		ID:        string(e.ID),
		Sender:    string(e.Sender),
		Text:      e.Text,
		CreatedAt: e.CreatedAt,
	}
}

func (d entryDoc) equal(o entryDoc) bool {
	return d.Seq == o.Seq && d.ID == o.ID && d.Sender == o.Sender && d.Text == o.Text &&
		d.CreatedAt.Equal(o.CreatedAt)
}

// planWrites returns the positions of entries that differ from the stored
// docs and the ids of stored docs past the end of entries.
func planWrites(stored map[string]entryDoc, entries []domain.ChatEntry) (sets []int, deletes []string) {
	for i, e := range entries {
		if old, ok := stored[entryDocID(i)]; ok && old.equal(toEntryDoc(i, e)) {
			continue
		}
		sets = append(sets, i)
	}
	for id, doc := range stored {
		if doc.Seq >= len(entries) || id != entryDocID(doc.Seq) {
			deletes = append(deletes, id)
		}
	}
	sort.Strings(deletes)
	return sets, deletes
}
