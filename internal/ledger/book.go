package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Book accumulates the entries of one club for one turn. Kinds already
// present, either persisted earlier or posted in this pass, are skipped, which
// makes replaying a resolution a no-op.
type Book struct {
	clubID   uuid.UUID
	turnID   uuid.UUID
	now      time.Time
	seen     map[Kind]struct{}
	existing []Entry
	pending  []Entry
}

func NewBook(clubID, turnID uuid.UUID, existing []Entry, now time.Time) *Book {
	b := &Book{
		clubID:   clubID,
		turnID:   turnID,
		now:      now,
		seen:     make(map[Kind]struct{}, len(existing)),
		existing: existing,
	}
	for _, e := range existing {
		b.seen[e.Kind] = struct{}{}
	}
	return b
}

func (b *Book) Has(k Kind) bool {
	_, ok := b.seen[k]
	return ok
}

// Post books p unless its kind is already present or its amount rounds to
// zero. It reports whether a new entry was created.
func (b *Book) Post(p Posting) (bool, error) {
	if err := p.Kind.Validate(); err != nil {
		return false, err
	}
	if b.Has(p.Kind) {
		return false, nil
	}
	amount := Quantize(p.Amount)
	if amount.IsZero() {
		return false, nil
	}
	b.seen[p.Kind] = struct{}{}
	b.pending = append(b.pending, Entry{
		ClubID:    b.clubID,
		TurnID:    b.turnID,
		Kind:      p.Kind,
		Amount:    amount,
		Meta:      p.Meta,
		CreatedAt: b.now,
	})
	return true, nil
}

func (b *Book) PostAll(postings []Posting) error {
	for _, p := range postings {
		if _, err := b.Post(p); err != nil {
			return err
		}
	}
	return nil
}

// Pending returns the entries created since the book was opened.
func (b *Book) Pending() []Entry {
	out := make([]Entry, len(b.pending))
	copy(out, b.pending)
	return out
}

// All returns persisted and pending entries in kind order.
func (b *Book) All() []Entry {
	out := make([]Entry, 0, len(b.existing)+len(b.pending))
	out = append(out, b.existing...)
	out = append(out, b.pending...)
	SortEntries(out)
	return out
}
