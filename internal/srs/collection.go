package srs

import "fmt"

// Collection is the set of cards of one learner, keyed by item id and kept in insertion order.
// It is not safe for concurrent use.
type Collection struct {
	cards []Card
	index map[string]int
}

// NewCollection normalizes cards and drops duplicates. A duplicated item id keeps
// the position of its first occurrence and the value of its last one.
func NewCollection(cards []Card, today Date) *Collection {
	col := &Collection{
		cards: make([]Card, 0, len(cards)),
		index: make(map[string]int, len(cards)),
	}
	for _, c := range cards {
		c = Normalize(c, today)
		if i, ok := col.index[c.ItemID]; ok {
			col.cards[i] = c
			continue
		}
		col.index[c.ItemID] = len(col.cards)
		col.cards = append(col.cards, c)
	}
	return col
}

func (col *Collection) Len() int {
	return len(col.cards)
}

// Cards returns a copy of the cards in insertion order.
func (col *Collection) Cards() []Card {
	out := make([]Card, len(col.cards))
	copy(out, col.cards)
	return out
}

func (col *Collection) Get(itemID string) (Card, bool) {
	i, ok := col.index[itemID]
	if !ok {
		return Card{}, false
	}
	return col.cards[i], true
}

func (col *Collection) Has(itemID string) bool {
	_, ok := col.index[itemID]
	return ok
}

// Add creates a card for itemID unless one exists. It returns the card for itemID
// and whether it was created.
func (col *Collection) Add(itemID string, kind ItemKind, today Date) (Card, bool) {
	if i, ok := col.index[itemID]; ok {
		return col.cards[i], false
	}
	card := New(itemID, kind, today)
	col.index[itemID] = len(col.cards)
	col.cards = append(col.cards, card)
	return card, true
}

// Remove deletes the card for itemID and reports whether it existed.
func (col *Collection) Remove(itemID string) bool {
	i, ok := col.index[itemID]
	if !ok {
		return false
	}
	col.cards = append(col.cards[:i], col.cards[i+1:]...)
	delete(col.index, itemID)
	for j := i; j < len(col.cards); j++ {
		col.index[col.cards[j].ItemID] = j
	}
	return true
}

// Review grades the card for itemID and stores the result in the collection.
func (col *Collection) Review(itemID string, q Quality, today Date) (Card, error) {
	if !q.IsValid() {
		return Card{}, fmt.Errorf("%w: %d", ErrInvalidQuality, int(q))
	}
	i, ok := col.index[itemID]
	if !ok {
		return Card{}, fmt.Errorf("%w: %s", ErrNotFound, itemID)
	}
	col.cards[i] = ProcessReview(col.cards[i], q, today)
	return col.cards[i], nil
}
