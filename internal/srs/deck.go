package srs

import "slices"

const (
	DefaultMaxDue    = 50
	DefaultNewTarget = 10
)

// Item is an introducible piece of content that may not have a card yet.
type Item struct {
	ID   string
	Kind ItemKind
}

// DueCards returns the cards due on today: reviewed cards first, most overdue first,
// then new cards. Ties keep input order. limit <= 0 means no limit.
func DueCards(cards []Card, today Date, limit int) []Card {
	due := make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.IsDue(today) {
			due = append(due, c)
		}
	}

	slices.SortStableFunc(due, func(a, b Card) int {
		aNew, bNew := a.Status == StatusNew, b.Status == StatusNew
		switch {
		case aNew && !bNew:
			return 1
		case !aNew && bNew:
			return -1
		}
		return a.NextReviewDate.Compare(b.NextReviewDate)
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due
}

// NewItemIDs returns the ids in allItemIDs that have no card in existing, in input order.
// Repeated ids are returned once. limit <= 0 means no limit.
func NewItemIDs(allItemIDs []string, existing []Card, limit int) []string {
	seen := make(map[string]struct{}, len(existing)+len(allItemIDs))
	for _, c := range existing {
		seen[c.ItemID] = struct{}{}
	}

	var ids []string
	for _, id := range allItemIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		if limit > 0 && len(ids) == limit {
			break
		}
	}
	return ids
}

// SessionPolicy caps the size of one day's queue.
type SessionPolicy struct {
	MaxDue    int // maximum number of cards in the queue
	NewTarget int // new cards wanted per session, including new cards already due
}

func DefaultSessionPolicy() SessionPolicy {
	return SessionPolicy{MaxDue: DefaultMaxDue, NewTarget: DefaultNewTarget}
}

// SessionPlan is the result of BuildSession.
type SessionPlan struct {
	Queue      []Card
	Introduced []Card
}

// BuildSession introduces new items into deck and returns today's queue.
//
// The due set is built first. New items are then topped up to policy.NewTarget,
// less the new cards that are already due, so that introduced-but-unreviewed cards
// are not counted twice.
func BuildSession(deck *Collection, candidates []Item, today Date, policy SessionPolicy) SessionPlan {
	due := DueCards(deck.Cards(), today, policy.MaxDue)
	alreadyNew := 0
	for _, c := range due {
		if c.Status == StatusNew {
			alreadyNew++
		}
	}

	var plan SessionPlan
	if remaining := policy.NewTarget - alreadyNew; remaining > 0 {
		kinds := make(map[string]ItemKind, len(candidates))
		ids := make([]string, 0, len(candidates))
		for _, item := range candidates {
			if _, ok := kinds[item.ID]; !ok {
				kinds[item.ID] = item.Kind
			}
			ids = append(ids, item.ID)
		}
		for _, id := range NewItemIDs(ids, deck.Cards(), remaining) {
			if card, added := deck.Add(id, kinds[id], today); added {
				plan.Introduced = append(plan.Introduced, card)
			}
		}
	}

	plan.Queue = DueCards(deck.Cards(), today, policy.MaxDue)
	return plan
}
