package srs

import (
	"encoding"
	"fmt"
	"strings"
)

// ItemKind tags the learnable content behind a card. It never affects scheduling.
type ItemKind int

const (
	Vocabulary ItemKind = iota
	Phrase
	Pronunciation
)

var (
	kindNames  = [...]string{Vocabulary: "vocabulary", Phrase: "phrase", Pronunciation: "pronunciation"}
	kindByName = map[string]ItemKind{
		"vocabulary":    Vocabulary,
		"vocab":         Vocabulary,
		"phrase":        Phrase,
		"pronunciation": Pronunciation,
	}
)

var (
	_ fmt.Stringer             = ItemKind(0)
	_ encoding.TextMarshaler   = ItemKind(0)
	_ encoding.TextUnmarshaler = (*ItemKind)(nil)
)

// ItemKinds lists every kind.
func ItemKinds() []ItemKind {
	return []ItemKind{Vocabulary, Phrase, Pronunciation}
}

func (k ItemKind) IsValid() bool {
	return k >= Vocabulary && k <= Pronunciation
}

func (k ItemKind) String() string {
	if k.IsValid() {
		return kindNames[k]
	}
	return fmt.Sprintf("ItemKind(%d)", int(k))
}

// ParseItemKind is strict and is meant for user input.
func ParseItemKind(s string) (ItemKind, error) {
	k, ok := kindByName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

func (k ItemKind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return []byte(kindNames[Vocabulary]), nil
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText is lenient: an unknown persisted kind decodes as Vocabulary.
func (k *ItemKind) UnmarshalText(text []byte) error {
	v, err := ParseItemKind(string(text))
	if err != nil {
		*k = Vocabulary
		return nil
	}
	*k = v
	return nil
}

// Status is the lifecycle stage of a card. It is used for ordering and display only.
type Status int

const (
	StatusNew Status = iota
	StatusLearning
	StatusReview
	StatusMastered
)

var (
	statusNames  = [...]string{StatusNew: "new", StatusLearning: "learning", StatusReview: "review", StatusMastered: "mastered"}
	statusByName = map[string]Status{
		"new":      StatusNew,
		"learning": StatusLearning,
		"review":   StatusReview,
		"mastered": StatusMastered,
	}
)

var (
	_ fmt.Stringer             = Status(0)
	_ encoding.TextMarshaler   = Status(0)
	_ encoding.TextUnmarshaler = (*Status)(nil)
)

func (s Status) IsValid() bool {
	return s >= StatusNew && s <= StatusMastered
}

func (s Status) String() string {
	if s.IsValid() {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return []byte(statusNames[StatusNew]), nil
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText is lenient: an unknown status decodes as new and is re-derived by Normalize.
func (s *Status) UnmarshalText(text []byte) error {
	v, ok := statusByName[strings.ToLower(strings.TrimSpace(string(text)))]
	if !ok {
		v = StatusNew
	}
	*s = v
	return nil
}
