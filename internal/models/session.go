package models

// Session is a snapshot of an in-progress study session.
// Cards is a copy of the studied subset, not a view of the collection.
type Session struct {
	ID           string
	Category     string // empty when studying every card
	Cards        []Card
	CurrentIndex int
	IsFlipped    bool
}

// Len returns the number of cards in the session
func (s *Session) Len() int {
	return len(s.Cards)
}

// Face returns which side of the current card is showing
func (s *Session) Face() Face {
	if s.IsFlipped {
		return FaceAnswer
	}
	return FaceQuestion
}

// AtEnd reports whether the cursor is on the last card
func (s *Session) AtEnd() bool {
	return s.CurrentIndex >= len(s.Cards)-1
}

// Clone returns a deep copy safe to hand to callers
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Cards = append([]Card(nil), s.Cards...)
	return &out
}
