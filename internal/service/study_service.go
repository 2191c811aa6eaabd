package service

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"mathflash/internal/models"
	"mathflash/internal/utils"
)

// StudyService drives one study session at a time over a snapshot of the
// card store. It is Idle until Start succeeds and returns to Idle when the
// last card is passed or End is called.
type StudyService struct {
	store   *CardStore
	logger  *zap.Logger
	shuffle func(n int, swap func(i, j int))

	session *models.Session
}

// NewStudyService creates a study service over store
func NewStudyService(store *CardStore, logger *zap.Logger) *StudyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudyService{
		store:   store,
		logger:  logger,
		shuffle: rand.Shuffle,
	}
}

// Start begins a session over every card, or only the cards whose category
// equals category when it is non-empty. Any session in progress is replaced.
// The first card is shown, which counts as a study. On error the service is
// left idle.
func (s *StudyService) Start(category string) (*models.Session, error) {
	s.session = nil

	cards := s.store.Cards()
	if len(cards) == 0 {
		return nil, ErrEmptyCollection
	}

	subset := cards
	if category != "" {
		subset = FilterByCategory(cards, category)
		if len(subset) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrEmptyFilterResult, category)
		}
	}

	s.session = &models.Session{
		ID:       utils.GenerateSessionID(),
		Category: category,
		Cards:    subset,
	}
	if err := s.showCard(); err != nil {
		s.session = nil
		return nil, err
	}

	s.logger.Info("study session started",
		zap.String("session", s.session.ID),
		zap.String("category", category),
		zap.Int("cards", len(subset)))
	return s.session.Clone(), nil
}

// Active reports whether a session is in progress
func (s *StudyService) Active() bool {
	return s.session != nil
}

// Session returns a copy of the session in progress, or nil when idle
func (s *StudyService) Session() *models.Session {
	return s.session.Clone()
}

// Current returns the card under the cursor
func (s *StudyService) Current() (models.Card, error) {
	if s.session == nil {
		return models.Card{}, ErrNoActiveSession
	}
	return s.session.Cards[s.session.CurrentIndex], nil
}

// Face returns which side of the current card is showing
func (s *StudyService) Face() models.Face {
	if s.session == nil {
		return models.FaceQuestion
	}
	return s.session.Face()
}

// Progress returns the 1-based position of the cursor and the session size
func (s *StudyService) Progress() (current, total int) {
	if s.session == nil {
		return 0, 0
	}
	return s.session.CurrentIndex + 1, len(s.session.Cards)
}

// Flip toggles the current card between question and answer and returns the
// text now showing. Flipping does not count as a study.
func (s *StudyService) Flip() (string, error) {
	if s.session == nil {
		return "", ErrNoActiveSession
	}
	s.session.IsFlipped = !s.session.IsFlipped
	card := s.session.Cards[s.session.CurrentIndex]
	return card.Text(s.session.Face()), nil
}

// Next moves to the following card. On the last card it ends the session
// and reports complete.
func (s *StudyService) Next() (complete bool, err error) {
	if s.session == nil {
		return false, ErrNoActiveSession
	}
	if s.session.AtEnd() {
		s.logger.Info("study session complete",
			zap.String("session", s.session.ID),
			zap.Int("cards", len(s.session.Cards)))
		s.session = nil
		return true, nil
	}
	s.session.CurrentIndex++
	return false, s.showCard()
}

// Prev moves back one card; it does nothing on the first card
func (s *StudyService) Prev() error {
	if s.session == nil {
		return ErrNoActiveSession
	}
	if s.session.CurrentIndex == 0 {
		return nil
	}
	s.session.CurrentIndex--
	return s.showCard()
}

// Shuffle reorders the session cards uniformly at random and restarts from
// the first of them
func (s *StudyService) Shuffle() error {
	if s.session == nil {
		return ErrNoActiveSession
	}
	cards := s.session.Cards
	s.shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	s.session.CurrentIndex = 0
	return s.showCard()
}

// End discards the session. The collection keeps any study counts already
// recorded.
func (s *StudyService) End() {
	if s.session != nil {
		s.logger.Info("study session ended", zap.String("session", s.session.ID))
	}
	s.session = nil
}

// showCard turns the current card question side up and records the study
func (s *StudyService) showCard() error {
	s.session.IsFlipped = false
	card := &s.session.Cards[s.session.CurrentIndex]

	updated, found, err := s.store.RecordStudy(card.ID)
	if err != nil {
		return fmt.Errorf("failed to record study of card %d: %w", card.ID, err)
	}
	if found {
		card.TimesStudied = updated.TimesStudied
	} else {
		s.logger.Debug("studied card no longer in collection", zap.Int64("id", card.ID))
	}
	return nil
}
