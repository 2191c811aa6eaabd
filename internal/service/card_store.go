package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"mathflash/internal/models"
	"mathflash/internal/utils"
)

// unreadableSuffix is appended to the storage key to park a record Load could not parse
const unreadableSuffix = ".unreadable"

// CardStorage is the key/value storage the collection is written through to
type CardStorage interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
}

// CardStore owns the flashcard collection and persists the whole of it
// after every mutation.
type CardStore struct {
	mu      sync.Mutex
	storage CardStorage
	key     string
	logger  *zap.Logger
	now     func() time.Time

	cards  []models.Card
	lastID int64
}

// NewCardStore creates a card store persisting under key. Call Load before use.
func NewCardStore(storage CardStorage, key string, logger *zap.Logger) *CardStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CardStore{
		storage: storage,
		key:     key,
		logger:  logger,
		now:     time.Now,
	}
}

// Load replaces the in-memory collection with the stored one. A missing
// record yields an empty collection. A malformed record also yields an
// empty collection; its raw text is copied aside and ErrStorageUnreadable
// is returned.
func (s *CardStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cards = nil
	s.lastID = 0

	raw, found, err := s.storage.Get(s.key)
	if err != nil {
		return fmt.Errorf("failed to read flashcards: %w", err)
	}
	if !found {
		s.logger.Debug("no stored flashcards", zap.String("key", s.key))
		return nil
	}

	var cards []models.Card
	if err := json.Unmarshal([]byte(raw), &cards); err != nil {
		s.logger.Warn("stored flashcards are unreadable, starting empty",
			zap.String("key", s.key), zap.Error(err))
		if perr := s.storage.Set(s.key+unreadableSuffix, raw); perr != nil {
			s.logger.Error("failed to preserve unreadable flashcards", zap.Error(perr))
		}
		return fmt.Errorf("%w: %v", ErrStorageUnreadable, err)
	}

	s.cards = cards
	s.lastID = maxID(cards)
	s.logger.Debug("loaded flashcards", zap.Int("count", len(cards)))
	return nil
}

// Add creates a card from user input. Question and answer are sanitised and
// must not be blank.
func (s *CardStore) Add(category, difficulty, question, answer string) (models.Card, error) {
	question, err := utils.CleanCardFace("question", question)
	if err != nil {
		return models.Card{}, err
	}
	answer, err = utils.CleanCardFace("answer", answer)
	if err != nil {
		return models.Card{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	card := models.Card{
		ID:         s.nextID(now),
		Category:   category,
		Difficulty: difficulty,
		Question:   question,
		Answer:     answer,
		Created:    models.CreatedDate(now),
	}
	s.cards = append(s.cards, card)

	if err := s.persistLocked(); err != nil {
		return card, err
	}
	s.logger.Info("flashcard added", zap.Int64("id", card.ID), zap.String("category", category))
	return card, nil
}

// Edit replaces the question and answer of the card with id.
// found is false, and nothing changes, when no card has that id.
func (s *CardStore) Edit(id int64, question, answer string) (card models.Card, found bool, err error) {
	question, err = utils.CleanCardFace("question", question)
	if err != nil {
		return models.Card{}, false, err
	}
	answer, err = utils.CleanCardFace("answer", answer)
	if err != nil {
		return models.Card{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return models.Card{}, false, nil
	}
	s.cards[i].Question = question
	s.cards[i].Answer = answer

	if err := s.persistLocked(); err != nil {
		return s.cards[i], true, err
	}
	s.logger.Info("flashcard edited", zap.Int64("id", id))
	return s.cards[i], true, nil
}

// Delete removes every card with id and reports whether any was removed
func (s *CardStore) Delete(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.cards[:0]
	for _, c := range s.cards {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	removed := len(s.cards) - len(kept)
	s.cards = kept
	if removed == 0 {
		return false, nil
	}

	if err := s.persistLocked(); err != nil {
		return true, err
	}
	s.logger.Info("flashcard deleted", zap.Int64("id", id))
	return true, nil
}

// ClearAll empties the collection
func (s *CardStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.cards)
	s.cards = nil
	if err := s.persistLocked(); err != nil {
		return err
	}
	s.logger.Info("all flashcards deleted", zap.Int("count", count))
	return nil
}

// ExportAll returns the collection as an indented JSON array
func (s *CardStore) ExportAll() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cards) == 0 {
		return nil, ErrEmptyCollection
	}
	data, err := json.MarshalIndent(s.cards, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode flashcards: %w", err)
	}
	return data, nil
}

// ImportMerge appends every card in a JSON array to the collection and
// returns how many were added. Ids are not checked for collisions.
// The collection is unchanged if data is not a list of card objects.
func (s *CardStore) ImportMerge(data []byte) (int, error) {
	imported, err := decodeImport(data)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cards = append(s.cards, imported...)
	if id := maxID(imported); id > s.lastID {
		s.lastID = id
	}

	if err := s.persistLocked(); err != nil {
		return len(imported), err
	}
	s.logger.Info("flashcards imported", zap.Int("count", len(imported)))
	return len(imported), nil
}

// RecordStudy increments timesStudied on the card with id and persists
func (s *CardStore) RecordStudy(id int64) (models.Card, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return models.Card{}, false, nil
	}
	s.cards[i].TimesStudied++

	if err := s.persistLocked(); err != nil {
		return s.cards[i], true, err
	}
	return s.cards[i], true, nil
}

// Cards returns a copy of the collection in insertion order
func (s *CardStore) Cards() []models.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Card(nil), s.cards...)
}

// Get returns the first card with id
func (s *CardStore) Get(id int64) (models.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.cards[i], true
	}
	return models.Card{}, false
}

// Len returns the collection size
func (s *CardStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cards)
}

// ListCategories returns the distinct categories in first-seen order
func (s *CardStore) ListCategories() []string {
	return ListCategories(s.Cards())
}

// ListCategories returns the distinct categories of cards in first-seen order
func ListCategories(cards []models.Card) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, c := range cards {
		if !seen[c.Category] {
			seen[c.Category] = true
			categories = append(categories, c.Category)
		}
	}
	return categories
}

// FilterByCategory returns the cards whose category equals category exactly
func FilterByCategory(cards []models.Card, category string) []models.Card {
	var out []models.Card
	for _, c := range cards {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out
}

func (s *CardStore) indexLocked(id int64) int {
	for i := range s.cards {
		if s.cards[i].ID == id {
			return i
		}
	}
	return -1
}

// nextID derives an id from the creation time, bumped past the last one
// handed out so two cards created in the same millisecond stay distinct.
func (s *CardStore) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *CardStore) persistLocked() error {
	cards := s.cards
	if cards == nil {
		cards = []models.Card{}
	}
	data, err := json.Marshal(cards)
	if err != nil {
		return fmt.Errorf("failed to encode flashcards: %w", err)
	}
	if err := s.storage.Set(s.key, string(data)); err != nil {
		return fmt.Errorf("failed to save flashcards: %w", err)
	}
	return nil
}

// decodeImport parses an import payload into cards. The top level must be a
// JSON array and every element a JSON object. Known fields that hold a value
// of the wrong type are left at their zero value; unknown fields are ignored.
func decodeImport(data []byte) ([]models.Card, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ImportFormatError{Reason: ImportReasonNotList}
		}
		return nil, &ImportFormatError{Reason: ImportReasonInvalidJSON, Err: err}
	}
	if entries == nil {
		return nil, &ImportFormatError{Reason: ImportReasonNotList}
	}

	cards := make([]models.Card, 0, len(entries))
	for i, entry := range entries {
		card, err := decodeCard(entry)
		if err != nil {
			return nil, &ImportFormatError{Reason: fmt.Sprintf("entry %d is not a flashcard", i), Err: err}
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func decodeCard(entry json.RawMessage) (models.Card, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry, &fields); err != nil {
		return models.Card{}, err
	}
	if fields == nil {
		return models.Card{}, errors.New("entry is null")
	}

	var card models.Card
	targets := map[string]any{
		"id":           &card.ID,
		"category":     &card.Category,
		"difficulty":   &card.Difficulty,
		"question":     &card.Question,
		"answer":       &card.Answer,
		"created":      &card.Created,
		"timesStudied": &card.TimesStudied,
	}
	for name, target := range targets {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		// a mistyped value leaves the field at zero
		_ = json.Unmarshal(raw, target)
	}
	return card, nil
}

func maxID(cards []models.Card) int64 {
	var highest int64
	for _, c := range cards {
		if c.ID > highest {
			highest = c.ID
		}
	}
	return highest
}
