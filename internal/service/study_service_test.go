package service

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mathflash/internal/models"
)

func newTestStudy(t *testing.T) (*StudyService, *CardStore) {
	t.Helper()
	store, _ := newTestStore(t)
	return NewStudyService(store, zap.NewNop()), store
}

func sessionIDs(s *models.Session) []int64 {
	ids := make([]int64, 0, len(s.Cards))
	for _, c := range s.Cards {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestStudyAlgebraScenario(t *testing.T) {
	study, store := newTestStudy(t)
	card := mustAdd(t, store, "algebra", "2+2", "4")

	session, err := study.Start("")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, 1, session.Len())

	current, total := study.Progress()
	assert.Equal(t, 1, current)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.FaceQuestion, study.Face())

	text, err := study.Flip()
	require.NoError(t, err)
	assert.Equal(t, "4", text)
	assert.Equal(t, models.FaceAnswer, study.Face())

	complete, err := study.Next()
	require.NoError(t, err)
	assert.True(t, complete)
	assert.False(t, study.Active())

	stored, ok := store.Get(card.ID)
	require.True(t, ok)
	assert.Equal(t, 1, stored.TimesStudied)
}

func TestStudyFlipDoesNotCountStudy(t *testing.T) {
	study, store := newTestStudy(t)
	card := mustAdd(t, store, "algebra", "2+2", "4")

	_, err := study.Start("")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := study.Flip()
		require.NoError(t, err)
	}

	text, err := study.Flip()
	require.NoError(t, err)
	assert.Equal(t, "2+2", text)
	stored, _ := store.Get(card.ID)
	assert.Equal(t, 1, stored.TimesStudied)
}

func TestStudyCategoryFilter(t *testing.T) {
	study, store := newTestStudy(t)
	mustAdd(t, store, "algebra", "2+2", "4")
	geometry := mustAdd(t, store, "geometry", "sides of a square", "4")

	session, err := study.Start("geometry")
	require.NoError(t, err)
	assert.Equal(t, []int64{geometry.ID}, sessionIDs(session))
	assert.Equal(t, "geometry", session.Category)
}

func TestStudyStartErrors(t *testing.T) {
	study, store := newTestStudy(t)

	_, err := study.Start("")
	assert.ErrorIs(t, err, ErrEmptyCollection)
	assert.False(t, study.Active())

	mustAdd(t, store, "algebra", "2+2", "4")
	_, err = study.Start("Algebra")
	assert.ErrorIs(t, err, ErrEmptyFilterResult)
	assert.False(t, study.Active())
}

func TestStudyNextCompletesOnLastCard(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("%d cards", n), func(t *testing.T) {
			study, store := newTestStudy(t)
			for i := 0; i < n; i++ {
				mustAdd(t, store, "algebra", fmt.Sprintf("%d+%d", i, i), fmt.Sprint(2*i))
			}
			_, err := study.Start("")
			require.NoError(t, err)

			for i := 1; i < n; i++ {
				complete, err := study.Next()
				require.NoError(t, err)
				require.False(t, complete, "completed early on call %d", i)
			}
			complete, err := study.Next()
			require.NoError(t, err)
			assert.True(t, complete)
			assert.False(t, study.Active())

			for _, c := range store.Cards() {
				assert.Equal(t, 1, c.TimesStudied)
			}
		})
	}
}

func TestStudyPrev(t *testing.T) {
	study, store := newTestStudy(t)
	first := mustAdd(t, store, "algebra", "1+1", "2")
	second := mustAdd(t, store, "algebra", "2+2", "4")

	_, err := study.Start("")
	require.NoError(t, err)

	require.NoError(t, study.Prev())
	current, _ := study.Progress()
	assert.Equal(t, 1, current)
	stored, _ := store.Get(first.ID)
	assert.Equal(t, 1, stored.TimesStudied, "prev at the first card must not re-show it")

	_, err = study.Next()
	require.NoError(t, err)
	_, err = study.Flip()
	require.NoError(t, err)
	require.NoError(t, study.Prev())

	card, err := study.Current()
	require.NoError(t, err)
	assert.Equal(t, first.ID, card.ID)
	assert.Equal(t, 2, card.TimesStudied)
	assert.Equal(t, models.FaceQuestion, study.Face())

	stored, _ = store.Get(second.ID)
	assert.Equal(t, 1, stored.TimesStudied)
}

func TestStudyShufflePreservesCards(t *testing.T) {
	study, store := newTestStudy(t)
	for i := 0; i < 10; i++ {
		mustAdd(t, store, "algebra", fmt.Sprintf("q%d", i), "a")
	}
	study.shuffle = rand.New(rand.NewSource(7)).Shuffle

	session, err := study.Start("")
	require.NoError(t, err)
	before := sessionIDs(session)

	_, err = study.Next()
	require.NoError(t, err)
	require.NoError(t, study.Shuffle())

	after := sessionIDs(study.Session())
	current, total := study.Progress()
	assert.Equal(t, 1, current)
	assert.Equal(t, 10, total)

	sort.Slice(before, func(i, j int) bool { return before[i] < before[j] })
	sort.Slice(after, func(i, j int) bool { return after[i] < after[j] })
	assert.Equal(t, before, after)
}

func TestStudyShuffleIsUniform(t *testing.T) {
	study, store := newTestStudy(t)
	for _, q := range []string{"a", "b", "c"} {
		mustAdd(t, store, "algebra", q, q)
	}
	study.shuffle = rand.New(rand.NewSource(42)).Shuffle

	_, err := study.Start("")
	require.NoError(t, err)

	const rounds = 6000
	counts := make(map[string]int)
	for i := 0; i < rounds; i++ {
		require.NoError(t, study.Shuffle())
		var key string
		for _, c := range study.Session().Cards {
			key += c.Question
		}
		counts[key]++
	}

	assert.Len(t, counts, 6)
	for perm, n := range counts {
		assert.InDelta(t, rounds/6, n, 150, "permutation %s", perm)
	}
}

func TestStudyStartReplacesSession(t *testing.T) {
	study, store := newTestStudy(t)
	mustAdd(t, store, "algebra", "2+2", "4")
	mustAdd(t, store, "geometry", "sides of a square", "4")

	first, err := study.Start("")
	require.NoError(t, err)
	second, err := study.Start("geometry")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, study.Session().Len())
}

func TestStudySessionIsACopy(t *testing.T) {
	study, store := newTestStudy(t)
	card := mustAdd(t, store, "algebra", "2+2", "4")

	_, err := study.Start("")
	require.NoError(t, err)
	_, _, err = store.Edit(card.ID, "2+3", "5")
	require.NoError(t, err)

	current, err := study.Current()
	require.NoError(t, err)
	assert.Equal(t, "2+2", current.Question)
}

func TestStudyIdleOperations(t *testing.T) {
	study, _ := newTestStudy(t)

	_, err := study.Current()
	assert.ErrorIs(t, err, ErrNoActiveSession)
	_, err = study.Flip()
	assert.ErrorIs(t, err, ErrNoActiveSession)
	_, err = study.Next()
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.ErrorIs(t, study.Prev(), ErrNoActiveSession)
	assert.ErrorIs(t, study.Shuffle(), ErrNoActiveSession)
	assert.Nil(t, study.Session())

	current, total := study.Progress()
	assert.Zero(t, current)
	assert.Zero(t, total)

	study.End()
	assert.False(t, study.Active())
}

func TestStudyEnd(t *testing.T) {
	study, store := newTestStudy(t)
	card := mustAdd(t, store, "algebra", "2+2", "4")

	_, err := study.Start("")
	require.NoError(t, err)
	study.End()

	assert.False(t, study.Active())
	stored, _ := store.Get(card.ID)
	assert.Equal(t, 1, stored.TimesStudied)
}

func TestStudyStartFailsWhenStudyCannotBeSaved(t *testing.T) {
	study, store := newTestStudy(t)
	mustAdd(t, store, "algebra", "2+2", "4")
	store.storage.(*memStorage).failSet = errDiskFull

	_, err := study.Start("")
	assert.ErrorIs(t, err, errDiskFull)
	assert.False(t, study.Active())
}
