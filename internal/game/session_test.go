package game_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/headcount/internal/deck"
	"github.com/vytor/headcount/internal/game"
	"github.com/vytor/headcount/internal/models"
)

// threeCards is the 2♠ 3♥ K♣ deck: values 2, 3, 13, target sum 18.
func threeCards() deck.Deck {
	return deck.Deck{
		{Suit: deck.Spades, Rank: "2", Value: 2},
		{Suit: deck.Hearts, Rank: "3", Value: 3},
		{Suit: deck.Clubs, Rank: "K", Value: 13},
	}
}

func newPlaying(t *testing.T, cards deck.Deck, opts ...game.SessionOption) *game.Session {
	t.Helper()
	opts = append([]game.SessionOption{game.WithManualTimer()}, opts...)
	s := game.New(cards, opts...)
	t.Cleanup(s.Close)
	s.Start()
	return s
}

func TestNew_TargetSumComputedOnce(t *testing.T) {
	s := game.New(threeCards(), game.WithManualTimer())
	defer s.Close()

	assert.Equal(t, 18, s.TargetSum())
	assert.Equal(t, game.StateLoading, s.State())
	assert.Equal(t, -1, s.Cursor())
}

func TestStart_EntersPlaying(t *testing.T) {
	s := newPlaying(t, threeCards())
	assert.Equal(t, game.StatePlaying, s.State())

	// Starting twice must not restart anything.
	s.Start()
	assert.Equal(t, game.StatePlaying, s.State())
}

func TestAdvance_StepsThroughDeck(t *testing.T) {
	s := newPlaying(t, threeCards())

	s.Advance()
	assert.Equal(t, 0, s.Cursor())
	s.Advance()
	assert.Equal(t, 1, s.Cursor())
	s.Advance()
	assert.Equal(t, 2, s.Cursor())
	assert.Equal(t, game.StatePlaying, s.State())
}

func TestAdvance_PastLastCardFinishes(t *testing.T) {
	s := newPlaying(t, threeCards())

	for i := 0; i < 3; i++ {
		s.Advance()
	}
	s.Advance()
	assert.Equal(t, game.StateFinished, s.State())
	assert.Equal(t, 2, s.Cursor(), "cursor stays on the last card")

	// Terminal: further traversal is a no-op.
	s.Advance()
	s.Retreat()
	assert.Equal(t, game.StateFinished, s.State())
	assert.Equal(t, 2, s.Cursor())
}

func TestAdvance_IgnoredBeforeStart(t *testing.T) {
	s := game.New(threeCards(), game.WithManualTimer())
	defer s.Close()

	s.Advance()
	assert.Equal(t, -1, s.Cursor())
	assert.Equal(t, game.StateLoading, s.State())
}

func TestRetreat_StopsAtMinusOne(t *testing.T) {
	s := newPlaying(t, threeCards())

	s.Retreat()
	assert.Equal(t, -1, s.Cursor(), "retreat before the first draw is a no-op")

	s.Advance()
	s.Advance()
	s.Retreat()
	assert.Equal(t, 0, s.Cursor())
	s.Retreat()
	assert.Equal(t, -1, s.Cursor())
	s.Retreat()
	assert.Equal(t, -1, s.Cursor())
	assert.Equal(t, game.StatePlaying, s.State(), "retreat never changes state")
}

func TestCursorInvariant_ManyRandomSteps(t *testing.T) {
	cards := deck.New()[:10]
	s := newPlaying(t, cards)

	steps := []func(){s.Advance, s.Advance, s.Retreat, s.Advance, s.Retreat, s.Retreat, s.Retreat}
	for i := 0; i < 40; i++ {
		steps[i%len(steps)]()
		c := s.Cursor()
		assert.GreaterOrEqual(t, c, -1)
		assert.Less(t, c, len(cards))
	}
}

func TestRecordCheckpoint_UsesAuthoritativeSum(t *testing.T) {
	s := newPlaying(t, threeCards())

	s.Advance() // 2
	s.Advance() // 3
	s.SetScratch("5")
	s.RecordCheckpoint()

	cp, ok := s.LastCheckpoint()
	require.True(t, ok)
	assert.Equal(t, 1, cp.CursorIndex)
	assert.Equal(t, 5, cp.UserValue)
	assert.Equal(t, 5, cp.CorrectPartialSum)
	assert.True(t, cp.IsCorrect())
	assert.Empty(t, s.Scratch(), "scratch buffer clears on success")
}

func TestRecordCheckpoint_WrongValueStillRecorded(t *testing.T) {
	s := newPlaying(t, threeCards())

	s.Advance()
	s.SetScratch("7")
	s.RecordCheckpoint()

	cp, ok := s.LastCheckpoint()
	require.True(t, ok)
	assert.Equal(t, 7, cp.UserValue)
	assert.Equal(t, 2, cp.CorrectPartialSum, "true sum comes from the deck, not the player")
	assert.False(t, cp.IsCorrect())
}

func TestRecordCheckpoint_InvalidInputIgnored(t *testing.T) {
	s := newPlaying(t, threeCards())
	s.Advance()

	for _, bad := range []string{"", "abc", "-3", "1.5"} {
		s.SetScratch(bad)
		s.RecordCheckpoint()
		_, ok := s.LastCheckpoint()
		assert.False(t, ok, "input %q should not record a checkpoint", bad)
	}
	assert.Equal(t, "1.5", s.Scratch(), "buffer is not cleared on a failed record")
}

func TestRecordCheckpoint_BeforeFirstDraw(t *testing.T) {
	s := newPlaying(t, threeCards())

	s.SetScratch("0")
	s.RecordCheckpoint()

	cp, ok := s.LastCheckpoint()
	require.True(t, ok)
	assert.Equal(t, -1, cp.CursorIndex)
	assert.Equal(t, 0, cp.CorrectPartialSum, "no cards drawn sums to zero")
	assert.True(t, cp.IsCorrect())
}

func TestCheckpoints_AppendOnlyOrdered(t *testing.T) {
	s := newPlaying(t, threeCards())

	s.Advance()
	s.SetScratch("2")
	s.RecordCheckpoint()
	s.Advance()
	s.SetScratch("5")
	s.RecordCheckpoint()

	cps := s.Checkpoints()
	require.Len(t, cps, 2)
	assert.Equal(t, 0, cps[0].CursorIndex)
	assert.Equal(t, 1, cps[1].CursorIndex)
	assert.True(t, cps[0].ElapsedSeconds <= cps[1].ElapsedSeconds)
}

func TestGoToLastCheckpoint_JumpsCursor(t *testing.T) {
	s := newPlaying(t, threeCards())

	s.Advance()
	s.SetScratch("2")
	s.RecordCheckpoint()
	s.Advance()
	s.Advance()
	require.Equal(t, 2, s.Cursor())

	s.GoToLastCheckpoint()
	assert.Equal(t, 0, s.Cursor())

	cps := s.Checkpoints()
	assert.Len(t, cps, 1, "go back reads the ledger, never pops it")
}

func TestGoToLastCheckpoint_EmptyLedgerNoop(t *testing.T) {
	s := newPlaying(t, threeCards())
	s.Advance()

	s.GoToLastCheckpoint()
	assert.Equal(t, 0, s.Cursor())
}

func TestGoToLastCheckpoint_ScratchRestorePolicy(t *testing.T) {
	t.Run("restore", func(t *testing.T) {
		s := newPlaying(t, threeCards(), game.WithScratchRestore(true))
		s.Advance()
		s.SetScratch("2")
		s.RecordCheckpoint()
		s.Advance()
		s.SetScratch("99")

		s.GoToLastCheckpoint()
		assert.Equal(t, "2", s.Scratch())
	})
	t.Run("keep", func(t *testing.T) {
		s := newPlaying(t, threeCards(), game.WithScratchRestore(false))
		s.Advance()
		s.SetScratch("2")
		s.RecordCheckpoint()
		s.Advance()
		s.SetScratch("99")

		s.GoToLastCheckpoint()
		assert.Equal(t, "99", s.Scratch())
	})
}

func TestPrimary_RecordsThenAdvances(t *testing.T) {
	s := newPlaying(t, threeCards())

	s.Primary() // empty scratch: draw only
	assert.Equal(t, 0, s.Cursor())
	assert.Empty(t, s.Checkpoints())

	s.SetScratch("2")
	s.Primary() // checkpoint at index 0, then draw
	assert.Equal(t, 1, s.Cursor())

	cp, ok := s.LastCheckpoint()
	require.True(t, ok)
	assert.Equal(t, 0, cp.CursorIndex, "checkpoint reflects the pre-advance position")
	assert.Equal(t, 2, cp.CorrectPartialSum)
}

func TestPrimary_EmptyScratchNeverRecords(t *testing.T) {
	s := newPlaying(t, threeCards())

	for i := 0; i < 3; i++ {
		s.Primary()
	}
	assert.Empty(t, s.Checkpoints())
	assert.Equal(t, 2, s.Cursor())
}

func TestSecondary_Retreats(t *testing.T) {
	s := newPlaying(t, threeCards())
	s.Advance()
	s.Advance()

	s.Secondary()
	assert.Equal(t, 0, s.Cursor())
}

func TestSubmit_BeforeFinishRejected(t *testing.T) {
	s := newPlaying(t, threeCards())
	s.Advance()

	_, err := s.Submit("18")
	assert.ErrorIs(t, err, game.ErrNotFinished)
}

func TestSubmit_CorrectAnswer(t *testing.T) {
	var ended []models.GameResult
	s := newPlaying(t, threeCards(), game.WithOnEnd(func(r models.GameResult) {
		ended = append(ended, r)
	}))

	for i := 0; i < 4; i++ {
		s.Advance()
	}
	require.Equal(t, game.StateFinished, s.State())

	res, err := s.Submit("18")
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.False(t, res.Date.IsZero())
	require.Len(t, ended, 1, "onEnd fires exactly once")
}

func TestSubmit_WrongAnswer(t *testing.T) {
	s := newPlaying(t, threeCards())
	for i := 0; i < 4; i++ {
		s.Advance()
	}

	res, err := s.Submit("20")
	require.NoError(t, err)
	assert.False(t, res.Correct)
}

func TestSubmit_UnparseableTotalIsIncorrect(t *testing.T) {
	s := newPlaying(t, threeCards())
	for i := 0; i < 4; i++ {
		s.Advance()
	}

	res, err := s.Submit("eighteen")
	require.NoError(t, err)
	assert.False(t, res.Correct, "garbage totals score as wrong, not as errors")
}

func TestSubmit_Idempotent(t *testing.T) {
	var calls int
	s := newPlaying(t, threeCards(), game.WithOnEnd(func(models.GameResult) {
		calls++
	}))
	for i := 0; i < 4; i++ {
		s.Advance()
	}

	first, err := s.Submit("18")
	require.NoError(t, err)

	second, err := s.Submit("999")
	require.NoError(t, err)
	assert.Equal(t, first, second, "second submission returns the fixed result")
	assert.Equal(t, 1, calls, "onEnd never fires twice")
}

func TestTimer_CountsOnlyWhilePlaying(t *testing.T) {
	s := game.New(threeCards(), game.WithManualTimer())
	defer s.Close()

	assert.False(t, s.Tick(), "timer must not run while loading")
	s.Start()

	assert.True(t, s.Tick())
	assert.True(t, s.Tick())
	assert.Equal(t, 2, s.Elapsed())

	for i := 0; i < 4; i++ {
		s.Advance()
	}
	require.Equal(t, game.StateFinished, s.State())
	assert.False(t, s.Tick(), "timer stops permanently on finish")
	assert.Equal(t, 2, s.Elapsed())
}

func TestTimer_ElapsedStampsCheckpointsAndResult(t *testing.T) {
	s := newPlaying(t, threeCards())

	s.Tick()
	s.Advance()
	s.SetScratch("2")
	s.RecordCheckpoint()

	cp, _ := s.LastCheckpoint()
	assert.Equal(t, 1, cp.ElapsedSeconds)

	s.Tick()
	s.Tick()
	for i := 0; i < 3; i++ {
		s.Advance()
	}
	res, err := s.Submit("18")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ElapsedSeconds)
}

func TestTimer_RealTickerStopsOnClose(t *testing.T) {
	s := game.New(threeCards(), game.WithTickInterval(time.Millisecond))
	s.Start()

	assert.Eventually(t, func() bool {
		return s.Elapsed() > 0
	}, time.Second, time.Millisecond, "ticker should be counting")

	s.Close()
	frozen := s.Elapsed()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, frozen, s.Elapsed(), "no ticks after close")
}

func TestClose_Idempotent(t *testing.T) {
	s := game.New(threeCards(), game.WithTickInterval(time.Millisecond))
	s.Start()
	s.Close()
	s.Close()
	s.Close()
}

func TestSnapshot_DuringPlay(t *testing.T) {
	s := newPlaying(t, threeCards())
	s.Tick()
	s.Advance()

	snap := s.Snapshot()
	assert.Equal(t, "playing", snap.State)
	assert.Equal(t, 0, snap.CursorIndex)
	require.NotNil(t, snap.CurrentCard)
	assert.Equal(t, deck.Rank("2"), snap.CurrentCard.Rank)
	assert.Equal(t, 1, snap.CardsDrawn)
	assert.Equal(t, 2, snap.CardsRemaining)
	assert.Equal(t, 3, snap.TotalCards)
	assert.Equal(t, 1, snap.ElapsedSeconds)
	assert.Nil(t, snap.Result)
	assert.Nil(t, snap.CorrectSum, "target sum stays hidden during play")
}

func TestSnapshot_BeforeFirstDraw(t *testing.T) {
	s := newPlaying(t, threeCards())

	snap := s.Snapshot()
	assert.Equal(t, -1, snap.CursorIndex)
	assert.Nil(t, snap.CurrentCard)
	assert.Equal(t, 0, snap.CardsDrawn)
	assert.Equal(t, 3, snap.CardsRemaining)
}

func TestSnapshot_AfterSubmitRevealsTarget(t *testing.T) {
	s := newPlaying(t, threeCards())
	s.Advance()
	s.SetScratch("9")
	s.RecordCheckpoint()
	for i := 0; i < 3; i++ {
		s.Advance()
	}
	_, err := s.Submit("18")
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, "finished", snap.State)
	require.NotNil(t, snap.Result)
	assert.True(t, snap.Result.Correct)
	require.NotNil(t, snap.CorrectSum)
	assert.Equal(t, 18, *snap.CorrectSum)
	require.Len(t, snap.Checkpoints, 1)
	assert.False(t, snap.Checkpoints[0].Correct, "9 != 2")
}

// The end-to-end scenario from the design discussion: deck 2,3,K.
func TestEndToEnd_ThreeCardScenario(t *testing.T) {
	s := newPlaying(t, threeCards())

	s.Advance() // card 2
	require.Equal(t, 0, s.Cursor())
	s.Advance() // card 3
	require.Equal(t, 1, s.Cursor())

	s.SetScratch("5")
	s.RecordCheckpoint()
	cp, ok := s.LastCheckpoint()
	require.True(t, ok)
	assert.Equal(t, game.Checkpoint{CursorIndex: 1, UserValue: 5, CorrectPartialSum: 5}, cp)

	s.Advance() // card K
	require.Equal(t, 2, s.Cursor())
	s.Advance() // past the end
	require.Equal(t, game.StateFinished, s.State())

	res, err := s.Submit("18")
	require.NoError(t, err)
	assert.True(t, res.Correct)
}

func TestEndToEnd_WrongTotalOnFreshSession(t *testing.T) {
	s := newPlaying(t, threeCards())
	for i := 0; i < 4; i++ {
		s.Advance()
	}

	res, err := s.Submit("20")
	require.NoError(t, err)
	assert.False(t, res.Correct)
}
