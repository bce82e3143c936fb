package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pickuphub/pickuphub/models"
)

func buildBracket(t *testing.T, n int) *models.Bracket {
	t.Helper()
	bracket, err := NewSingleEliminationBuilder(identitySeeder{}).Build(names(n))
	require.NoError(t, err)
	return bracket
}

func TestAdvanceWinnerFullRun(t *testing.T) {
	bracket := buildBracket(t, 4)

	result, err := AdvanceWinner(bracket, bracket.At(1, 0).ID, "user-1")
	require.NoError(t, err)
	assert.Nil(t, result.Champion)
	assert.Equal(t, models.BracketMatchCompleted, bracket.At(1, 0).Status)

	final := bracket.At(2, 0)
	require.NotNil(t, final.Participant1)
	assert.Equal(t, "user-1", *final.Participant1)
	assert.Equal(t, models.BracketMatchWaiting, final.Status)

	result, err = AdvanceWinner(bracket, bracket.At(1, 1).ID, "user-3")
	require.NoError(t, err)
	assert.Nil(t, result.Champion)
	require.NotNil(t, final.Participant2)
	assert.Equal(t, "user-3", *final.Participant2)
	assert.Equal(t, models.BracketMatchPending, final.Status)

	result, err = AdvanceWinner(bracket, final.ID, "user-1")
	require.NoError(t, err)
	require.NotNil(t, result.Champion)
	assert.Equal(t, "user-1", *result.Champion)
	assert.Equal(t, models.BracketMatchCompleted, final.Status)
}

func TestAdvanceWinnerErrors(t *testing.T) {
	bracket := buildBracket(t, 4)

	t.Run("unknown match", func(t *testing.T) {
		_, err := AdvanceWinner(bracket, "no-such-match", "user-1")
		assert.ErrorIs(t, err, ErrMatchNotInBracket)
	})

	t.Run("winner not seated", func(t *testing.T) {
		_, err := AdvanceWinner(bracket, bracket.At(1, 0).ID, "user-3")
		assert.ErrorIs(t, err, ErrWinnerNotInMatch)
	})

	t.Run("final not ready", func(t *testing.T) {
		_, err := AdvanceWinner(bracket, bracket.At(2, 0).ID, "user-1")
		assert.ErrorIs(t, err, ErrMatchNotPlayable)
	})

	t.Run("already completed", func(t *testing.T) {
		first := bracket.At(1, 0)
		_, err := AdvanceWinner(bracket, first.ID, "user-1")
		require.NoError(t, err)

		_, err = AdvanceWinner(bracket, first.ID, "user-2")
		assert.ErrorIs(t, err, ErrMatchNotPlayable)
	})
}

func TestAdvanceWinnerCascadesSingleFeederBye(t *testing.T) {
	// 6 participants leave round 2 position 1 with a single feeder:
	// the winner of round 1 position 2 passes straight through to the
	// final.
	bracket := buildBracket(t, 6)

	_, err := AdvanceWinner(bracket, bracket.At(1, 2).ID, "user-5")
	require.NoError(t, err)

	passThrough := bracket.At(2, 1)
	assert.True(t, passThrough.IsBye)
	assert.Equal(t, models.BracketMatchCompleted, passThrough.Status)
	require.NotNil(t, passThrough.Winner)
	assert.Equal(t, "user-5", *passThrough.Winner)

	final := bracket.At(3, 0)
	require.NotNil(t, final.Participant2)
	assert.Equal(t, "user-5", *final.Participant2)

	_, err = AdvanceWinner(bracket, bracket.At(1, 0).ID, "user-1")
	require.NoError(t, err)
	_, err = AdvanceWinner(bracket, bracket.At(1, 1).ID, "user-4")
	require.NoError(t, err)

	semi := bracket.At(2, 0)
	assert.Equal(t, models.BracketMatchPending, semi.Status)
	_, err = AdvanceWinner(bracket, semi.ID, "user-4")
	require.NoError(t, err)

	assert.Equal(t, models.BracketMatchPending, final.Status)
	result, err := AdvanceWinner(bracket, final.ID, "user-5")
	require.NoError(t, err)
	require.NotNil(t, result.Champion)
	assert.Equal(t, "user-5", *result.Champion)
}
