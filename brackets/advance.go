package brackets

import (
	"errors"

	"github.com/pickuphub/pickuphub/models"
)

var (
	ErrMatchNotInBracket = errors.New("match not found in bracket")
	ErrMatchNotPlayable  = errors.New("bracket match is not pending")
	ErrWinnerNotInMatch  = errors.New("declared winner is not a participant of this match")
)

// AdvanceResult reports the outcome of advancing one bracket match.
// Champion is set only when the advanced match was the final.
type AdvanceResult struct {
	Match    *models.BracketMatch
	Champion *string
}

// AdvanceWinner completes the given bracket match with the declared
// winner and propagates the winner into the next round. The bracket is
// mutated in place; on error it is left untouched.
func AdvanceWinner(bracket *models.Bracket, matchID, winnerID string) (*AdvanceResult, error) {
	bm := bracket.Find(matchID)
	if bm == nil {
		return nil, ErrMatchNotInBracket
	}
	if bm.Status != models.BracketMatchPending {
		return nil, ErrMatchNotPlayable
	}
	if !isSeated(bm, winnerID) {
		return nil, ErrWinnerNotInMatch
	}

	winner := winnerID
	bm.Winner = &winner
	bm.Status = models.BracketMatchCompleted

	if bm.Round == bracket.Rounds {
		return &AdvanceResult{Match: bm, Champion: &winner}, nil
	}
	seedWinner(bracket, bm.Round, bm.Position, winner)
	return &AdvanceResult{Match: bm}, nil
}

func isSeated(bm *models.BracketMatch, userID string) bool {
	if bm.Participant1 != nil && *bm.Participant1 == userID {
		return true
	}
	if bm.Participant2 != nil && *bm.Participant2 == userID {
		return true
	}
	return false
}

// seedWinner places the winner of (fromRound, fromPos) into the correct
// slot of the next round's match at fromPos/2: slot 1 for even positions,
// slot 2 for odd ones. A target fed by only one source match (possible
// when the previous round had an odd number of matches) can never fill
// its second slot, so it completes as a bye and the winner cascades on.
func seedWinner(bracket *models.Bracket, fromRound, fromPos int, winnerID string) {
	if fromRound >= bracket.Rounds {
		return
	}
	next := bracket.At(fromRound+1, fromPos/2)
	if next == nil {
		return
	}

	winner := winnerID
	if fromPos%2 == 0 {
		next.Participant1 = &winner
	} else {
		next.Participant2 = &winner
	}

	if feederCount(bracket, next.Round, next.Position) < 2 {
		next.IsBye = true
		next.Winner = &winner
		next.Status = models.BracketMatchCompleted
		seedWinner(bracket, next.Round, next.Position, winner)
		return
	}

	if next.Participant1 != nil && next.Participant2 != nil {
		next.Status = models.BracketMatchPending
	}
}

func feederCount(bracket *models.Bracket, round, position int) int {
	prevSize := bracket.RoundSize(round - 1)
	count := 0
	if 2*position < prevSize {
		count++
	}
	if 2*position+1 < prevSize {
		count++
	}
	return count
}
