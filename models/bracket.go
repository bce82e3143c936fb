package models

type BracketMatchStatus string

const (
	// Waiting for at least one participant slot to be decided upstream.
	BracketMatchWaiting BracketMatchStatus = "waiting"
	// Both slots filled, ready to be played.
	BracketMatchPending BracketMatchStatus = "pending"
	BracketMatchCompleted BracketMatchStatus = "completed"
)

// BracketMatch is one node of a single-elimination bracket.
// Position is zero-based within its round; the winner of round r,
// position p feeds round r+1, position p/2.
type BracketMatch struct {
	ID           string             `json:"id"`
	Round        int                `json:"round"`
	Position     int                `json:"position"`
	Participant1 *string            `json:"participant1"`
	Participant2 *string            `json:"participant2"`
	Winner       *string            `json:"winner,omitempty"`
	Status       BracketMatchStatus `json:"status"`
	IsBye        bool               `json:"is_bye,omitempty"`
}

// Bracket is immutable in shape once generated; only winner and status
// fields of its matches mutate afterwards.
type Bracket struct {
	Rounds  int            `json:"rounds"`
	Matches []BracketMatch `json:"matches"`
}

// Find returns the bracket match with the given id, or nil.
func (b *Bracket) Find(matchID string) *BracketMatch {
	for i := range b.Matches {
		if b.Matches[i].ID == matchID {
			return &b.Matches[i]
		}
	}
	return nil
}

// At returns the match at (round, position), or nil.
func (b *Bracket) At(round, position int) *BracketMatch {
	for i := range b.Matches {
		if b.Matches[i].Round == round && b.Matches[i].Position == position {
			return &b.Matches[i]
		}
	}
	return nil
}

// RoundSize is the number of matches in the given round.
func (b *Bracket) RoundSize(round int) int {
	n := 0
	for i := range b.Matches {
		if b.Matches[i].Round == round {
			n++
		}
	}
	return n
}
