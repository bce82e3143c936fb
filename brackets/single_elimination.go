package brackets

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/pickuphub/pickuphub/models"
)

var ErrNotEnoughParticipants = errors.New("not enough participants to generate a single elimination bracket (minimum 2)")

type SingleEliminationBuilder struct {
	seeder Seeder
}

func NewSingleEliminationBuilder(seeder Seeder) *SingleEliminationBuilder {
	if seeder == nil {
		seeder = NewRandomSeeder()
	}
	return &SingleEliminationBuilder{seeder: seeder}
}

func (g *SingleEliminationBuilder) Name() string {
	return string(models.FormatSingleElimination)
}

// Build seeds the participants, pairs consecutive seeds into round-1
// matches (an odd participant out receives a bye) and pre-allocates
// waiting placeholders for every later round, halving the match count
// each round. Bye winners are propagated into their next-round slot
// immediately, since completed matches cannot be advanced again.
func (g *SingleEliminationBuilder) Build(participants []string) (*models.Bracket, error) {
	n := len(participants)
	if n < 2 {
		return nil, ErrNotEnoughParticipants
	}

	order := g.seeder.Seed(participants)
	rounds := int(math.Ceil(math.Log2(float64(n))))

	bracket := &models.Bracket{Rounds: rounds}

	for i := 0; i+1 < n; i += 2 {
		p1 := order[i]
		p2 := order[i+1]
		bracket.Matches = append(bracket.Matches, models.BracketMatch{
			ID:           uuid.NewString(),
			Round:        1,
			Position:     i / 2,
			Participant1: &p1,
			Participant2: &p2,
			Status:       models.BracketMatchPending,
		})
	}
	if n%2 == 1 {
		last := order[n-1]
		bracket.Matches = append(bracket.Matches, models.BracketMatch{
			ID:           uuid.NewString(),
			Round:        1,
			Position:     n / 2,
			Participant1: &last,
			Winner:       &last,
			Status:       models.BracketMatchCompleted,
			IsBye:        true,
		})
	}

	size := (n + 1) / 2
	for r := 2; r <= rounds; r++ {
		size = (size + 1) / 2
		for p := 0; p < size; p++ {
			bracket.Matches = append(bracket.Matches, models.BracketMatch{
				ID:       uuid.NewString(),
				Round:    r,
				Position: p,
				Status:   models.BracketMatchWaiting,
			})
		}
	}

	if n%2 == 1 && rounds > 1 {
		seedWinner(bracket, 1, n/2, order[n-1])
	}

	return bracket, nil
}
