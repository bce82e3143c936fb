package brackets

import (
	"math/rand"

	"github.com/pickuphub/pickuphub/models"
)

// Builder produces a bracket structure from a list of participant ids.
type Builder interface {
	Build(participants []string) (*models.Bracket, error)
	Name() string
}

// Seeder decides the seeding order of participants before pairing.
// The production seeder is a uniform random shuffle; tests substitute
// a deterministic one.
type Seeder interface {
	Seed(participants []string) []string
}

type randomSeeder struct{}

func NewRandomSeeder() Seeder {
	return randomSeeder{}
}

func (randomSeeder) Seed(participants []string) []string {
	out := make([]string, len(participants))
	copy(out, participants)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
