package brackets

import (
	"context"
	"math/rand"

	"github.com/Dosada05/tournament-engine/models"
)

// Pairing: одна пара первого раунда. TeamBID == nil означает bye.
type Pairing struct {
	Order   int
	TeamAID int
	TeamBID *int
	Format  models.MatchFormat
}

func (p Pairing) IsBye() bool {
	return p.TeamBID == nil
}

type BracketGenerator interface {
	GenerateFirstRound(ctx context.Context, teamIDs []int) ([]Pairing, error)

	GetName() string
}

// Shuffler переставляет команды перед посевом. В тестах подменяется на детерминированный.
type Shuffler interface {
	Shuffle(teamIDs []int)
}

// RandomShuffler: Fisher–Yates поверх math/rand/v2.
type RandomShuffler struct{}

func (RandomShuffler) Shuffle(teamIDs []int) {
	for i := len(teamIDs) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		teamIDs[i], teamIDs[j] = teamIDs[j], teamIDs[i]
	}
}

// IdentityShuffler keeps the input order.
type IdentityShuffler struct{}

func (IdentityShuffler) Shuffle([]int) {}
