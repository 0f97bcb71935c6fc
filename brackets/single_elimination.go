package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

var ErrNotEnoughTeams = errors.New("not enough teams to generate a single elimination bracket (minimum 2)")

type SingleEliminationGenerator struct {
	shuffler Shuffler
}

func NewSingleEliminationGenerator(shuffler Shuffler) BracketGenerator {
	if shuffler == nil {
		shuffler = RandomShuffler{}
	}
	return &SingleEliminationGenerator{shuffler: shuffler}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateFirstRound перемешивает команды, добивает до степени двойки и разбивает на пары.
// Bye всегда стоит в слоте B последних пар, поэтому пары (bye, bye) не бывает.
func (g *SingleEliminationGenerator) GenerateFirstRound(ctx context.Context, teamIDs []int) ([]Pairing, error) {
	n := len(teamIDs)
	if n < 2 {
		return nil, ErrNotEnoughTeams
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seeded := make([]int, n)
	copy(seeded, teamIDs)
	g.shuffler.Shuffle(seeded)

	size := NextPowerOfTwo(n)
	pairCount := size / 2
	byes := size - n
	fullPairs := pairCount - byes

	pairings := make([]Pairing, 0, pairCount)
	idx := 0
	for i := 0; i < pairCount; i++ {
		p := Pairing{Order: i + 1, TeamAID: seeded[idx], Format: models.MatchFormatBo1}
		idx++
		if i < fullPairs {
			teamB := seeded[idx]
			p.TeamBID = &teamB
			idx++
		}
		pairings = append(pairings, p)
	}
	if idx != n {
		return nil, fmt.Errorf("bracket seeding consumed %d of %d teams", idx, n)
	}

	// Формат финала достаётся последней играбельной паре.
	for i := len(pairings) - 1; i >= 0; i-- {
		if !pairings[i].IsBye() {
			pairings[i].Format = FinalFormat(n)
			break
		}
	}

	return pairings, nil
}

// NextPowerOfTwo returns the smallest power of two >= n (1 for n <= 1).
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// FinalFormat определяет формат финала по числу команд до добивания bye.
// Диапазон 129..255 остаётся bo1.
func FinalFormat(teamCount int) models.MatchFormat {
	switch {
	case teamCount >= 256:
		return models.MatchFormatBo5
	case teamCount >= 32 && teamCount <= 128:
		return models.MatchFormatBo3
	default:
		return models.MatchFormatBo1
	}
}
