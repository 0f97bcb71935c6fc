package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/models"
)

// registerTeams регистрирует n новых команд от имени админа и возвращает их id по порядку.
func registerTeams(t *testing.T, h *harness, tournamentID, n int) []int {
	t.Helper()
	teams := make([]int, n)
	for i := range teams {
		teams[i] = h.addTeam(5000 + i)
		if _, err := h.registrations.Register(context.Background(), tournamentID, teams[i], admin); err != nil {
			t.Fatalf("register team %d: %v", teams[i], err)
		}
	}
	return teams
}

func TestGenerateBracketThreeTeams(t *testing.T) {
	h := newHarness(t)
	tid := h.addTournament()
	teams := registerTeams(t, h, tid, 3)

	matches, err := h.brackets.GenerateBracket(context.Background(), tid, admin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}

	full, bye := matches[0], matches[1]
	if full.TeamAID != teams[0] || full.TeamBID == nil || *full.TeamBID != teams[1] {
		t.Fatalf("first pairing = %d vs %v, want %d vs %d", full.TeamAID, full.TeamBID, teams[0], teams[1])
	}
	if full.Result != nil {
		t.Fatalf("playable match must start without a result, got %s", *full.Result)
	}
	if !bye.IsBye() || bye.TeamAID != teams[2] {
		t.Fatalf("second pairing should be a bye for team %d, got %+v", teams[2], bye)
	}
	if bye.Result == nil || *bye.Result != models.ResultTeamA {
		t.Fatalf("bye result = %v, want teamA", bye.Result)
	}

	tour := h.tournament(t, tid)
	for _, m := range matches {
		if m.Round != 1 {
			t.Fatalf("round = %d, want 1", m.Round)
		}
		if !m.ScheduledAt.Equal(tour.StartDate) {
			t.Fatalf("scheduled_at = %v, want tournament start %v", m.ScheduledAt, tour.StartDate)
		}
	}
	if tour.Status != models.StatusOngoing {
		t.Fatalf("tournament status = %s, want ongoing", tour.Status)
	}
	if got := h.published.count(events.BracketGenerated); got != 1 {
		t.Fatalf("bracket.generated events = %d, want 1", got)
	}

	// bye не начисляет статистику
	assertStats(t, h, teams[2], 0, 0, 0, 0)
	assertAuditClean(t, h)
}

func TestGenerateBracketIgnoresWaitlistedAndWithdrawn(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tid := h.addTournament(withMaxTeams(2))
	teams := registerTeams(t, h, tid, 4) // 2 registered, 2 waitlisted

	if err := h.registrations.Withdraw(ctx, tid, teams[0], admin); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	matches, err := h.brackets.GenerateBracket(ctx, tid, admin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	m := matches[0]
	if m.TeamAID != teams[1] || m.TeamBID == nil || *m.TeamBID != teams[2] {
		t.Fatalf("pairing = %d vs %v, want %d vs %d", m.TeamAID, m.TeamBID, teams[1], teams[2])
	}
}

func TestGenerateBracketFinalFormat(t *testing.T) {
	h := newHarness(t)
	tid := h.addTournament()
	registerTeams(t, h, tid, 32)

	matches, err := h.brackets.GenerateBracket(context.Background(), tid, admin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(matches) != 16 {
		t.Fatalf("matches = %d, want 16", len(matches))
	}
	for i, m := range matches {
		want := models.MatchFormatBo1
		if i == len(matches)-1 {
			want = models.MatchFormatBo3
		}
		if m.Format != want {
			t.Fatalf("match %d format = %s, want %s", i, m.Format, want)
		}
	}
}

func TestGenerateBracketRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("not an admin", func(t *testing.T) {
		h := newHarness(t)
		tid := h.addTournament()
		registerTeams(t, h, tid, 2)
		_, err := h.brackets.GenerateBracket(ctx, tid, player(5000))
		assertKind(t, err, ErrForbiddenOperation)
	})

	t.Run("not enough teams", func(t *testing.T) {
		h := newHarness(t)
		tid := h.addTournament()
		registerTeams(t, h, tid, 1)
		_, err := h.brackets.GenerateBracket(ctx, tid, admin)
		assertKind(t, err, ErrInvalidState)
	})

	t.Run("unknown tournament", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.brackets.GenerateBracket(ctx, 4242, admin)
		assertKind(t, err, ErrNotFound)
	})

	t.Run("second generation", func(t *testing.T) {
		h := newHarness(t)
		tid := h.addTournament()
		registerTeams(t, h, tid, 4)
		if _, err := h.brackets.GenerateBracket(ctx, tid, admin); err != nil {
			t.Fatalf("first generation: %v", err)
		}
		_, err := h.brackets.GenerateBracket(ctx, tid, admin)
		assertKind(t, err, ErrInvalidState)

		all, _ := h.matches.ListMatches(ctx, tid)
		if len(all) != 2 {
			t.Fatalf("matches = %d after rejected regeneration, want 2", len(all))
		}
	})
}

func TestGenerateBracketIsAtomic(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tid := h.addTournament()
	registerTeams(t, h, tid, 8)
	h.store.failMatchCreateAt = 3

	_, err := h.brackets.GenerateBracket(ctx, tid, admin)
	if !errors.Is(err, errInjectedFailure) {
		t.Fatalf("expected injected failure, got %v", err)
	}

	matches, err := h.matches.ListMatches(ctx, tid)
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("partial bracket persisted: %d matches", len(matches))
	}
	if got := h.tournament(t, tid).Status; got != models.StatusUpcoming {
		t.Fatalf("tournament status = %s, want upcoming", got)
	}
	if got := h.published.count(events.BracketGenerated); got != 0 {
		t.Fatalf("bracket.generated published for failed generation")
	}
}
