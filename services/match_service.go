package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

// MatchService: протокол результатов матчей: отчёты капитанов, подтверждение,
// финализация админом и прямая корректировка результата.
type MatchService interface {
	GetMatch(ctx context.Context, matchID int) (*models.Match, error)
	ListMatches(ctx context.Context, tournamentID int) ([]models.Match, error)
	ListReports(ctx context.Context, matchID int) ([]models.MatchReport, error)

	SubmitReport(ctx context.Context, matchID int, caller models.Caller, scoreA, scoreB int) (*models.MatchReport, error)
	ConfirmReport(ctx context.Context, reportID int, caller models.Caller) (*models.MatchReport, error)
	RejectReport(ctx context.Context, reportID int, caller models.Caller) (*models.MatchReport, error)
	FinalizeReport(ctx context.Context, reportID int, caller models.Caller, overrideA, overrideB *int) (*models.MatchReport, error)
	CorrectMatchResult(ctx context.Context, matchID int, caller models.Caller, scoreA, scoreB int) (*models.Match, error)
}

type ResultAppliedPayload struct {
	Match   models.Match `json:"match"`
	ActorID int          `json:"actor_id"`
	// Changed is false when the same result was already recorded.
	Changed bool `json:"changed"`
}

type matchService struct {
	tx          repositories.Transactor
	tournaments repositories.TournamentRepository
	matches     repositories.MatchRepository
	reports     repositories.MatchReportRepository
	teams       repositories.TeamDirectory
	ledger      StandingsLedger
	events      events.Publisher
	logger      *slog.Logger
	now         func() time.Time
}

func NewMatchService(
	tx repositories.Transactor,
	tournaments repositories.TournamentRepository,
	matches repositories.MatchRepository,
	reports repositories.MatchReportRepository,
	teams repositories.TeamDirectory,
	ledger StandingsLedger,
	publisher events.Publisher,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:          tx,
		tournaments: tournaments,
		matches:     matches,
		reports:     reports,
		teams:       teams,
		ledger:      ledger,
		events:      publisher,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *matchService) GetMatch(ctx context.Context, matchID int) (*models.Match, error) {
	if err := validateIDs(matchID); err != nil {
		return nil, err
	}
	m, err := s.matches.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return m, nil
}

func (s *matchService) ListMatches(ctx context.Context, tournamentID int) ([]models.Match, error) {
	if err := validateIDs(tournamentID); err != nil {
		return nil, err
	}
	if _, err := s.tournaments.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, translateRepoError(err)
	}
	return s.matches.ListByTournament(ctx, nil, tournamentID)
}

func (s *matchService) ListReports(ctx context.Context, matchID int) ([]models.MatchReport, error) {
	if err := validateIDs(matchID); err != nil {
		return nil, err
	}
	if _, err := s.matches.GetByID(ctx, nil, matchID); err != nil {
		return nil, translateRepoError(err)
	}
	return s.reports.ListByMatch(ctx, nil, matchID)
}

func (s *matchService) SubmitReport(ctx context.Context, matchID int, caller models.Caller, scoreA, scoreB int) (*models.MatchReport, error) {
	if err := validateIDs(matchID); err != nil {
		return nil, err
	}
	if err := validateScores(scoreA, scoreB); err != nil {
		return nil, err
	}

	var report *models.MatchReport
	var tournamentID int
	err := s.tx.WithinTx(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		match, err := s.matches.GetForUpdate(ctx, exec, matchID)
		if err != nil {
			return translateRepoError(err)
		}
		tournamentID = match.TournamentID
		if match.IsBye() {
			return ErrByeMatch
		}
		if err := s.requireParticipantCaptain(ctx, exec, caller, match); err != nil {
			return err
		}

		tournament, err := s.tournaments.GetByID(ctx, exec, match.TournamentID)
		if err != nil {
			return translateRepoError(err)
		}
		if tournament.Status != models.StatusOngoing {
			return ErrTournamentNotOngoing
		}

		if _, err := s.reports.FindPendingByMatch(ctx, exec, matchID); err == nil {
			return ErrPendingReportExists
		} else if !errors.Is(err, repositories.ErrReportNotFound) {
			return err
		}

		report = &models.MatchReport{
			MatchID:    matchID,
			ReporterID: caller.UserID,
			ScoreA:     scoreA,
			ScoreB:     scoreB,
			Status:     models.ReportPending,
		}
		return translateRepoError(s.reports.Create(ctx, exec, report))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match report submitted",
		slog.Int("match_id", matchID),
		slog.Int("report_id", report.ID),
		slog.Int("reporter_id", caller.UserID),
	)
	s.events.Publish(ctx, events.New(events.ReportSubmitted, tournamentID, report))
	return report, nil
}

func (s *matchService) ConfirmReport(ctx context.Context, reportID int, caller models.Caller) (*models.MatchReport, error) {
	return s.review(ctx, reportID, caller, models.ReportConfirmed)
}

func (s *matchService) RejectReport(ctx context.Context, reportID int, caller models.Caller) (*models.MatchReport, error) {
	return s.review(ctx, reportID, caller, models.ReportRejected)
}

// review переводит pending-отчёт в confirmed или rejected. Подтверждение сразу применяет результат.
func (s *matchService) review(ctx context.Context, reportID int, caller models.Caller, decision models.ReportStatus) (*models.MatchReport, error) {
	if err := validateIDs(reportID); err != nil {
		return nil, err
	}

	var (
		report  *models.MatchReport
		match   *models.Match
		changed bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		var err error
		report, match, err = s.lockReport(ctx, exec, reportID)
		if err != nil {
			return err
		}
		if err := s.requireOpposingCaptain(ctx, exec, caller, report, match); err != nil {
			return err
		}
		if report.Status != models.ReportPending {
			return ErrReportNotPending
		}

		resolvedAt := s.now().UTC()
		report.Status = decision
		report.ReviewedBy = &caller.UserID
		report.ResolvedAt = &resolvedAt
		if err := s.reports.Resolve(ctx, exec, report); err != nil {
			return translateRepoError(err)
		}

		if decision != models.ReportConfirmed {
			return nil
		}
		changed, err = s.applyMatchResultAndStats(ctx, exec, match, report.ScoreA, report.ScoreB, caller.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}

	eventType := events.ReportRejected
	if decision == models.ReportConfirmed {
		eventType = events.ReportConfirmed
	}
	s.logger.Info("match report reviewed",
		slog.Int("report_id", report.ID),
		slog.Int("match_id", report.MatchID),
		slog.String("status", string(decision)),
		slog.Int("reviewer_id", caller.UserID),
	)
	s.events.Publish(ctx, events.New(eventType, match.TournamentID, report))
	if decision == models.ReportConfirmed {
		s.publishResult(ctx, match, caller.UserID, changed)
	}
	return report, nil
}

// FinalizeReport: админ закрывает отчёт в обход подтверждения, опционально подменяя счёт.
func (s *matchService) FinalizeReport(ctx context.Context, reportID int, caller models.Caller, overrideA, overrideB *int) (*models.MatchReport, error) {
	if err := validateIDs(reportID); err != nil {
		return nil, err
	}
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if (overrideA != nil && *overrideA < 0) || (overrideB != nil && *overrideB < 0) {
		return nil, ErrNegativeScore
	}

	var (
		report  *models.MatchReport
		match   *models.Match
		changed bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		var err error
		report, match, err = s.lockReport(ctx, exec, reportID)
		if err != nil {
			return err
		}
		switch report.Status {
		case models.ReportFinalized:
			return ErrReportAlreadyFinalized
		case models.ReportRejected:
			return ErrReportRejected
		}

		scoreA, scoreB := report.ScoreA, report.ScoreB
		if overrideA != nil {
			scoreA = *overrideA
		}
		if overrideB != nil {
			scoreB = *overrideB
		}

		resolvedAt := s.now().UTC()
		report.Status = models.ReportFinalized
		report.FinalizedBy = &caller.UserID
		report.ResolvedAt = &resolvedAt
		if err := s.reports.Resolve(ctx, exec, report); err != nil {
			return translateRepoError(err)
		}

		changed, err = s.applyMatchResultAndStats(ctx, exec, match, scoreA, scoreB, caller.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match report finalized",
		slog.Int("report_id", report.ID),
		slog.Int("match_id", report.MatchID),
		slog.Int("admin_id", caller.UserID),
		slog.Bool("override", overrideA != nil || overrideB != nil),
	)
	s.events.Publish(ctx, events.New(events.ReportFinalized, match.TournamentID, report))
	s.publishResult(ctx, match, caller.UserID, changed)
	return report, nil
}

// CorrectMatchResult: прямая корректировка результата администратором.
func (s *matchService) CorrectMatchResult(ctx context.Context, matchID int, caller models.Caller, scoreA, scoreB int) (*models.Match, error) {
	if err := validateIDs(matchID); err != nil {
		return nil, err
	}
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := validateScores(scoreA, scoreB); err != nil {
		return nil, err
	}

	var (
		match   *models.Match
		changed bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		var err error
		match, err = s.matches.GetForUpdate(ctx, exec, matchID)
		if err != nil {
			return translateRepoError(err)
		}
		changed, err = s.applyMatchResultAndStats(ctx, exec, match, scoreA, scoreB, caller.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishResult(ctx, match, caller.UserID, changed)
	return match, nil
}

// applyMatchResultAndStats записывает результат матча и приводит статистику в соответствие.
// Тот же результат повторно не начисляется; другой результат сначала откатывает старый.
// Вызывается только внутри транзакции с заблокированной строкой матча.
func (s *matchService) applyMatchResultAndStats(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, scoreA, scoreB, actorID int) (bool, error) {
	if match.IsBye() {
		return false, ErrByeMatch
	}

	result := models.ResultFromScores(scoreA, scoreB)
	if match.Result != nil && *match.Result == result {
		// статистика не меняется, обновляем только сохранённый счёт
		if err := s.matches.UpdateResult(ctx, exec, match.ID, &result, &scoreA, &scoreB); err != nil {
			return false, translateRepoError(err)
		}
		match.ScoreA, match.ScoreB = &scoreA, &scoreB
		return false, nil
	}

	if match.Result != nil {
		oldA, oldB := models.OutcomesFor(*match.Result)
		if err := s.ledger.Decrement(ctx, exec, match.TeamAID, oldA); err != nil {
			return false, err
		}
		if err := s.ledger.Decrement(ctx, exec, *match.TeamBID, oldB); err != nil {
			return false, err
		}
		s.logger.Info("previous match result rolled back",
			slog.Int("match_id", match.ID),
			slog.String("old_result", string(*match.Result)),
			slog.String("new_result", string(result)),
			slog.Int("actor_id", actorID),
		)
	}

	if err := s.matches.UpdateResult(ctx, exec, match.ID, &result, &scoreA, &scoreB); err != nil {
		return false, translateRepoError(err)
	}

	outA, outB := models.OutcomesFor(result)
	if err := s.ledger.Increment(ctx, exec, match.TeamAID, outA); err != nil {
		return false, err
	}
	if err := s.ledger.Increment(ctx, exec, *match.TeamBID, outB); err != nil {
		return false, err
	}

	match.Result = &result
	match.ScoreA, match.ScoreB = &scoreA, &scoreB
	return true, nil
}

// lockReport находит отчёт, блокирует его матч и перечитывает отчёт уже под блокировкой.
func (s *matchService) lockReport(ctx context.Context, exec repositories.SQLExecutor, reportID int) (*models.MatchReport, *models.Match, error) {
	report, err := s.reports.GetByID(ctx, exec, reportID)
	if err != nil {
		return nil, nil, translateRepoError(err)
	}
	match, err := s.matches.GetForUpdate(ctx, exec, report.MatchID)
	if err != nil {
		return nil, nil, translateRepoError(err)
	}
	report, err = s.reports.GetByID(ctx, exec, reportID)
	if err != nil {
		return nil, nil, translateRepoError(err)
	}
	return report, match, nil
}

func (s *matchService) requireParticipantCaptain(ctx context.Context, exec repositories.SQLExecutor, caller models.Caller, match *models.Match) error {
	if caller.IsAdmin() {
		return nil
	}
	for _, teamID := range []int{match.TeamAID, *match.TeamBID} {
		ok, err := s.teams.IsCaptain(ctx, exec, caller.UserID, teamID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return ErrNotMatchParticipant
}

// requireOpposingCaptain: подтверждает капитан команды, противоположной автору отчёта.
// Если автор не капитан ни одной из команд (например, админ), подойдёт капитан любой из них.
func (s *matchService) requireOpposingCaptain(ctx context.Context, exec repositories.SQLExecutor, caller models.Caller, report *models.MatchReport, match *models.Match) error {
	if caller.IsAdmin() {
		return nil
	}
	if caller.UserID == report.ReporterID {
		return ErrOppositeCaptainRequired
	}
	if match.IsBye() {
		return ErrByeMatch
	}

	reporterA, err := s.teams.IsCaptain(ctx, exec, report.ReporterID, match.TeamAID)
	if err != nil {
		return err
	}
	reporterB, err := s.teams.IsCaptain(ctx, exec, report.ReporterID, *match.TeamBID)
	if err != nil {
		return err
	}

	var eligible []int
	switch {
	case reporterA && !reporterB:
		eligible = []int{*match.TeamBID}
	case reporterB && !reporterA:
		eligible = []int{match.TeamAID}
	default:
		eligible = []int{match.TeamAID, *match.TeamBID}
	}

	for _, teamID := range eligible {
		ok, err := s.teams.IsCaptain(ctx, exec, caller.UserID, teamID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return ErrOppositeCaptainRequired
}

func (s *matchService) publishResult(ctx context.Context, match *models.Match, actorID int, changed bool) {
	if match.Result != nil {
		s.logger.Info("match result applied",
			slog.Int("match_id", match.ID),
			slog.String("result", string(*match.Result)),
			slog.Bool("changed", changed),
			slog.Int("actor_id", actorID),
		)
	}
	s.events.Publish(ctx, events.New(events.MatchResultApplied, match.TournamentID, ResultAppliedPayload{
		Match:   *match,
		ActorID: actorID,
		Changed: changed,
	}))
}
