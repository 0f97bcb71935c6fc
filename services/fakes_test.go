package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

// memStore: in-memory хранилище. Транзакция держит единственный мьютекс, поэтому
// транзакции сериализуемы; при ошибке состояние восстанавливается из снимка.
type memStore struct {
	mu sync.Mutex

	seq           int
	tournaments   map[int]models.Tournament
	teams         map[int]models.Team
	captains      map[[2]int]bool // {userID, teamID}
	registrations map[int]models.Registration
	matches       map[int]models.Match
	reports       map[int]models.MatchReport
	stats         map[int]models.TeamStats

	failMatchCreateAt int // n-й вызов Create матча вернёт ошибку
	matchCreates      int
}

type memSnapshot struct {
	seq           int
	tournaments   map[int]models.Tournament
	registrations map[int]models.Registration
	matches       map[int]models.Match
	reports       map[int]models.MatchReport
	stats         map[int]models.TeamStats
}

func newMemStore() *memStore {
	return &memStore{
		tournaments:   make(map[int]models.Tournament),
		teams:         make(map[int]models.Team),
		captains:      make(map[[2]int]bool),
		registrations: make(map[int]models.Registration),
		matches:       make(map[int]models.Match),
		reports:       make(map[int]models.MatchReport),
		stats:         make(map[int]models.TeamStats),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	return memSnapshot{
		seq:           s.seq,
		tournaments:   cloneMap(s.tournaments),
		registrations: cloneMap(s.registrations),
		matches:       cloneMap(s.matches),
		reports:       cloneMap(s.reports),
		stats:         cloneMap(s.stats),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.seq = snap.seq
	s.tournaments = snap.tournaments
	s.registrations = snap.registrations
	s.matches = snap.matches
	s.reports = snap.reports
	s.stats = snap.stats
}

func (s *memStore) nextID() int {
	s.seq++
	return s.seq
}

// lock берёт мьютекс только для вызовов вне транзакции.
func (s *memStore) lock(exec repositories.SQLExecutor) func() {
	if exec != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type txExec struct{ repositories.SQLExecutor }

type memTransactor struct{ s *memStore }

func (t memTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, exec repositories.SQLExecutor) error) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	snap := t.s.snapshot()
	if err := fn(ctx, txExec{}); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

// --- tournaments ---

type memTournaments struct{ s *memStore }

func (r memTournaments) Create(_ context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	defer r.s.lock(exec)()
	t.ID = r.s.nextID()
	t.CreatedAt = time.Now()
	r.s.tournaments[t.ID] = *t
	return nil
}

func (r memTournaments) GetByID(_ context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	defer r.s.lock(exec)()
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r memTournaments) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r memTournaments) List(_ context.Context, exec repositories.SQLExecutor, f repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	defer r.s.lock(exec)()
	out := make([]models.Tournament, 0)
	for _, t := range r.s.tournaments {
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		if f.DivisionID != nil && t.DivisionID != *f.DivisionID {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Offset < len(out) {
		out = out[f.Offset:]
	} else {
		out = out[:0]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r memTournaments) UpdateStatus(_ context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	defer r.s.lock(exec)()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	r.s.tournaments[id] = t
	return nil
}

// --- registrations ---

type memRegistrations struct{ s *memStore }

func (r memRegistrations) Create(_ context.Context, exec repositories.SQLExecutor, reg *models.Registration) error {
	defer r.s.lock(exec)()
	for _, existing := range r.s.registrations {
		if existing.TournamentID == reg.TournamentID && existing.TeamID == reg.TeamID && existing.IsActive() {
			return repositories.ErrRegistrationConflict
		}
	}
	reg.ID = r.s.nextID()
	reg.CreatedAt = time.Now()
	reg.UpdatedAt = reg.CreatedAt
	r.s.registrations[reg.ID] = *reg
	return nil
}

func (r memRegistrations) FindActive(_ context.Context, exec repositories.SQLExecutor, tournamentID, teamID int) (*models.Registration, error) {
	defer r.s.lock(exec)()
	for _, reg := range r.s.registrations {
		if reg.TournamentID == tournamentID && reg.TeamID == teamID && reg.IsActive() {
			return &reg, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (r memRegistrations) CountByStatus(_ context.Context, exec repositories.SQLExecutor, tournamentID int, status models.RegistrationStatus) (int, error) {
	defer r.s.lock(exec)()
	n := 0
	for _, reg := range r.s.registrations {
		if reg.TournamentID == tournamentID && reg.Status == status {
			n++
		}
	}
	return n, nil
}

func (r memRegistrations) OldestWaitlisted(_ context.Context, exec repositories.SQLExecutor, tournamentID int) (*models.Registration, error) {
	defer r.s.lock(exec)()
	var oldest *models.Registration
	for _, reg := range r.s.registrations {
		if reg.TournamentID != tournamentID || reg.Status != models.RegistrationWaitlisted {
			continue
		}
		if oldest == nil || reg.ID < oldest.ID {
			cp := reg
			oldest = &cp
		}
	}
	if oldest == nil {
		return nil, repositories.ErrRegistrationNotFound
	}
	return oldest, nil
}

func (r memRegistrations) UpdateStatus(_ context.Context, exec repositories.SQLExecutor, id int, status models.RegistrationStatus) error {
	defer r.s.lock(exec)()
	reg, ok := r.s.registrations[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	reg.Status = status
	reg.UpdatedAt = time.Now()
	r.s.registrations[id] = reg
	return nil
}

func (r memRegistrations) ListByTournament(_ context.Context, exec repositories.SQLExecutor, tournamentID int, status *models.RegistrationStatus) ([]models.Registration, error) {
	defer r.s.lock(exec)()
	out := make([]models.Registration, 0)
	for _, reg := range r.s.registrations {
		if reg.TournamentID == tournamentID && (status == nil || reg.Status == *status) {
			out = append(out, reg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- matches ---

type memMatches struct{ s *memStore }

var errInjectedFailure = errors.New("injected persistence failure")

func (r memMatches) Create(_ context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	defer r.s.lock(exec)()
	r.s.matchCreates++
	if r.s.failMatchCreateAt > 0 && r.s.matchCreates == r.s.failMatchCreateAt {
		return errInjectedFailure
	}
	m.ID = r.s.nextID()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	r.s.matches[m.ID] = *m
	return nil
}

func (r memMatches) GetByID(_ context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	defer r.s.lock(exec)()
	m, ok := r.s.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return &m, nil
}

func (r memMatches) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	return r.GetByID(ctx, exec, id)
}

func (r memMatches) ListByTournament(_ context.Context, exec repositories.SQLExecutor, tournamentID int) ([]models.Match, error) {
	defer r.s.lock(exec)()
	out := make([]models.Match, 0)
	for _, m := range r.s.matches {
		if m.TournamentID == tournamentID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memMatches) UpdateResult(_ context.Context, exec repositories.SQLExecutor, id int, result *models.MatchResult, scoreA, scoreB *int) error {
	defer r.s.lock(exec)()
	m, ok := r.s.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Result, m.ScoreA, m.ScoreB = result, scoreA, scoreB
	m.UpdatedAt = time.Now()
	r.s.matches[id] = m
	return nil
}

func (r memMatches) CountDecidedByTeam(_ context.Context, exec repositories.SQLExecutor) (map[int]int, error) {
	defer r.s.lock(exec)()
	counts := make(map[int]int)
	for _, m := range r.s.matches {
		if m.Result == nil || m.IsBye() {
			continue
		}
		counts[m.TeamAID]++
		counts[*m.TeamBID]++
	}
	return counts, nil
}

// --- reports ---

type memReports struct{ s *memStore }

func (r memReports) Create(_ context.Context, exec repositories.SQLExecutor, rep *models.MatchReport) error {
	defer r.s.lock(exec)()
	for _, existing := range r.s.reports {
		if existing.MatchID == rep.MatchID && existing.Status == models.ReportPending && rep.Status == models.ReportPending {
			return repositories.ErrReportPendingConflict
		}
	}
	rep.ID = r.s.nextID()
	rep.CreatedAt = time.Now()
	r.s.reports[rep.ID] = *rep
	return nil
}

func (r memReports) GetByID(_ context.Context, exec repositories.SQLExecutor, id int) (*models.MatchReport, error) {
	defer r.s.lock(exec)()
	rep, ok := r.s.reports[id]
	if !ok {
		return nil, repositories.ErrReportNotFound
	}
	return &rep, nil
}

func (r memReports) FindPendingByMatch(_ context.Context, exec repositories.SQLExecutor, matchID int) (*models.MatchReport, error) {
	defer r.s.lock(exec)()
	for _, rep := range r.s.reports {
		if rep.MatchID == matchID && rep.Status == models.ReportPending {
			return &rep, nil
		}
	}
	return nil, repositories.ErrReportNotFound
}

func (r memReports) Resolve(_ context.Context, exec repositories.SQLExecutor, rep *models.MatchReport) error {
	defer r.s.lock(exec)()
	if _, ok := r.s.reports[rep.ID]; !ok {
		return repositories.ErrReportNotFound
	}
	r.s.reports[rep.ID] = *rep
	return nil
}

func (r memReports) ListByMatch(_ context.Context, exec repositories.SQLExecutor, matchID int) ([]models.MatchReport, error) {
	defer r.s.lock(exec)()
	out := make([]models.MatchReport, 0)
	for _, rep := range r.s.reports {
		if rep.MatchID == matchID {
			out = append(out, rep)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// --- standings ---

type memStandings struct{ s *memStore }

func (r memStandings) EnsureRow(_ context.Context, exec repositories.SQLExecutor, teamID int) error {
	defer r.s.lock(exec)()
	if _, ok := r.s.stats[teamID]; !ok {
		r.s.stats[teamID] = models.TeamStats{TeamID: teamID}
	}
	return nil
}

func (r memStandings) ApplyDelta(_ context.Context, exec repositories.SQLExecutor, teamID int, d models.StatsDelta) error {
	defer r.s.lock(exec)()
	st, ok := r.s.stats[teamID]
	if !ok {
		return repositories.ErrTeamStatsNotFound
	}
	st.Wins += d.Wins
	st.Losses += d.Losses
	st.Draws += d.Draws
	st.Points += d.Points
	if st.Wins < 0 || st.Losses < 0 || st.Draws < 0 || st.Points < 0 {
		return repositories.ErrTeamStatsUnderflow
	}
	r.s.stats[teamID] = st
	return nil
}

func (r memStandings) GetByTeam(_ context.Context, exec repositories.SQLExecutor, teamID int) (*models.TeamStats, error) {
	defer r.s.lock(exec)()
	st, ok := r.s.stats[teamID]
	if !ok {
		return nil, repositories.ErrTeamStatsNotFound
	}
	return &st, nil
}

func (r memStandings) ListAll(_ context.Context, exec repositories.SQLExecutor) ([]models.TeamStats, error) {
	defer r.s.lock(exec)()
	out := make([]models.TeamStats, 0, len(r.s.stats))
	for _, st := range r.s.stats {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

func (r memStandings) Leaderboard(_ context.Context, exec repositories.SQLExecutor, teamIDs []int) ([]models.LeaderboardEntry, error) {
	defer r.s.lock(exec)()
	want := make(map[int]bool, len(teamIDs))
	for _, id := range teamIDs {
		want[id] = true
	}
	out := make([]models.LeaderboardEntry, 0)
	for _, st := range r.s.stats {
		if teamIDs != nil && !want[st.TeamID] {
			continue
		}
		out = append(out, models.LeaderboardEntry{
			TeamID: st.TeamID, TeamName: r.s.teams[st.TeamID].Name,
			Wins: st.Wins, Losses: st.Losses, Draws: st.Draws, Points: st.Points,
		})
	}
	return out, nil
}

// --- team directory ---

type memTeams struct{ s *memStore }

func (r memTeams) GetByID(_ context.Context, exec repositories.SQLExecutor, teamID int) (*models.Team, error) {
	defer r.s.lock(exec)()
	t, ok := r.s.teams[teamID]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return &t, nil
}

func (r memTeams) IsCaptain(_ context.Context, exec repositories.SQLExecutor, userID, teamID int) (bool, error) {
	defer r.s.lock(exec)()
	return r.s.captains[[2]int{userID, teamID}], nil
}

// --- events ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func (p *recordingPublisher) count(eventType string) int {
	n := 0
	for _, t := range p.types() {
		if t == eventType {
			n++
		}
	}
	return n
}

// --- harness ---

var fixedNow = time.Date(2030, time.January, 1, 12, 0, 0, 0, time.UTC)

const adminID = 1

var admin = models.Caller{UserID: adminID, Role: models.RoleAdmin}

func player(id int) models.Caller {
	return models.Caller{UserID: id, Role: models.RolePlayer}
}

type harness struct {
	store     *memStore
	published *recordingPublisher

	registrations RegistrationService
	brackets      BracketService
	matches       MatchService
	standings     StandingsService
	tournaments   TournamentService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithShuffler(t, brackets.IdentityShuffler{})
}

func newHarnessWithShuffler(t *testing.T, shuffler brackets.Shuffler) *harness {
	t.Helper()
	store := newMemStore()
	pub := &recordingPublisher{}
	logger := discardLogger()
	tx := memTransactor{s: store}

	tournaments := memTournaments{s: store}
	registrations := memRegistrations{s: store}
	matches := memMatches{s: store}
	reports := memReports{s: store}
	standingsRepo := memStandings{s: store}
	teams := memTeams{s: store}

	standings := NewStandingsService(standingsRepo, matches, tournaments, registrations, nil, logger)
	regSvc := NewRegistrationService(tx, tournaments, registrations, teams, pub, logger)
	regSvc.(*registrationService).now = func() time.Time { return fixedNow }
	matchSvc := NewMatchService(tx, tournaments, matches, reports, teams, standings, pub, logger)
	matchSvc.(*matchService).now = func() time.Time { return fixedNow }
	tourSvc := NewTournamentService(tx, tournaments, registrations, matches, standings, nil, pub, logger)
	tourSvc.(*tournamentService).now = func() time.Time { return fixedNow }

	return &harness{
		store:         store,
		published:     pub,
		registrations: regSvc,
		brackets:      NewBracketService(tx, tournaments, registrations, matches, brackets.NewSingleEliminationGenerator(shuffler), pub, logger),
		matches:       matchSvc,
		standings:     standings,
		tournaments:   tourSvc,
	}
}

type tournamentOpt func(*models.Tournament)

func withMaxTeams(n int) tournamentOpt {
	return func(t *models.Tournament) { t.MaxTeams = &n }
}

func withStatus(s models.TournamentStatus) tournamentOpt {
	return func(t *models.Tournament) { t.Status = s }
}

func withStart(start time.Time) tournamentOpt {
	return func(t *models.Tournament) { t.StartDate = start }
}

func (h *harness) addTournament(opts ...tournamentOpt) int {
	t := models.Tournament{
		Name:       "Spring Cup",
		DivisionID: 1,
		Format:     models.FormatSingleElimination,
		Status:     models.StatusUpcoming,
		StartDate:  fixedNow.Add(48 * time.Hour),
	}
	for _, opt := range opts {
		opt(&t)
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	t.ID = h.store.nextID()
	h.store.tournaments[t.ID] = t
	return t.ID
}

// addTeam создаёт команду в дивизионе 1; капитан: captainID.
func (h *harness) addTeam(captainID int) int {
	return h.addTeamIn(1, false, captainID)
}

func (h *harness) addTeamIn(division int, banned bool, captainID int) int {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	id := h.store.nextID()
	h.store.teams[id] = models.Team{ID: id, Name: "team", DivisionID: division, Banned: banned}
	if captainID != 0 {
		h.store.captains[[2]int{captainID, id}] = true
	}
	return id
}

func (h *harness) tournament(t *testing.T, id int) models.Tournament {
	t.Helper()
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return h.store.tournaments[id]
}

func (h *harness) match(t *testing.T, id int) models.Match {
	t.Helper()
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	m, ok := h.store.matches[id]
	if !ok {
		t.Fatalf("match %d not found", id)
	}
	return m
}

func (h *harness) stats(teamID int) models.TeamStats {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return h.store.stats[teamID]
}

func (h *harness) registrationStatus(tournamentID, teamID int) models.RegistrationStatus {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	var latest models.Registration
	for _, r := range h.store.registrations {
		if r.TournamentID == tournamentID && r.TeamID == teamID && r.ID > latest.ID {
			latest = r
		}
	}
	return latest.Status
}

// addMatch сеет матч напрямую, минуя генерацию сетки.
func (h *harness) addMatch(tournamentID, teamA int, teamB *int) int {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	m := models.Match{
		ID:           h.store.nextID(),
		TournamentID: tournamentID,
		Round:        1,
		TeamAID:      teamA,
		TeamBID:      teamB,
		Format:       models.MatchFormatBo1,
	}
	if teamB == nil {
		res := models.ResultTeamA
		m.Result = &res
	}
	h.store.matches[m.ID] = m
	return m.ID
}

func intPtr(v int) *int { return &v }

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected error of kind %q, got %v", kind, err)
	}
}

func assertStats(t *testing.T, h *harness, teamID, wins, losses, draws, points int) {
	t.Helper()
	st := h.stats(teamID)
	if st.Wins != wins || st.Losses != losses || st.Draws != draws || st.Points != points {
		t.Fatalf("team %d stats = %+v, want W%d L%d D%d P%d", teamID, st, wins, losses, draws, points)
	}
}

func assertAuditClean(t *testing.T, h *harness) {
	t.Helper()
	discrepancies, err := h.standings.Audit(context.Background(), admin)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if len(discrepancies) != 0 {
		t.Fatalf("standings drifted from decided matches: %+v", discrepancies)
	}
}
