package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/tournament-engine/middleware"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/services"
	"github.com/go-chi/chi/v5"
)

type stubRegistrationService struct {
	err        error
	gotTeamID  int
	gotCaller  models.Caller
	withdrawn  bool
	listStatus *models.RegistrationStatus
}

func (s *stubRegistrationService) Register(_ context.Context, tournamentID, teamID int, caller models.Caller) (*models.Registration, error) {
	s.gotTeamID, s.gotCaller = teamID, caller
	if s.err != nil {
		return nil, s.err
	}
	return &models.Registration{ID: 1, TournamentID: tournamentID, TeamID: teamID, Status: models.RegistrationRegistered}, nil
}

func (s *stubRegistrationService) Withdraw(context.Context, int, int, models.Caller) error {
	s.withdrawn = true
	return s.err
}

func (s *stubRegistrationService) ListRegistrations(_ context.Context, _ int, status *models.RegistrationStatus) ([]models.Registration, error) {
	s.listStatus = status
	return []models.Registration{}, s.err
}

type stubMatchService struct {
	services.MatchService // не реализованные методы паникуют

	err       error
	gotScores [2]int
	overrideA *int
	overrideB *int
}

func (s *stubMatchService) SubmitReport(_ context.Context, matchID int, caller models.Caller, a, b int) (*models.MatchReport, error) {
	s.gotScores = [2]int{a, b}
	if s.err != nil {
		return nil, s.err
	}
	return &models.MatchReport{ID: 9, MatchID: matchID, ReporterID: caller.UserID, ScoreA: a, ScoreB: b, Status: models.ReportPending}, nil
}

func (s *stubMatchService) FinalizeReport(_ context.Context, reportID int, _ models.Caller, a, b *int) (*models.MatchReport, error) {
	s.overrideA, s.overrideB = a, b
	if s.err != nil {
		return nil, s.err
	}
	return &models.MatchReport{ID: reportID, Status: models.ReportFinalized}, nil
}

func (s *stubMatchService) ConfirmReport(_ context.Context, reportID int, _ models.Caller) (*models.MatchReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.MatchReport{ID: reportID, Status: models.ReportConfirmed}, nil
}

// withCaller подставляет вызывающего так же, как это делает middleware.Authenticate.
func withCaller(caller *models.Caller) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if caller != nil {
				r = r.WithContext(middleware.WithCaller(r.Context(), *caller))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newTestRouter(caller *models.Caller, rs services.RegistrationService, ms services.MatchService) http.Handler {
	r := chi.NewRouter()
	r.Use(withCaller(caller))
	rh := NewRegistrationHandler(rs)
	mh := NewMatchHandler(ms)
	r.Get("/tournaments/{tournamentID}/registrations", rh.ListRegistrations)
	r.Post("/tournaments/{tournamentID}/registrations", rh.RegisterTeam)
	r.Delete("/tournaments/{tournamentID}/registrations/{teamID}", rh.Withdraw)
	r.Post("/matches/{matchID}/reports", mh.SubmitReport)
	r.Post("/reports/{reportID}/confirm", mh.ConfirmReport)
	r.Post("/reports/{reportID}/finalize", mh.FinalizeReport)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantKind   string
	}{
		{err: services.ErrTournamentNotFound, wantStatus: http.StatusNotFound, wantKind: kindNotFound},
		{err: services.ErrCaptainRequired, wantStatus: http.StatusForbidden, wantKind: kindForbidden},
		{err: services.ErrPendingReportExists, wantStatus: http.StatusConflict, wantKind: kindConflict},
		{err: services.ErrRegistrationClosed, wantStatus: http.StatusUnprocessableEntity, wantKind: kindInvalidState},
		{err: services.ErrNegativeScore, wantStatus: http.StatusBadRequest, wantKind: kindValidationError},
		{err: fmt.Errorf("wrapped: %w", services.ErrReportAlreadyFinalized), wantStatus: http.StatusConflict, wantKind: kindConflict},
		{err: errors.New("connection reset"), wantStatus: http.StatusInternalServerError, wantKind: kindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := decodeBody(t, rec)
			if body["kind"] != tt.wantKind {
				t.Fatalf("kind = %v, want %s", body["kind"], tt.wantKind)
			}
			if tt.wantStatus == http.StatusInternalServerError && strings.Contains(rec.Body.String(), "connection reset") {
				t.Fatalf("internal error details leaked to client")
			}
		})
	}
}

func TestRegisterTeamHandler(t *testing.T) {
	caller := &models.Caller{UserID: 5, Role: models.RolePlayer}

	t.Run("created", func(t *testing.T) {
		svc := &stubRegistrationService{}
		rec := doRequest(t, newTestRouter(caller, svc, &stubMatchService{}), http.MethodPost, "/tournaments/3/registrations", `{"team_id": 12}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if svc.gotTeamID != 12 || svc.gotCaller != *caller {
			t.Fatalf("service got team %d caller %+v", svc.gotTeamID, svc.gotCaller)
		}
		if _, ok := decodeBody(t, rec)["registration"]; !ok {
			t.Fatalf("response lacks registration envelope: %s", rec.Body.String())
		}
	})

	t.Run("missing team id", func(t *testing.T) {
		rec := doRequest(t, newTestRouter(caller, &stubRegistrationService{}, &stubMatchService{}), http.MethodPost, "/tournaments/3/registrations", `{}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
		fields, ok := decodeBody(t, rec)["error"].(map[string]interface{})
		if !ok || fields["team_id"] == nil {
			t.Fatalf("expected field error for team_id, got %s", rec.Body.String())
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := doRequest(t, newTestRouter(caller, &stubRegistrationService{}, &stubMatchService{}), http.MethodPost, "/tournaments/3/registrations", `{"team_id": 1, "extra": true}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("bad tournament id", func(t *testing.T) {
		rec := doRequest(t, newTestRouter(caller, &stubRegistrationService{}, &stubMatchService{}), http.MethodPost, "/tournaments/abc/registrations", `{"team_id": 1}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		rec := doRequest(t, newTestRouter(nil, &stubRegistrationService{}, &stubMatchService{}), http.MethodPost, "/tournaments/3/registrations", `{"team_id": 1}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("service conflict", func(t *testing.T) {
		svc := &stubRegistrationService{err: services.ErrAlreadyRegistered}
		rec := doRequest(t, newTestRouter(caller, svc, &stubMatchService{}), http.MethodPost, "/tournaments/3/registrations", `{"team_id": 1}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})
}

func TestWithdrawHandler(t *testing.T) {
	caller := &models.Caller{UserID: 5, Role: models.RolePlayer}
	svc := &stubRegistrationService{}
	rec := doRequest(t, newTestRouter(caller, svc, &stubMatchService{}), http.MethodDelete, "/tournaments/3/registrations/4", "")
	if rec.Code != http.StatusNoContent || !svc.withdrawn {
		t.Fatalf("status = %d, withdrawn = %v", rec.Code, svc.withdrawn)
	}
}

func TestListRegistrationsStatusFilter(t *testing.T) {
	svc := &stubRegistrationService{}
	router := newTestRouter(nil, svc, &stubMatchService{})

	rec := doRequest(t, router, http.MethodGet, "/tournaments/3/registrations?status=waitlisted", "")
	if rec.Code != http.StatusOK || svc.listStatus == nil || *svc.listStatus != models.RegistrationWaitlisted {
		t.Fatalf("status = %d, filter = %v", rec.Code, svc.listStatus)
	}
	rec = doRequest(t, router, http.MethodGet, "/tournaments/3/registrations?status=banned", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSubmitReportHandler(t *testing.T) {
	caller := &models.Caller{UserID: 5, Role: models.RolePlayer}

	t.Run("zero scores are valid", func(t *testing.T) {
		svc := &stubMatchService{}
		rec := doRequest(t, newTestRouter(caller, &stubRegistrationService{}, svc), http.MethodPost, "/matches/7/reports", `{"score_a": 0, "score_b": 0}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if svc.gotScores != [2]int{0, 0} {
			t.Fatalf("scores = %v", svc.gotScores)
		}
	})

	t.Run("missing score", func(t *testing.T) {
		rec := doRequest(t, newTestRouter(caller, &stubRegistrationService{}, &stubMatchService{}), http.MethodPost, "/matches/7/reports", `{"score_a": 1}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
	})

	t.Run("negative score rejected by service", func(t *testing.T) {
		svc := &stubMatchService{err: services.ErrNegativeScore}
		rec := doRequest(t, newTestRouter(caller, &stubRegistrationService{}, svc), http.MethodPost, "/matches/7/reports", `{"score_a": -1, "score_b": 2}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestFinalizeReportHandler(t *testing.T) {
	admin := &models.Caller{UserID: 1, Role: models.RoleAdmin}

	t.Run("without body", func(t *testing.T) {
		svc := &stubMatchService{}
		rec := doRequest(t, newTestRouter(admin, &stubRegistrationService{}, svc), http.MethodPost, "/reports/4/finalize", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if svc.overrideA != nil || svc.overrideB != nil {
			t.Fatalf("unexpected overrides")
		}
	})

	t.Run("chunked empty body", func(t *testing.T) {
		svc := &stubMatchService{}
		req := httptest.NewRequest(http.MethodPost, "/reports/4/finalize", nil)
		req.Body = io.NopCloser(strings.NewReader(""))
		req.ContentLength = -1
		req.TransferEncoding = []string{"chunked"}
		rec := httptest.NewRecorder()
		newTestRouter(admin, &stubRegistrationService{}, svc).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if svc.overrideA != nil || svc.overrideB != nil {
			t.Fatalf("unexpected overrides")
		}
	})

	t.Run("chunked body with override", func(t *testing.T) {
		svc := &stubMatchService{}
		req := httptest.NewRequest(http.MethodPost, "/reports/4/finalize", nil)
		req.Body = io.NopCloser(strings.NewReader(`{"override_score_a": 2}`))
		req.ContentLength = -1
		req.TransferEncoding = []string{"chunked"}
		rec := httptest.NewRecorder()
		newTestRouter(admin, &stubRegistrationService{}, svc).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if svc.overrideA == nil || *svc.overrideA != 2 || svc.overrideB != nil {
			t.Fatalf("overrides = %v, %v", svc.overrideA, svc.overrideB)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := doRequest(t, newTestRouter(admin, &stubRegistrationService{}, &stubMatchService{}), http.MethodPost, "/reports/4/finalize", `{"override_score_a":`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("with partial override", func(t *testing.T) {
		svc := &stubMatchService{}
		rec := doRequest(t, newTestRouter(admin, &stubRegistrationService{}, svc), http.MethodPost, "/reports/4/finalize", `{"override_score_b": 3}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if svc.overrideA != nil || svc.overrideB == nil || *svc.overrideB != 3 {
			t.Fatalf("overrides = %v, %v", svc.overrideA, svc.overrideB)
		}
	})

	t.Run("already finalized", func(t *testing.T) {
		svc := &stubMatchService{err: services.ErrReportAlreadyFinalized}
		rec := doRequest(t, newTestRouter(admin, &stubRegistrationService{}, svc), http.MethodPost, "/reports/4/finalize", "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})
}

func TestConfirmReportHandlerMapsForbidden(t *testing.T) {
	caller := &models.Caller{UserID: 5, Role: models.RolePlayer}
	svc := &stubMatchService{err: services.ErrOppositeCaptainRequired}
	rec := doRequest(t, newTestRouter(caller, &stubRegistrationService{}, svc), http.MethodPost, "/reports/4/confirm", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
