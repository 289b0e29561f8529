package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/tlin/geoscore/internal/comp"
	"github.com/tlin/geoscore/internal/httputil"
	"github.com/tlin/geoscore/internal/middleware"
	"github.com/tlin/geoscore/internal/realtime"
	"github.com/tlin/geoscore/internal/service"
	"github.com/tlin/geoscore/internal/store"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/markbates/goth/gothic"
)

func newRouter(database *sqlx.DB, sessionManager *scs.SessionManager, hub *realtime.Hub) http.Handler {
	competitionStore := store.NewCompetitionStore(database)
	userStore := store.NewUserStore(database)

	competitionService := service.NewCompetitionService(database, competitionStore)
	roundService := service.NewRoundService(database, competitionStore)
	scoreService := service.NewScoreService(competitionStore, hub)
	userService := service.NewUserService(database, userStore)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(sessionManager.LoadAndSave)

	r.Get("/ws", realtime.ServeWS(hub))

	r.Post("/api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := httputil.DecodeJSON(r, &body); err != nil {
			httputil.BadRequest(w, "Invalid JSON body", err)
			return
		}
		if body.Username == "" || body.Password == "" {
			httputil.BadRequest(w, "Username and password are required", nil)
			return
		}

		user, err := userService.SignupWithPassword(r.Context(), body.Username, body.Password)
		if err != nil {
			if errors.Is(err, service.ErrUsernameTaken) {
				httputil.BadRequest(w, "Username already exists", nil)
				return
			}
			httputil.InternalServerError(w, "Failed to create user", err)
			return
		}

		sessionManager.Put(r.Context(), "userID", user.ID.String())
		httputil.WriteJSON(w, http.StatusCreated, user)
	})

	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := httputil.DecodeJSON(r, &body); err != nil {
			httputil.BadRequest(w, "Invalid JSON body", err)
			return
		}

		user, err := userService.AuthenticateWithPassword(r.Context(), body.Username, body.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				httputil.Unauthorized(w, "Invalid username or password")
				return
			}
			httputil.InternalServerError(w, "Failed to log in", err)
			return
		}

		sessionManager.Put(r.Context(), "userID", user.ID.String())
		httputil.WriteJSON(w, http.StatusOK, user)
	})

	r.Post("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		sessionManager.Destroy(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

		gothic.BeginAuthHandler(w, r)
	})

	r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

		gothUser, err := gothic.CompleteUserAuth(w, r)
		if err != nil {
			httputil.BadRequest(w, "Authentication failure", err)
			return
		}

		user, err := userService.FindOrCreateUserByProvider(r.Context(), gothUser)
		if err != nil {
			httputil.InternalServerError(w, "Failed to find or create user", err)
			return
		}

		sessionManager.Put(r.Context(), "userID", user.ID.String())
		http.Redirect(w, r, "/", http.StatusFound)
	})

	r.Get("/api/competitions", func(w http.ResponseWriter, r *http.Request) {
		competitions, err := competitionService.ListCompetitions(r.Context())
		if err != nil {
			httputil.InternalServerError(w, "Failed to list competitions", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, competitions)
	})

	r.Get("/api/competitions/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		data, err := competitionService.GetCompetitionData(r.Context(), id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				httputil.NotFound(w, "Competition not found", err)
				return
			}
			httputil.InternalServerError(w, "Failed to get competition", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, data)
	})

	r.Get("/api/rounds/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		data, err := roundService.GetRoundData(r.Context(), id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				httputil.NotFound(w, "Round not found", err)
				return
			}
			httputil.InternalServerError(w, "Failed to get round", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, data)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(sessionManager, userStore))

		r.Get("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
			user := middleware.GetAuthenticatedUser(r.Context())
			if user == nil {
				httputil.NotFound(w, "User not found", nil)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, user)
		})

		r.Post("/api/competitions", func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Name        string   `json:"name"`
				PlayerNames []string `json:"playerNames"`
			}
			if err := httputil.DecodeJSON(r, &body); err != nil {
				httputil.BadRequest(w, "Invalid JSON body", err)
				return
			}
			if body.Name == "" || len(body.PlayerNames) == 0 {
				httputil.BadRequest(w, "Name and playerNames are required", nil)
				return
			}

			competition, err := competitionService.CreateCompetition(r.Context(), body.Name, body.PlayerNames)
			if err != nil {
				httputil.InternalServerError(w, "Failed to create competition", err)
				return
			}
			httputil.WriteJSON(w, http.StatusCreated, competition)
		})

		r.Patch("/api/competitions/{id}", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")

			var body struct {
				Status comp.CompetitionStatus `json:"status"`
			}
			if err := httputil.DecodeJSON(r, &body); err != nil {
				httputil.BadRequest(w, "Invalid JSON body", err)
				return
			}
			if body.Status != comp.CompetitionActive && body.Status != comp.CompetitionCompleted {
				httputil.BadRequest(w, "Invalid status", nil)
				return
			}

			competition, err := competitionService.UpdateStatus(r.Context(), id, body.Status)
			if err != nil {
				writeCompetitionError(w, "Failed to update competition", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, competition)
		})

		r.Delete("/api/competitions/{id}", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")

			if err := competitionService.DeleteCompetition(r.Context(), id); err != nil {
				writeCompetitionError(w, "Failed to delete competition", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Post("/api/rounds", func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				CompetitionID uuid.UUID `json:"competitionId"`
				service.RoundInput
			}
			if err := httputil.DecodeJSON(r, &body); err != nil {
				httputil.BadRequest(w, "Invalid JSON body", err)
				return
			}
			if body.CompetitionID == uuid.Nil || body.RoundNumber == 0 || body.MapName == "" {
				httputil.BadRequest(w, "Missing fields", nil)
				return
			}
			if !comp.ValidMapType(body.MapType) {
				httputil.BadRequest(w, "Invalid map type", nil)
				return
			}

			round, err := roundService.CreateRound(r.Context(), body.CompetitionID, body.RoundInput)
			if err != nil {
				writeCompetitionError(w, "Failed to create round", err)
				return
			}
			httputil.WriteJSON(w, http.StatusCreated, round)
		})

		r.Put("/api/rounds/{id}", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")

			var body service.RoundInput
			if err := httputil.DecodeJSON(r, &body); err != nil {
				httputil.BadRequest(w, "Invalid JSON body", err)
				return
			}
			if body.MapName == "" || !comp.ValidMapType(body.MapType) || body.GameCount < 1 {
				httputil.BadRequest(w, "Missing fields", nil)
				return
			}

			round, err := roundService.UpdateRound(r.Context(), id, body)
			if err != nil {
				writeCompetitionError(w, "Failed to update round", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, round)
		})

		r.Post("/api/scores", func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				RoundID uuid.UUID            `json:"roundId"`
				Scores  []service.ScoreInput `json:"scores"`
			}
			if err := httputil.DecodeJSON(r, &body); err != nil {
				httputil.BadRequest(w, "Invalid JSON body", err)
				return
			}
			if body.RoundID == uuid.Nil || len(body.Scores) == 0 {
				httputil.BadRequest(w, "roundId and scores are required", nil)
				return
			}

			results, err := scoreService.SubmitScores(r.Context(), body.RoundID, body.Scores)
			if err != nil {
				if errors.Is(err, service.ErrRoundNotFound) {
					httputil.NotFound(w, "Round not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to submit scores", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, results)
		})
	})

	return r
}

// writeCompetitionError maps service errors from creator-gated operations
// onto HTTP statuses.
func writeCompetitionError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		httputil.NotFound(w, "Not found", err)
	case errors.Is(err, service.ErrForbidden):
		httputil.Forbidden(w, err.Error())
	case errors.Is(err, service.ErrCompetitionNotActive):
		httputil.BadRequest(w, err.Error(), nil)
	default:
		httputil.InternalServerError(w, msg, err)
	}
}
