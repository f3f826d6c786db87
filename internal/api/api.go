package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/quickie-study/quickie/internal/auth"
	"github.com/quickie-study/quickie/internal/config"
	"github.com/quickie-study/quickie/internal/docs"
	"github.com/quickie-study/quickie/internal/session"
	"github.com/quickie-study/quickie/internal/storage"
	"github.com/quickie-study/quickie/internal/upstream"
)

type Api struct {
	Config   *config.Config
	Router   *chi.Mux
	upstream *upstream.Client
	pipeline *docs.Pipeline
	archive  *storage.ArchiveClient
}

func NewApi(cfg *config.Config) (*Api, error) {
	api := &Api{
		Config: cfg,
		Router: chi.NewRouter(),
	}

	if cfg.Upstream.BaseURL != "" {
		api.upstream = upstream.New(cfg.Upstream.BaseURL)
	}

	// The pipeline only exists when both third-party keys are configured;
	// the extract route answers a configuration error otherwise.
	if cfg.Convert.Secret != "" && cfg.Vision.APIKey != "" {
		api.pipeline = docs.NewPipeline(
			docs.NewConvertClient(cfg.Convert.Secret),
			docs.NewVisionClient(cfg.Vision.APIKey),
		)
	}

	if cfg.ArchiveEnabled() {
		archive, err := storage.NewArchiveClient(
			cfg.Archive.Endpoint,
			cfg.Archive.Region,
			cfg.Archive.Bucket,
			cfg.Archive.AccessKeyID,
			cfg.Archive.SecretAccessKey,
		)
		if err != nil {
			log.Printf("Warning: extraction archive disabled: %v", err)
		} else {
			api.archive = archive
		}
	}

	api.setupRoutes()
	return api, nil
}

func (api *Api) setupRoutes() {
	r := api.Router

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   api.Config.CORS.Origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Heartbeat("/heartbeat"))

	// Page navigation goes through the session gate; /api paths classify as
	// public there and are guarded per-route by the access cookie instead.
	r.Use(session.Gate())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", api.RegisterHandler)
			r.Post("/login", api.LoginHandler)
			r.Post("/refresh", api.RefreshHandler)
			r.Post("/logout", api.LogoutHandler)
			r.Post("/activate", api.ActivateHandler)
			r.Post("/forgot-password", api.ForgotPasswordHandler)
			r.Post("/reset-password", api.ResetPasswordHandler)
			r.Delete("/delete-account", api.DeleteAccountHandler)
			r.Get("/me", api.CurrentUserHandler)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", api.ListNotesHandler)
			r.Post("/", api.CreateNoteHandler)
			r.Get("/{id}", api.NoteDetailHandler)
			r.Put("/{id}", api.UpdateNoteHandler)
			r.Delete("/{id}", api.DeleteNoteHandler)
		})

		r.Route("/flashcards", func(r chi.Router) {
			r.Get("/sets", api.ListFlashcardSetsHandler)
			r.Post("/sets", api.CreateFlashcardSetHandler)
			r.Get("/sets/{id}", api.FlashcardSetDetailHandler)
			r.Delete("/sets/{id}", api.DeleteFlashcardSetHandler)
			r.Get("/sets/{id}/cards", api.ListFlashcardsHandler)
			r.Get("/check/{noteID}", api.CheckFlashcardSetHandler)
		})

		r.Get("/questions", api.ListQuestionsHandler)

		r.Get("/answers/check/{noteID}", api.CheckAnswersHandler)

		r.Route("/quiz", func(r chi.Router) {
			r.Post("/", api.CreateQuizHandler)
			r.Post("/submit", api.SubmitQuizHandler)
			r.Get("/check/{noteID}", api.CheckQuizHandler)
			r.Get("/review/{noteID}", api.QuizReviewHandler)
			r.Get("/{id}", api.QuizDetailHandler)
		})

		r.Route("/pomodoro", func(r chi.Router) {
			r.Get("/settings", api.PomodoroSettingsHandler)
			r.Patch("/settings", api.UpdatePomodoroSettingsHandler)
		})

		r.Get("/achievements", api.ListAchievementsHandler)

		r.Post("/documents/extract", api.ExtractDocumentHandler)

		r.Get("/share/qr", api.ShareQRHandler)
	})
}

func (api *Api) Serve() {
	log.Printf("Starting Quickie BFF on 0.0.0.0:%d", api.Config.APIPort)
	log.Fatal(http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", api.Config.APIPort), api.Router))
}

func (api *Api) cookieSettings() auth.CookieSettings {
	return auth.CookieSettings{
		Domain: api.Config.Cookies.Domain,
		Secure: api.Config.Cookies.Secure,
	}
}

// requireUpstream answers the deterministic configuration-error response when
// the upstream base URL is missing, instead of letting a nil client panic.
func (api *Api) requireUpstream(w http.ResponseWriter) bool {
	if err := api.Config.RequireUpstream(); err != nil {
		log.Printf("Error: %v", err)
		writeMessage(w, http.StatusInternalServerError, configErrorMessage)
		return false
	}
	return true
}

// requireAccess is the first check in every protected route: no access
// cookie, no upstream call.
func (api *Api) requireAccess(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := auth.AccessToken(r)
	if token == "" {
		writeMessage(w, http.StatusUnauthorized, authRequiredError)
		return "", false
	}
	return token, true
}
