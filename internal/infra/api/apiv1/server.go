package apiv1

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"telegram-upi-lookup/internal/application"
	"telegram-upi-lookup/internal/domain"
	"telegram-upi-lookup/internal/domain/ports/adapter"
	"telegram-upi-lookup/internal/infra/logging"
	"telegram-upi-lookup/internal/usecase"
)

// Server is the token-protected admin API for the allow-list and lookup history.
type Server struct {
	access   usecase.AccessUseCase
	history  usecase.HistoryUseCase
	auth     *AuthManager
	apiKey   string
	notifier adapter.TelegramBotAdapter
	t        application.Translator
	log      *zerolog.Logger
}

// NewServer accepts a nil notifier, in which case granted users are not messaged.
func NewServer(
	access usecase.AccessUseCase,
	history usecase.HistoryUseCase,
	auth *AuthManager,
	apiKey string,
	notifier adapter.TelegramBotAdapter,
	t application.Translator,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "AdminAPI").Logger()
	return &Server{
		access:   access,
		history:  history,
		auth:     auth,
		apiKey:   apiKey,
		notifier: notifier,
		t:        t,
		log:      &l,
	}
}

// Mount registers the /api/v1 routes on r.
func (s *Server) Mount(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)
			r.Get("/users", s.handleListUsers)
			r.Post("/users", s.handleAddUser)
			r.Delete("/users/{id}", s.handleRemoveUser)
			r.Get("/lookups", s.handleListLookups)
		})
	})
}

// requireToken accepts a bearer JWT or the session cookie minted by /login.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			if !errors.Is(err, domain.ErrUnauthorized) {
				logging.With(r.Context(), s.log).Error().Err(err).Msg("check admin token")
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			logging.With(r.Context(), s.log).Debug().Err(err).Msg("admin token rejected")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) validKey(key string) bool {
	if s.apiKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) == 1
}
