package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"tendermarket/db"
	"tendermarket/internal/apperr"
	"tendermarket/internal/auth"
)

// Handler wraps the storage and the request validator.
type Handler struct {
	Store    StorageInterface
	Log      *zap.Logger
	tokens   TokenIssuer
	validate *validator.Validate
}

func NewHandler(store StorageInterface, log *zap.Logger) *Handler {
	return &Handler{
		Store:    store,
		Log:      log,
		validate: validator.New(),
	}
}

// Routes assembles the resource groups. Login, registration and the user
// listing are public; everything else goes through the auth guard.
func (h *Handler) Routes(mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Get("/ping", h.PingHandler)

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", h.RegisterHandler)
		r.Post("/register/update", h.UpdateRegistrationHandler)
		r.Post("/login", h.LoginHandler)
		r.Get("/", h.ListUsersHandler)
		r.With(mw.RequireAuth).Get("/me", h.MeHandler)
	})

	r.Route("/tenders", func(r chi.Router) {
		r.Use(mw.RequireAuth)
		r.Post("/create", h.CreateTenderHandler)
		r.Get("/", h.GetTendersHandler)
		r.Get("/{tenderId}", h.GetTenderHandler)
	})

	r.Route("/bids", func(r chi.Router) {
		r.Use(mw.RequireAuth)
		r.Post("/", h.CreateBidHandler)
		r.Get("/tender/{tenderId}", h.GetBidsForTenderHandler)
		r.Get("/my-bids", h.GetUserBidsHandler)
		r.Put("/{bidId}/status", h.UpdateBidStatusHandler)
		r.Get("/{bidId}", h.GetBidHandler)
	})

	return r
}

// PingHandler answers "ok" for liveness checks.
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.Error("failed to encode response", zap.Error(err))
	}
}

// writeError serializes every failure into the single {"error": msg}
// envelope. Unclassified errors become a logged 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if appErr, ok := apperr.From(err); ok {
		h.writeJSON(w, appErr.Status, map[string]string{"error": appErr.Message})
		return
	}
	h.Log.Error("internal error", zap.Error(err))
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// principal returns the authenticated user placed on the context by the
// auth middleware.
func (h *Handler) principal(r *http.Request) (*db.User, error) {
	u, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		return nil, apperr.Unauthorized("Could not validate credentials")
	}
	return u, nil
}
