package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"tendermarket/db"
	"tendermarket/internal/apperr"
	"tendermarket/internal/auth"
	"tendermarket/models"
)

// TokenIssuer signs access tokens for the login endpoint.
type TokenIssuer interface {
	GenerateToken(userID int, role string) (string, error)
}

// WithTokens wires the token service into the handler. Must be called
// before the login route is served.
func (h *Handler) WithTokens(issuer TokenIssuer) *Handler {
	h.tokens = issuer
	return h
}

// RegisterHandler handles POST /users/register.
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, apperr.BadRequest("Failed to read request body"))
		return
	}
	defer r.Body.Close()

	var req models.RegisterRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, apperr.BadRequest("Invalid JSON format"))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.writeError(w, apperr.BadRequest(err.Error()))
		return
	}
	if req.Role == "" {
		req.Role = "jmb"
	}

	_, err = h.Store.GetUserByEmail(r.Context(), req.Email)
	if err == nil {
		h.writeError(w, apperr.Conflict("Email already registered"))
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		h.writeError(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	user := &db.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     req.Role,
	}
	if err := h.Store.CreateUser(r.Context(), user); err != nil {
		h.writeError(w, err)
		return
	}

	h.Log.Info("user registered", zap.Int("user_id", user.ID), zap.String("role", user.Role))
	h.writeJSON(w, http.StatusOK, user)
}

// UpdateRegistrationHandler handles POST /users/register/update: it stores
// the activation remark and flips status from pending to activated.
func (h *Handler) UpdateRegistrationHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, apperr.BadRequest("Failed to read request body"))
		return
	}
	defer r.Body.Close()

	var req models.RegisterUpdateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, apperr.BadRequest("Invalid JSON format"))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.writeError(w, apperr.BadRequest(err.Error()))
		return
	}

	user, err := h.Store.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, sql.ErrNoRows) {
		h.writeError(w, apperr.NotFound("User not found"))
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	if user.Status != 0 {
		h.writeError(w, apperr.BadRequest("User already registered or invalid status"))
		return
	}

	remark, err := normalizeRemark(req.Remark)
	if err != nil {
		h.writeError(w, apperr.BadRequest("Invalid remark"))
		return
	}

	user.Remark = &remark
	user.Status = 1
	if err := h.Store.UpdateUserRegistration(r.Context(), user); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, user)
}

// normalizeRemark collapses the remark's two shapes into one stored text
// representation: a JSON string becomes its unquoted value, anything else
// is kept as compact JSON. A literal null is rejected rather than stored
// as an empty remark.
func normalizeRemark(raw json.RawMessage) (string, error) {
	if string(bytes.TrimSpace(raw)) == "null" {
		return "", errors.New("remark is null")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// LoginHandler handles POST /users/login. The body is form-encoded with
// username (the email) and password.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, apperr.BadRequest("Invalid form data"))
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		h.writeError(w, apperr.BadRequest("username and password are required"))
		return
	}

	user, err := h.Store.GetUserByEmail(r.Context(), email)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !auth.CheckPassword(password, user.Password)) {
		h.writeError(w, apperr.Unauthorized("Invalid email or password"))
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, models.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User: models.LoginUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		},
	})
}

// MeHandler handles GET /users/me.
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.principal(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

// ListUsersHandler handles GET /users/. The response is always the
// {"users": [...]} envelope, empty list included.
func (h *Handler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.GetUsers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.Log.Debug("listed users", zap.Int("count", len(users)))
	h.writeJSON(w, http.StatusOK, map[string][]db.User{"users": users})
}
