package handlers

import (
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/car-rental/internal/auth"
	"github.com/ukydev/car-rental/internal/db"
	"github.com/ukydev/car-rental/internal/models"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	authService *auth.Service
	users       db.UserCollection
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, users db.UserCollection) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		users:       users,
	}
}

// Register handles user registration. Validation failures are batched so the
// caller sees every problem at once.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeStrict(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var errs []string
	if err := h.authService.ValidateName(req.Name); err != nil {
		errs = append(errs, err.Error())
	}
	if err := h.authService.ValidateEmail(req.Email); err != nil {
		errs = append(errs, err.Error())
	}
	if err := h.authService.ValidatePassword(req.Password); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		writeErrors(w, http.StatusBadRequest, "Validation failed", errs)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := h.users.FindUserByEmail(r.Context(), email); err == nil {
		writeMessage(w, http.StatusConflict, "Email address is already registered")
		return
	} else if !errors.Is(err, db.ErrNotFound) {
		log.WithError(err).Error("Failed to check existing email")
		writeMessage(w, http.StatusInternalServerError, "Error registering user")
		return
	}

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	// Role is fixed at creation; there is no promotion flow.
	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
		Phone:        strings.TrimSpace(req.Phone),
	}

	id, err := h.users.InsertUser(r.Context(), user)
	if err != nil {
		log.WithError(err).Error("Failed to create user")
		writeMessage(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	user.ID = id

	log.WithFields(log.Fields{"user_id": id.Hex(), "email": email}).Info("User registered")
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"user":    user,
	})
}

// Login verifies credentials and issues a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeStrict(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.FindUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if !h.authService.CheckPassword(req.Password, user.PasswordHash) {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		log.WithError(err).Error("Failed to generate token")
		writeMessage(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	log.WithField("user_id", user.ID.Hex()).Info("User logged in")
	writeJSON(w, http.StatusOK, models.LoginResponse{
		Message: "Login successful",
		Token:   token,
		User:    *user,
	})
}
