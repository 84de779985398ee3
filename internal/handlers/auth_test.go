package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/ukydev/car-rental/internal/auth"
	"github.com/ukydev/car-rental/internal/db"
	"github.com/ukydev/car-rental/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAuthHandler_Register(t *testing.T) {
	authService, err := auth.NewService()
	if err != nil {
		t.Fatalf("Failed to create auth service: %v", err)
	}

	t.Run("successful registration", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		handler := NewAuthHandler(authService, db.UserCollection(mockUsers))

		mockUsers.On("FindUserByEmail", mock.Anything, "alice@example.com").Return(nil, db.ErrNotFound)
		mockUsers.On("InsertUser", mock.Anything, mock.AnythingOfType("models.User")).Return(primitive.NewObjectID(), nil)

		body, _ := json.Marshal(models.RegisterRequest{
			Name:     "Alice",
			Email:    "Alice@Example.com",
			Password: "password123",
			Phone:    "555-0100",
		})
		req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response struct {
			Message string      `json:"message"`
			User    models.User `json:"user"`
		}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "User registered successfully", response.Message)
		assert.Equal(t, "alice@example.com", response.User.Email)
		assert.Equal(t, models.RoleUser, response.User.Role)

		// the password hash is never serialized
		assert.NotContains(t, w.Body.String(), "password")

		mockUsers.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		handler := NewAuthHandler(authService, db.UserCollection(mockUsers))

		existing := &models.User{ID: primitive.NewObjectID(), Email: "alice@example.com"}
		mockUsers.On("FindUserByEmail", mock.Anything, "alice@example.com").Return(existing, nil)

		body, _ := json.Marshal(models.RegisterRequest{
			Name:     "Alice",
			Email:    "alice@example.com",
			Password: "password123",
		})
		req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		mockUsers.AssertExpectations(t)
	})

	t.Run("validation errors are batched", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		handler := NewAuthHandler(authService, db.UserCollection(mockUsers))

		body, _ := json.Marshal(models.RegisterRequest{
			Name:     "A",
			Email:    "not-an-email",
			Password: "short",
		})
		req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response struct {
			Message string   `json:"message"`
			Errors  []string `json:"errors"`
		}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Validation failed", response.Message)
		assert.Len(t, response.Errors, 3)

		mockUsers.AssertNotCalled(t, "InsertUser", mock.Anything, mock.Anything)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		handler := NewAuthHandler(authService, db.UserCollection(mockUsers))

		req := httptest.NewRequest("POST", "/api/auth/register",
			bytes.NewBufferString(`{"name":"Alice","email":"a@b.co","password":"password123","role":"admin"}`))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	authService, err := auth.NewService()
	if err != nil {
		t.Fatalf("Failed to create auth service: %v", err)
	}

	t.Run("successful login", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		handler := NewAuthHandler(authService, db.UserCollection(mockUsers))

		passwordHash, err := authService.HashPassword("password123")
		if err != nil {
			t.Fatalf("Failed to hash password: %v", err)
		}
		user := &models.User{
			ID:           primitive.NewObjectID(),
			Name:         "Alice",
			Email:        "alice@example.com",
			PasswordHash: passwordHash,
			Role:         models.RoleUser,
		}
		mockUsers.On("FindUserByEmail", mock.Anything, "alice@example.com").Return(user, nil)

		body, _ := json.Marshal(models.LoginRequest{Email: "alice@example.com", Password: "password123"})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response models.LoginResponse
		err = json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.NotEmpty(t, response.Token)
		assert.Equal(t, user.Email, response.User.Email)

		claims, err := authService.ValidateToken(response.Token)
		assert.NoError(t, err)
		assert.Equal(t, user.ID.Hex(), claims.UserID)

		mockUsers.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		handler := NewAuthHandler(authService, db.UserCollection(mockUsers))

		passwordHash, _ := authService.HashPassword("password123")
		user := &models.User{ID: primitive.NewObjectID(), Email: "alice@example.com", PasswordHash: passwordHash}
		mockUsers.On("FindUserByEmail", mock.Anything, "alice@example.com").Return(user, nil)

		body, _ := json.Marshal(models.LoginRequest{Email: "alice@example.com", Password: "wrongpassword"})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		handler := NewAuthHandler(authService, db.UserCollection(mockUsers))

		mockUsers.On("FindUserByEmail", mock.Anything, "ghost@example.com").Return(nil, db.ErrNotFound)

		body, _ := json.Marshal(models.LoginRequest{Email: "ghost@example.com", Password: "password123"})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing credentials", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		handler := NewAuthHandler(authService, db.UserCollection(mockUsers))

		body, _ := json.Marshal(models.LoginRequest{Email: "alice@example.com"})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
