package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"portfolio-tracker/apperr"
	"portfolio-tracker/models"
)

type stubUsers struct {
	users map[string]*models.User
}

func newStubUsers() *stubUsers {
	return &stubUsers{users: make(map[string]*models.User)}
}

func (s *stubUsers) Create(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	if _, ok := s.users[email]; ok {
		return nil, apperr.Validation("email already registered")
	}
	user := &models.User{Username: username, Email: email, Password: passwordHash}
	user.ID = uint(len(s.users) + 1)
	s.users[email] = user
	return user, nil
}

func (s *stubUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, apperr.NotFound("no user with that email")
	}
	return user, nil
}

type stubTokens struct {
	saved map[string]uint
}

func (s *stubTokens) Save(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	if s.saved == nil {
		s.saved = make(map[string]uint)
	}
	s.saved[token] = userID
	return nil
}

func newAuthRouter(users *stubUsers, tokens *stubTokens) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := zerolog.Nop()
	return NewRouter(
		NewAuthHandler(users, tokens, testSecret, log),
		NewPortfolioHandler(&stubHoldings{}, &stubValuer{}, log),
		NewStocksHandler(&stubSearcher{}, log),
		testSecret,
		[]string{"http://localhost:5173"},
	)
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	users := newStubUsers()
	router := newAuthRouter(users, &stubTokens{})

	w := postJSON(router, "/api/auth/register",
		`{"username": "ada", "email": "ada@example.com", "password": "hunter22"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	user := users.users["ada@example.com"]
	require.NotNil(t, user)
	// The stored password is a bcrypt hash, never the plaintext.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("hunter22")))
}

func TestRegisterValidation(t *testing.T) {
	router := newAuthRouter(newStubUsers(), &stubTokens{})

	for _, body := range []string{
		`{"email": "ada@example.com", "password": "hunter22"}`,
		`{"username": "ada", "email": "not-an-email", "password": "hunter22"}`,
		`{"username": "ada", "email": "ada@example.com", "password": "short"}`,
	} {
		w := postJSON(router, "/api/auth/register", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newStubUsers()
	router := newAuthRouter(users, &stubTokens{})

	body := `{"username": "ada", "email": "ada@example.com", "password": "hunter22"}`
	require.Equal(t, http.StatusCreated, postJSON(router, "/api/auth/register", body).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(router, "/api/auth/register", body).Code)
}

func TestLogin(t *testing.T) {
	users := newStubUsers()
	tokens := &stubTokens{}
	router := newAuthRouter(users, tokens)

	require.Equal(t, http.StatusCreated, postJSON(router, "/api/auth/register",
		`{"username": "ada", "email": "ada@example.com", "password": "hunter22"}`).Code)

	w := postJSON(router, "/api/auth/login", `{"email": "ada@example.com", "password": "hunter22"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)
	assert.Contains(t, w.Body.String(), `"refresh_token"`)
	assert.Len(t, tokens.saved, 1, "refresh token is persisted")
}

func TestLoginWrongPassword(t *testing.T) {
	users := newStubUsers()
	router := newAuthRouter(users, &stubTokens{})

	require.Equal(t, http.StatusCreated, postJSON(router, "/api/auth/register",
		`{"username": "ada", "email": "ada@example.com", "password": "hunter22"}`).Code)

	w := postJSON(router, "/api/auth/login", `{"email": "ada@example.com", "password": "wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	router := newAuthRouter(newStubUsers(), &stubTokens{})

	w := postJSON(router, "/api/auth/login", `{"email": "ghost@example.com", "password": "whatever"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
