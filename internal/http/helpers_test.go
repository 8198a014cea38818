package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"clinic-api/internal/auth"
	"clinic-api/internal/repository"
	"clinic-api/internal/repository/memory"
	"clinic-api/internal/service"
)

const testSecret = "http-handler-test-secret"

type testServer struct {
	router *gin.Engine
	store  repository.Store
	tokens *auth.TokenIssuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithStore(t, memory.NewStore())
}

func newTestServerWithStore(t *testing.T, store repository.Store) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users, err := service.NewUserService(store.Users, tokens)
	require.NoError(t, err)
	attachments := service.NewAttachmentService(nil, store.Patients, service.AttachmentConfig{})

	handler := NewHandler(Services{
		Users:         users,
		Patients:      service.NewPatientService(store.Patients, attachments, logger),
		Consultations: service.NewConsultationService(store.Consultations, store.Patients),
		Attachments:   attachments,
	}, tokens, logger)

	router := gin.New()
	handler.RegisterRoutes(router)
	return &testServer{router: router, store: store, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			data, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(data)
		}
		reader = bytes.NewBufferString(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// token issues a valid token without going through login.
func (s *testServer) token(t *testing.T) string {
	t.Helper()
	token, err := s.tokens.Issue(1, "tester", "tester@x.com")
	require.NoError(t, err)
	return token
}

func (s *testServer) register(t *testing.T, username, email, password string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/users/register", "", gin.H{
		"firstName": "Test",
		"lastName":  "User",
		"username":  username,
		"email":     email,
		"password":  password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func demoServer(t *testing.T) *testServer {
	t.Helper()
	store, err := memory.NewDemoStore(context.Background(), mustHash(t, "demo"))
	require.NoError(t, err)
	return newTestServerWithStore(t, store)
}

func (s *testServer) doRaw(t *testing.T, method, path, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", authorization)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}
