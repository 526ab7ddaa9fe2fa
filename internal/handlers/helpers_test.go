package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"crimewatch/internal/config"
	"crimewatch/internal/db"
	"crimewatch/internal/router"
	"crimewatch/internal/services"
	"crimewatch/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "secret123"

// newTestAPI wires the real router over an in-memory SQLite database.
func newTestAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// keep every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	cfg := &config.Config{
		SecretKey:      "test-secret",
		Algorithm:      "HS256",
		AccessTokenTTL: time.Hour,
	}
	tokens, err := services.NewTokenService(cfg)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	cache, err := utils.NewCache(16)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	r := gin.New()
	router.RegisterRoutes(r, router.Deps{
		DB:     conn,
		Tokens: tokens,
		Cache:  cache,
		Logger: logger,
	})
	return r, conn
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return doJSONFrom(t, r, method, path, token, "", body)
}

// doJSONFrom lets a test control the client address seen by the server.
func doJSONFrom(t *testing.T, r *gin.Engine, method, path, token, remoteIP string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if remoteIP != "" {
		req.RemoteAddr = remoteIP + ":12345"
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func signup(t *testing.T, r *gin.Engine, username, email, role string) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/auth/signup", "", gin.H{
		"fullname": "Test " + username,
		"username": username,
		"email":    email,
		"password": testPassword,
		"role":     role,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("signup %s failed: %d %s", username, w.Code, w.Body.String())
	}
}

func login(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", testPassword)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login %s failed: %d %s", username, w.Code, w.Body.String())
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decodeBody(t, w, &resp)
	if resp.AccessToken == "" || resp.TokenType != "bearer" {
		t.Fatalf("unexpected login response: %s", w.Body.String())
	}
	return resp.AccessToken
}

func signupAndLogin(t *testing.T, r *gin.Engine, username, email, role string) string {
	t.Helper()
	signup(t, r, username, email, role)
	return login(t, r, username)
}

func createCrime(t *testing.T, r *gin.Engine, token string, crimeType string, lat, lng float64) uint {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/crime/crimes", token, gin.H{
		"crime_type":  crimeType,
		"description": "test report",
		"latitude":    lat,
		"longitude":   lng,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("create crime failed: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Crime struct {
			ID uint `json:"crime_id"`
		} `json:"crime"`
	}
	decodeBody(t, w, &resp)
	if resp.Crime.ID == 0 {
		t.Fatalf("create crime returned no id: %s", w.Body.String())
	}
	return resp.Crime.ID
}
