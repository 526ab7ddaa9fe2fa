package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"crimewatch/internal/models"
)

func TestCreateCrimeRequiresAuth(t *testing.T) {
	r, _ := newTestAPI(t)

	w := doJSON(t, r, http.MethodPost, "/crime/crimes", "", map[string]interface{}{
		"crime_type":  "theft",
		"description": "bike stolen",
		"latitude":    40.0,
		"longitude":   -74.0,
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated create: %d, want 401", w.Code)
	}
}

func TestCreateAndGetCrime(t *testing.T) {
	r, _ := newTestAPI(t)
	token := signupAndLogin(t, r, "alice", "alice@example.com", "user")

	id := createCrime(t, r, token, "theft", 40.7128, -74.0060)

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/crime/%d", id), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get crime: %d %s", w.Code, w.Body.String())
	}

	var crime models.Crime
	decodeBody(t, w, &crime)
	if crime.CrimeType != "theft" || crime.Latitude != 40.7128 {
		t.Errorf("unexpected crime: %+v", crime)
	}
	if crime.UpdatedAt.Before(crime.CreatedAt) {
		t.Errorf("updated_at %v before created_at %v", crime.UpdatedAt, crime.CreatedAt)
	}
}

func TestGetCrimeNotFound(t *testing.T) {
	r, _ := newTestAPI(t)

	w := doJSON(t, r, http.MethodGet, "/crime/9999", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing crime: %d, want 404", w.Code)
	}
}

func TestCreateCrimeRejectsBadCoordinates(t *testing.T) {
	r, _ := newTestAPI(t)
	token := signupAndLogin(t, r, "alice", "alice@example.com", "user")

	w := doJSON(t, r, http.MethodPost, "/crime/crimes", token, map[string]interface{}{
		"crime_type":  "theft",
		"description": "impossible place",
		"latitude":    95.0,
		"longitude":   10.0,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("out-of-range latitude: %d, want 400", w.Code)
	}
}

func TestListCrimesCategoryFilter(t *testing.T) {
	r, _ := newTestAPI(t)
	token := signupAndLogin(t, r, "alice", "alice@example.com", "user")

	createCrime(t, r, token, "theft", 40.0, -74.0)
	createCrime(t, r, token, "assault", 41.0, -75.0)
	createCrime(t, r, token, "bike theft", 42.0, -76.0)

	w := doJSON(t, r, http.MethodGet, "/crime/?crime_type=theft", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}

	var crimes []models.Crime
	decodeBody(t, w, &crimes)
	// substring match, so both "theft" and "bike theft"
	if len(crimes) != 2 {
		t.Errorf("category filter returned %d crimes, want 2", len(crimes))
	}
}

func TestListCrimesRadiusFilter(t *testing.T) {
	r, _ := newTestAPI(t)
	token := signupAndLogin(t, r, "alice", "alice@example.com", "user")

	nearID := createCrime(t, r, token, "theft", 40.7130, -74.0060) // ~20m from center
	createCrime(t, r, token, "theft", 34.0522, -118.2437)          // LA, ~3936km away

	w := doJSON(t, r, http.MethodGet, "/crime/?radius=10&lat=40.7128&lng=-74.0060", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}

	var crimes []models.Crime
	decodeBody(t, w, &crimes)
	if len(crimes) != 1 || crimes[0].ID != nearID {
		t.Errorf("radius filter returned %+v, want only crime %d", crimes, nearID)
	}
}

func TestUpdateCrimeOwnership(t *testing.T) {
	r, _ := newTestAPI(t)
	ownerToken := signupAndLogin(t, r, "alice", "alice@example.com", "user")
	otherToken := signupAndLogin(t, r, "bob", "bob@example.com", "user")

	id := createCrime(t, r, ownerToken, "theft", 40.0, -74.0)
	path := fmt.Sprintf("/crime/%d", id)

	w := doJSON(t, r, http.MethodPut, path, otherToken, map[string]string{"description": "hijacked"})
	if w.Code != http.StatusForbidden {
		t.Errorf("non-owner update: %d, want 403", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, path, ownerToken, map[string]string{"description": "updated details"})
	if w.Code != http.StatusOK {
		t.Fatalf("owner update: %d %s", w.Code, w.Body.String())
	}

	var crime models.Crime
	decodeBody(t, w, &crime)
	if crime.Description != "updated details" {
		t.Errorf("description = %q, want updated", crime.Description)
	}
}

func TestDeleteCrimeCascades(t *testing.T) {
	r, conn := newTestAPI(t)
	ownerToken := signupAndLogin(t, r, "alice", "alice@example.com", "user")
	adminToken := signupAndLogin(t, r, "root", "root@example.com", "admin")
	voterToken := signupAndLogin(t, r, "bob", "bob@example.com", "user")

	id := createCrime(t, r, ownerToken, "theft", 40.0, -74.0)

	// attach votes and a flag
	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/vote/crimes/%d/vote", id), voterToken, map[string]string{"vote_type": "up"})
	if w.Code != http.StatusOK {
		t.Fatalf("vote: %d %s", w.Code, w.Body.String())
	}
	w = doJSONFrom(t, r, http.MethodPost, fmt.Sprintf("/vote/crimes/%d/vote", id), "", "203.0.113.7", map[string]string{"vote_type": "down"})
	if w.Code != http.StatusOK {
		t.Fatalf("anon vote: %d %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/admin/crime/%d/flag", id), adminToken, map[string]interface{}{"reason": "spam"})
	if w.Code != http.StatusOK {
		t.Fatalf("flag: %d %s", w.Code, w.Body.String())
	}

	// non-owner delete is forbidden
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/crime/%d", id), voterToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-owner delete: %d, want 403", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/crime/%d", id), ownerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("owner delete: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/crime/%d", id), "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("deleted crime fetch: %d, want 404", w.Code)
	}

	var votes, anonVotes, flags int64
	conn.Model(&models.Vote{}).Where("crime_id = ?", id).Count(&votes)
	conn.Model(&models.AnonymousVote{}).Where("crime_id = ?", id).Count(&anonVotes)
	conn.Model(&models.FlaggedCrime{}).Where("crime_id = ?", id).Count(&flags)
	if votes != 0 || anonVotes != 0 || flags != 0 {
		t.Errorf("cascade left votes=%d anonVotes=%d flags=%d, want all 0", votes, anonVotes, flags)
	}
}
