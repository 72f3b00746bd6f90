// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/animal-portrait/cliparse"
	"github.com/danielhkuo/animal-portrait/db"
	"github.com/danielhkuo/animal-portrait/models"
)

// SetupTestDB creates a fresh in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration with fast timings
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseURL:    ":memory:",
		DatabaseType:   "sqlite",
		MaxUploadBytes: 1 << 20,
		SessionTTL:     time.Hour,
		LeadIPSalt:     "test-lead-salt",
		Timings: cliparse.Timings{
			GenerateInterval: time.Millisecond,
			GenerateDuration: 20 * time.Millisecond,
			GenerateSettle:   5 * time.Millisecond,
			PurchaseDelay:    time.Millisecond,
		},
	}
}

// StubStore records inserts and answers with canned ids or errors
type StubStore struct {
	mu sync.Mutex

	UserID    string
	UserErr   error
	PhotoErr  error
	BuyErr    error
	WaitErr   error
	Users     []models.User
	Photos    []models.GeneratedPhoto
	Purchases []models.Purchase
	Leads     []models.WaitingListEntry

	// Gate, when set, holds CreateUser and SavePurchase until it is closed
	Gate chan struct{}
}

func (s *StubStore) wait(ctx context.Context) error {
	if s.Gate == nil {
		return nil
	}
	select {
	case <-s.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *StubStore) CreateUser(ctx context.Context, u models.User) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UserErr != nil {
		return "", s.UserErr
	}
	s.Users = append(s.Users, u)
	return s.UserID, nil
}

func (s *StubStore) SaveGeneratedPhoto(ctx context.Context, p models.GeneratedPhoto) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PhotoErr != nil {
		return "", s.PhotoErr
	}
	s.Photos = append(s.Photos, p)
	return "photo-1", nil
}

func (s *StubStore) SavePurchase(ctx context.Context, p models.Purchase) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.BuyErr != nil {
		return "", s.BuyErr
	}
	s.Purchases = append(s.Purchases, p)
	return "purchase-1", nil
}

func (s *StubStore) JoinWaitingList(ctx context.Context, e models.WaitingListEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WaitErr != nil {
		return "", s.WaitErr
	}
	s.Leads = append(s.Leads, e)
	return "lead-1", nil
}

// SetPhotoErr changes the generation failure while jobs may be running
func (s *StubStore) SetPhotoErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PhotoErr = err
}

// PurchaseCount returns the number of saved purchase rows
func (s *StubStore) PurchaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Purchases)
}

// PhotoCount returns the number of saved generation rows
func (s *StubStore) PhotoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Photos)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeUploadRequest creates a multipart request carrying one file in field
func MakeUploadRequest(path, field, filename, contentType string, data []byte, headers map[string]string) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, _ := mw.CreatePart(h)
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

// PNGBytes returns a small valid PNG image
func PNGBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// Eventually polls cond until it returns true or the timeout elapses
func Eventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before timeout")
		}
		time.Sleep(2 * time.Millisecond)
	}
}
