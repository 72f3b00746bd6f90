// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/animal-portrait/cliparse"
	"github.com/danielhkuo/animal-portrait/middleware"
	"github.com/danielhkuo/animal-portrait/models"
	"github.com/danielhkuo/animal-portrait/session"
	"github.com/danielhkuo/animal-portrait/store"
	"github.com/danielhkuo/animal-portrait/testutil"
)

// testWizard wires a wizard handler to a store behind a mux with the
// production routes
type testWizard struct {
	handler  *WizardHandler
	sessions *session.Manager
	store    *testutil.StubStore
	mux      *http.ServeMux
}

func newTestWizard(t *testing.T, cfg cliparse.Config) *testWizard {
	t.Helper()

	stub := &testutil.StubStore{}
	tw := newTestWizardWithStore(t, cfg, stub)
	tw.store = stub
	return tw
}

func newTestWizardWithStore(t *testing.T, cfg cliparse.Config, st store.Store) *testWizard {
	t.Helper()

	sessions := session.NewManager(context.Background(), session.Options{
		Store:   st,
		Timings: cfg.Timings,
		TTL:     cfg.SessionTTL,
	})
	t.Cleanup(sessions.Close)

	h := NewWizardHandler(sessions, cfg)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", h.CreateSession)
	mux.HandleFunc("GET /wizard", h.GetWizard)
	mux.HandleFunc("POST /wizard/signup", h.SignUp)
	mux.HandleFunc("POST /wizard/photo", h.UploadPhoto)
	mux.HandleFunc("POST /wizard/photo/continue", h.ContinueUpload)
	mux.HandleFunc("GET /photos/{id}", h.GetPhoto)
	mux.HandleFunc("POST /wizard/animal", h.SelectAnimal)
	mux.HandleFunc("POST /wizard/animal/continue", h.ContinueChoose)
	mux.HandleFunc("GET /wizard/generation", h.GetGeneration)
	mux.HandleFunc("GET /wizard/generation/stream", h.StreamGeneration)
	mux.HandleFunc("POST /wizard/generation/retry", h.RetryGeneration)
	mux.HandleFunc("POST /wizard/tier", h.SelectTier)
	mux.HandleFunc("POST /wizard/purchase", h.Purchase)
	mux.HandleFunc("GET /wizard/download", h.Download)
	mux.HandleFunc("POST /wizard/back", h.Back)
	mux.HandleFunc("POST /wizard/reset", h.Reset)

	return &testWizard{handler: h, sessions: sessions, mux: mux}
}

func (tw *testWizard) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	tw.mux.ServeHTTP(w, req)
	return w
}

func (tw *testWizard) newSession(t *testing.T) string {
	t.Helper()

	w := tw.do(testutil.MakeRequest("POST", "/sessions", nil, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CreateSessionResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.SessionToken == "" {
		t.Fatal("Expected a session token")
	}
	return resp.SessionToken
}

func (tw *testWizard) view(t *testing.T, token string) models.WizardView {
	t.Helper()

	w := tw.do(testutil.MakeRequest("GET", "/wizard", nil, tokenHeader(token)))
	testutil.AssertStatus(t, w, http.StatusOK)

	var view models.WizardView
	testutil.AssertJSON(t, w, &view)
	return view
}

func (tw *testWizard) post(t *testing.T, token, path string, body interface{}, expected int) models.WizardView {
	t.Helper()

	w := tw.do(testutil.MakeRequest("POST", path, body, tokenHeader(token)))
	testutil.AssertStatus(t, w, expected)

	var view models.WizardView
	if expected == http.StatusOK {
		testutil.AssertJSON(t, w, &view)
	}
	return view
}

// toUpload signs up and leaves the wizard on the upload step
func (tw *testWizard) toUpload(t *testing.T, token string) {
	t.Helper()
	tw.post(t, token, "/wizard/signup", models.SignUpRequest{FullName: "Jane Doe", Email: "jane@x.com"}, http.StatusOK)
}

// toChoose uploads a photo and leaves the wizard on the choose step
func (tw *testWizard) toChoose(t *testing.T, token string) string {
	t.Helper()
	tw.toUpload(t, token)

	w := tw.do(testutil.MakeUploadRequest("/wizard/photo", PhotoField, "me.png", "image/png", testutil.PNGBytes(t), tokenHeader(token)))
	testutil.AssertStatus(t, w, http.StatusOK)

	var view models.WizardView
	testutil.AssertJSON(t, w, &view)

	tw.post(t, token, "/wizard/photo/continue", nil, http.StatusOK)
	return view.Upload.PhotoURL
}

// toPurchase runs generation to completion
func (tw *testWizard) toPurchase(t *testing.T, token string) {
	t.Helper()
	tw.toChoose(t, token)
	tw.post(t, token, "/wizard/animal", models.SelectAnimalRequest{Animal: "panda"}, http.StatusOK)
	tw.post(t, token, "/wizard/animal/continue", nil, http.StatusOK)

	testutil.Eventually(t, 2*time.Second, func() bool {
		return tw.view(t, token).Step == "purchase"
	})
}

func tokenHeader(token string) map[string]string {
	return map[string]string{middleware.SessionHeader: token}
}

func TestCreateSession(t *testing.T) {
	tw := newTestWizard(t, testutil.GetTestConfig())

	w := tw.do(testutil.MakeRequest("POST", "/sessions", nil, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CreateSessionResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.SessionToken == "" {
		t.Error("Expected non-empty session token")
	}
	if resp.Wizard.Step != "signup" {
		t.Errorf("Expected step 'signup', got '%s'", resp.Wizard.Step)
	}
	if len(resp.Wizard.Steps) != 5 {
		t.Fatalf("Expected 5 progress steps, got %d", len(resp.Wizard.Steps))
	}
	if !resp.Wizard.Steps[0].Active {
		t.Error("Expected first step to be active")
	}
	if resp.Wizard.SignUp == nil {
		t.Error("Expected sign-up view")
	}
	if tw.sessions.Len() != 1 {
		t.Errorf("Expected 1 live session, got %d", tw.sessions.Len())
	}
}

func TestSessionLookup(t *testing.T) {
	tw := newTestWizard(t, testutil.GetTestConfig())

	testCases := []struct {
		name           string
		headers        map[string]string
		path           string
		expectedStatus int
	}{
		{"missing token", nil, "/wizard", http.StatusUnauthorized},
		{"malformed token", tokenHeader("not-a-token"), "/wizard", http.StatusNotFound},
		{"unknown token", tokenHeader("AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"), "/wizard", http.StatusNotFound},
		{"query parameter", nil, "/wizard?session=" + tw.newSession(t), http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := tw.do(testutil.MakeRequest("GET", tc.path, nil, tc.headers))
			testutil.AssertStatus(t, w, tc.expectedStatus)
		})
	}
}

func TestSignUp(t *testing.T) {
	testCases := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{
			name:           "valid sign-up",
			body:           models.SignUpRequest{FullName: "Jane Doe", Email: "jane@x.com"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "surrounding whitespace",
			body:           models.SignUpRequest{FullName: "  Jane Doe ", Email: " jane@x.com "},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing full name",
			body:           models.SignUpRequest{FullName: "   ", Email: "jane@x.com"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing email",
			body:           models.SignUpRequest{FullName: "Jane Doe"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid email",
			body:           models.SignUpRequest{FullName: "Jane Doe", Email: "not-an-email"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "email with display name",
			body:           models.SignUpRequest{FullName: "Jane Doe", Email: "Jane <jane@x.com>"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			body:           "{not json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tw := newTestWizard(t, testutil.GetTestConfig())
			tw.store.UserID = "42"
			token := tw.newSession(t)

			w := tw.do(testutil.MakeRequest("POST", "/wizard/signup", tc.body, tokenHeader(token)))
			testutil.AssertStatus(t, w, tc.expectedStatus)

			view := tw.view(t, token)
			if tc.expectedStatus != http.StatusOK {
				if view.Step != "signup" {
					t.Errorf("Expected to stay on 'signup', got '%s'", view.Step)
				}
				if len(tw.store.Users) != 0 {
					t.Error("Expected no user row for rejected sign-up")
				}
				return
			}

			if view.Step != "upload" {
				t.Fatalf("Expected step 'upload', got '%s'", view.Step)
			}
			if view.Upload.FullName != "Jane Doe" {
				t.Errorf("Expected full name 'Jane Doe', got '%s'", view.Upload.FullName)
			}
			if len(tw.store.Users) != 1 || tw.store.Users[0].Email != "jane@x.com" {
				t.Errorf("Expected one trimmed user row, got %+v", tw.store.Users)
			}
		})
	}
}

func TestSignUpStoreError(t *testing.T) {
	tw := newTestWizard(t, testutil.GetTestConfig())
	tw.store.UserErr = errors.New("new row violates row-level security policy")
	token := tw.newSession(t)

	w := tw.do(testutil.MakeRequest("POST", "/wizard/signup",
		models.SignUpRequest{FullName: "Jane Doe", Email: "jane@x.com"}, tokenHeader(token)))
	testutil.AssertStatus(t, w, http.StatusInternalServerError)

	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Message != "new row violates row-level security policy" {
		t.Errorf("Expected store message verbatim, got '%s'", resp.Message)
	}

	if step := tw.view(t, token).Step; step != "signup" {
		t.Errorf("Expected to stay on 'signup', got '%s'", step)
	}

	// The form can be submitted again once the store recovers
	tw.store.UserErr = nil
	tw.post(t, token, "/wizard/signup", models.SignUpRequest{FullName: "Jane Doe", Email: "jane@x.com"}, http.StatusOK)
}

func TestSignUpTwice(t *testing.T) {
	tw := newTestWizard(t, testutil.GetTestConfig())
	token := tw.newSession(t)

	tw.toUpload(t, token)
	tw.post(t, token, "/wizard/signup", models.SignUpRequest{FullName: "Jane Doe", Email: "jane@x.com"}, http.StatusConflict)

	if len(tw.store.Users) != 1 {
		t.Errorf("Expected 1 user row, got %d", len(tw.store.Users))
	}
}

func TestChooseAnimal(t *testing.T) {
	tw := newTestWizard(t, testutil.GetTestConfig())
	token := tw.newSession(t)
	tw.toChoose(t, token)

	view := tw.view(t, token)
	if view.Step != "choose" {
		t.Fatalf("Expected step 'choose', got '%s'", view.Step)
	}
	if len(view.Choose.Animals) != 18 {
		t.Errorf("Expected 18 animals, got %d", len(view.Choose.Animals))
	}
	if view.Choose.CanContinue {
		t.Error("Expected can_continue to be false before selecting")
	}

	tw.post(t, token, "/wizard/animal/continue", nil, http.StatusConflict)
	tw.post(t, token, "/wizard/animal", models.SelectAnimalRequest{Animal: "dragon"}, http.StatusBadRequest)

	view = tw.post(t, token, "/wizard/animal", models.SelectAnimalRequest{Animal: "fox"}, http.StatusOK)
	view = tw.post(t, token, "/wizard/animal", models.SelectAnimalRequest{Animal: "owl"}, http.StatusOK)
	if view.Choose.Selected != "owl" {
		t.Errorf("Expected selection 'owl', got '%s'", view.Choose.Selected)
	}
	if !view.Choose.CanContinue {
		t.Error("Expected can_continue after selecting")
	}

	view = tw.post(t, token, "/wizard/animal/continue", nil, http.StatusOK)
	if view.Step != "generate" {
		t.Fatalf("Expected step 'generate', got '%s'", view.Step)
	}
	if view.Generate.Animal != "owl" {
		t.Errorf("Expected generate animal 'owl', got '%s'", view.Generate.Animal)
	}
}

func TestBack(t *testing.T) {
	tw := newTestWizard(t, testutil.GetTestConfig())
	token := tw.newSession(t)

	tw.post(t, token, "/wizard/back", nil, http.StatusConflict)

	photoURL := tw.toChoose(t, token)

	view := tw.post(t, token, "/wizard/back", nil, http.StatusOK)
	if view.Step != "upload" {
		t.Fatalf("Expected step 'upload', got '%s'", view.Step)
	}
	if view.Upload.PhotoURL != photoURL || !view.Upload.CanContinue {
		t.Error("Expected the committed photo to survive going back")
	}

	view = tw.post(t, token, "/wizard/back", nil, http.StatusOK)
	if view.Step != "signup" {
		t.Errorf("Expected step 'signup', got '%s'", view.Step)
	}
}

func TestBackFromGenerateStopsGeneration(t *testing.T) {
	cfg := testutil.GetTestConfig()
	cfg.Timings.GenerateDuration = 10 * time.Second
	tw := newTestWizard(t, cfg)
	token := tw.newSession(t)

	tw.toChoose(t, token)
	tw.post(t, token, "/wizard/animal", models.SelectAnimalRequest{Animal: "wolf"}, http.StatusOK)
	tw.post(t, token, "/wizard/animal/continue", nil, http.StatusOK)

	view := tw.post(t, token, "/wizard/back", nil, http.StatusOK)
	if view.Step != "choose" {
		t.Fatalf("Expected step 'choose', got '%s'", view.Step)
	}
	if view.Choose.Selected != "wolf" {
		t.Errorf("Expected committed animal 'wolf', got '%s'", view.Choose.Selected)
	}

	w := tw.do(testutil.MakeRequest("GET", "/wizard/generation", nil, tokenHeader(token)))
	testutil.AssertStatus(t, w, http.StatusConflict)

	if tw.store.PhotoCount() != 0 {
		t.Error("Expected no generated photo row after leaving the step")
	}
}

func TestSelectTier(t *testing.T) {
	tw := newTestWizard(t, testutil.GetTestConfig())
	token := tw.newSession(t)

	tw.post(t, token, "/wizard/tier", models.SelectTierRequest{Tier: "print"}, http.StatusConflict)

	tw.toPurchase(t, token)

	view := tw.view(t, token)
	if view.Purchase.SelectedTier != "print" {
		t.Errorf("Expected default tier 'print', got '%s'", view.Purchase.SelectedTier)
	}
	if view.Purchase.Total != 24.99 {
		t.Errorf("Expected total 24.99, got %v", view.Purchase.Total)
	}
	if len(view.Purchase.Tiers) != 3 {
		t.Errorf("Expected 3 tiers, got %d", len(view.Purchase.Tiers))
	}

	tw.post(t, token, "/wizard/tier", models.SelectTierRequest{Tier: "platinum"}, http.StatusBadRequest)

	testCases := []struct {
		tier  string
		total float64
	}{
		{"digital", 9.99},
		{"premium", 49.99},
		{"print", 24.99},
	}
	for _, tc := range testCases {
		view = tw.post(t, token, "/wizard/tier", models.SelectTierRequest{Tier: tc.tier}, http.StatusOK)
		if view.Purchase.SelectedTier != tc.tier || view.Purchase.Total != tc.total {
			t.Errorf("Expected %s at %v, got %s at %v", tc.tier, tc.total, view.Purchase.SelectedTier, view.Purchase.Total)
		}
	}
}

func TestPurchaseStoreError(t *testing.T) {
	tw := newTestWizard(t, testutil.GetTestConfig())
	token := tw.newSession(t)
	tw.toPurchase(t, token)

	tw.store.BuyErr = errors.New("insert or update on table \"purchases\" violates foreign key constraint")

	w := tw.do(testutil.MakeRequest("POST", "/wizard/purchase", nil, tokenHeader(token)))
	testutil.AssertStatus(t, w, http.StatusInternalServerError)

	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Message != tw.store.BuyErr.Error() {
		t.Errorf("Expected store message verbatim, got '%s'", resp.Message)
	}

	view := tw.view(t, token)
	if view.Purchase.Completed || view.Purchase.Purchasing {
		t.Error("Expected purchase to stay open after a store failure")
	}

	w = tw.do(testutil.MakeRequest("GET", "/wizard/download", nil, tokenHeader(token)))
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestReset(t *testing.T) {
	tw := newTestWizard(t, testutil.GetTestConfig())
	token := tw.newSession(t)
	photoURL := tw.toChoose(t, token)

	view := tw.post(t, token, "/wizard/reset", nil, http.StatusOK)
	if view.Step != "signup" {
		t.Errorf("Expected step 'signup', got '%s'", view.Step)
	}

	w := tw.do(testutil.MakeRequest("GET", photoURL, nil, nil))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestWriteSessionError(t *testing.T) {
	testCases := []struct {
		err            error
		expectedStatus int
	}{
		{session.ErrSessionNotFound, http.StatusNotFound},
		{session.ErrPhotoNotFound, http.StatusNotFound},
		{session.ErrUnknownAnimal, http.StatusBadRequest},
		{session.ErrUnknownTier, http.StatusBadRequest},
		{session.ErrWrongStep, http.StatusConflict},
		{session.ErrBusy, http.StatusConflict},
		{session.ErrReset, http.StatusConflict},
		{session.ErrNotReady, http.StatusConflict},
		{session.ErrNoBack, http.StatusConflict},
		{session.ErrNotFailed, http.StatusConflict},
		{session.ErrAlreadyPurchased, http.StatusConflict},
		{session.ErrNotPurchased, http.StatusConflict},
		{&session.StoreError{Err: errors.New("connection refused")}, http.StatusInternalServerError},
		{&session.StoreError{Err: fmt.Errorf("insert into users: %w", store.ErrDuplicate)}, http.StatusConflict},
		{context.Canceled, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			writeSessionError(w, tc.err)
			testutil.AssertStatus(t, w, tc.expectedStatus)
		})
	}
}
