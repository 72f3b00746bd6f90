package models

import "time"

// Row status constants
const (
	PhotoStatusGenerated    = "generated"
	PurchaseStatusCompleted = "completed"
)

// Lead sources, one per landing page
const (
	SourceWaitlist    = "waitlist"
	SourceEarlyAccess = "early-access"
)

// Request types

type SignUpRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type SelectAnimalRequest struct {
	Animal string `json:"animal"`
}

type SelectTierRequest struct {
	Tier string `json:"tier"`
}

type WaitlistRequest struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

type EarlyAccessRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Response types

type CreateSessionResponse struct {
	SessionToken string     `json:"session_token"`
	Wizard       WizardView `json:"wizard"`
}

type LeadResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Store rows

type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type GeneratedPhoto struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Animal    string    `json:"animal"`
	PhotoURL  string    `json:"photo_url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Purchase struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Tier      string    `json:"tier"`
	Price     float64   `json:"price"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type WaitingListEntry struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	Source    string    `json:"source"`
	IPHash    *string   `json:"-"` // Never expose in JSON
	CreatedAt time.Time `json:"created_at"`
}

// Wizard views

type StepProgress struct {
	Step      string `json:"step"`
	Label     string `json:"label"`
	Active    bool   `json:"active"`
	Completed bool   `json:"completed"`
}

type WizardView struct {
	Step     string         `json:"step"`
	Steps    []StepProgress `json:"steps"`
	SignUp   *SignUpView    `json:"signup,omitempty"`
	Upload   *UploadView    `json:"upload,omitempty"`
	Choose   *ChooseView    `json:"choose,omitempty"`
	Generate *GenerateView  `json:"generate,omitempty"`
	Purchase *PurchaseView  `json:"purchase,omitempty"`
}

type SignUpView struct {
	Submitting bool `json:"submitting"`
}

type UploadView struct {
	FullName    string `json:"full_name"`
	PhotoURL    string `json:"photo_url,omitempty"`
	CanContinue bool   `json:"can_continue"`
}

type ChooseView struct {
	Animals     []Animal `json:"animals"`
	Selected    string   `json:"selected,omitempty"`
	CanContinue bool     `json:"can_continue"`
}

type GenerateView struct {
	Animal     string             `json:"animal"`
	PhotoURL   string             `json:"photo_url"`
	Generation GenerationSnapshot `json:"generation"`
	CanRetry   bool               `json:"can_retry"`
}

type GenerationSnapshot struct {
	Progress  int    `json:"progress"`
	Status    string `json:"status"`
	ResultURL string `json:"result_url,omitempty"`
	Error     string `json:"error,omitempty"`
}

type PurchaseView struct {
	ImageURL     string  `json:"image_url"`
	Tiers        []Tier  `json:"tiers"`
	SelectedTier string  `json:"selected_tier"`
	Total        float64 `json:"total"`
	Purchasing   bool    `json:"purchasing"`
	Completed    bool    `json:"completed"`
	DownloadURL  string  `json:"download_url,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
