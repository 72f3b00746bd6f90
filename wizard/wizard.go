// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wizard

import "github.com/danielhkuo/animal-portrait/models"

// Step identifies one screen of the wizard
type Step string

const (
	StepSignUp   Step = "signup"
	StepUpload   Step = "upload"
	StepChoose   Step = "choose"
	StepGenerate Step = "generate"
	StepPurchase Step = "purchase"
)

var order = []Step{StepSignUp, StepUpload, StepChoose, StepGenerate, StepPurchase}

var labels = map[Step]string{
	StepSignUp:   "Sign Up",
	StepUpload:   "Upload",
	StepChoose:   "Choose",
	StepGenerate: "Generate",
	StepPurchase: "Purchase",
}

// Index returns the position of s in the wizard, or -1 if s is unknown
func (s Step) Index() int {
	for i, step := range order {
		if step == s {
			return i
		}
	}
	return -1
}

func (s Step) Valid() bool {
	return s.Index() >= 0
}

func (s Step) Label() string {
	return labels[s]
}

// Next returns the step following s. Purchase wraps around to sign-up.
func (s Step) Next() Step {
	i := s.Index()
	if i < 0 || i == len(order)-1 {
		return StepSignUp
	}
	return order[i+1]
}

// Prev returns the step "Back" leads to from s.
// Sign-up has nothing before it and purchase offers no way back.
func (s Step) Prev() (Step, bool) {
	switch s {
	case StepUpload:
		return StepSignUp, true
	case StepChoose:
		return StepUpload, true
	case StepGenerate:
		return StepChoose, true
	}
	return "", false
}

type UserRecord struct {
	FullName string
	Email    string
	UserID   string
}

type PhotoRecord struct {
	URL         string
	PhotoID     string
	ContentType string
	Size        int64
}

func (p PhotoRecord) Present() bool {
	return p.URL != ""
}

type AnimalSelection struct {
	Animal string
}

type PurchaseSelection struct {
	Tier      string
	Price     float64
	Completed bool
}

// State is everything the wizard has accumulated so far
type State struct {
	Step         Step
	User         UserRecord
	Photo        PhotoRecord
	Animal       AnimalSelection
	GeneratedURL string
	Purchase     PurchaseSelection
}

// Data is a partial update; nil members are left untouched by Advance
type Data struct {
	User         *UserRecord
	Photo        *PhotoRecord
	Animal       *AnimalSelection
	GeneratedURL *string
	Purchase     *PurchaseSelection
}

// Controller owns a wizard's State. It is not safe for concurrent use;
// callers serialize access.
type Controller struct {
	state State
}

func NewController() *Controller {
	c := &Controller{}
	c.Reset()
	return c
}

// State returns a copy of the current state
func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Step() Step {
	return c.state.Step
}

// Advance merges data into the state and makes step current.
// The calling step is trusted to have validated data.
func (c *Controller) Advance(step Step, data Data) {
	if data.User != nil {
		c.state.User = *data.User
	}
	if data.Photo != nil {
		c.state.Photo = *data.Photo
	}
	if data.Animal != nil {
		c.state.Animal = *data.Animal
	}
	if data.GeneratedURL != nil {
		c.state.GeneratedURL = *data.GeneratedURL
	}
	if data.Purchase != nil {
		c.state.Purchase = *data.Purchase
	}
	c.state.Step = step
}

// Back moves to the previous step without clearing any data
func (c *Controller) Back() (Step, bool) {
	prev, ok := c.state.Step.Prev()
	if !ok {
		return c.state.Step, false
	}
	c.state.Step = prev
	return prev, true
}

// Reset restores the initial empty state on the first step
func (c *Controller) Reset() {
	c.state = State{Step: StepSignUp}
}

// Progress describes every step relative to the current one
func (c *Controller) Progress() []models.StepProgress {
	current := c.state.Step.Index()
	out := make([]models.StepProgress, len(order))
	for i, step := range order {
		out[i] = models.StepProgress{
			Step:      string(step),
			Label:     step.Label(),
			Active:    i == current,
			Completed: i < current,
		}
	}
	return out
}

// Step slices: each step sees only what it needs.

type UploadSlice struct {
	User  UserRecord
	Photo PhotoRecord
}

type ChooseSlice struct {
	Animal AnimalSelection
}

type GenerateSlice struct {
	User   UserRecord
	Photo  PhotoRecord
	Animal AnimalSelection
}

type PurchaseSlice struct {
	User         UserRecord
	GeneratedURL string
	Photo        PhotoRecord
	Purchase     PurchaseSelection
}

func (s State) UploadSlice() UploadSlice {
	return UploadSlice{User: s.User, Photo: s.Photo}
}

func (s State) ChooseSlice() ChooseSlice {
	return ChooseSlice{Animal: s.Animal}
}

func (s State) GenerateSlice() GenerateSlice {
	return GenerateSlice{User: s.User, Photo: s.Photo, Animal: s.Animal}
}

func (s State) PurchaseSlice() PurchaseSlice {
	return PurchaseSlice{User: s.User, GeneratedURL: s.GeneratedURL, Photo: s.Photo, Purchase: s.Purchase}
}
