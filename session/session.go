// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/animal-portrait/generation"
	"github.com/danielhkuo/animal-portrait/models"
	"github.com/danielhkuo/animal-portrait/wizard"
)

var (
	ErrWrongStep        = errors.New("not available on the current step")
	ErrBusy             = errors.New("a request for this step is already in progress")
	ErrNotReady         = errors.New("step is not complete yet")
	ErrNoBack           = errors.New("cannot go back from this step")
	ErrUnknownAnimal    = errors.New("unknown animal")
	ErrUnknownTier      = errors.New("unknown tier")
	ErrNotFailed        = errors.New("generation has not failed")
	ErrAlreadyPurchased = errors.New("purchase already completed")
	ErrNotPurchased     = errors.New("purchase not completed")
	ErrReset            = errors.New("wizard was reset while the request was in progress")
)

// StoreError marks a failed write to the external store. Its message is
// meant for the user.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Session is one browser's pass through the wizard. The controller holds
// committed step data; the draft fields hold what the current step has
// collected but not yet handed over.
type Session struct {
	Token string
	m     *Manager

	// guarded by m.mu
	lastSeen time.Time

	mu     sync.Mutex
	wizard *wizard.Controller
	busy   bool
	run    uint64
	job    *generation.Job
	jobSeq uint64
	owned  map[string]struct{}

	pendingPhoto *wizard.PhotoRecord
	animal       string
	tier         string
}

// State returns a copy of the wizard state
func (s *Session) State() wizard.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wizard.State()
}

// beginLocked claims the session for a store call on step and returns the
// run the call belongs to. A Reset starts a new run.
func (s *Session) beginLocked(step wizard.Step) (uint64, error) {
	if s.wizard.Step() != step {
		return 0, ErrWrongStep
	}
	if s.busy {
		return 0, ErrBusy
	}
	s.busy = true
	return s.run, nil
}

// SignUp stores the user and moves on to the upload step
func (s *Session) SignUp(ctx context.Context, fullName, email string) error {
	s.mu.Lock()
	run, err := s.beginLocked(wizard.StepSignUp)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	id, err := s.m.opts.Store.CreateUser(ctx, models.User{FullName: fullName, Email: email})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != run {
		slog.Warn("discarding sign-up from before reset", "user_id", id)
		return ErrReset
	}
	s.busy = false

	if err != nil {
		slog.Error("failed to create user", "error", err)
		return &StoreError{Err: err}
	}
	if s.wizard.Step() != wizard.StepSignUp {
		return ErrWrongStep
	}

	s.wizard.Advance(wizard.StepUpload, wizard.Data{
		User: &wizard.UserRecord{FullName: fullName, Email: email, UserID: id},
	})
	slog.Info("user signed up", "user_id", id)
	return nil
}

// SetPhoto makes data the upload step's pending photo, superseding any
// earlier pending one
func (s *Session) SetPhoto(contentType, filename string, data []byte) (wizard.PhotoRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wizard.Step() != wizard.StepUpload {
		return wizard.PhotoRecord{}, ErrWrongStep
	}

	p := s.m.addPhoto(contentType, filename, data)
	s.owned[p.ID] = struct{}{}

	if prev := s.pendingPhoto; prev != nil && prev.PhotoID != s.wizard.State().Photo.PhotoID {
		s.releaseLocked(prev.PhotoID)
	}

	rec := wizard.PhotoRecord{
		URL:         p.URL(),
		PhotoID:     p.ID,
		ContentType: contentType,
		Size:        int64(len(data)),
	}
	s.pendingPhoto = &rec
	return rec, nil
}

func (s *Session) currentPhotoLocked() wizard.PhotoRecord {
	if s.pendingPhoto != nil {
		return *s.pendingPhoto
	}
	return s.wizard.State().Photo
}

// ContinueUpload hands the photo to the controller
func (s *Session) ContinueUpload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wizard.Step() != wizard.StepUpload {
		return ErrWrongStep
	}
	photo := s.currentPhotoLocked()
	if !photo.Present() {
		return ErrNotReady
	}

	prev := s.wizard.State().Photo
	if prev.PhotoID != "" && prev.PhotoID != photo.PhotoID {
		s.releaseLocked(prev.PhotoID)
	}

	s.wizard.Advance(wizard.StepChoose, wizard.Data{Photo: &photo})
	s.pendingPhoto = nil
	return nil
}

// SelectAnimal highlights an animal on the choose step
func (s *Session) SelectAnimal(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wizard.Step() != wizard.StepChoose {
		return ErrWrongStep
	}
	if _, ok := models.FindAnimal(id); !ok {
		return ErrUnknownAnimal
	}
	s.animal = id
	return nil
}

func (s *Session) currentAnimalLocked() string {
	if s.animal != "" {
		return s.animal
	}
	return s.wizard.State().Animal.Animal
}

// ContinueChoose commits the selected animal and starts generation
func (s *Session) ContinueChoose() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wizard.Step() != wizard.StepChoose {
		return ErrWrongStep
	}
	animal := s.currentAnimalLocked()
	if animal == "" {
		return ErrNotReady
	}

	s.wizard.Advance(wizard.StepGenerate, wizard.Data{Animal: &wizard.AnimalSelection{Animal: animal}})
	s.animal = ""
	s.startGenerationLocked()
	return nil
}

func (s *Session) startGenerationLocked() {
	in := s.wizard.State().GenerateSlice()
	t := s.m.opts.Timings

	s.jobSeq++
	seq := s.jobSeq
	s.job = generation.Start(s.m.ctx, generation.Timings{
		Interval: t.GenerateInterval,
		Duration: t.GenerateDuration,
		Settle:   t.GenerateSettle,
	}, generation.Request{
		Source: in.Photo.URL,
		Persist: func(ctx context.Context, result string) error {
			id, err := s.m.opts.Store.SaveGeneratedPhoto(ctx, models.GeneratedPhoto{
				UserID:   in.User.UserID,
				Animal:   in.Animal.Animal,
				PhotoURL: result,
				Status:   models.PhotoStatusGenerated,
			})
			if err != nil {
				return err
			}
			slog.Info("photo generated", "generation_id", id, "animal", in.Animal.Animal)
			return nil
		},
		OnComplete: func(result string) {
			s.completeGeneration(seq, result)
		},
	})
}

// completeGeneration runs on the job goroutine. seq identifies the job
// that finished; any later start or stop makes it stale.
func (s *Session) completeGeneration(seq uint64, result string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.jobSeq != seq || s.wizard.Step() != wizard.StepGenerate {
		return
	}
	s.wizard.Advance(wizard.StepPurchase, wizard.Data{GeneratedURL: &result})
	s.tier = models.DefaultTierID
}

// RetryGeneration restarts a generation whose result could not be saved
func (s *Session) RetryGeneration() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wizard.Step() != wizard.StepGenerate {
		return ErrWrongStep
	}
	if s.job == nil || !s.job.Failed() {
		return ErrNotFailed
	}
	s.startGenerationLocked()
	return nil
}

// Generation returns the job of the current generate step
func (s *Session) Generation() (*generation.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.job == nil {
		return nil, ErrWrongStep
	}
	return s.job, nil
}

func (s *Session) stopGenerationLocked() {
	s.jobSeq++
	if s.job != nil {
		s.job.Cancel()
		s.job = nil
	}
}

// SelectTier highlights a pricing tier on the purchase step
func (s *Session) SelectTier(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wizard.Step() != wizard.StepPurchase {
		return ErrWrongStep
	}
	if s.wizard.State().Purchase.Completed {
		return ErrAlreadyPurchased
	}
	if _, ok := models.FindTier(id); !ok {
		return ErrUnknownTier
	}
	s.tier = id
	return nil
}

func (s *Session) currentTierLocked() models.Tier {
	if t, ok := models.FindTier(s.tier); ok {
		return t
	}
	t, _ := models.FindTier(models.DefaultTierID)
	return t
}

// Purchase simulates payment for the selected tier and records it
func (s *Session) Purchase(ctx context.Context) error {
	s.mu.Lock()
	if s.wizard.Step() == wizard.StepPurchase && s.wizard.State().Purchase.Completed {
		s.mu.Unlock()
		return ErrAlreadyPurchased
	}
	run, err := s.beginLocked(wizard.StepPurchase)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	tier := s.currentTierLocked()
	in := s.wizard.State().PurchaseSlice()
	s.mu.Unlock()

	err = generation.Sleep(ctx, s.m.opts.Timings.PurchaseDelay)
	var id string
	if err == nil {
		id, err = s.m.opts.Store.SavePurchase(ctx, models.Purchase{
			UserID: in.User.UserID,
			Tier:   tier.ID,
			Price:  tier.Price,
			Status: models.PurchaseStatusCompleted,
		})
		if err != nil {
			slog.Error("failed to save purchase", "error", err)
			err = &StoreError{Err: err}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != run {
		if err == nil {
			slog.Warn("purchase recorded after reset", "purchase_id", id, "tier", tier.ID)
		}
		return ErrReset
	}
	s.busy = false

	if err != nil {
		return err
	}
	if s.wizard.Step() != wizard.StepPurchase {
		return ErrWrongStep
	}

	s.wizard.Advance(wizard.StepPurchase, wizard.Data{
		Purchase: &wizard.PurchaseSelection{Tier: tier.ID, Price: tier.Price, Completed: true},
	})
	slog.Info("purchase completed", "purchase_id", id, "tier", tier.ID)
	return nil
}

// Download returns the purchased image
func (s *Session) Download() (*Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.wizard.State()
	if st.Step != wizard.StepPurchase {
		return nil, ErrWrongStep
	}
	if !st.Purchase.Completed {
		return nil, ErrNotPurchased
	}
	return s.m.Photo(st.Photo.PhotoID)
}

// Back returns to the previous step, stopping generation if it is left
func (s *Session) Back() (wizard.Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.wizard.Step()
	step, ok := s.wizard.Back()
	if !ok {
		return from, ErrNoBack
	}
	if from == wizard.StepGenerate {
		s.stopGenerationLocked()
	}
	return step, nil
}

// Reset starts the wizard over and forgets everything collected. Store
// calls still in flight finish, but their results are dropped.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.run++
	s.busy = false
	s.stopGenerationLocked()
	s.releaseAllLocked()
	s.wizard.Reset()
	s.pendingPhoto = nil
	s.animal = ""
	s.tier = ""
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.run++
	s.busy = false
	s.stopGenerationLocked()
	s.releaseAllLocked()
}

func (s *Session) releaseLocked(id string) {
	delete(s.owned, id)
	s.m.releasePhoto(id)
}

func (s *Session) releaseAllLocked() {
	for id := range s.owned {
		s.m.releasePhoto(id)
	}
	s.owned = make(map[string]struct{})
}

// View renders the wizard for the front-end
func (s *Session) View() models.WizardView {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.wizard.State()
	view := models.WizardView{
		Step:  string(st.Step),
		Steps: s.wizard.Progress(),
	}

	switch st.Step {
	case wizard.StepSignUp:
		view.SignUp = &models.SignUpView{Submitting: s.busy}

	case wizard.StepUpload:
		in := st.UploadSlice()
		photo := s.currentPhotoLocked()
		view.Upload = &models.UploadView{
			FullName:    in.User.FullName,
			PhotoURL:    photo.URL,
			CanContinue: photo.Present(),
		}

	case wizard.StepChoose:
		selected := s.currentAnimalLocked()
		view.Choose = &models.ChooseView{
			Animals:     models.Animals(),
			Selected:    selected,
			CanContinue: selected != "",
		}

	case wizard.StepGenerate:
		in := st.GenerateSlice()
		gv := &models.GenerateView{
			Animal:     in.Animal.Animal,
			PhotoURL:   in.Photo.URL,
			Generation: models.GenerationSnapshot{Status: generation.StatusCanceled},
		}
		if s.job != nil {
			gv.Generation = s.job.Snapshot()
			gv.CanRetry = gv.Generation.Status == generation.StatusFailed
		}
		view.Generate = gv

	case wizard.StepPurchase:
		in := st.PurchaseSlice()
		tier := s.currentTierLocked()
		if in.Purchase.Completed {
			tier, _ = models.FindTier(in.Purchase.Tier)
		}
		pv := &models.PurchaseView{
			ImageURL:     in.GeneratedURL,
			Tiers:        models.Tiers(),
			SelectedTier: tier.ID,
			Total:        tier.Price,
			Purchasing:   s.busy,
			Completed:    in.Purchase.Completed,
		}
		if pv.Completed {
			pv.DownloadURL = "/wizard/download"
		}
		view.Purchase = pv
	}

	return view
}

// DownloadName is the attachment filename offered for a purchased image
func DownloadName(p *Photo, at time.Time) string {
	return fmt.Sprintf("animal-portrait-%d%s", at.UnixMilli(), extension(p.ContentType))
}

func extension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	}
	return ".jpg"
}
