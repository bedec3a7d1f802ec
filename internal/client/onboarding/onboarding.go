// Package onboarding walks a new creator through the application form
// one step at a time.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vlinky/vlinky/internal/format"
	"github.com/vlinky/vlinky/internal/models"
)

// ErrInvalidStep is returned when the current step's fields fail validation
// or the requested move is not possible from the current step.
var ErrInvalidStep = errors.New("invalid step")

// Step is a page of the onboarding form.
type Step int

const (
	StepProfile Step = iota
	StepCategory
	StepPricing
	StepReview
)

// NumSteps is the number of steps in the flow.
const NumSteps = int(StepReview) + 1

var stepTitles = [NumSteps]string{"Profile", "Category", "Pricing", "Review"}

func (s Step) String() string {
	if s < 0 || int(s) >= NumSteps {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return stepTitles[s]
}

// Form is the creator application being filled in.
type Form struct {
	DisplayName string `validate:"required,max=80"`
	Bio         string `validate:"max=2000"`
	AvatarURL   string `validate:"omitempty,url"`
	Category    string `validate:"required"`
	CountryCode string `validate:"omitempty,len=2,alpha"`
	PriceCents  int64  `validate:"gte=100"`
}

// stepFields lists the Form fields each step owns.
var stepFields = map[Step][]string{
	StepProfile:  {"DisplayName", "Bio", "AvatarURL"},
	StepCategory: {"Category", "CountryCode"},
	StepPricing:  {"PriceCents"},
}

// Submitter sends a finished application.
type Submitter interface {
	SubmitApplication(ctx context.Context, app models.CreatorApplication) (models.CreatorApplication, error)
}

// Flow is the step indicator and form state.
type Flow struct {
	Form Form

	step     Step
	validate *validator.Validate
	backend  Submitter
}

// New starts a flow at the first step.
func New(backend Submitter) *Flow {
	return &Flow{backend: backend, validate: validator.New()}
}

// Step returns the current step.
func (f *Flow) Step() Step { return f.step }

// Label renders the position, e.g. "2nd of 4".
func (f *Flow) Label() string {
	return fmt.Sprintf("%s of %d", format.Ordinal(int(f.step)+1), NumSteps)
}

// Validate checks the fields owned by the current step.
func (f *Flow) Validate() error {
	fields := stepFields[f.step]
	var err error
	if fields == nil {
		err = f.validate.Struct(f.Form)
	} else {
		err = f.validate.StructPartial(f.Form, fields...)
	}
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		names := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			names = append(names, fe.Field())
		}
		return fmt.Errorf("%w: %s: check %s", ErrInvalidStep, f.step, strings.Join(names, ", "))
	}
	return err
}

// Next validates the current step and moves forward.
func (f *Flow) Next() error {
	if f.step == StepReview {
		return fmt.Errorf("%w: already on the last step", ErrInvalidStep)
	}
	if err := f.Validate(); err != nil {
		return err
	}
	f.step++
	return nil
}

// Back moves to the previous step. It is a no-op on the first step.
func (f *Flow) Back() {
	if f.step > StepProfile {
		f.step--
	}
}

// Submit sends the application. It is only allowed on the review step.
func (f *Flow) Submit(ctx context.Context) (models.CreatorApplication, error) {
	if f.step != StepReview {
		return models.CreatorApplication{}, fmt.Errorf("%w: submit from %s", ErrInvalidStep, f.step)
	}
	if err := f.Validate(); err != nil {
		return models.CreatorApplication{}, err
	}
	return f.backend.SubmitApplication(ctx, models.CreatorApplication{
		DisplayName: f.Form.DisplayName,
		Bio:         f.Form.Bio,
		AvatarURL:   f.Form.AvatarURL,
		Category:    f.Form.Category,
		CountryCode: strings.ToUpper(f.Form.CountryCode),
		PriceCents:  f.Form.PriceCents,
	})
}
