// Package signup validates the multi-step registration wizard. The wizard
// is linear: a step may only be submitted once every earlier step passes.
package signup

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"bakeryapi/apperr"
	"bakeryapi/models"

	"github.com/go-playground/validator/v10"
)

// Step is a wizard page.
type Step int

const (
	StepAccount Step = iota + 1
	StepRole
	StepBusiness
)

type accountStep struct {
	Name            string `validate:"required,min=2,max=120"`
	Email           string `validate:"required,email,max=255"`
	Password        string `validate:"required,min=8,max=72"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

type roleStep struct {
	Role string `validate:"required,oneof=customer owner"`
}

type businessStep struct {
	BakeryName string `validate:"required,min=2,max=120"`
	Phone      string `validate:"required,min=6,max=32"`
	Address    string `validate:"required,min=5,max=255"`
}

var validate = validator.New()

// FieldErrors maps wizard field names to messages.
type FieldErrors struct {
	Step   Step
	Fields map[string]string
}

func (e *FieldErrors) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

// Fields extracts per-field messages from a validation error, if any.
func Fields(err error) map[string]string {
	var fe *FieldErrors
	if errors.As(err, &fe) {
		return fe.Fields
	}
	return nil
}

// Normalize trims the input and lowercases the email.
func Normalize(in models.UserRegister) models.UserRegister {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	in.BakeryName = strings.TrimSpace(in.BakeryName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	return in
}

// Steps lists the pages a user with the given role walks through.
func Steps(role string) []Step {
	if models.Role(role) == models.RoleOwner {
		return []Step{StepAccount, StepRole, StepBusiness}
	}
	return []Step{StepAccount, StepRole}
}

// ValidateStep checks a single page. It also re-checks every earlier page so
// a client cannot skip ahead.
func ValidateStep(step Step, in models.UserRegister) error {
	if step < StepAccount || step > StepBusiness {
		return apperr.E(apperr.Invalid, fmt.Sprintf("unknown registration step %d", step))
	}
	in = Normalize(in)
	for s := StepAccount; s <= step; s++ {
		if s == StepBusiness && models.Role(in.Role) != models.RoleOwner {
			continue
		}
		if err := check(s, in); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks every page for the user's role.
func Validate(in models.UserRegister) error {
	return ValidateStep(StepBusiness, in)
}

func check(step Step, in models.UserRegister) error {
	var target any
	switch step {
	case StepAccount:
		target = accountStep{Name: in.Name, Email: in.Email, Password: in.Password, ConfirmPassword: in.ConfirmPassword}
	case StepRole:
		target = roleStep{Role: in.Role}
	case StepBusiness:
		target = businessStep{BakeryName: in.BakeryName, Phone: in.Phone, Address: in.Address}
	}

	err := validate.Struct(target)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.Internal, "validation failed", err)
	}
	fe := &FieldErrors{Step: step, Fields: make(map[string]string, len(verrs))}
	for _, v := range verrs {
		fe.Fields[jsonName(v.Field())] = message(v)
	}
	return apperr.Wrap(apperr.Invalid, fe.Error(), fe)
}

func jsonName(field string) string {
	switch field {
	case "ConfirmPassword":
		return "confirm_password"
	case "BakeryName":
		return "bakery_name"
	default:
		return strings.ToLower(field)
	}
}

func message(v validator.FieldError) string {
	switch v.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + v.Param() + " characters"
	case "max":
		return "must be at most " + v.Param() + " characters"
	case "eqfield":
		return "does not match"
	case "oneof":
		return "must be one of: " + v.Param()
	}
	return "is invalid"
}
