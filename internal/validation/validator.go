package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"userapi/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	msgRequired      = "This field is required."
	msgMinLength     = "Ensure this field has at least %s characters."
	msgMaxLength     = "Ensure this field has no more than %s characters."
	msgInvalidEmail  = "Enter a valid email address."
	msgInvalid       = "Invalid value."
	msgUnique        = "This field must be unique."
	msgPasswordMatch = "Passwords do not match."
)

// Operation selects the rule set applied to a payload.
type Operation int

const (
	OpCreate Operation = iota
	OpUpdate
)

func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	default:
		return "unknown"
	}
}

var userFields = []string{"email", "username", "password", "password_confirmation", "first_name", "last_name"}

var loginFields = []string{"username", "password"}

// UniquenessChecker answers whether a value is taken by a user other than excludeID.
type UniquenessChecker interface {
	ExistsByUsername(ctx context.Context, username string, excludeID uuid.UUID) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
}

type Validator struct {
	validate *validator.Validate
	policy   PasswordPolicy
	users    UniquenessChecker
}

func NewValidator(policy PasswordPolicy, users UniquenessChecker) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v, policy: policy, users: users}
}

// ValidateUser normalizes p in place and checks it for create or update.
// excludeID is the user being updated, uuid.Nil on create. A non-nil error is
// either *Errors or a lookup failure.
func (v *Validator) ValidateUser(ctx context.Context, op Operation, p *models.UserPayload, excludeID uuid.UUID) error {
	if op != OpCreate && op != OpUpdate {
		return fmt.Errorf("validate user: unsupported operation %s", op)
	}
	normalizeUser(p)

	errs := NewErrors(userFields...)
	if err := v.collect(p, errs); err != nil {
		return err
	}

	if !errs.Has("email") {
		taken, err := v.users.ExistsByEmail(ctx, p.Email, excludeID)
		if err != nil {
			return fmt.Errorf("check email uniqueness: %w", err)
		}
		if taken {
			errs.Add("email", msgUnique)
		}
	}
	if !errs.Has("username") {
		taken, err := v.users.ExistsByUsername(ctx, p.Username, excludeID)
		if err != nil {
			return fmt.Errorf("check username uniqueness: %w", err)
		}
		if taken {
			errs.Add("username", msgUnique)
		}
	}

	if !errs.Has("password") && !errs.Has("password_confirmation") {
		if p.Password != p.PasswordConfirmation {
			errs.AddNonField(msgPasswordMatch)
		} else {
			for _, msg := range v.policy.Check(p.Password, similarityAttributes(p)...) {
				errs.Add("password", msg)
			}
		}
	}

	return errs.ErrorOrNil()
}

// ValidateLogin checks field shape only; credentials are verified by the caller.
func (v *Validator) ValidateLogin(req *models.LoginRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Password = strings.TrimSpace(req.Password)

	errs := NewErrors(loginFields...)
	if err := v.collect(req, errs); err != nil {
		return err
	}
	return errs.ErrorOrNil()
}

// UniqueError reports field as already taken.
func UniqueError(field string) *Errors {
	errs := NewErrors(userFields...)
	errs.Add(field, msgUnique)
	return errs
}

func (v *Validator) collect(s interface{}, errs *Errors) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %T: %w", s, err)
	}
	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), message(fe))
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "min":
		return fmt.Sprintf(msgMinLength, fe.Param())
	case "max":
		return fmt.Sprintf(msgMaxLength, fe.Param())
	case "email":
		return msgInvalidEmail
	default:
		return msgInvalid
	}
}

func normalizeUser(p *models.UserPayload) {
	p.Username = strings.TrimSpace(p.Username)
	p.Password = strings.TrimSpace(p.Password)
	p.PasswordConfirmation = strings.TrimSpace(p.PasswordConfirmation)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = normalizeEmail(p.Email)
}

// normalizeEmail lowercases the domain part only; the local part is case sensitive.
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}

func similarityAttributes(p *models.UserPayload) []Attribute {
	attrs := []Attribute{
		{Name: "username", Value: p.Username},
		{Name: "first name", Value: p.FirstName},
		{Name: "last name", Value: p.LastName},
		{Name: "email address", Value: p.Email},
	}
	if at := strings.LastIndex(p.Email, "@"); at > 0 {
		attrs = append(attrs, Attribute{Name: "email address", Value: p.Email[:at]})
	}
	return attrs
}
