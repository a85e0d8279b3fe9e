package auth

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

const (
	msgInvalidEmail     = "Please enter a valid email address"
	msgWeakPassword     = "Password does not meet requirements"
	msgPasswordMismatch = "Passwords do not match"
	msgTermsRequired    = "You must accept the terms and conditions"
	msgUsernameRequired = "Please enter your username"
	msgPasswordRequired = "Please enter your password"

	minPasswordLength = 8
	defaultRole       = "user"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// fieldMessages maps json field name to message, optionally narrowed by the
// failing tag as "field/tag".
var fieldMessages = map[string]string{
	"email":             msgInvalidEmail,
	"password":          msgWeakPassword,
	"password/required": msgPasswordRequired,
	"confirmPassword":   msgPasswordMismatch,
	"terms":             msgTermsRequired,
	"username":          msgInvalidEmail,
	"username/required": msgUsernameRequired,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("shopemail", func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return ValidPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("loginname", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return !strings.Contains(name, "@") || ValidEmail(name)
	})
	return v
}

// ValidEmail reports whether s has the local@domain.tld shape.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidPassword requires at least eight characters with a lowercase letter,
// an uppercase letter and a digit.
func ValidPassword(s string) bool {
	if utf8.RuneCountInString(s) < minPasswordLength {
		return false
	}
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return lower && upper && digit
}

// check runs the struct tags of form and collects one message per field.
func check(form interface{}) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.WrapError(domain.ErrCodeInvalidInput, "invalid form", err)
	}
	v := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		msg, ok := fieldMessages[fe.Field()+"/"+fe.Tag()]
		if !ok {
			msg = fieldMessages[fe.Field()]
		}
		v.Add(fe.Field(), msg)
	}
	return v.Err()
}

// RegistrationForm is the data collected by the sign-up form.
type RegistrationForm struct {
	Username        string `json:"username"`
	Email           string `json:"email" validate:"shopemail"`
	Password        string `json:"password" validate:"min=8,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	Role            string `json:"role"`
	Terms           bool   `json:"terms" validate:"eq=true"`
}

func (f RegistrationForm) Validate() error {
	return check(f)
}

func (f RegistrationForm) request() repository.RegisterRequest {
	role := strings.TrimSpace(f.Role)
	if role == "" {
		role = defaultRole
	}
	username := strings.TrimSpace(f.Username)
	if username == "" {
		username = f.Email
	}
	return repository.RegisterRequest{
		Username:        username,
		Email:           f.Email,
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
		Role:            role,
		Terms:           f.Terms,
	}
}

// Credentials is the data collected by the login form. Username may be an
// email address, in which case it has to be a valid one.
type Credentials struct {
	Username string `json:"username" validate:"required,loginname"`
	Password string `json:"password" validate:"required,min=8,strongpassword"`
	Remember bool   `json:"remember"`
}

func (c Credentials) Validate() error {
	c.Username = strings.TrimSpace(c.Username)
	return check(c)
}

func (c Credentials) request() repository.LoginRequest {
	return repository.LoginRequest{
		Username: strings.TrimSpace(c.Username),
		Password: c.Password,
		Remember: c.Remember,
	}
}

// ResetForm is the data collected by the forgot-password form.
type ResetForm struct {
	Email           string `json:"email" validate:"shopemail"`
	Password        string `json:"password" validate:"min=8,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

func (f ResetForm) Validate() error {
	return check(f)
}

func (f ResetForm) request() repository.ResetPasswordRequest {
	return repository.ResetPasswordRequest{
		Email:           f.Email,
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
	}
}
