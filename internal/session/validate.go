package session

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		return name
	})
	return v
}

// ValidationError is a form problem shown next to the form, never sent anywhere.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// messages per field and failed rule, in the wording the forms have always used.
var messages = map[string]map[string]string{
	"name":             {"required": "Full name is required"},
	"email":            {"required": "Email is required", "email": "Invalid email format"},
	"phone":            {"required": "Phone number is required", "len": "Invalid phone number format (10 digits required)", "number": "Invalid phone number format (10 digits required)"},
	"address":          {"required": "Address is required"},
	"password":         {"required": "Password is required", "min": "Password must be at least 6 characters long"},
	"confirm_password": {"eqfield": "Passwords do not match"},
}

// firstProblem turns the first failed rule into a ValidationError. Rules are reported in
// field order, so the first problem on the form wins.
func firstProblem(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}
	fe := errs[0]
	if msg, ok := messages[fe.Field()][fe.Tag()]; ok {
		return invalid(fe.Field(), msg)
	}
	return invalid(fe.Field(), fe.Field()+" is invalid")
}

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (f LoginForm) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return firstProblem(validate.Struct(f))
}

type RegisterForm struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,number,len=10"`
	Address         string `json:"address" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=Password"`
}

// Validate checks the form with name, email and address trimmed.
func (f RegisterForm) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Address = strings.TrimSpace(f.Address)
	return firstProblem(validate.Struct(f))
}
