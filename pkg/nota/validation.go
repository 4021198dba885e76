package nota

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

const emailRegexString = `\S+@\S+\.\S+`

var emailRegex = regexp.MustCompile(emailRegexString)

var (
	defaultValidator = validator.New()
	defaultEn        = en.New()
	uni              = ut.New(defaultEn, defaultEn)
	trans, _         = uni.GetTranslator(defaultEn.Locale())
)

func init() {
	if err := entranslations.RegisterDefaultTranslations(defaultValidator, trans); err != nil {
		panic(fmt.Errorf("register default translations: %w", err))
	}

	defaultValidator.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	rules := []struct {
		tag string
		fn  validator.Func
		msg string
	}{
		{"notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		}, "{0} must not be blank"},
		{"fieldtype", func(fl validator.FieldLevel) bool {
			return FieldType(fl.Field().String()).IsValid()
		}, "{0} must be one of " + strings.Join(fieldTypeNames(), ", ")},
		{"emailish", func(fl validator.FieldLevel) bool {
			return emailRegex.MatchString(fl.Field().String())
		}, "{0} must be an email address"},
	}
	for _, r := range rules {
		mustRegisterRule(r.tag, r.fn, r.msg)
	}
}

// mustRegisterRule registers a custom tag with its message and panics on
// failure.
func mustRegisterRule(tag string, fn validator.Func, msg string) {
	if err := registerRule(tag, fn, msg); err != nil {
		panic(err)
	}
}

func registerRule(tag string, fn validator.Func, msg string) error {
	if err := defaultValidator.RegisterValidation(tag, fn); err != nil {
		return fmt.Errorf("register validation: %w", err)
	}
	if err := defaultValidator.RegisterTranslation(
		tag,
		trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		},
	); err != nil {
		return fmt.Errorf("register translation: %w", err)
	}
	return nil
}

func fieldTypeNames() []string {
	types := FieldTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}

// firstViolation converts the first failure of a struct validation into a
// ValidationError. Field is the json path relative to the struct.
func firstViolation(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return err
	}
	e := errs[0]
	path := e.Namespace()
	if i := strings.Index(path, "."); i >= 0 {
		path = path[i+1:]
	}
	msg := e.Translate(trans)
	if i := strings.LastIndex(path, "."); i >= 0 {
		msg = path[:i] + ": " + msg
	}
	return &ValidationError{Field: path, Rule: e.Tag(), Message: msg}
}

// Credentials is the login and signup form.
type Credentials struct {
	Email           string
	Password        string
	ConfirmPassword string
}

// check is one credential rule: value must satisfy tag, otherwise message.
type check struct {
	field   string
	value   string
	tag     string
	message string
}

// ValidateLogin requires both email and password.
func (c Credentials) ValidateLogin() error {
	return runChecks([]check{
		{"email", c.Email, "required", "All fields are required"},
		{"password", c.Password, "required", "All fields are required"},
	})
}

// ValidateSignup applies the signup form rules in order and reports the
// first violation.
func (c Credentials) ValidateSignup() error {
	if err := runChecks([]check{
		{"email", c.Email, "required", "All fields are required"},
		{"password", c.Password, "required", "All fields are required"},
		{"confirmPassword", c.ConfirmPassword, "required", "All fields are required"},
		{"password", c.Password, "min=8", "Password must be at least 8 characters long"},
		{"email", c.Email, "emailish", "Invalid email address"},
		{"email", c.Email, "excludesall=<>", "Invalid characters in name or email"},
		{"password", c.Password, "excludesall=<>", "Invalid characters in password"},
	}); err != nil {
		return err
	}
	if err := defaultValidator.VarWithValue(c.ConfirmPassword, c.Password, "eqfield"); err != nil {
		return &ValidationError{Field: "confirmPassword", Rule: "eqfield", Message: "Passwords do not match"}
	}
	return nil
}

func runChecks(checks []check) error {
	for _, ch := range checks {
		if err := defaultValidator.Var(ch.value, ch.tag); err != nil {
			rule := ch.tag
			if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
				rule = errs[0].Tag()
			}
			return &ValidationError{Field: ch.field, Rule: rule, Message: ch.message}
		}
	}
	return nil
}
