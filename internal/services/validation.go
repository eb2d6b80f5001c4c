package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/adanyl0v/go-tracker/internal/models"
)

const (
	UsernameMaxLength = 150
	PasswordMinLength = 6
)

const (
	msgRequired        = "This field is required."
	msgInvalidDate     = "Enter a valid date."
	msgDeadlinePast    = "Deadline cannot be in the past."
	msgInvalidChoice   = "Select a valid choice. That choice is not one of the available choices."
	msgInvalidEmail    = "Enter a valid email address."
	msgInvalidUsername = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	msgUsernameTaken   = "A user with that username already exists."
	msgPasswordShort   = "This password is too short. It must contain at least %d characters."
	msgPasswordNumeric = "This password is entirely numeric."
	msgPasswordSimilar = "The password is too similar to the username."
	msgPasswordMatch   = "The two password fields didn't match."
	msgInvalidInput    = "Invalid input. Please correct the errors below."
)

var (
	validate        = validator.New()
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

// ValidationError reports field level problems of a form. Fields maps a
// form field name to its messages, NonField holds messages that do not
// belong to a single field.
type ValidationError struct {
	Fields   map[string][]string
	NonField []string

	// Cause is set when the failure stems from a sentinel error,
	// e.g. ErrUserAlreadyExists.
	Cause error
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) AddNonField(message string) {
	e.NonField = append(e.NonField, message)
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0 && len(e.NonField) == 0
}

// Has reports whether the field has at least one message.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+len(e.NonField))
	parts = append(parts, e.NonField...)
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// orNil keeps callers away from returning a typed nil error.
func (e *ValidationError) orNil() *ValidationError {
	if e.Empty() {
		return nil
	}
	return e
}

// DateOf returns the calendar date of t as UTC midnight, which is how
// deadlines are stored.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type ProjectFields struct {
	Name        string
	Description string
	Deadline    *time.Time
}

// ValidateProject checks project form input against today's date.
// current is the deadline stored on the edited project, nil on create:
// resubmitting it unchanged is accepted even when it already passed.
// It returns nil *ValidationError on success.
func ValidateProject(in ProjectInput, today time.Time, current *time.Time) (ProjectFields, *ValidationError) {
	verr := new(ValidationError)
	fields := ProjectFields{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}

	checkRequiredMax(verr, "name", fields.Name, models.ProjectNameMaxLength)

	raw := strings.TrimSpace(in.Deadline)
	if raw != "" {
		deadline, err := time.Parse(time.DateOnly, raw)
		switch {
		case err != nil:
			verr.Add("deadline", msgInvalidDate)
		case current != nil && deadline.Equal(DateOf(*current)):
			fields.Deadline = &deadline
		case deadline.Before(DateOf(today)):
			verr.Add("deadline", msgDeadlinePast)
		default:
			fields.Deadline = &deadline
		}
	}

	return fields, verr.orNil()
}

type TaskFields struct {
	Title       string
	Description string
	Status      string
}

// ValidateTask checks task form input. An empty status becomes
// defaultStatus, or is a required-field error when defaultStatus is
// empty. The project reference is resolved by the caller.
func ValidateTask(in TaskInput, defaultStatus string) (TaskFields, *ValidationError) {
	verr := new(ValidationError)
	fields := TaskFields{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      strings.TrimSpace(in.Status),
	}

	checkRequiredMax(verr, "title", fields.Title, models.TaskTitleMaxLength)

	if fields.Status == "" {
		fields.Status = defaultStatus
	}
	switch {
	case fields.Status == "":
		verr.Add("status", msgRequired)
	case !models.IsValidTaskStatus(fields.Status):
		verr.Add("status", fmt.Sprintf(
			"Select a valid choice. %s is not one of the available choices.", fields.Status))
	}

	return fields, verr.orNil()
}

// ValidateRegistration checks the registration form. Username
// availability is checked against the store by the caller.
func ValidateRegistration(p RegisterParams) *ValidationError {
	verr := new(ValidationError)

	username := p.Username
	switch {
	case username == "":
		verr.Add("username", msgRequired)
	case utf8.RuneCountInString(username) > UsernameMaxLength:
		verr.Add("username", maxLengthMessage(UsernameMaxLength, username))
	case !usernamePattern.MatchString(username):
		verr.Add("username", msgInvalidUsername)
	}

	if p.Email == "" {
		verr.Add("email", msgRequired)
	} else if err := validate.Var(p.Email, "email,max=254"); err != nil {
		verr.Add("email", msgInvalidEmail)
	}

	if p.Password == "" {
		verr.Add("password1", msgRequired)
	}
	if p.PasswordConfirmation == "" {
		verr.Add("password2", msgRequired)
	}
	if p.Password != "" && p.PasswordConfirmation != "" {
		if p.Password != p.PasswordConfirmation {
			verr.Add("password2", msgPasswordMatch)
		} else {
			checkPasswordStrength(verr, "password2", p.Password, username)
		}
	}

	return verr.orNil()
}

// ValidateLogin only checks that both fields are present; wrong
// credentials are reported by AuthService.Login.
func ValidateLogin(p LoginParams) *ValidationError {
	verr := new(ValidationError)
	if strings.TrimSpace(p.Username) == "" {
		verr.Add("username", msgRequired)
	}
	if p.Password == "" {
		verr.Add("password", msgRequired)
	}
	if !verr.Empty() {
		verr.AddNonField(msgInvalidInput)
	}
	return verr.orNil()
}

func checkPasswordStrength(verr *ValidationError, field, password, username string) {
	if utf8.RuneCountInString(password) < PasswordMinLength {
		verr.Add(field, fmt.Sprintf(msgPasswordShort, PasswordMinLength))
	}
	if isNumeric(password) {
		verr.Add(field, msgPasswordNumeric)
	}
	if username != "" && strings.EqualFold(password, username) {
		verr.Add(field, msgPasswordSimilar)
	}
}

func checkRequiredMax(verr *ValidationError, field, value string, limit int) {
	if value == "" {
		verr.Add(field, msgRequired)
		return
	}
	if utf8.RuneCountInString(value) > limit {
		verr.Add(field, maxLengthMessage(limit, value))
	}
}

func maxLengthMessage(limit int, value string) string {
	return fmt.Sprintf("Ensure this value has at most %d characters (it has %d).",
		limit, utf8.RuneCountInString(value))
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
