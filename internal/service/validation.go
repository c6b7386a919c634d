package service

import (
	"fmt"
	"strings"
)

// ValidationError is a client-side check that failed before any request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func required(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "required"}
}

// Validate checks the sign-up form. All name and credential fields are required.
func (r SignUpRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.FirstName) == "":
		return required("firstName")
	case strings.TrimSpace(r.LastName) == "":
		return required("lastName")
	case strings.TrimSpace(r.Email) == "":
		return required("email")
	case r.Password == "":
		return required("password")
	case len(r.Roles) == 0:
		return required("roles")
	}
	return nil
}

// Validate checks the sign-in form.
func (r SignInRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return required("email")
	}
	if r.Password == "" {
		return required("password")
	}
	return nil
}

// Validate checks a create-task payload.
func (r CreateTaskRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return required("title")
	}
	if r.Priority != "" {
		if _, ok := ParsePriority(string(r.Priority)); !ok {
			return &ValidationError{Field: "priority", Message: fmt.Sprintf("invalid priority: %s", r.Priority)}
		}
	}
	if r.Status != "" {
		if _, ok := ParseStatus(string(r.Status)); !ok {
			return &ValidationError{Field: "status", Message: fmt.Sprintf("invalid status: %s", r.Status)}
		}
	}
	return nil
}

// Validate checks an edit payload. An edit must change something, and a
// title, when given, cannot be blanked.
func (r EditTaskRequest) Validate() error {
	if r.Empty() {
		return &ValidationError{Message: "nothing to update"}
	}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return required("title")
	}
	return nil
}

// Validate checks a comment payload.
func (r CommentRequest) Validate() error {
	if strings.TrimSpace(r.TaskID) == "" {
		return required("taskId")
	}
	if strings.TrimSpace(r.Content) == "" {
		return required("content")
	}
	return nil
}
