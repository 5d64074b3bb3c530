package util

import (
	"net/http"
	"testing"

	"snaketests_backend/internal/config"
)

func TestUsernameRules(t *testing.T) {
	tests := []struct {
		username string
		charsOK  bool
		reserved bool
	}{
		{"dave", true, false},
		{"Dave2023", true, false},
		{"da ve", false, false},
		{"da_ve", false, false},
		{"dave!", false, false},
		{"Admin", true, true},
		{"ADMINISTRATOR", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			if got := UsernameCharsOK(tt.username); got != tt.charsOK {
				t.Errorf("UsernameCharsOK(%q) = %v, want %v", tt.username, got, tt.charsOK)
			}
			if got := IsReservedUsername(tt.username); got != tt.reserved {
				t.Errorf("IsReservedUsername(%q) = %v, want %v", tt.username, got, tt.reserved)
			}
		})
	}
}

func TestEmailShapeOK(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"dave@mail.com", true},
		{"dave@ab.io", true},
		{"dave@a.io", false},
		{"dave@x.y", false},
		{"dave@localhost", false},
		{"dave mail@mail.com", false},
		{"dave.mail.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := EmailShapeOK(tt.email); got != tt.want {
				t.Errorf("EmailShapeOK(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestErrorKindStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrAuthenticationRequired, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrQuizNotFound, http.StatusNotFound},
		{ErrMalformedUUID, http.StatusBadRequest},
		{NewError(KindUnsupportedFieldType, "x"), http.StatusUnsupportedMediaType},
		{NewError(KindFieldLengthViolation, "x"), http.StatusLengthRequired},
		{ErrInvalidChoice, http.StatusNotAcceptable},
		{ErrAttemptFinished, http.StatusConflict},
		{ErrNotImplemented, http.StatusNotImplemented},
		{http.ErrServerClosed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := KindOf(tt.err).Status(); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFormErrors(t *testing.T) {
	errs := FormErrors{}
	if errs.Err() != nil {
		t.Fatal("empty FormErrors must convert to nil error")
	}
	errs.Add("email", "first")
	errs.Add("email", "second")
	if errs["email"] != "first" {
		t.Errorf("Add must keep the first message, got %q", errs["email"])
	}
	if errs.Err() == nil {
		t.Fatal("non-empty FormErrors must be an error")
	}
}

func TestPaginationApply(t *testing.T) {
	p := NewPagination(config.PaginationConfig{PostsPerPage: 10, QuizzesPerPage: 5})
	p.Apply(config.PaginationConfig{PostsPerPage: 20})
	if p.PostsPerPage() != 20 || p.QuizzesPerPage() != 5 {
		t.Errorf("got posts=%d quizzes=%d", p.PostsPerPage(), p.QuizzesPerPage())
	}
}
