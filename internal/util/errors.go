package util

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

// ErrorKind 错误类别，决定 HTTP 状态码
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindAuthenticationRequired
	KindForbidden
	KindNotFound
	KindMalformedIdentifier
	KindBadRequest
	KindUnsupportedFieldType
	KindFieldLengthViolation
	KindFieldValueRejected
	KindAttemptFinished
	KindAttemptConflict
	KindNotImplemented
)

func (k ErrorKind) Status() int {
	switch k {
	case KindAuthenticationRequired:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindMalformedIdentifier, KindBadRequest:
		return http.StatusBadRequest
	case KindUnsupportedFieldType:
		return http.StatusUnsupportedMediaType
	case KindFieldLengthViolation:
		return http.StatusLengthRequired
	case KindFieldValueRejected:
		return http.StatusNotAcceptable
	case KindAttemptFinished, KindAttemptConflict:
		return http.StatusConflict
	case KindNotImplemented:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// AppError 携带类别的业务错误
type AppError struct {
	Kind    ErrorKind
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// KindOf 提取错误类别，非 AppError 视为内部错误
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

var (
	ErrAuthenticationRequired = NewError(KindAuthenticationRequired, "Unauthorized. Log In")
	ErrForbidden              = NewError(KindForbidden, "Forbidden. Bad credentials")
	ErrMalformedUUID          = NewError(KindMalformedIdentifier, "Bad request. Inept UUID format")
	ErrNotImplemented         = NewError(KindNotImplemented, "This feature is not implemented")
	ErrInvalidCredentials     = NewError(KindAuthenticationRequired, "Invalid username or password")

	ErrUserNotFound     = NewError(KindNotFound, "A user with this UUID does not exist")
	ErrPostNotFound     = NewError(KindNotFound, "A post with this UUID does not exist")
	ErrQuizNotFound     = NewError(KindNotFound, "A quiz with this UUID does not exist")
	ErrResultNotFound   = NewError(KindNotFound, "A result with this UUID does not exist")
	ErrQuestionNotFound = NewError(KindNotFound, "No question found at this position")

	ErrInvalidChoice    = NewError(KindFieldValueRejected, "Not acceptable. The option does not belong to the current question")
	ErrQuizEmpty        = NewError(KindFieldValueRejected, "Not acceptable. The quiz has no questions")
	ErrAttemptFinished  = NewError(KindAttemptFinished, "The attempt is already finished")
	ErrAttemptConflict  = NewError(KindAttemptConflict, "The attempt was updated concurrently, reload the question")
	ErrQuizInProgress   = NewError(KindAttemptConflict, "The quiz has attempts in progress, questions cannot be added, moved or removed")
	ErrInvalidResetLink = NewError(KindBadRequest, "That token is invalid or has already expired")
)

// FormErrors 表单字段级错误，页面接口以 200 返回并内联展示
type FormErrors map[string]string

func (f FormErrors) Add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f FormErrors) Any() bool {
	return len(f) > 0
}

// Err 没有字段错误时返回 nil
func (f FormErrors) Err() error {
	if !f.Any() {
		return nil
	}
	return f
}

func (f FormErrors) Error() string {
	fields := make([]string, 0, len(f))
	for k := range f {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, k := range fields {
		parts = append(parts, k+": "+f[k])
	}
	return "form invalid: " + strings.Join(parts, "; ")
}
