// Package apperr maps storage and request failures onto a fixed set of
// (message, code, HTTP status) triples shared by every JSON endpoint.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Codes surfaced in the JSON error envelope. The database codes are SQLSTATE
// values; CodeRowNotFound is the PostgREST code for "no row for a single-row query".
const (
	CodeUniqueViolation     = "23505"
	CodeNotNullViolation    = "23502"
	CodeForeignKeyViolation = "23503"
	CodeUndefinedTable      = "42P01"
	CodeUndefinedColumn     = "42703"
	CodeRowNotFound         = "PGRST116"

	CodeDatabase           = "DB_ERROR"
	CodeUnknown            = "UNKNOWN_ERROR"
	CodeAssertion          = "ASSERTION_FAILED"
	CodeValidation         = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeNotFound           = "NOT_FOUND"
)

const unexpectedMessage = "an unexpected error occurred"

// AppError is an error with a stable code and the HTTP status it renders as.
type AppError struct {
	Message string
	Code    string
	Status  int
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(message, code string, status int) *AppError {
	return &AppError{Message: message, Code: code, Status: status}
}

func Validation(message string) *AppError {
	return New(message, CodeValidation, http.StatusBadRequest)
}

func NotFound(message string) *AppError {
	return New(message, CodeNotFound, http.StatusNotFound)
}

func Unauthorized(message string) *AppError {
	return New(message, CodeUnauthorized, http.StatusUnauthorized)
}

// DBError is the error shape returned by the store's REST layer.
type DBError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

func (e *DBError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type dbErrorEntry struct {
	message string
	status  int
}

var dbErrors = map[string]dbErrorEntry{
	CodeUniqueViolation:     {"this resource already exists", http.StatusConflict},
	CodeNotNullViolation:    {"a required field is missing", http.StatusBadRequest},
	CodeForeignKeyViolation: {"invalid reference", http.StatusBadRequest},
	CodeUndefinedTable:      {"table not found", http.StatusInternalServerError},
	CodeUndefinedColumn:     {"column not found", http.StatusInternalServerError},
	CodeRowNotFound:         {"resource not found", http.StatusNotFound},
}

// HandleDatabaseError converts a storage failure into an AppError. Known codes
// use the fixed table; anything else becomes DB_ERROR with the raw message.
func HandleDatabaseError(err error) *AppError {
	code, message := databaseCode(err)
	if entry, ok := dbErrors[code]; ok {
		return &AppError{Message: entry.message, Code: code, Status: entry.status, Cause: err}
	}
	if message == "" {
		message = "database error"
	}
	return &AppError{Message: message, Code: CodeDatabase, Status: http.StatusInternalServerError, Cause: err}
}

// IsDatabaseError reports whether err carries a recognised storage error shape.
func IsDatabaseError(err error) bool {
	var pgErr *pgconn.PgError
	var dbErr *DBError
	return errors.As(err, &pgErr) || errors.As(err, &dbErr) || errors.Is(err, pgx.ErrNoRows)
}

func databaseCode(err error) (string, string) {
	if err == nil {
		return "", ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.Message
	}
	var dbErr *DBError
	if errors.As(err, &dbErr) {
		return dbErr.Code, dbErr.Message
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return CodeRowNotFound, err.Error()
	}
	return "", err.Error()
}

// ToAppError normalises any error. Errors that are not AppErrors become UNKNOWN_ERROR.
func ToAppError(err error) *AppError {
	if err == nil {
		return New(unexpectedMessage, CodeUnknown, http.StatusInternalServerError)
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Message: err.Error(), Code: CodeUnknown, Status: http.StatusInternalServerError, Cause: err}
}

// Classify picks the translation for a handler failure: AppErrors pass through,
// storage errors go through HandleDatabaseError, everything else through ToAppError.
func Classify(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if IsDatabaseError(err) {
		return HandleDatabaseError(err)
	}
	return ToAppError(err)
}

// FromPanic converts a recovered panic value.
func FromPanic(v any) *AppError {
	if err, ok := v.(error); ok {
		return Classify(err)
	}
	return New(unexpectedMessage, CodeUnknown, http.StatusInternalServerError)
}

// Assert returns nil when condition is truthy, otherwise an AppError with the
// given message. An empty code defaults to ASSERTION_FAILED and a zero status to 400.
func Assert(condition any, message, code string, status int) error {
	if truthy(condition) {
		return nil
	}
	if code == "" {
		code = CodeAssertion
	}
	if status == 0 {
		status = http.StatusBadRequest
	}
	return New(message, code, status)
}

func truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && f == f
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	default:
		return true
	}
}
