// Package apierr maps domain failures to HTTP status codes and writes
// them as JSON {"message": ...} bodies.
package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/assignportal/internal/app/system/jsonutil"
	"go.uber.org/zap"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindAlreadyDecided
	KindTooManyRequests
)

var statusByKind = map[Kind]int{
	KindInternal:        http.StatusInternalServerError,
	KindValidation:      http.StatusBadRequest,
	KindUnauthenticated: http.StatusUnauthorized,
	KindForbidden:       http.StatusForbidden,
	KindNotFound:        http.StatusNotFound,
	KindConflict:        http.StatusBadRequest, // duplicate username keeps the historical 400
	KindAlreadyDecided:  http.StatusConflict,
	KindTooManyRequests: http.StatusTooManyRequests,
}

// Status returns the HTTP status code for k.
func (k Kind) Status() int {
	if s, ok := statusByKind[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is a classified error with a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(k Kind, msg string) *Error { return &Error{Kind: k, Message: msg} }

func Validation(msg string) *Error      { return newErr(KindValidation, msg) }
func Unauthenticated(msg string) *Error { return newErr(KindUnauthenticated, msg) }
func Forbidden(msg string) *Error       { return newErr(KindForbidden, msg) }
func NotFound(msg string) *Error        { return newErr(KindNotFound, msg) }
func Conflict(msg string) *Error        { return newErr(KindConflict, msg) }
func AlreadyDecided(msg string) *Error  { return newErr(KindAlreadyDecided, msg) }
func TooManyRequests(msg string) *Error { return newErr(KindTooManyRequests, msg) }

// Internal wraps an unexpected fault. The fault's text is echoed to the
// caller after prefix, e.g. "Error uploading assignment: <err>".
func Internal(prefix string, err error) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf("%s: %v", prefix, err), Err: err}
}

// KindOf returns the Kind of err; unclassified errors are KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status returns the HTTP status code for err.
func Status(err error) int {
	return KindOf(err).Status()
}

// Message is the JSON body for every non-2xx response (and for simple
// success acknowledgements).
type Message struct {
	Message string `json:"message"`
}

// Write sends err as a JSON {"message"} response. Internal faults are
// logged at error level; everything else at debug.
func Write(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = Internal("Internal server error", err)
	}

	status := e.Kind.Status()
	if log != nil {
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			log.Error("request failed", fields...)
		} else {
			log.Debug("request rejected", fields...)
		}
	}

	jsonutil.Write(w, status, Message{Message: e.Message})
}

// Recoverer turns a panic in next into a 500 JSON response. http.ErrAbortHandler
// is re-panicked so net/http can abort the connection.
func Recoverer(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				if log != nil {
					log.Error("panic recovered", zap.Any("panic", rec), zap.Stack("stack"))
				}
				Write(w, r, log, Internal("Internal server error", fmt.Errorf("panic: %v", rec)))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
