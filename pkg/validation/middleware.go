package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
)

// DefaultMaxBodyBytes caps request bodies read by ValidateJSON.
const DefaultMaxBodyBytes = 8 << 20

type decodedKey struct{}

// Middleware validates HTTP request bodies before they reach a handler.
type Middleware struct {
	maxBodyBytes int64
}

// NewMiddleware returns a middleware reading at most maxBodyBytes of each
// body. A non-positive limit selects DefaultMaxBodyBytes.
func NewMiddleware(maxBodyBytes int64) *Middleware {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Middleware{maxBodyBytes: maxBodyBytes}
}

// ValidateJSON decodes the body into a new value of proto's type, runs the
// struct rules on it and stores a pointer to it in the request context.
// Decode and rule failures are answered with 400 and the error list.
func (m *Middleware) ValidateJSON(proto any) func(http.Handler) http.Handler {
	typ := reflect.TypeOf(proto)
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			val := reflect.New(typ).Interface()

			body := http.MaxBytesReader(w, r.Body, m.maxBodyBytes)
			if err := json.NewDecoder(body).Decode(val); err != nil {
				writeErrorResponse(w, http.StatusBadRequest, ValidationErrors{{
					Field:   "request_body",
					Code:    CodeInvalid,
					Message: fmt.Sprintf("invalid JSON: %v", err),
				}})
				return
			}

			if errs := Struct(val, ""); len(errs) > 0 {
				writeErrorResponse(w, http.StatusBadRequest, errs)
				return
			}

			ctx := context.WithValue(r.Context(), decodedKey{}, val)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Decoded returns the body stored by ValidateJSON.
func Decoded[T any](ctx context.Context) (*T, bool) {
	v, ok := ctx.Value(decodedKey{}).(*T)
	return v, ok
}

// WriteErrors answers with status and errs in the error list shape.
func WriteErrors(w http.ResponseWriter, status int, errs ValidationErrors) {
	writeErrorResponse(w, status, errs)
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, errs ValidationErrors) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	data, err := MarshalValidationErrors(errs)
	if err != nil {
		w.Write([]byte(`{"error":"validation failed","message":"internal validation error"}`))
		return
	}
	w.Write(data)
}
