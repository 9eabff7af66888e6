package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// HeaderRequestID carries the request identifier on requests and responses.
const HeaderRequestID = "X-Request-ID"

type requestIDKey struct{}

// RequestID assigns each request an identifier, reusing a valid incoming
// X-Request-ID header, and echoes it on the response.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(r.Header.Get(HeaderRequestID))
			if err != nil {
				id = uuid.New()
			}

			w.Header().Set(HeaderRequestID, id.String())
			ctx := context.WithValue(r.Context(), requestIDKey{}, id.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFrom returns the request identifier stored in ctx.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
