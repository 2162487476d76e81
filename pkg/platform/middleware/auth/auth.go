// Package auth binds bearer credentials to a caller address in context.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"attestgate/pkg/domain"
	dErrors "attestgate/pkg/domain-errors"
	"attestgate/pkg/platform/httputil"
	"attestgate/pkg/requestcontext"
)

// Validator validates a bearer token and returns the caller address it binds.
type Validator interface {
	Validate(tokenString string) (domain.Address, error)
}

// Authenticate resolves the Authorization header into a caller address when
// present. It never rejects: role checks live in the services, and pure query
// endpoints stay reachable without credentials.
func Authenticate(validator Validator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
				addr, err := validator.Validate(token)
				if err != nil {
					logger.WarnContext(ctx, "rejected bearer token",
						"request_id", requestcontext.RequestID(ctx),
						"error", err,
					)
					httputil.WriteError(w, err)
					return
				}
				ctx = requestcontext.WithCaller(ctx, addr)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCaller rejects requests that did not authenticate. Mount it on
// routes whose services need a caller identity.
func RequireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestcontext.Caller(r.Context()).IsZero() {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
