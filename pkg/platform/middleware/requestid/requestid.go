// Package requestid assigns a correlation ID to every request.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"attestgate/pkg/requestcontext"
)

// Header carries the correlation ID back to the caller and accepts one from
// trusted upstream proxies.
const Header = "X-Request-Id"

// Middleware ensures each request carries a correlation ID in context and in
// the response headers. Apply it first in the chain.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
