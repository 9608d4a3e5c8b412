package middleware

import (
	"net/http"
	"strings"

	"github.com/marcovaldez/tiendapos-backend/internal/identity"
	"github.com/marcovaldez/tiendapos-backend/pkg/logger"
)

const (
	employeeSessionHeader = "X-Employee-Session"
	terminalSessionHeader = "X-Terminal-Session"
)

// Identity resolves whoever is behind the request and seeds the context.
// It never rejects: bad or stale credentials simply resolve to the
// unauthenticated actor and the route gates decide what that may do.
func Identity(resolver *identity.Resolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			creds := identity.Credentials{
				OwnerToken:        bearerToken(r.Header.Get("Authorization")),
				EmployeeSessionID: strings.TrimSpace(r.Header.Get(employeeSessionHeader)),
				TerminalSessionID: strings.TrimSpace(r.Header.Get(terminalSessionHeader)),
			}

			ctx := r.Context()
			res := resolver.Resolve(ctx, creds)
			ctx = WithResolution(ctx, res)

			if logg != nil && res.Actor.IsAuthenticated() {
				ref := ""
				if id := res.Actor.Ref(); id != nil {
					ref = id.String()
				}
				ctx = logg.WithActor(ctx, string(res.Actor.Kind), ref)
				if res.Actor.BusinessID != nil {
					ctx = logg.WithBusinessID(ctx, res.Actor.BusinessID.String())
				}
				if res.Actor.BranchID != nil {
					ctx = logg.WithBranchID(ctx, res.Actor.BranchID.String())
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
