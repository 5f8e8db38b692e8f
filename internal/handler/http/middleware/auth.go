package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired rejects requests without a verified access token that names a company
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		if token == nil {
			response.Unauthorized(w, "Missing token")
			return
		}

		if tokenType, ok := claims["type"].(string); !ok || tokenType != "access" {
			response.Unauthorized(w, "Invalid token type")
			return
		}
		if companyID, ok := claims["company_id"].(string); !ok || companyID == "" {
			response.Unauthorized(w, "Token is not bound to a company")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// TokenFromQuery lets EventSource clients, which cannot set headers, pass ?token=
func TokenFromQuery(r *http.Request) string {
	return r.URL.Query().Get("token")
}
