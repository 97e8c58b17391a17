package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-console-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-console-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired accepts only verified access tokens and places the caller's
// session on the request context. It must run after jwtauth.Verifier.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.HandleError(w, user.ErrInvalidToken)
				return
			}

			tokenType, ok := claims["type"].(string)
			if tokenType != "access" || !ok {
				response.HandleError(w, user.ErrInvalidToken)
				return
			}

			session, err := sessionFromClaims(claims)
			if err != nil {
				response.HandleError(w, err)
				return
			}
			session.Token = jwtauth.TokenFromHeader(r)

			next.ServeHTTP(w, r.WithContext(user.WithSession(r.Context(), session)))
		}
		return http.HandlerFunc(hfn)
	}
}

func sessionFromClaims(claims map[string]interface{}) (user.Session, error) {
	userID, ok := user.ClaimID(claims["user_id"])
	if !ok {
		return user.Session{}, user.ErrInvalidToken
	}

	roleStr, _ := claims["role"].(string)
	role := user.Role(roleStr)
	if !role.IsValid() {
		return user.Session{}, user.ErrUnknownRole
	}

	email, _ := claims["email"].(string)

	return user.Session{
		UserID:     userID,
		Email:      email,
		DivisionID: user.OptionalClaimID(claims["division_id"]),
		Role:       role,
	}, nil
}
