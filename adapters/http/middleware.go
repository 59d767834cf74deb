package http

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkduy/cinevault/internal/domain/user"
	"github.com/nkduy/cinevault/pkg/apperror"
	"github.com/nkduy/cinevault/pkg/auth"
)

// AuthMode selects how the authorization gate treats a missing or
// invalid credential.
type AuthMode int

const (
	// AuthRequired rejects the request unless a valid credential is
	// presented.
	AuthRequired AuthMode = iota
	// AuthOptional lets the request proceed unauthenticated when the
	// credential is absent or fails verification; one handler can then
	// serve both anonymous and authenticated callers.
	AuthOptional
)

// AuthHook runs after identity resolution succeeded. Hook failures are
// never swallowed, in either mode.
type AuthHook func(c *gin.Context) error

const ginContextKeyUserID = "userID"

// Authenticate resolves the caller identity from the bearer credential
// and attaches it to the request context.
func Authenticate(jwtSvc *auth.JWTService, mode AuthMode, hooks ...AuthHook) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			if mode == AuthOptional {
				c.Next()
				return
			}
			abortWithError(c, apperror.NewAuth("Access token is required", string(LocationHeaders)))
			return
		}

		claims, err := jwtSvc.ValidateToken(tokenString)
		if err != nil {
			if mode == AuthOptional {
				// The failure branch is discarded on purpose: an optional
				// gate downgrades a bad credential to an anonymous request.
				c.Next()
				return
			}
			abortWithError(c, verificationError(err))
			return
		}

		c.Set(ginContextKeyUserID, claims.UserID)

		for _, hook := range hooks {
			if err := hook(c); err != nil {
				abortWithError(c, err)
				return
			}
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	tokenString, found := strings.CutPrefix(header, "Bearer ")
	tokenString = strings.TrimSpace(tokenString)
	if !found || tokenString == "" {
		return "", false
	}
	return tokenString, true
}

// verificationError maps a credential verification failure onto an
// AuthError whose message names the underlying reason.
func verificationError(err error) *apperror.Error {
	var message string
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		message = "Token is expired"
	case errors.Is(err, jwt.ErrTokenMalformed):
		message = "Token is malformed"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		message = "Token signature is invalid"
	default:
		message = "Token is invalid"
	}
	return apperror.NewAuth(message, string(LocationHeaders)).
		WithInfo(map[string]any{"reason": err.Error()})
}

// UserIDFromContext returns the identity attached by Authenticate, if
// any. Handlers behind an optional gate must treat a missing identity as
// anonymous, not as an error.
func UserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ginContextKeyUserID)
	if !ok {
		return uuid.Nil, false
	}
	userID, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}
	return userID, true
}

// RequireVerifiedAccount confirms the identified account still exists
// and is verified. The hook only fires when an identity was attached.
func RequireVerifiedAccount(users user.Repository) AuthHook {
	return func(c *gin.Context) error {
		userID, ok := UserIDFromContext(c)
		if !ok {
			return nil
		}

		u, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return apperror.NewNotFound("User not found")
			}
			return err
		}
		if !u.EmailVerified {
			return apperror.NewAuth("Account is not verified", string(LocationHeaders))
		}
		return nil
	}
}
