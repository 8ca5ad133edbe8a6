package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/brehash/kscinventory-sub002/internal/apierror"
	"github.com/brehash/kscinventory-sub002/internal/model"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const ActorKey = "actor"

// TokenVerifier checks Firebase ID tokens. *auth.Client implements it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

var _ TokenVerifier = (*auth.Client)(nil)

// FirebaseAuth validates the Bearer ID token on every protected route and
// stores the caller as a model.Actor. The role comes from the "role" custom
// claim; accounts without one are staff.
func FirebaseAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.WithCode(apierror.CodeUnauthorized, "Authentication required"))
			return
		}

		token, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			log.Debug().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("id token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.WithCode(apierror.CodeUnauthorized, "Invalid or expired token"))
			return
		}

		c.Set(ActorKey, actorFromToken(token))
		c.Next()
	}
}

func actorFromToken(t *auth.Token) model.Actor {
	a := model.Actor{UID: t.UID, Role: model.RoleStaff}
	if role, ok := t.Claims["role"].(string); ok && model.ValidRole(role) {
		a.Role = role
	}
	if name, ok := t.Claims["name"].(string); ok {
		a.Name = name
	}
	if email, ok := t.Claims["email"].(string); ok {
		a.Email = email
	}
	return a
}

// RequireRole rejects requests whose role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		actor, ok := c.Get(ActorKey)
		if a, isActor := actor.(model.Actor); !ok || !isActor || !allowed[a.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.WithCode(apierror.CodeForbidden, "Insufficient permissions"))
			return
		}
		c.Next()
	}
}

// GetActor returns the authenticated caller, or the zero Actor on public routes.
func GetActor(c *gin.Context) model.Actor {
	a, _ := c.Get(ActorKey)
	actor, _ := a.(model.Actor)
	return actor
}
