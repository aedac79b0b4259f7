package middlewares

import (
	"log"
	"net/http"
	"os"
	"rba/src/db"
	"rba/src/models"
	"rba/src/types"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

// resolveSession parses the bearer token into {id, role} and loads the
// account row. Token issuance lives outside this service; only resolution
// happens here.
func resolveSession(ctx *gin.Context) (*models.User, bool) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		return nil, false
	}
	parts := strings.Split(bearerToken, " ")
	if len(parts) < 2 || parts[1] == "" {
		return nil, false
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		return nil, false
	}
	if !tkn.Valid {
		return nil, false
	}
	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		return nil, false
	}
	var user models.User
	err = db.GetDb().
		Model(&models.User{}).
		Where("id = ?", uid).
		First(&user).
		Error
	if err != nil {
		return nil, false
	}
	if user.IsSuspended {
		return nil, false
	}
	return &user, true
}

func AuthMiddleware(ctx *gin.Context) {
	user, ok := resolveSession(ctx)
	if !ok {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}
	ctx.Set("id", user.ID.String())
	ctx.Set("email", user.Email)
	ctx.Set("role", user.Role)
}

// OptionalAuthMiddleware seeds the session context when a valid bearer
// token is present but lets anonymous requests through. Room listing is the
// one anonymous surface.
func OptionalAuthMiddleware(ctx *gin.Context) {
	user, ok := resolveSession(ctx)
	if !ok {
		return
	}
	ctx.Set("id", user.ID.String())
	ctx.Set("email", user.Email)
	ctx.Set("role", user.Role)
}

func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role := ctx.GetString("role")
		for _, allowed := range roles {
			if role == allowed {
				return
			}
		}
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Forbidden"})
	}
}

func SecureHeaders(ctx *gin.Context) {
	ctx.Header("X-Frame-Options", "DENY")
	ctx.Header("X-Content-Type-Options", "nosniff")
	ctx.Header("Referrer-Policy", "strict-origin-when-cross-origin")
}

// CurrentUserID returns the authenticated actor id seeded by the session
// middlewares; uuid.Nil for anonymous requests.
func CurrentUserID(ctx *gin.Context) uuid.UUID {
	id, err := uuid.Parse(ctx.GetString("id"))
	if err != nil {
		return uuid.Nil
	}
	return id
}
