package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// UserSessionCookie is the end-user surface session cookie name
const UserSessionCookie = "axialy_ui_session"

// UserTokenLifetime is how long an end-user session token stays valid
const UserTokenLifetime = 24 * time.Hour

// Context keys set by UserAuthRequired
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
)

// UserClaims are the JWT claims carried by the end-user session cookie
type UserClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateUserToken creates a signed session token for an end user
func GenerateUserToken(secret string, userID int64, email string) (string, error) {
	now := time.Now()
	claims := UserClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(UserTokenLifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateUserToken parses and verifies an end-user session token. An
// empty signing key never validates anything.
func ValidateUserToken(secret, tokenString string) (*UserClaims, error) {
	if secret == "" {
		return nil, fmt.Errorf("empty signing secret")
	}
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// SetUserSessionCookie sends the end-user session cookie with the same
// transport policy as the admin surface.
func SetUserSessionCookie(c *gin.Context, token string) {
	secure := RequestIsHTTPS(c)
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteStrictMode
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     UserSessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(UserTokenLifetime.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	})
}

// UserAuthRequired validates the end-user session cookie and puts the
// authenticated identity into the context.
func UserAuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(UserSessionCookie)
		if err != nil || tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Authentication required."})
			c.Abort()
			return
		}

		claims, err := ValidateUserToken(secret, tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Session expired. Please log in again."})
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Next()
	}
}
