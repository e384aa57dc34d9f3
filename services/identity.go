package services

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"tripmate/models"
)

// PlaceholderUsername names a session whose token carries no usable claims.
const PlaceholderUsername = "currentUser"

// IdentityFromToken rebuilds a user summary from the token's claims. The
// signature and expiry are NOT checked: the client cannot verify the token
// and only the remote decides whether it is still accepted.
func IdentityFromToken(token string) models.User {
	user := models.User{Username: PlaceholderUsername}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return user
	}
	switch id := claims["user_id"].(type) {
	case float64:
		user.ID = int(id)
	case string:
		if n, err := strconv.Atoi(id); err == nil {
			user.ID = n
		}
	}
	if name, ok := claims["username"].(string); ok && name != "" {
		user.Username = name
	} else if sub, err := claims.GetSubject(); err == nil && sub != "" {
		user.Username = sub
	}
	return user
}
