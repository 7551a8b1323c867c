package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret string

const passwordResetPurpose = "password_reset"

func InitJWTSecret(secret string) error {
	if secret == "" {
		return fmt.Errorf("JWT secret is empty")
	}
	jwtSecret = secret
	return nil
}

func GenerateJWT(userID uint, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     time.Now().Add(time.Hour * 168).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

func VerifyJWT(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("Invalid or expired token")
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		// Reset tokens are single-purpose and must not open a session.
		if purpose, _ := claims["purpose"].(string); purpose != "" {
			return nil, fmt.Errorf("Invalid or expired token")
		}
	}

	return token, nil
}

// GeneratePasswordResetToken issues a short-lived token carried in the
// password-reset email link.
func GeneratePasswordResetToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"purpose": passwordResetPurpose,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// VerifyPasswordResetToken checks a reset token and returns the user it was
// issued for.
func VerifyPasswordResetToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})

	if err != nil || !token.Valid {
		return 0, fmt.Errorf("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("Invalid token claims")
	}

	if purpose, _ := claims["purpose"].(string); purpose != passwordResetPurpose {
		return 0, fmt.Errorf("Invalid or expired token")
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("Invalid user ID in token claims")
	}

	return uint(userIDFloat), nil
}
