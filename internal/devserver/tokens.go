package devserver

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

func signAccessToken(userID string, isAdmin bool, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"admin": isAdmin,
		"exp":   time.Now().Add(accessTokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func signRefreshToken(userID string, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"typ": "refresh",
		"exp": time.Now().Add(refreshTokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func parseToken(raw string, secret []byte) (jwt.MapClaims, error) {
	t, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !t.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("cannot parse claims")
	}
	return claims, nil
}

// validateRefresh checks the signature, the refresh type marker and the
// stored row (revocation + expiry), returning the owning user id.
func validateRefresh(db *gorm.DB, raw string, secret []byte) (string, error) {
	claims, err := parseToken(raw, secret)
	if err != nil {
		return "", err
	}
	if typ, ok := claims["typ"]; !ok || typ != "refresh" {
		return "", errors.New("not a refresh token")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return "", errors.New("missing subject")
	}

	var stored RefreshToken
	if err := db.Where("token = ?", raw).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errors.New("refresh token not found")
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	if stored.Revoked {
		return "", errors.New("refresh token revoked")
	}
	if time.Now().Unix() > stored.ExpiresAt {
		return "", errors.New("refresh token expired")
	}
	return sub, nil
}

func saveRefreshToken(db *gorm.DB, token, userID string) error {
	row := RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(refreshTokenTTL).Unix(),
	}
	if err := db.Create(&row).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func revokeRefreshToken(db *gorm.DB, token string) error {
	return db.Model(&RefreshToken{}).Where("token = ?", token).Update("revoked", true).Error
}

// issueTokenPair mints and persists a fresh access/refresh pair for a user.
func (s *Server) issueTokenPair(db *gorm.DB, u *User) (access, refreshToken string, err error) {
	access, err = signAccessToken(u.ID, u.IsAdmin, s.jwtSecret)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = signRefreshToken(u.ID, s.refreshSecret)
	if err != nil {
		return "", "", err
	}
	if err := saveRefreshToken(db, refreshToken, u.ID); err != nil {
		return "", "", err
	}
	return access, refreshToken, nil
}
