package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func (s *Server) resolveRegister(c echo.Context, vars json.RawMessage) (map[string]any, error) {
	var v struct {
		Data struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
		} `json:"data"`
	}
	if err := decodeVars(vars, &v); err != nil {
		return nil, err
	}
	if v.Data.Email == "" || v.Data.Password == "" {
		return nil, gqlErrorf("BAD_USER_INPUT", "email and password are required")
	}

	var existing User
	err := s.DB.Where("email = ?", v.Data.Email).First(&existing).Error
	if err == nil {
		return nil, gqlErrorf("CONFLICT", "email %s is already registered", v.Data.Email)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(v.Data.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := User{Email: v.Data.Email, Name: v.Data.Name, PasswordHash: string(hash)}
	if err := s.DB.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	access, refreshToken, err := s.issueTokenPair(s.DB, &user)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.publish(c, "user_events", user.ID, map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})
	return map[string]any{"register": map[string]any{
		"user":         user.toAPI(),
		"accessToken":  access,
		"refreshToken": refreshToken,
	}}, nil
}

func (s *Server) resolveLogin(c echo.Context, vars json.RawMessage) (map[string]any, error) {
	var v struct {
		Data struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		} `json:"data"`
	}
	if err := decodeVars(vars, &v); err != nil {
		return nil, err
	}

	var user User
	if err := s.DB.Where("email = ?", v.Data.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gqlErrorf("INVALID_CREDENTIALS", "invalid email or password")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(v.Data.Password)) != nil {
		return nil, gqlErrorf("INVALID_CREDENTIALS", "invalid email or password")
	}

	access, refreshToken, err := s.issueTokenPair(s.DB, &user)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.publish(c, "user_events", user.ID, map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
		"email":  user.Email,
	})
	return map[string]any{"login": map[string]any{
		"user":         user.toAPI(),
		"accessToken":  access,
		"refreshToken": refreshToken,
	}}, nil
}

func (s *Server) resolveMe(c echo.Context) (map[string]any, error) {
	user, err := s.currentUser(c)
	if err != nil {
		return nil, err
	}
	return map[string]any{"me": user.toAPI()}, nil
}

func (s *Server) resolveUpdateProfile(c echo.Context, vars json.RawMessage) (map[string]any, error) {
	user, err := s.currentUser(c)
	if err != nil {
		return nil, err
	}
	var v struct {
		Data struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"data"`
	}
	if err := decodeVars(vars, &v); err != nil {
		return nil, err
	}

	if v.Data.Name != "" {
		user.Name = v.Data.Name
	}
	if v.Data.Email != "" && v.Data.Email != user.Email {
		var other User
		err := s.DB.Where("email = ? AND id <> ?", v.Data.Email, user.ID).First(&other).Error
		if err == nil {
			return nil, gqlErrorf("CONFLICT", "email %s is already registered", v.Data.Email)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check email: %w", err)
		}
		user.Email = v.Data.Email
	}
	if err := s.DB.Save(user).Error; err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return map[string]any{"updateProfile": user.toAPI()}, nil
}

func (s *Server) resolveChangePassword(c echo.Context, vars json.RawMessage) (map[string]any, error) {
	user, err := s.currentUser(c)
	if err != nil {
		return nil, err
	}
	var v struct {
		Data struct {
			CurrentPassword string `json:"currentPassword"`
			NewPassword     string `json:"newPassword"`
		} `json:"data"`
	}
	if err := decodeVars(vars, &v); err != nil {
		return nil, err
	}
	if v.Data.NewPassword == "" {
		return nil, gqlErrorf("BAD_USER_INPUT", "new password is required")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(v.Data.CurrentPassword)) != nil {
		return nil, gqlErrorf("INVALID_CREDENTIALS", "current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(v.Data.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	if err := s.DB.Save(user).Error; err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return map[string]any{"changePassword": true}, nil
}

func (s *Server) resolveDeleteAccount(c echo.Context) (map[string]any, error) {
	user, err := s.currentUser(c)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(&RefreshToken{}).Where("user_id = ?", user.ID).Update("revoked", true).Error; err != nil {
		return nil, fmt.Errorf("revoke tokens: %w", err)
	}
	if err := s.DB.Delete(&User{}, "id = ?", user.ID).Error; err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	return map[string]any{"deleteAccount": true}, nil
}

// handleRefresh is the auxiliary REST endpoint: exchange a refresh token
// for a rotated pair.
func (s *Server) handleRefresh(c echo.Context) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}

	userID, err := validateRefresh(s.DB, req.Token, s.refreshSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "cannot rotate token: "+err.Error())
	}

	var user User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}

	if err := revokeRefreshToken(s.DB, req.Token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	access, refreshToken, err := s.issueTokenPair(s.DB, &user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"accessToken":  access,
		"refreshToken": refreshToken,
	})
}
