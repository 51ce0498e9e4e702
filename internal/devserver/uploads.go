package devserver

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// handleUploadTarget issues a presigned-style pair pointing back at this
// server. The client PUTs the bytes directly to uploadUrl afterwards.
func (s *Server) handleUploadTarget(c echo.Context) error {
	if _, err := s.currentUser(c); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid access token")
	}

	var req struct {
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.FileName) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "fileName is required")
	}

	key := uuid.NewString() + sanitizeExt(req.FileName)
	url := fmt.Sprintf("%s/uploads/objects/%s", s.publicURL, key)
	return c.JSON(http.StatusOK, map[string]string{
		"uploadUrl": url,
		"imageUrl":  url,
	})
}

func (s *Server) handleUploadPut(c echo.Context) error {
	key := filepath.Base(c.Param("key"))
	if key == "." || key == "/" || key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid key")
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	dst, err := os.Create(filepath.Join(s.uploadDir, key))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer dst.Close()

	if _, err := io.Copy(dst, c.Request().Body); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	for _, r := range ext {
		if r != '.' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
