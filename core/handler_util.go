package core

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// respondError sends unified error payload {"error": {"code", "message"}}.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}

// respondValidationError sends a 422 with per-field detail.
func respondValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": gin.H{
		"code":    "VALIDATION_ERROR",
		"message": "request validation failed",
		"fields":  fields,
	}})
}

// respondStoreError logs the underlying store failure and surfaces a generic
// error. Deadline and connectivity failures map to 503 so clients know to
// retry; nothing from the store error text leaks to the client.
func respondStoreError(c *gin.Context, err error) {
	log.Printf("store error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		respondError(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "store temporarily unavailable, retry later")
		return
	}
	respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "unexpected server error")
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

func parsePagination(pageStr, perPageStr string) (int, int, error) {
	page := 1
	perPage := defaultPerPage
	if strings.TrimSpace(pageStr) != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p <= 0 {
			return 0, 0, errors.New("page must be a positive integer")
		}
		page = p
	}
	if strings.TrimSpace(perPageStr) != "" {
		p, err := strconv.Atoi(perPageStr)
		if err != nil || p <= 0 {
			return 0, 0, errors.New("per_page must be a positive integer")
		}
		if p > maxPerPage {
			p = maxPerPage
		}
		perPage = p
	}
	return page, perPage, nil
}

func calcTotalPages(total, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

var (
	alphanumericRe = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	emailRe        = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	birthdayRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

func validateUsername(username string) string {
	if len(username) < 5 {
		return "username must be at least 5 characters"
	}
	if !alphanumericRe.MatchString(username) {
		return "username contains non alphanumeric characters - not allowed"
	}
	return ""
}

func validateEmail(email string) string {
	if !emailRe.MatchString(email) {
		return "email does not appear to be valid"
	}
	return ""
}

// parseBirthday accepts an optional YYYY-MM-DD date. Empty input is valid
// and yields a nil date.
func parseBirthday(birthday string) (*time.Time, string) {
	if strings.TrimSpace(birthday) == "" {
		return nil, ""
	}
	if !birthdayRe.MatchString(birthday) {
		return nil, "invalid date, use format YYYY-MM-DD"
	}
	t, err := time.Parse("2006-01-02", birthday)
	if err != nil {
		return nil, "invalid date, use format YYYY-MM-DD"
	}
	return &t, ""
}

// userResponse strips secret material from a user record for JSON output.
func userResponse(u *UserRecord) gin.H {
	favorites := u.FavoriteMovies
	if favorites == nil {
		favorites = []int64{}
	}
	resp := gin.H{
		"id":             u.ID,
		"username":       u.Username,
		"email":          u.Email,
		"favoriteMovies": favorites,
		"created_at":     u.CreatedAt,
	}
	if u.BirthDate != nil {
		resp["birthDate"] = u.BirthDate.Format("2006-01-02")
	}
	return resp
}
