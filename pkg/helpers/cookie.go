package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"

	// the refresh token is only sent to /api/users/{refresh,logout}
	refreshCookiePath = "/api/users"
)

// AuthCookies writes the token pair as HttpOnly cookies.
type AuthCookies struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

func NewAuthCookies(domain string, secure bool) *AuthCookies {
	return &AuthCookies{Domain: domain, Secure: secure, SameSite: http.SameSiteLaxMode}
}

func (a *AuthCookies) SetPair(c *gin.Context, access string, accessExp time.Time, refresh string, refreshExp time.Time) {
	http.SetCookie(c.Writer, a.cookie(AccessCookie, access, "/", secondsUntil(accessExp)))
	http.SetCookie(c.Writer, a.cookie(RefreshCookie, refresh, refreshCookiePath, secondsUntil(refreshExp)))
}

// Clear expires both cookies.
func (a *AuthCookies) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, a.cookie(AccessCookie, "", "/", -1))
	http.SetCookie(c.Writer, a.cookie(RefreshCookie, "", refreshCookiePath, -1))
}

func (a *AuthCookies) cookie(name, value, path string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   a.Domain,
		MaxAge:   maxAge,
		Secure:   a.Secure,
		HttpOnly: true,
		SameSite: a.SameSite,
	}
}

func secondsUntil(exp time.Time) int {
	if sec := int(time.Until(exp).Seconds()); sec > 0 {
		return sec
	}
	return 0
}
