package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/AdityaBhosale22/vidtube/internal/auth"
)

const (
	accessCookieName  = "vidtube_access"
	refreshCookieName = "vidtube_refresh"
)

type SessionCookieSecureMode int

const (
	SessionCookieSecureAuto SessionCookieSecureMode = iota
	SessionCookieSecureAlways
)

// SessionCookiePolicy controls SameSite and Secure behaviour on the token
// cookies. SecureAuto marks cookies Secure only when the request arrived over
// TLS, directly or via a trusted proxy.
type SessionCookiePolicy struct {
	SameSite   http.SameSite
	SecureMode SessionCookieSecureMode
}

func DefaultSessionCookiePolicy() SessionCookiePolicy {
	return SessionCookiePolicy{
		SameSite:   http.SameSiteStrictMode,
		SecureMode: SessionCookieSecureAuto,
	}
}

func (p SessionCookiePolicy) secure(r *http.Request) bool {
	if p.SecureMode == SessionCookieSecureAlways {
		return true
	}
	return isSecureRequest(r)
}

func (h *Handler) sessionCookiePolicy() SessionCookiePolicy {
	policy := h.SessionCookiePolicy
	if policy.SameSite == 0 {
		policy.SameSite = http.SameSiteStrictMode
	}
	if policy.SecureMode == 0 {
		policy.SecureMode = SessionCookieSecureAuto
	}
	return policy
}

func setTokenCookie(w http.ResponseWriter, r *http.Request, name, token string, expires time.Time, policy SessionCookiePolicy) {
	if token == "" {
		return
	}
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  expires.UTC(),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   policy.secure(r),
		SameSite: policy.SameSite,
	})
}

func clearTokenCookie(w http.ResponseWriter, r *http.Request, name string, policy SessionCookiePolicy) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   policy.secure(r),
		SameSite: policy.SameSite,
	})
}

func (h *Handler) setSessionCookies(w http.ResponseWriter, r *http.Request, pair auth.TokenPair) {
	policy := h.sessionCookiePolicy()
	setTokenCookie(w, r, accessCookieName, pair.AccessToken, pair.AccessExpiresAt, policy)
	setTokenCookie(w, r, refreshCookieName, pair.RefreshToken, pair.RefreshExpiresAt, policy)
}

// ClearSessionCookies removes both token cookies from the response.
func (h *Handler) ClearSessionCookies(w http.ResponseWriter, r *http.Request) {
	policy := h.sessionCookiePolicy()
	clearTokenCookie(w, r, accessCookieName, policy)
	clearTokenCookie(w, r, refreshCookieName, policy)
}

func isSecureRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	if r.TLS != nil {
		return true
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		for _, p := range strings.Split(proto, ",") {
			if strings.EqualFold(strings.TrimSpace(p), "https") {
				return true
			}
		}
	}
	if r.URL != nil && strings.EqualFold(r.URL.Scheme, "https") {
		return true
	}
	return false
}
