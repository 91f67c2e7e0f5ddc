package http

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"
)

const sessionCookie = "sid"

type session struct {
	userID    string
	email     string
	expiresAt time.Time
}

// sessionManager keeps login sessions in memory. A restart logs
// everyone out, which is acceptable for a single-admin dashboard.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[string]session
	ttl      time.Duration
}

func newSessionManager(ttl time.Duration) *sessionManager {
	return &sessionManager{
		sessions: make(map[string]session),
		ttl:      ttl,
	}
}

func (m *sessionManager) create(userID, email string) (string, time.Time) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in serious trouble.
		panic(err)
	}
	sid := hex.EncodeToString(buf)
	expires := time.Now().Add(m.ttl)

	m.mu.Lock()
	m.sessions[sid] = session{userID: userID, email: email, expiresAt: expires}
	m.mu.Unlock()

	return sid, expires
}

func (m *sessionManager) lookup(sid string) (session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sid]
	if !ok {
		return session{}, false
	}
	if time.Now().After(s.expiresAt) {
		delete(m.sessions, sid)
		return session{}, false
	}
	return s, true
}

func (m *sessionManager) destroy(sid string) {
	m.mu.Lock()
	delete(m.sessions, sid)
	m.mu.Unlock()
}

// CleanExpired drops expired sessions and returns how many were
// removed. Named to satisfy cache.Cleaner so the session store shares
// the cache manager's cleanup cycle.
func (m *sessionManager) CleanExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	removed := 0
	for sid, s := range m.sessions {
		if now.After(s.expiresAt) {
			delete(m.sessions, sid)
			removed++
		}
	}
	return removed
}

func (m *sessionManager) fromRequest(r *http.Request) (session, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return session{}, false
	}
	return m.lookup(cookie.Value)
}

func setSessionCookie(w http.ResponseWriter, sid string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
