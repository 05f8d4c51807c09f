package main

import (
	"context"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/google/uuid"
)

const sessionKey = "session"

var sessionManager = newSessionManager(sessionTTL, false)

func init() {
	gob.Register(sessionData{})
}

func newSessionManager(ttl time.Duration, secure bool) *scs.SessionManager {
	manager := scs.New()
	manager.Store = memstore.New()
	manager.Lifetime = ttl
	manager.Cookie.Name = "rb_session"
	manager.Cookie.Path = "/"
	manager.Cookie.HttpOnly = true
	manager.Cookie.SameSite = http.SameSiteLaxMode
	manager.Cookie.Secure = secure
	return manager
}

// createSession replaces whatever the request carried with a fresh session
// holding the platform credentials and navigation roots.
func createSession(ctx context.Context, username, password, baseID, apiContext string) (sessionData, error) {
	if err := sessionManager.RenewToken(ctx); err != nil {
		return sessionData{}, err
	}
	sess := sessionData{
		ID:        uuid.NewString(),
		Username:  username,
		Password:  password,
		BaseID:    baseID,
		Context:   normalizeContext(apiContext),
		CreatedAt: time.Now(),
	}
	sessionManager.Put(ctx, sessionKey, sess)
	return sess, nil
}

func getSession(r *http.Request) (sessionData, bool) {
	sess, ok := sessionManager.Get(r.Context(), sessionKey).(sessionData)
	if !ok || sess.ID == "" {
		return sessionData{}, false
	}
	return sess, true
}

func destroySession(ctx context.Context) error {
	return sessionManager.Destroy(ctx)
}
