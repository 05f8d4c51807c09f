package main

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

// server carries the settings the handlers need beyond the package-level
// session manager.
type server struct {
	cfg          *Config
	platform     *platformClient
	generations  *generationTracker
	authenticate func(cfg LDAPConfig, username, password string) error
}

func newServer(cfg *Config) *server {
	return &server{
		cfg:          cfg,
		platform:     newPlatformClient(cfg.upstream, cfg.RequestTimeout),
		generations:  newGenerationTracker(4096, cfg.SessionTTL),
		authenticate: ldapAuthenticate,
	}
}

type loginForm struct {
	Username string
	Password string
	BaseID   string
	Context  string
}

func extractCredentials(r *http.Request) (loginForm, bool, error) {
	if err := r.ParseForm(); err != nil {
		return loginForm{}, false, err
	}
	form := loginForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
		BaseID:   strings.TrimSpace(r.FormValue("sclId")),
		Context:  strings.TrimSpace(r.FormValue("context")),
	}
	if form.Username == "" || form.Password == "" {
		if username, password, ok := r.BasicAuth(); ok && username != "" && password != "" {
			form.Username, form.Password = username, password
		}
	}
	return form, form.Username != "" && form.Password != "", nil
}

func (s *server) handleRoot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := loginURL(firstNonEmpty(q.Get("context"), s.cfg.DefaultContext), firstNonEmpty(q.Get("sclId"), s.cfg.DefaultBaseID))
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *server) handleLoginGet(w http.ResponseWriter, r *http.Request) {
	s.serveLogin(w, http.StatusOK, r.URL.Query().Get("sclId"), r.URL.Query().Get("context"), "")
}

func (s *server) handleLoginPost(w http.ResponseWriter, r *http.Request) {
	form, ok, err := extractCredentials(r)
	if err != nil {
		s.serveLogin(w, http.StatusBadRequest, "", "", "Invalid form submission.")
		return
	}
	baseID := firstNonEmpty(form.BaseID, s.cfg.DefaultBaseID)
	apiContext := firstNonEmpty(form.Context, s.cfg.DefaultContext)

	// Without the LDAP gate the platform judges the credentials on the first fetch.
	if s.cfg.ldapEnabled() {
		if !ok {
			s.serveLogin(w, http.StatusUnauthorized, baseID, apiContext, "Missing credentials.")
			return
		}
		if err := s.authenticate(s.cfg.LDAP, form.Username, form.Password); err != nil {
			log.WithError(err).WithField("user", form.Username).Warn("ldap auth failed")
			s.serveLogin(w, http.StatusUnauthorized, baseID, apiContext, "Invalid credentials.")
			return
		}
	}

	sess, err := createSession(r.Context(), form.Username, form.Password, baseID, apiContext)
	if err != nil {
		log.WithError(err).WithField("user", form.Username).Error("session create failed")
		s.serveLogin(w, http.StatusInternalServerError, baseID, apiContext, "Login failed.")
		return
	}
	log.WithFields(logrus.Fields{"user": sess.Username, "base": sess.BaseID, "context": sess.Context}).Info("login")
	http.Redirect(w, r, browseURL(sess.BaseID), http.StatusSeeOther)
}

func (s *server) serveLogin(w http.ResponseWriter, status int, baseID, apiContext, message string) {
	writeHTMLTemplate(w, status, "login", loginPage{
		Error:   message,
		BaseID:  firstNonEmpty(strings.TrimSpace(baseID), s.cfg.DefaultBaseID),
		Context: normalizeContext(firstNonEmpty(apiContext, s.cfg.DefaultContext)),
	})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	target := "/login"
	if sess, ok := getSession(r); ok {
		s.generations.Forget(sess.ID)
		target = loginURL(sess.Context, sess.BaseID)
	}
	if err := destroySession(r.Context()); err != nil {
		log.WithError(err).Warn("session destroy failed")
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func loginURL(apiContext, baseID string) string {
	q := url.Values{}
	q.Set("context", apiContext)
	q.Set("sclId", baseID)
	return "/login?" + q.Encode()
}

// handleBrowse renders the whole page for one resource. It also serves as the
// fallback when scripting is unavailable.
func (s *server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	sess, ok := getSession(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	id := firstNonEmpty(r.URL.Query().Get("id"), sess.BaseID)
	s.generations.Begin(sess.ID, panelNavigation)

	page := browsePage{Username: sess.Username, Script: s.cfg.DatastarScript}
	view, err := s.platform.fetchResource(r.Context(), sess, id)
	if err != nil {
		log.WithError(err).WithField("identifier", id).Warn("fetch resource")
		page.Error = statusLine(err)
		view = resourceView{ID: id, URL: s.platform.resourceURL(sess, id).String(), ContainerID: containerID(id)}
	}
	page.View = view
	writeHTMLTemplate(w, http.StatusOK, "browse", page)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

func handleAppCSS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write([]byte(appCSS))
}

const (
	cacheControlValue = "no-store, no-cache, must-revalidate, max-age=0"
	pragmaValue       = "no-cache"
	expiresValue      = "0"
)

func setNoCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", cacheControlValue)
	w.Header().Set("Pragma", pragmaValue)
	w.Header().Set("Expires", expiresValue)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
