package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUINodeRequiresSession(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	rec := serve(router, httptest.NewRequest(http.MethodGet, "/ui/node?id=base1", nil), nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUINodePatchesBaseTree(t *testing.T) {
	platform := withUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(baseResponse))
	})

	router, _ := newTestRouter(t, platform)
	cookies := login(t, router, "base1", "/om2m")
	rec := serve(router, httptest.NewRequest(http.MethodGet, "/ui/node?id=base1", nil), cookies)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/event-stream"))
	body := rec.Body.String()
	for _, want := range []string{"datastar-patch-elements", "#resources", "#attributes", "#url", "accessRights", "creationTime"} {
		assert.Contains(t, body, want)
	}
	assert.Contains(t, body, "selector #response", "a successful fetch clears the response panel")
	assert.Contains(t, body, `<div id="response"></div>`)
}

func TestUINodeSupersedesPendingAction(t *testing.T) {
	platform := withUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(baseResponse))
	})

	router, s := newTestRouter(t, platform)
	cookies := login(t, router, "base1", "/om2m")
	sess := sessionFromCookies(t, cookies)
	pending := s.generations.Begin(sess.ID, panelResponse)

	serve(router, httptest.NewRequest(http.MethodGet, "/ui/node?id=base1", nil), cookies)

	assert.False(t, s.generations.Current(sess.ID, panelResponse, pending), "an action started before navigation must not repaint")
}

func TestUINodePatchesChildContainer(t *testing.T) {
	platform := withUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<application><containersReference>base1/apps/lamp/containers</containersReference></application>`))
	})

	router, _ := newTestRouter(t, platform)
	cookies := login(t, router, "base1", "/om2m")
	rec := serve(router, httptest.NewRequest(http.MethodGet, "/ui/node?id=base1/apps/lamp", nil), cookies)

	body := rec.Body.String()
	assert.Contains(t, body, "#"+containerID("base1/apps/lamp"))
	assert.NotContains(t, body, "selector #resources", "no root patch for non-base resource")
	assert.Contains(t, body, "containers")
}

func TestUINodeUpstreamErrorPatchesErrorPanel(t *testing.T) {
	platform := withUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	router, _ := newTestRouter(t, platform)
	cookies := login(t, router, "base1", "/om2m")
	rec := serve(router, httptest.NewRequest(http.MethodGet, "/ui/node?id=gone", nil), cookies)

	body := rec.Body.String()
	assert.Contains(t, body, "#error")
	assert.Contains(t, body, "404 error Not Found")
	assert.NotContains(t, body, "#attributes", "attributes stay untouched on failure")
	assert.NotContains(t, body, "selector #response")
}

func TestUINodeDiscardsStaleResult(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	platform := withUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/slow") {
			close(entered)
			<-release
			_, _ = w.Write([]byte(`<slow><aReference>x</aReference></slow>`))
			return
		}
		_, _ = w.Write([]byte(`<fast><bReference>y</bReference></fast>`))
	})

	router, _ := newTestRouter(t, platform)
	cookies := login(t, router, "base1", "/om2m")

	var wg sync.WaitGroup
	var slow *httptest.ResponseRecorder
	wg.Add(1)
	go func() {
		defer wg.Done()
		slow = serve(router, httptest.NewRequest(http.MethodGet, "/ui/node?id=slow", nil), cookies)
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "slow request never reached the platform")
	}

	fast := serve(router, httptest.NewRequest(http.MethodGet, "/ui/node?id=fast", nil), cookies)
	close(release)
	wg.Wait()

	assert.Contains(t, fast.Body.String(), containerID("fast"))
	assert.Equal(t, http.StatusNoContent, slow.Code)
	assert.NotContains(t, slow.Body.String(), "datastar-patch-elements")
}

func TestUIActionExecutePatchesResponse(t *testing.T) {
	var gotMethod, gotPath string
	platform := withUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	router, _ := newTestRouter(t, platform)
	cookies := login(t, router, "base1", "/om2m")
	rec := serve(router, httptest.NewRequest(http.MethodPost, "/ui/actions/execute?href=base1/apps/lamp/toggle", nil), cookies)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/om2m/base1/apps/lamp/toggle", gotPath)
	body := rec.Body.String()
	assert.Contains(t, body, "#response")
	assert.Contains(t, body, "Successful POST request.")
}

func TestUIActionRetrieveFailureShowsStatus(t *testing.T) {
	platform := withUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	router, _ := newTestRouter(t, platform)
	cookies := login(t, router, "base1", "/om2m")
	rec := serve(router, httptest.NewRequest(http.MethodPost, "/ui/actions/retrieve?href=lamp/state", nil), cookies)

	assert.Contains(t, rec.Body.String(), "GET request failed: 503")
}

func TestUIActionRejectsUnknownKind(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	cookies := login(t, router, "base1", "/om2m")
	rec := serve(router, httptest.NewRequest(http.MethodPost, "/ui/actions/delete?href=x", nil), cookies)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUIActionRequiresHref(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	cookies := login(t, router, "base1", "/om2m")
	rec := serve(router, httptest.NewRequest(http.MethodPost, "/ui/actions/execute", nil), cookies)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// sessionFromCookies loads the stored session behind a login cookie.
func sessionFromCookies(t *testing.T, cookies []*http.Cookie) sessionData {
	t.Helper()
	for _, c := range cookies {
		if c.Name != sessionManager.Cookie.Name {
			continue
		}
		sess, ok := getSession(requestWithSession(t, c.Value))
		require.True(t, ok, "expected stored session")
		return sess
	}
	require.FailNow(t, "no session cookie")
	return sessionData{}
}
