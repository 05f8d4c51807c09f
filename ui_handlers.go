package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/starfederation/datastar-go/datastar"
)

type panelPatch struct {
	selector string
	mode     datastar.ElementPatchMode
	template string
	data     any
}

// streamPatches renders every patch before opening the stream so a template
// failure can still be answered with a plain error status.
func streamPatches(w http.ResponseWriter, r *http.Request, patches []panelPatch) {
	rendered := make([]string, len(patches))
	for i, p := range patches {
		html, err := renderTemplate(p.template, p.data)
		if err != nil {
			log.WithError(err).WithField("template", p.template).Error("render patch")
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		rendered[i] = html
	}

	sse := datastar.NewSSE(w, r)
	for i, p := range patches {
		if err := sse.PatchElements(rendered[i], datastar.WithSelector(p.selector), datastar.WithMode(p.mode)); err != nil {
			log.WithError(err).WithField("selector", p.selector).Debug("patch elements")
			return
		}
	}
}

// handleUINode fetches one resource and patches its children into the
// node's tree container along with the attribute and status panels.
func (s *server) handleUINode(w http.ResponseWriter, r *http.Request) {
	sess, ok := getSession(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id := firstNonEmpty(r.URL.Query().Get("id"), sess.BaseID)
	token := s.generations.Begin(sess.ID, panelNavigation)

	view, err := s.platform.fetchResource(r.Context(), sess, id)
	if !s.generations.Current(sess.ID, panelNavigation, token) {
		log.WithFields(logrus.Fields{"identifier": id, "generation": token}).Debug("discarding stale navigation result")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		log.WithError(err).WithField("identifier", id).Warn("fetch resource")
		streamPatches(w, r, []panelPatch{
			{selector: "#url", mode: datastar.ElementPatchModeOuter, template: "url", data: s.platform.resourceURL(sess, id).String()},
			{selector: "#error", mode: datastar.ElementPatchModeOuter, template: "error", data: statusLine(err)},
		})
		return
	}

	patches := []panelPatch{
		{selector: "#url", mode: datastar.ElementPatchModeOuter, template: "url", data: view.URL},
		{selector: "#error", mode: datastar.ElementPatchModeOuter, template: "error", data: ""},
	}
	if view.IsBase {
		patches = append(patches, panelPatch{selector: "#resources", mode: datastar.ElementPatchModeInner, template: "tree-root", data: view})
	} else {
		patches = append(patches, panelPatch{selector: "#" + view.ContainerID, mode: datastar.ElementPatchModeInner, template: "tree-children", data: view.Children})
	}
	patches = append(patches,
		panelPatch{selector: "#attributes", mode: datastar.ElementPatchModeOuter, template: "attributes", data: view.Attributes},
		panelPatch{selector: "#response", mode: datastar.ElementPatchModeOuter, template: "response", data: (*actionResult)(nil)},
	)
	// Actions still in flight must not repaint the cleared response panel.
	s.generations.Begin(sess.ID, panelResponse)
	streamPatches(w, r, patches)
}

// handleUIAction runs one content operation and patches the response panel.
func (s *server) handleUIAction(w http.ResponseWriter, r *http.Request) {
	sess, ok := getSession(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	kind := actionKind(chi.URLParam(r, "kind"))
	href := r.URL.Query().Get("href")
	if href == "" {
		http.Error(w, "missing href", http.StatusBadRequest)
		return
	}

	token := s.generations.Begin(sess.ID, panelResponse)
	var (
		result actionResult
		err    error
	)
	switch kind {
	case actionRetrieve:
		result, err = s.platform.retrieveAction(r.Context(), sess, href)
	case actionExecute:
		result, err = s.platform.executeAction(r.Context(), sess, href)
	case actionCreate:
		result, err = s.platform.createAction(r.Context(), sess, href, r.URL.Query().Get("payload"))
	default:
		http.NotFound(w, r)
		return
	}
	logger := log.WithFields(logrus.Fields{"kind": kind, "href": href, "status": result.Status})
	if err != nil {
		logger.WithError(err).Warn("content action failed")
	}
	if !s.generations.Current(sess.ID, panelResponse, token) {
		logger.WithField("generation", token).Debug("discarding stale action result")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	streamPatches(w, r, []panelPatch{
		{selector: "#response", mode: datastar.ElementPatchModeOuter, template: "response", data: &result},
	})
}
