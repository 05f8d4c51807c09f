package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/ansel1/merry"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
)

type sessionContextKey struct{}

type apiHandlers struct {
	platform *platformClient
}

func registerAPI(api huma.API, platform *platformClient) {
	group := huma.NewGroup(api, "/api")
	group.UseMiddleware(sessionMiddleware(api))

	h := &apiHandlers{platform: platform}
	huma.Get(group, "/resource", h.handleResource)
	huma.Get(group, "/actions/retrieve", h.handleRetrieve)
	huma.Post(group, "/actions/execute", h.handleExecute)
	huma.Post(group, "/actions/create", h.handleCreate)
}

func sessionMiddleware(api huma.API) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		req, _ := humachi.Unwrap(ctx)
		sess, ok := getSession(req)
		if !ok {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(huma.WithValue(ctx, sessionContextKey{}, sess))
	}
}

func sessionFromContext(ctx context.Context) (sessionData, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(sessionData)
	if !ok {
		return sessionData{}, false
	}
	return sess, true
}

func requireSession(ctx context.Context) (sessionData, error) {
	sess, ok := sessionFromContext(ctx)
	if !ok || sess.ID == "" {
		return sessionData{}, huma.Error401Unauthorized("unauthorized")
	}
	return sess, nil
}

// apiError turns a platform failure into a huma error carrying the status
// line as detail.
func apiError(err error) error {
	code := merry.HTTPCode(err)
	if code < 400 {
		code = http.StatusBadGateway
	}
	return huma.NewError(code, statusLine(err))
}

type resourceInput struct {
	ID string `query:"id" doc:"Resource identifier relative to the API context; defaults to the session's base resource"`
}

type resourceOutput struct {
	Body resourceView
}

func (h *apiHandlers) handleResource(ctx context.Context, input *resourceInput) (*resourceOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	id := firstNonEmpty(input.ID, sess.BaseID)
	view, err := h.platform.fetchResource(ctx, sess, id)
	if err != nil {
		log.WithError(err).WithField("identifier", id).Warn("api fetch resource")
		return nil, apiError(err)
	}
	return &resourceOutput{Body: view}, nil
}

type hrefInput struct {
	Href string `query:"href" required:"true" minLength:"1"`
}

type actionOutput struct {
	Body actionResult
}

func (h *apiHandlers) handleRetrieve(ctx context.Context, input *hrefInput) (*actionOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	result, err := h.platform.retrieveAction(ctx, sess, strings.TrimSpace(input.Href))
	if err != nil {
		return nil, apiError(err)
	}
	return &actionOutput{Body: result}, nil
}

func (h *apiHandlers) handleExecute(ctx context.Context, input *hrefInput) (*actionOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	result, err := h.platform.executeAction(ctx, sess, strings.TrimSpace(input.Href))
	if err != nil {
		return nil, apiError(err)
	}
	return &actionOutput{Body: result}, nil
}

type createInput struct {
	Body struct {
		Href    string `json:"href" minLength:"1"`
		Payload string `json:"payload" doc:"Base64 encoded XML document to post"`
	}
}

func (h *apiHandlers) handleCreate(ctx context.Context, input *createInput) (*actionOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	result, err := h.platform.createAction(ctx, sess, strings.TrimSpace(input.Body.Href), input.Body.Payload)
	if err != nil {
		return nil, apiError(err)
	}
	return &actionOutput{Body: result}, nil
}
