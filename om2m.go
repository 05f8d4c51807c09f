package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ansel1/merry"
	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 8 << 20

// platformClient issues authenticated calls against one platform base URL.
type platformClient struct {
	base   *url.URL
	client *http.Client
}

func newPlatformClient(base *url.URL, timeout time.Duration) *platformClient {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &platformClient{base: base, client: &http.Client{Timeout: timeout}}
}

const (
	categoryError       = "error"
	categoryTimeout     = "timeout"
	categoryParserError = "parsererror"
)

// upstreamError describes a failed platform call the way the panels report
// it: numeric status (0 for transport failures), category and message.
type upstreamError struct {
	Status   int
	Category string
	Message  string
}

func (e upstreamError) Error() string {
	return fmt.Sprintf("%d %s %s", e.Status, e.Category, e.Message)
}

// statusLine is the one-line text written into the error and response panels.
func statusLine(err error) string {
	if err == nil {
		return ""
	}
	var ue upstreamError
	if errors.As(err, &ue) {
		return ue.Error()
	}
	return fmt.Sprintf("0 %s %s", categoryError, err.Error())
}

func upstreamStatus(err error) (int, string) {
	var ue upstreamError
	if errors.As(err, &ue) {
		return ue.Status, ue.Message
	}
	return 0, err.Error()
}

// apiStatus maps a platform status onto the status the JSON API answers with.
func apiStatus(status int) int {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return status
	default:
		return http.StatusBadGateway
	}
}

func (c *platformClient) resourceURL(sess sessionData, ref string) *url.URL {
	ref = strings.TrimLeft(strings.TrimSpace(ref), "/")
	p, query, _ := strings.Cut(ref, "?")
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + normalizeContext(sess.Context) + "/" + p
	u.RawPath = ""
	u.RawQuery = query
	u.Fragment = ""
	return &u
}

func (c *platformClient) do(ctx context.Context, sess sessionData, method, ref string, body []byte) ([]byte, int, error) {
	target := c.resourceURL(sess, ref)
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, 0, err
	}
	req.SetBasicAuth(sess.Username, sess.Password)
	req.Header.Set("Accept", "application/xml")
	if body != nil {
		req.Header.Set("Content-Type", "application/xml")
	}

	logger := log.WithFields(logrus.Fields{"method": method, "url": target.String()})
	resp, err := c.client.Do(req)
	if err != nil {
		logger.WithError(err).Warn("upstream request failed")
		return nil, 0, transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, transportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.WithField("status", resp.StatusCode).Info("upstream returned failure status")
		ue := upstreamError{
			Status:   resp.StatusCode,
			Category: categoryError,
			Message:  statusText(resp),
		}
		return nil, resp.StatusCode, merry.WithHTTPCode(ue, apiStatus(resp.StatusCode))
	}
	return data, resp.StatusCode, nil
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func transportError(err error) error {
	category := categoryError
	code := http.StatusBadGateway
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		category = categoryTimeout
		code = http.StatusGatewayTimeout
	}
	return merry.WithHTTPCode(upstreamError{Status: 0, Category: category, Message: err.Error()}, code)
}

func parseXML(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, merry.WithHTTPCode(upstreamError{Status: http.StatusOK, Category: categoryParserError, Message: err.Error()}, http.StatusBadGateway)
	}
	if doc.Root() == nil {
		return nil, merry.WithHTTPCode(upstreamError{Status: http.StatusOK, Category: categoryParserError, Message: "empty document"}, http.StatusBadGateway)
	}
	return doc, nil
}

// fetchResource issues the authenticated GET for one resource and classifies
// the response.
func (c *platformClient) fetchResource(ctx context.Context, sess sessionData, id string) (resourceView, error) {
	id = strings.TrimSpace(id)
	data, _, err := c.do(ctx, sess, http.MethodGet, id, nil)
	if err != nil {
		return resourceView{}, err
	}
	doc, err := parseXML(data)
	if err != nil {
		return resourceView{}, err
	}
	return classifyResource(id, c.resourceURL(sess, id).String(), doc.Root()), nil
}

func (c *platformClient) retrieveAction(ctx context.Context, sess sessionData, href string) (actionResult, error) {
	result := actionResult{Kind: actionRetrieve, Href: href}
	start := time.Now()
	data, status, err := c.do(ctx, sess, http.MethodGet, href, nil)
	if err == nil {
		var doc *etree.Document
		doc, err = parseXML(data)
		if err == nil {
			result.OK = true
			result.Status = status
			result.Message = "Successful GET Request:"
			result.Rows = retrievedRows(doc.Root())
		}
	}
	if err != nil {
		status, msg := upstreamStatus(err)
		result.Status = status
		result.Message = fmt.Sprintf("GET request failed: %d %s", status, msg)
	}
	log.WithFields(logrus.Fields{"href": href, "ok": result.OK, "duration": time.Since(start).String()}).Debug("retrieve action")
	return result, err
}

// retrievedRows lists the children of an obj response, or the root itself
// when the platform answered with a bare value element.
func retrievedRows(root *etree.Element) []nameValue {
	if root.Tag != "obj" {
		return []nameValue{{Name: root.SelectAttrValue("name", ""), Value: root.SelectAttrValue("val", "")}}
	}
	children := root.ChildElements()
	rows := make([]nameValue, 0, len(children))
	for _, child := range children {
		rows = append(rows, nameValue{Name: child.SelectAttrValue("name", ""), Value: child.SelectAttrValue("val", "")})
	}
	return rows
}

func (c *platformClient) executeAction(ctx context.Context, sess sessionData, href string) (actionResult, error) {
	_, status, err := c.do(ctx, sess, http.MethodPost, href, nil)
	return postResult(actionExecute, href, status, err), err
}

// createAction posts the decoded payload. payload is the base64 text carried
// by the create button.
func (c *platformClient) createAction(ctx context.Context, sess sessionData, href, payload string) (actionResult, error) {
	body, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		err = merry.WithHTTPCode(fmt.Errorf("decode payload: %w", err), http.StatusBadRequest)
		return actionResult{Kind: actionCreate, Href: href, Message: "Post request failed: 0 " + err.Error()}, err
	}
	_, status, err := c.do(ctx, sess, http.MethodPost, href, body)
	return postResult(actionCreate, href, status, err), err
}

// postResult treats every 2xx, 204 No Content included, as success.
func postResult(kind actionKind, href string, status int, err error) actionResult {
	result := actionResult{Kind: kind, Href: href}
	if err != nil {
		status, msg := upstreamStatus(err)
		result.Status = status
		result.Message = fmt.Sprintf("Post request failed: %d %s", status, msg)
		return result
	}
	result.OK = true
	result.Status = status
	result.Message = "Successful POST request."
	return result
}
