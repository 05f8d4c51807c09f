package main

import (
	"io"
	"net/http"
	"strings"
)

type loginPage struct {
	Error   string
	BaseID  string
	Context string
}

type browsePage struct {
	Username string
	Script   string
	Error    string
	View     resourceView
	Response *actionResult
}

func renderTemplate(name string, data any) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeHTMLTemplate(w http.ResponseWriter, status int, name string, data any) {
	html, err := renderTemplate(name, data)
	if err != nil {
		log.WithError(err).WithField("template", name).Error("render template")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	setNoCacheHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, html)
}
