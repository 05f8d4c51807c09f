package main

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCommandPrintsResource(t *testing.T) {
	var gotPath, gotUser string
	platform := withUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, _, _ = r.BasicAuth()
		_, _ = w.Write([]byte(baseResponse))
	})

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"get", "base1", "--url", platform.base.String(), "--context", "om2m", "--user", "operator", "--password", "pw"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "/om2m/base1", gotPath)
	assert.Equal(t, "operator", gotUser)
	text := out.String()
	for _, want := range []string{"sclBase base1", "accessRights", "applications", "creationTime", "2014-01-01T00:00:00Z"} {
		assert.Contains(t, text, want)
	}
}

func TestGetCommandReportsStatusLine(t *testing.T) {
	platform := withUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"get", "base1", "--url", platform.base.String()})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, "403 error Forbidden", err.Error())
}

func TestGetCommandRequiresIdentifier(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"get"})
	require.Error(t, cmd.Execute())
}

func TestPrintResourceCollections(t *testing.T) {
	view := resourceView{
		ID:       "base1/apps/lamp/ci",
		RootName: "contentInstances",
		Children: []treeEntry{{
			Kind:  entryCollection,
			Label: "contentInstance",
			Items: []treeEntry{
				{Kind: entryReference, Label: "CI_1", Target: "base1/apps/lamp/ci/CI_1"},
			},
		}},
		Attributes: []attributeField{
			{Kind: fieldURIList, Name: "members", Values: []string{"a", "b"}},
			{Kind: fieldContent, Name: "content", Content: &contentView{Entries: []contentEntry{
				{Row: &nameValue{Name: "type", Value: "LAMP"}},
				{Action: &contentAction{Kind: actionExecute, Href: "lamp/toggle"}},
			}}},
		},
	}

	var out bytes.Buffer
	printResource(&out, view)
	text := out.String()
	assert.Contains(t, text, "contentInstance")
	assert.Contains(t, text, "(1)")
	assert.Contains(t, text, "CI_1")
	assert.Contains(t, text, "a, b")
	assert.Contains(t, text, "type=LAMP, [execute lamp/toggle]")
	assert.True(t, strings.Index(text, "Children") < strings.Index(text, "Attributes"))
}
