package main

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeObix(xml string) string {
	return base64.StdEncoding.EncodeToString([]byte(xml))
}

func TestDecodeContentNonObjRootIsOneRow(t *testing.T) {
	view := decodeContent(encodeObix(`<str name="state" val="on"><str name="nested" val="x"/></str>`))
	assert.Empty(t, view.Error)
	require.Len(t, view.Entries, 1)
	assert.Equal(t, &nameValue{Name: "state", Value: "on"}, view.Entries[0].Row)
}

func TestDecodeContentRowsAndOperations(t *testing.T) {
	view := decodeContent(encodeObix(`<obj>
  <str name="type" val="LAMP"/>
  <op name="get" href="lamp/state" is="retrieve"/>
  <obj name="skipped"/>
  <op name="toggle" href="lamp/toggle" is="execute"/>
  <op name="weird" href="lamp/other" is="delete"/>
  <str name="location" val="Home"/>
</obj>`))

	require.Len(t, view.Entries, 4)
	assert.Equal(t, "type", view.Entries[0].Row.Name)
	require.NotNil(t, view.Entries[1].Action)
	assert.Equal(t, contentAction{Name: "get", Kind: actionRetrieve, Href: "lamp/state"}, *view.Entries[1].Action)
	require.NotNil(t, view.Entries[2].Action)
	assert.Equal(t, actionExecute, view.Entries[2].Action.Kind)
	assert.Equal(t, "location", view.Entries[3].Row.Name)
}

func TestDecodeContentCreateWithoutMatchHasNoAction(t *testing.T) {
	view := decodeContent(encodeObix(`<obj>
  <op name="add" href="lamp/create" is="create" in="lampIn"/>
  <str name="other" href="somethingElse" val="1"/>
</obj>`))

	for _, e := range view.Entries {
		assert.Nil(t, e.Action)
	}
}

func TestDecodeContentCreateCarriesMatchingSibling(t *testing.T) {
	view := decodeContent(encodeObix(`<obj>
  <op name="add" href="lamp/create" is="create" in="lampIn"/>
  <obj href="lampIn"><bool name="on" val="true"/></obj>
</obj>`))

	require.Len(t, view.Entries, 1)
	action := view.Entries[0].Action
	require.NotNil(t, action)
	assert.Equal(t, actionCreate, action.Kind)
	assert.Equal(t, "lamp/create", action.Href)

	raw, err := base64.StdEncoding.DecodeString(action.Payload)
	require.NoError(t, err)
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(raw))
	assert.Equal(t, "obj", doc.Root().Tag)
	assert.Equal(t, "lampIn", doc.Root().SelectAttrValue("href", ""))
	assert.True(t, strings.Contains(string(raw), `name="on"`))
}

func TestDecodeContentReportsBadInput(t *testing.T) {
	assert.NotEmpty(t, decodeContent("!!!").Error)
	assert.NotEmpty(t, decodeContent(encodeObix("<<<")).Error)
	assert.NotEmpty(t, decodeContent("").Error)
}
