package main

import (
	"encoding/base64"
	"strings"

	"github.com/beevik/etree"
)

const (
	referenceMarker    = "Reference"
	collectionMarker   = "Collection"
	contentInstances   = "contentInstanceCollection"
	baseResourceName   = "sclBase"
	nodeIDPrefix       = "n-"
	collectionIDPrefix = "c-"
)

// containerID maps a resource identifier to the HTML id of its tree
// container. Distinct trimmed identifiers map to distinct ids.
func containerID(identifier string) string {
	return nodeIDPrefix + base64.RawURLEncoding.EncodeToString([]byte(strings.TrimSpace(identifier)))
}

func collectionContainerID(owner, collection string) string {
	key := strings.TrimSpace(owner) + "\x00" + collection
	return collectionIDPrefix + base64.RawURLEncoding.EncodeToString([]byte(key))
}

// textContent concatenates every character data node below el.
func textContent(el *etree.Element) string {
	var b strings.Builder
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, tok := range e.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(el)
	return b.String()
}

// attrLocal returns the value of the first attribute whose local name is key,
// whatever its namespace prefix.
func attrLocal(el *etree.Element, key string) string {
	for _, a := range el.Attr {
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			continue
		}
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// classifyResource turns a platform response into tree entries and attribute
// fields, in document order.
func classifyResource(id, rawURL string, root *etree.Element) resourceView {
	view := resourceView{
		ID:          id,
		URL:         rawURL,
		RootName:    root.Tag,
		IsBase:      root.Tag == baseResourceName,
		ContainerID: containerID(id),
	}
	for _, child := range root.ChildElements() {
		name := child.Tag
		switch {
		case strings.Contains(name, referenceMarker):
			target := strings.TrimSpace(textContent(child))
			view.Children = append(view.Children, treeEntry{
				Kind:        entryReference,
				Name:        name,
				Label:       strings.SplitN(name, referenceMarker, 2)[0],
				Target:      target,
				ContainerID: containerID(target),
			})
		case strings.Contains(name, collectionMarker):
			view.Children = append(view.Children, collectionEntry(id, child))
		default:
			view.Attributes = append(view.Attributes, classifyAttribute(child))
		}
	}
	return view
}

func collectionEntry(owner string, el *etree.Element) treeEntry {
	name := el.Tag
	entry := treeEntry{
		Kind:        entryCollection,
		Name:        name,
		Label:       strings.SplitN(name, collectionMarker, 2)[0],
		Target:      owner,
		ContainerID: collectionContainerID(owner, name),
	}
	byHref := strings.Contains(name, contentInstances)
	for _, item := range el.ChildElements() {
		var target string
		if byHref {
			target = strings.TrimSpace(attrLocal(item, "href"))
		} else {
			target = strings.TrimSpace(textContent(item))
		}
		entry.Items = append(entry.Items, treeEntry{
			Kind:        entryReference,
			Name:        item.Tag,
			Label:       attrLocal(item, "id"),
			Target:      target,
			ContainerID: containerID(target),
		})
	}
	return entry
}
