package main

import (
	"encoding/base64"
	"strings"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
)

const (
	obixObject = "obj"
	obixOp     = "op"
)

// decodeContent decodes the base64 oBIX document carried by a content field
// and lists its values and operations in document order.
func decodeContent(encoded string) contentView {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return contentView{Error: "decode content: " + err.Error()}
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return contentView{Error: "parse content: " + err.Error()}
	}
	root := doc.Root()
	if root == nil {
		return contentView{Error: "parse content: empty document"}
	}

	view := contentView{Root: root.Tag}
	if root.Tag != obixObject {
		view.Entries = append(view.Entries, valueEntry(root))
		return view
	}

	children := root.ChildElements()
	for _, child := range children {
		switch {
		case child.Tag == obixOp:
			if action, ok := contentOperation(child, children); ok {
				view.Entries = append(view.Entries, contentEntry{Action: &action})
			}
		case child.Tag != obixObject:
			view.Entries = append(view.Entries, valueEntry(child))
		}
	}
	return view
}

func valueEntry(el *etree.Element) contentEntry {
	return contentEntry{Row: &nameValue{
		Name:  el.SelectAttrValue("name", ""),
		Value: el.SelectAttrValue("val", ""),
	}}
}

func contentOperation(op *etree.Element, siblings []*etree.Element) (contentAction, bool) {
	action := contentAction{
		Name: op.SelectAttrValue("name", ""),
		Kind: actionKind(op.SelectAttrValue("is", "")),
		Href: op.SelectAttrValue("href", ""),
	}
	switch action.Kind {
	case actionRetrieve, actionExecute:
		return action, true
	case actionCreate:
		in := op.SelectAttrValue("in", "")
		for _, sibling := range siblings {
			if sibling == op || sibling.Tag == obixOp {
				continue
			}
			if sibling.SelectAttrValue("href", "") != in {
				continue
			}
			payload, err := serializeElement(sibling)
			if err != nil {
				log.WithError(err).WithField("href", action.Href).Warn("serialize create payload")
				return contentAction{}, false
			}
			action.Payload = base64.StdEncoding.EncodeToString(payload)
			return action, true
		}
		log.WithFields(logrus.Fields{"href": action.Href, "in": in}).Debug("create operation has no matching input object")
		return contentAction{}, false
	default:
		return contentAction{}, false
	}
}

func serializeElement(el *etree.Element) ([]byte, error) {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	return doc.WriteToBytes()
}
