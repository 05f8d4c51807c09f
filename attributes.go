package main

import (
	"strings"

	"github.com/beevik/etree"
)

func classifyAttribute(el *etree.Element) attributeField {
	name := el.Tag
	field := attributeField{Name: name}

	switch name {
	case "content":
		field.Kind = fieldContent
		content := decodeContent(textContent(el))
		field.Content = &content
	case "link":
		field.Kind = fieldLink
		field.Text = strings.TrimSpace(textContent(el))
	case "permissions", "selfPermissions":
		field.Kind = fieldPermissions
		field.Permissions = permissionEntries(el)
	case "members", "discoveryURI":
		field.Kind = fieldURIList
		field.Values = childTexts(el)
	case "searchStrings":
		field.Kind = fieldSearchStrings
		field.Values = childTexts(el)
	case "announceTo":
		field.Kind = fieldAnnounceTo
		for _, child := range el.ChildElements() {
			field.Pairs = append(field.Pairs, nameValue{Name: child.Tag, Value: strings.TrimSpace(textContent(child))})
		}
	case "aPoCPaths":
		field.Kind = fieldAPoCPaths
		field.Paths = apocPaths(el)
	default:
		field.Kind = fieldText
		field.Text = strings.TrimSpace(textContent(el))
	}
	return field
}

func childTexts(el *etree.Element) []string {
	children := el.ChildElements()
	values := make([]string, 0, len(children))
	for _, child := range children {
		values = append(values, strings.TrimSpace(textContent(child)))
	}
	return values
}

func permissionEntries(el *etree.Element) []permissionEntry {
	var entries []permissionEntry
	for _, perm := range el.ChildElements() {
		entry := permissionEntry{ID: attrLocal(perm, "id")}
		for _, part := range perm.ChildElements() {
			switch part.Tag {
			case "permissionFlags":
				entry.Flags = childTexts(part)
			case "permissionHolders":
				entry.Holders = childTexts(part)
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

func apocPaths(el *etree.Element) []apocPath {
	var paths []apocPath
	for _, entry := range el.ChildElements() {
		var p apocPath
		for _, part := range entry.ChildElements() {
			switch part.Tag {
			case "path":
				p.Path = strings.TrimSpace(textContent(part))
			case "accessRightID":
				p.AccessRightID = strings.TrimSpace(textContent(part))
			case "searchStrings":
				p.SearchStrings = strings.Join(childTexts(part), "\n")
			}
		}
		paths = append(paths, p)
	}
	return paths
}
