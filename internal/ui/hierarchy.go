package ui

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// ParseHierarchy parses a uiautomator XML dump into elements. Elements
// with empty bounds are discarded, as are elements that carry neither an
// identifier (text, content-desc, resource-id) nor clickability. With
// clickableOnly set, non-clickable elements are kept only when they carry
// an identifier, which preserves labels an agent may want to read.
func ParseHierarchy(xmlContent string, clickableOnly bool) []Element {
	var elements []Element

	decoder := xml.NewDecoder(strings.NewReader(xmlContent))
	index := 0

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "node" {
			continue
		}

		elem := Element{Enabled: true}
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "text":
				elem.Text = attr.Value
			case "content-desc":
				elem.ContentDesc = attr.Value
			case "resource-id":
				elem.ResourceID = attr.Value
			case "class":
				elem.Class = attr.Value
			case "clickable":
				elem.Clickable = attr.Value == "true"
			case "enabled":
				elem.Enabled = attr.Value == "true"
			case "focused":
				elem.Focused = attr.Value == "true"
			case "selected":
				elem.Selected = attr.Value == "true"
			case "bounds":
				elem.Bounds = ParseBounds(attr.Value)
			}
		}

		if elem.Bounds.Empty() {
			continue
		}

		hasIdentifier := elem.Text != "" || elem.ContentDesc != "" || elem.ResourceID != ""

		if clickableOnly && !elem.Clickable && !hasIdentifier {
			continue
		}
		if !hasIdentifier && !elem.Clickable {
			continue
		}

		elem.Index = index
		elements = append(elements, elem)
		index++
	}

	return elements
}

// ParseBounds parses the uiautomator bounds attribute "[l,t][r,b]".
// Malformed input yields the zero rect.
func ParseBounds(bounds string) Rect {
	parts := strings.Split(strings.Trim(strings.ReplaceAll(bounds, "][", ","), "[]"), ",")
	if len(parts) != 4 {
		return Rect{}
	}

	values := make([]int, 4)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Rect{}
		}
		values[i] = v
	}

	return Rect{Left: values[0], Top: values[1], Right: values[2], Bottom: values[3]}
}
