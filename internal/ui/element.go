// Package ui provides UI element detection and interaction support for
// Android screens: hierarchy parsing, OCR fallback, element search, and
// screenshot annotation.
package ui

import (
	"fmt"
	"strconv"
	"strings"
)

// Rect is an element bounding box in screen pixels.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Width returns the box width.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the box height.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether the box has no area.
func (r Rect) Empty() bool { return r.Right <= r.Left || r.Bottom <= r.Top }

// Point is a screen coordinate. The origin is the top-left corner; x grows
// right and y grows down.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Element represents one interactive or labelled UI element on screen.
type Element struct {
	Index       int    `json:"index"`
	Text        string `json:"text"`
	ContentDesc string `json:"content_desc"`
	ResourceID  string `json:"resource_id"`
	Class       string `json:"class_name"`
	Bounds      Rect   `json:"bounds"`
	Clickable   bool   `json:"clickable"`
	Enabled     bool   `json:"enabled"`
	Focused     bool   `json:"focused"`
	Selected    bool   `json:"selected"`
}

// Center returns the tap target for the element.
func (e Element) Center() Point {
	return Point{
		X: (e.Bounds.Left + e.Bounds.Right) / 2,
		Y: (e.Bounds.Top + e.Bounds.Bottom) / 2,
	}
}

// Label returns the most descriptive identifier the element carries.
func (e Element) Label() string {
	if e.Text != "" {
		return e.Text
	}
	if e.ContentDesc != "" {
		return e.ContentDesc
	}
	if e.ResourceID != "" {
		return e.ResourceID
	}
	return e.Class
}

// String returns a human-readable one-line representation.
func (e Element) String() string {
	center := e.Center()
	return fmt.Sprintf("[%d] %s @ (%d, %d)", e.Index, e.Label(), center.X, center.Y)
}

// ShortResourceID strips the package prefix from a resource id
// ("com.app:id/send" becomes "send").
func ShortResourceID(resourceID string) string {
	if idx := strings.LastIndex(resourceID, "/"); idx >= 0 {
		return resourceID[idx+1:]
	}
	return resourceID
}

// ShortClass strips the package path from a class name
// ("android.widget.Button" becomes "Button").
func ShortClass(class string) string {
	if idx := strings.LastIndex(class, "."); idx >= 0 {
		return class[idx+1:]
	}
	return class
}

// FindByText returns the first element whose text or content description
// matches, case-insensitively. With exact false a substring match counts.
func FindByText(elements []Element, text string, exact bool) *Element {
	needle := strings.ToLower(text)

	for i := range elements {
		elemText := strings.ToLower(elements[i].Text)
		elemDesc := strings.ToLower(elements[i].ContentDesc)

		if exact {
			if elemText == needle || elemDesc == needle {
				return &elements[i]
			}
			continue
		}
		if strings.Contains(elemText, needle) || strings.Contains(elemDesc, needle) {
			return &elements[i]
		}
	}
	return nil
}

// FindByResourceID returns the first element whose resource id matches.
// With partial true a substring match counts.
func FindByResourceID(elements []Element, resourceID string, partial bool) *Element {
	for i := range elements {
		if partial {
			if strings.Contains(elements[i].ResourceID, resourceID) {
				return &elements[i]
			}
			continue
		}
		if elements[i].ResourceID == resourceID {
			return &elements[i]
		}
	}
	return nil
}

// FindByIndex returns the element with the given index.
func FindByIndex(elements []Element, index int) *Element {
	for i := range elements {
		if elements[i].Index == index {
			return &elements[i]
		}
	}
	return nil
}

// FormatMaxElements caps how many elements FormatForLLM lists before
// trailing off.
const FormatMaxElements = 50

// FormatForLLM renders the element list as a compact text block an agent
// can read and act on.
func FormatForLLM(elements []Element) string {
	if len(elements) == 0 {
		return "No interactive elements found on screen."
	}

	lines := []string{
		"Interactive elements on screen:",
		strings.Repeat("=", 50),
	}

	shown := elements
	if len(shown) > FormatMaxElements {
		shown = shown[:FormatMaxElements]
	}

	for _, elem := range shown {
		var parts []string
		if elem.Text != "" {
			parts = append(parts, `text="`+elem.Text+`"`)
		}
		if elem.ContentDesc != "" {
			parts = append(parts, `desc="`+elem.ContentDesc+`"`)
		}
		if elem.ResourceID != "" {
			parts = append(parts, `id="`+ShortResourceID(elem.ResourceID)+`"`)
		}
		if hint := ShortClass(elem.Class); hint != "" {
			parts = append(parts, "("+hint+")")
		}
		if elem.Clickable {
			parts = append(parts, "[clickable]")
		}

		desc := strings.Join(parts, " ")
		if len(parts) == 0 {
			desc = "(" + elem.Class + ")"
		}
		lines = append(lines, "["+strconv.Itoa(elem.Index)+"] "+desc)
	}

	if len(elements) > FormatMaxElements {
		lines = append(lines, fmt.Sprintf("... and %d more elements", len(elements)-FormatMaxElements))
	}

	lines = append(lines, strings.Repeat("=", 50))
	lines = append(lines, "Use tap_element with index=N or text='...' to interact.")

	return strings.Join(lines, "\n")
}
