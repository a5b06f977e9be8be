package ui

import (
	"strings"
	"testing"
)

const sampleHierarchy = `<?xml version='1.0' encoding='UTF-8' standalone='yes' ?>
<hierarchy rotation="0">
  <node index="0" text="" resource-id="" class="android.widget.FrameLayout" package="com.android.settings" content-desc="" clickable="false" enabled="true" focused="false" selected="false" bounds="[0,0][1080,2400]">
    <node index="0" text="Settings" resource-id="com.android.settings:id/title" class="android.widget.TextView" package="com.android.settings" content-desc="" clickable="false" enabled="true" focused="false" selected="false" bounds="[48,120][400,180]"/>
    <node index="1" text="" resource-id="com.android.settings:id/search" class="android.widget.Button" package="com.android.settings" content-desc="Search settings" clickable="true" enabled="true" focused="false" selected="false" bounds="[900,100][1060,200]"/>
    <node index="2" text="" resource-id="" class="android.view.View" package="com.android.settings" content-desc="" clickable="false" enabled="true" focused="false" selected="false" bounds="[0,0][1080,50]"/>
    <node index="3" text="Broken" resource-id="" class="android.widget.TextView" package="com.android.settings" content-desc="" clickable="false" enabled="true" focused="false" selected="false" bounds="[10,10][10,40]"/>
  </node>
</hierarchy>`

func TestParseHierarchy(t *testing.T) {
	elements := ParseHierarchy(sampleHierarchy, false)

	// The container has no identifier and is not clickable, the plain View
	// likewise, and the zero-width node is dropped.
	if len(elements) != 2 {
		t.Fatalf("Expected 2 elements, got %d: %v", len(elements), elements)
	}

	title := elements[0]
	if title.Text != "Settings" || title.ResourceID != "com.android.settings:id/title" {
		t.Errorf("Unexpected first element: %+v", title)
	}
	if title.Index != 0 {
		t.Errorf("Expected reindexed elements starting at 0, got %d", title.Index)
	}

	search := elements[1]
	if !search.Clickable || search.ContentDesc != "Search settings" {
		t.Errorf("Unexpected second element: %+v", search)
	}
	if center := search.Center(); center.X != 980 || center.Y != 150 {
		t.Errorf("Expected center (980, 150), got %+v", center)
	}
}

func TestParseHierarchyMalformedXML(t *testing.T) {
	if got := ParseHierarchy("not xml at all", false); len(got) != 0 {
		t.Errorf("Expected no elements from malformed XML, got %v", got)
	}
}

func TestParseBounds(t *testing.T) {
	tests := []struct {
		input string
		want  Rect
	}{
		{"[0,0][1080,2400]", Rect{0, 0, 1080, 2400}},
		{"[48,120][400,180]", Rect{48, 120, 400, 180}},
		{"garbage", Rect{}},
		{"[1,2][3]", Rect{}},
		{"", Rect{}},
	}

	for _, tc := range tests {
		if got := ParseBounds(tc.input); got != tc.want {
			t.Errorf("ParseBounds(%q) = %+v, want %+v", tc.input, got, tc.want)
		}
	}
}

func TestFindByText(t *testing.T) {
	elements := ParseHierarchy(sampleHierarchy, false)

	if elem := FindByText(elements, "settings", false); elem == nil || elem.Text != "Settings" {
		t.Errorf("Expected substring match on text, got %v", elem)
	}
	if elem := FindByText(elements, "search", false); elem == nil || elem.ContentDesc != "Search settings" {
		t.Errorf("Expected substring match on content-desc, got %v", elem)
	}
	if elem := FindByText(elements, "Settings", true); elem == nil {
		t.Error("Expected exact match")
	}
	if elem := FindByText(elements, "Setti", true); elem != nil {
		t.Errorf("Expected no exact match for partial text, got %v", elem)
	}
}

func TestFindByResourceID(t *testing.T) {
	elements := ParseHierarchy(sampleHierarchy, false)

	if elem := FindByResourceID(elements, "id/search", true); elem == nil {
		t.Error("Expected partial resource-id match")
	}
	if elem := FindByResourceID(elements, "id/search", false); elem != nil {
		t.Errorf("Expected no exact match for partial id, got %v", elem)
	}
	if elem := FindByResourceID(elements, "com.android.settings:id/title", false); elem == nil {
		t.Error("Expected exact resource-id match")
	}
}

func TestFindByIndex(t *testing.T) {
	elements := ParseHierarchy(sampleHierarchy, false)

	if elem := FindByIndex(elements, 1); elem == nil || elem.ResourceID != "com.android.settings:id/search" {
		t.Errorf("Unexpected element for index 1: %v", elem)
	}
	if elem := FindByIndex(elements, 99); elem != nil {
		t.Errorf("Expected nil for unknown index, got %v", elem)
	}
}

func TestFormatForLLM(t *testing.T) {
	elements := ParseHierarchy(sampleHierarchy, false)
	formatted := FormatForLLM(elements)

	if !strings.Contains(formatted, `[0] text="Settings"`) {
		t.Errorf("Expected indexed title line, got:\n%s", formatted)
	}
	if !strings.Contains(formatted, `id="title"`) {
		t.Errorf("Expected short resource id, got:\n%s", formatted)
	}
	if !strings.Contains(formatted, "(Button)") {
		t.Errorf("Expected short class hint, got:\n%s", formatted)
	}
	if !strings.Contains(formatted, "[clickable]") {
		t.Errorf("Expected clickable marker, got:\n%s", formatted)
	}
}

func TestFormatForLLMEmpty(t *testing.T) {
	if got := FormatForLLM(nil); !strings.Contains(got, "No interactive elements") {
		t.Errorf("Unexpected empty formatting: %q", got)
	}
}

func TestFormatForLLMTruncates(t *testing.T) {
	elements := make([]Element, FormatMaxElements+10)
	for i := range elements {
		elements[i] = Element{Index: i, Text: "item", Bounds: Rect{0, 0, 10, 10}}
	}

	formatted := FormatForLLM(elements)
	if !strings.Contains(formatted, "... and 10 more elements") {
		t.Errorf("Expected truncation trailer, got:\n%s", formatted)
	}
}
