package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// tsvFixture mimics tesseract TSV output: a header, two word rows forming
// one line, a low-confidence line, and a non-word row.
const tsvFixture = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"4\t1\t1\t1\t1\t0\t100\t200\t300\t40\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t100\t200\t120\t40\t96.5\tSign\n" +
	"5\t1\t1\t1\t1\t2\t230\t200\t80\t40\t91.0\tin\n" +
	"5\t1\t1\t2\t1\t1\t100\t400\t150\t40\t31.2\tgarbled\n" +
	"5\t1\t2\t1\t1\t1\t500\t600\t200\t50\t88.0\tContinue\n"

func TestParseTSV(t *testing.T) {
	elements := ParseTSV(tsvFixture)

	if len(elements) != 2 {
		t.Fatalf("Expected 2 elements, got %d: %v", len(elements), elements)
	}

	first := elements[0]
	if first.Text != "Sign in" {
		t.Errorf("Expected merged line text 'Sign in', got %q", first.Text)
	}
	want := Rect{Left: 100, Top: 200, Right: 310, Bottom: 240}
	if first.Bounds != want {
		t.Errorf("Expected union bounds %+v, got %+v", want, first.Bounds)
	}
	if first.Class != "ocr_text" || !first.Clickable || !first.Enabled {
		t.Errorf("Unexpected element attributes: %+v", first)
	}

	second := elements[1]
	if second.Text != "Continue" || second.Index != 1 {
		t.Errorf("Unexpected second element: %+v", second)
	}
}

func TestParseTSVEmpty(t *testing.T) {
	if got := ParseTSV(""); len(got) != 0 {
		t.Errorf("Expected no elements from empty input, got %v", got)
	}
}

func TestOCRElements(t *testing.T) {
	var gotArgs []string
	var gotStdin []byte

	ocr := NewOCR("", "")
	ocr.run = func(_ context.Context, binary string, stdin []byte, args ...string) (string, error) {
		if binary != DefaultOCRBinary {
			t.Errorf("Expected binary %q, got %q", DefaultOCRBinary, binary)
		}
		gotArgs = args
		gotStdin = stdin
		return tsvFixture, nil
	}

	png := []byte{0x89, 'P', 'N', 'G'}
	elements, err := ocr.Elements(context.Background(), png)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(elements) != 2 {
		t.Errorf("Expected 2 elements, got %d", len(elements))
	}

	wantArgs := "stdin stdout -l eng+chi_sim tsv"
	if strings.Join(gotArgs, " ") != wantArgs {
		t.Errorf("Expected args %q, got %q", wantArgs, strings.Join(gotArgs, " "))
	}
	if string(gotStdin) != string(png) {
		t.Error("Expected screenshot bytes passed on stdin")
	}
}

func TestOCRElementsRunError(t *testing.T) {
	ocr := NewOCR("tesseract", "eng")
	ocr.run = func(context.Context, string, []byte, ...string) (string, error) {
		return "", errors.New("tesseract not found")
	}

	if _, err := ocr.Elements(context.Background(), []byte("png")); err == nil {
		t.Error("Expected error when tesseract fails")
	}
}
