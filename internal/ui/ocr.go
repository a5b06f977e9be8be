package ui

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// OCR detects text elements on a screenshot by shelling out to the
// tesseract CLI. It is the fallback for screens uiautomator cannot see
// into (WebView, games, Flutter), trading element metadata for raw text
// boxes. Detected elements carry the class "ocr_text" and are assumed
// clickable.
type OCR struct {
	// Binary is the tesseract executable path or name.
	Binary string

	// Languages is the tesseract -l argument ("eng", "eng+chi_sim").
	Languages string

	// Timeout bounds one recognition run.
	Timeout time.Duration

	// run executes tesseract; injectable for tests.
	run func(ctx context.Context, binary string, stdin []byte, args ...string) (string, error)
}

// OCR defaults.
const (
	DefaultOCRBinary    = "tesseract"
	DefaultOCRLanguages = "eng+chi_sim"
	DefaultOCRTimeout   = 30 * time.Second

	// MinOCRConfidence drops recognition results below this tesseract
	// confidence (0-100).
	MinOCRConfidence = 50
)

// NewOCR creates an OCR engine around the tesseract binary. Empty
// arguments fall back to the defaults.
func NewOCR(binary, languages string) *OCR {
	if binary == "" {
		binary = DefaultOCRBinary
	}
	if languages == "" {
		languages = DefaultOCRLanguages
	}
	return &OCR{
		Binary:    binary,
		Languages: languages,
		Timeout:   DefaultOCRTimeout,
		run:       runCommand,
	}
}

func runCommand(ctx context.Context, binary string, stdin []byte, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s failed: %w (stderr: %s)", binary, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Elements runs OCR over a PNG screenshot and returns the detected text
// lines as elements.
func (o *OCR) Elements(ctx context.Context, png []byte) ([]Element, error) {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultOCRTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// tsv output gives one row per word with box geometry and confidence.
	tsv, err := o.run(ctx, o.Binary, png, "stdin", "stdout", "-l", o.Languages, "tsv")
	if err != nil {
		return nil, err
	}

	return ParseTSV(tsv), nil
}

// tsv column layout produced by tesseract.
const (
	tsvColLevel = 0
	tsvColBlock = 2
	tsvColPar   = 3
	tsvColLine  = 4
	tsvColLeft  = 6
	tsvColTop   = 7
	tsvColWidth = 8
	tsvColHght  = 9
	tsvColConf  = 10
	tsvColText  = 11
	tsvColCount = 12
)

// ParseTSV converts tesseract TSV output into elements. Word rows are
// merged back into their text line: the line box is the union of its word
// boxes and the line confidence is the word average. Lines whose averaged
// confidence falls below MinOCRConfidence, or whose text is empty, are
// dropped.
func ParseTSV(tsv string) []Element {
	type lineKey struct {
		block, par, line int
	}
	type lineAccum struct {
		bounds    Rect
		words     []string
		confSum   float64
		confCount int
	}

	accums := make(map[lineKey]*lineAccum)
	var order []lineKey

	rows := strings.Split(tsv, "\n")
	for i, row := range rows {
		if i == 0 || strings.TrimSpace(row) == "" {
			// Header or trailing blank.
			continue
		}

		cols := strings.Split(row, "\t")
		if len(cols) < tsvColCount {
			continue
		}
		if cols[tsvColLevel] != "5" {
			// Only word rows carry text.
			continue
		}

		text := strings.TrimSpace(cols[tsvColText])
		if text == "" {
			continue
		}

		conf, err := strconv.ParseFloat(cols[tsvColConf], 64)
		if err != nil || conf < 0 {
			continue
		}

		left, err1 := strconv.Atoi(cols[tsvColLeft])
		top, err2 := strconv.Atoi(cols[tsvColTop])
		width, err3 := strconv.Atoi(cols[tsvColWidth])
		height, err4 := strconv.Atoi(cols[tsvColHght])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}

		box := Rect{Left: left, Top: top, Right: left + width, Bottom: top + height}
		if box.Empty() {
			continue
		}

		block, _ := strconv.Atoi(cols[tsvColBlock])
		par, _ := strconv.Atoi(cols[tsvColPar])
		line, _ := strconv.Atoi(cols[tsvColLine])
		key := lineKey{block: block, par: par, line: line}

		accum, ok := accums[key]
		if !ok {
			accum = &lineAccum{bounds: box}
			accums[key] = accum
			order = append(order, key)
		} else {
			if box.Left < accum.bounds.Left {
				accum.bounds.Left = box.Left
			}
			if box.Top < accum.bounds.Top {
				accum.bounds.Top = box.Top
			}
			if box.Right > accum.bounds.Right {
				accum.bounds.Right = box.Right
			}
			if box.Bottom > accum.bounds.Bottom {
				accum.bounds.Bottom = box.Bottom
			}
		}
		accum.words = append(accum.words, text)
		accum.confSum += conf
		accum.confCount++
	}

	var elements []Element
	index := 0
	for _, key := range order {
		accum := accums[key]
		if accum.confSum/float64(accum.confCount) < MinOCRConfidence {
			continue
		}

		elements = append(elements, Element{
			Index:     index,
			Text:      strings.Join(accum.words, " "),
			Class:     "ocr_text",
			Bounds:    accum.bounds,
			Clickable: true,
			Enabled:   true,
		})
		index++
	}

	return elements
}
