package slidezone

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFrom_SlideSizeAndText(t *testing.T) {
	doc := readTestDeck(t, newTestDeck(
		textSp(2, "Title", 457200, 274638, 8229600, 1143000, "  Quarterly review  "),
	))

	if doc.SlideWidth != testSlideW || doc.SlideHeight != testSlideH {
		t.Errorf("slide size = %dx%d, want %dx%d", doc.SlideWidth, doc.SlideHeight, testSlideW, testSlideH)
	}
	if doc.GetSlideCount() != 1 {
		t.Fatalf("expected 1 slide, got %d", doc.GetSlideCount())
	}
	blocks := doc.Slides[0].TextBlocks()
	if len(blocks) != 1 {
		t.Fatalf("expected 1 text block, got %d", len(blocks))
	}
	want := TextBlock{Rectangle: Rectangle{X: 457200, Y: 274638, Width: 8229600, Height: 1143000}, Text: "Quarterly review"}
	if blocks[0] != want {
		t.Errorf("block = %+v, want %+v", blocks[0], want)
	}
}

func TestReadFrom_ParagraphsAndRuns(t *testing.T) {
	sp := `<p:sp><p:nvSpPr><p:cNvPr id="3" name="Body"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>` +
		`<p:spPr>` + xfrmXML(0, 0, 100, 100) + `</p:spPr><p:txBody><a:bodyPr/>` +
		`<a:p><a:r><a:t>Hello, </a:t></a:r><a:r><a:rPr b="1"/><a:t>world</a:t></a:r></a:p>` +
		`<a:p><a:r><a:t>line one</a:t></a:r><a:br/><a:r><a:t>line two</a:t></a:r></a:p>` +
		`<a:p><a:fld id="{1}" type="slidenum"><a:t>7</a:t></a:fld><a:endParaRPr/></a:p>` +
		`</p:txBody></p:sp>`
	doc := readTestDeck(t, newTestDeck(sp))

	blocks := doc.Slides[0].TextBlocks()
	if len(blocks) != 1 {
		t.Fatalf("expected 1 text block, got %d", len(blocks))
	}
	want := "Hello, world\nline one\nline two\n7"
	if blocks[0].Text != want {
		t.Errorf("text = %q, want %q", blocks[0].Text, want)
	}
}

func TestReadFrom_NormalizesText(t *testing.T) {
	// "e" followed by a combining acute accent composes to a single rune.
	doc := readTestDeck(t, newTestDeck(textSp(2, "T", 0, 0, 10, 10, "Cafe\u0301")))
	if got := doc.Slides[0].TextBlocks()[0].Text; got != "Caf\u00e9" {
		t.Errorf("text = %q, want NFC form", got)
	}
}

func TestReadFrom_SkipsEmptyAndNonText(t *testing.T) {
	doc := readTestDeck(t, newTestDeck(
		textSp(2, "Blank", 0, 0, 100, 100, "   ", "")+
			pictureXML(3, 10, 10, 50, 50)+
			autoShapeXML(4, 20, 20, 30, 30)+
			textSp(5, "Real", 0, 0, 100, 100, "kept"),
	))

	s := doc.Slides[0]
	if len(s.Shapes) != 4 {
		t.Fatalf("expected 4 shapes, got %d", len(s.Shapes))
	}
	if pic, ok := s.Shapes[1].(*OtherShape); !ok || pic.GetKind() != ShapeKindPicture {
		t.Errorf("shape 2: expected picture, got %#v", s.Shapes[1])
	}
	if as, ok := s.Shapes[2].(*OtherShape); !ok || as.GetKind() != ShapeKindAutoShape {
		t.Errorf("shape 3: expected auto shape, got %#v", s.Shapes[2])
	}
	if got := s.Shapes[1].GetBounds(); got != (Rectangle{X: 10, Y: 10, Width: 50, Height: 50}) {
		t.Errorf("picture bounds = %+v", got)
	}

	blocks := s.TextBlocks()
	if len(blocks) != 1 || blocks[0].Text != "kept" {
		t.Errorf("blocks = %+v, want only %q", blocks, "kept")
	}
}

func TestReadFrom_PresentationOrder(t *testing.T) {
	doc := readTestDeck(t, newTestDeck(
		textSp(2, "A", 0, 0, 10, 10, "first"),
		textSp(2, "B", 0, 0, 10, 10, "second"),
		textSp(2, "C", 0, 0, 10, 10, "third"),
	))

	want := []string{"first", "second", "third"}
	if len(doc.Slides) != len(want) {
		t.Fatalf("expected %d slides, got %d", len(want), len(doc.Slides))
	}
	for i, s := range doc.Slides {
		if s.Number != i+1 {
			t.Errorf("slide %d: Number = %d", i, s.Number)
		}
		if got := s.TextBlocks()[0].Text; got != want[i] {
			t.Errorf("slide %d: text = %q, want %q", i+1, got, want[i])
		}
	}
	// Presentation order is the reverse of part-name order in the fixture.
	if doc.Slides[0].Part != "ppt/slides/slide3.xml" {
		t.Errorf("slide 1 part = %q", doc.Slides[0].Part)
	}
}

func TestReadFrom_GroupTransform(t *testing.T) {
	// Child space 0..1000 maps onto 1000..3000 x 2000..4000.
	inner := groupXML(20, 500, 500, 500, 500, 0, 0, 1000, 1000,
		textSp(21, "Nested", 0, 0, 1000, 1000, "nested"))
	doc := readTestDeck(t, newTestDeck(
		groupXML(10, 1000, 2000, 2000, 2000, 0, 0, 1000, 1000,
			textSp(11, "Child", 100, 100, 500, 500, "child"),
			inner,
		)+textSp(12, "After", 7, 8, 9, 10, "after"),
	))

	blocks := doc.Slides[0].TextBlocks()
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	tests := []struct {
		text string
		want Rectangle
	}{
		{"child", Rectangle{X: 1200, Y: 2200, Width: 1000, Height: 1000}},
		// Inner group occupies 500..1000 of the outer child space, i.e. 2000..3000.
		{"nested", Rectangle{X: 2000, Y: 3000, Width: 1000, Height: 1000}},
		{"after", Rectangle{X: 7, Y: 8, Width: 9, Height: 10}},
	}
	for i, tt := range tests {
		if blocks[i].Text != tt.text {
			t.Errorf("block %d: text = %q, want %q", i, blocks[i].Text, tt.text)
		}
		if blocks[i].Rectangle != tt.want {
			t.Errorf("block %q: bounds = %+v, want %+v", tt.text, blocks[i].Rectangle, tt.want)
		}
	}
}

func TestReadFrom_PlaceholderInheritance(t *testing.T) {
	layoutTitle := Rectangle{X: 100, Y: 200, Width: 300, Height: 400}
	layoutBody := Rectangle{X: 1000, Y: 2000, Width: 3000, Height: 4000}
	masterFooter := Rectangle{X: 5, Y: 6, Width: 7, Height: 8}
	own := Rectangle{X: 11, Y: 12, Width: 13, Height: 14}

	d := newTestDeck(
		placeholderSp(2, "title", "", nil, "Inherited title") +
			placeholderSp(3, "", "1", nil, "Inherited body") +
			placeholderSp(4, "ftr", "11", nil, "From master") +
			placeholderSp(5, "body", "2", &own, "Own box") +
			placeholderSp(6, "pic", "99", nil, "Nowhere"),
	)
	d.layout = placeholderSp(2, "title", "", &layoutTitle) + placeholderSp(3, "body", "1", &layoutBody)
	d.master = placeholderSp(2, "title", "", &Rectangle{X: 1, Y: 1, Width: 1, Height: 1}) +
		placeholderSp(4, "ftr", "11", &masterFooter)
	doc := readTestDeck(t, d)

	shapes := doc.Slides[0].Shapes
	if len(shapes) != 5 {
		t.Fatalf("expected 5 shapes, got %d", len(shapes))
	}
	tests := []struct {
		want      Rectangle
		inherited bool
	}{
		{layoutTitle, true},
		{layoutBody, true},
		{masterFooter, true},
		{own, false},
		{Rectangle{}, false},
	}
	for i, tt := range tests {
		ts, ok := shapes[i].(*TextShape)
		if !ok {
			t.Fatalf("shape %d: expected *TextShape, got %T", i, shapes[i])
		}
		if ts.GetBounds() != tt.want {
			t.Errorf("%q: bounds = %+v, want %+v", ts.GetText(), ts.GetBounds(), tt.want)
		}
		if ts.IsInherited() != tt.inherited {
			t.Errorf("%q: inherited = %v, want %v", ts.GetText(), ts.IsInherited(), tt.inherited)
		}
	}
	if got := shapes[1].(*TextShape).GetPlaceholder(); got != PlaceholderObject {
		t.Errorf("placeholder without type = %q, want %q", got, PlaceholderObject)
	}
}

func TestReadFrom_InheritedPlaceholderInsideGroup(t *testing.T) {
	layoutTitle := Rectangle{X: 100, Y: 200, Width: 300, Height: 400}
	d := newTestDeck(
		groupXML(10, 1000, 2000, 2000, 2000, 0, 0, 1000, 1000,
			placeholderSp(2, "title", "", nil, "Grouped title"),
			textSp(3, "Own", 100, 100, 500, 500, "own"),
		),
	)
	d.layout = placeholderSp(2, "title", "", &layoutTitle)
	doc := readTestDeck(t, d)

	blocks := doc.Slides[0].TextBlocks()
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Rectangle != layoutTitle {
		t.Errorf("inherited bounds = %+v, want %+v", blocks[0].Rectangle, layoutTitle)
	}
	if want := (Rectangle{X: 1200, Y: 2200, Width: 1000, Height: 1000}); blocks[1].Rectangle != want {
		t.Errorf("own bounds = %+v, want %+v", blocks[1].Rectangle, want)
	}
}

func TestReadFrom_SubTitleFallsBackToBody(t *testing.T) {
	body := Rectangle{X: 1, Y: 2, Width: 3, Height: 4}
	d := newTestDeck(placeholderSp(2, "subTitle", "", nil, "Sub"))
	d.layout = placeholderSp(2, "body", "", &body)
	doc := readTestDeck(t, d)

	if got := doc.Slides[0].TextBlocks()[0].Rectangle; got != body {
		t.Errorf("bounds = %+v, want %+v", got, body)
	}
}

func TestReadFrom_MissingLayoutTolerated(t *testing.T) {
	files := newTestDeck(placeholderSp(2, "title", "", nil, "Title")).files()
	files["ppt/slides/_rels/slide1.xml.rels"] = relsXML(relXML("rId1", "slideLayout", "../slideLayouts/missing.xml"))
	data := zipFiles(t, files)

	doc, err := ReadFrom(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if got := doc.Slides[0].TextBlocks()[0].Rectangle; got != (Rectangle{}) {
		t.Errorf("bounds = %+v, want zero", got)
	}
}

func TestReadFrom_NotAnArchive(t *testing.T) {
	data := []byte("this is not a zip file at all")
	doc, err := ReadFrom(bytes.NewReader(data), int64(len(data)))
	if doc != nil {
		t.Error("expected no document")
	}
	var pe *DocumentParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *DocumentParseError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrNotPackage) {
		t.Errorf("expected ErrNotPackage, got %v", err)
	}
}

func TestReadFrom_EmptyInput(t *testing.T) {
	_, err := ReadFrom(bytes.NewReader(nil), 0)
	if !errors.Is(err, ErrNotPackage) {
		t.Errorf("expected ErrNotPackage, got %v", err)
	}
}

func TestReadFrom_MissingSlideSize(t *testing.T) {
	d := newTestDeck(textSp(2, "T", 0, 0, 10, 10, "x"))
	d.omitSize = true
	data := d.bytes(t)

	_, err := ReadFrom(bytes.NewReader(data), int64(len(data)))
	var pe *DocumentParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *DocumentParseError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrMissingSlideSize) {
		t.Errorf("expected ErrMissingSlideSize, got %v", err)
	}
}

func TestReadFrom_MissingParts(t *testing.T) {
	tests := []struct {
		name   string
		remove string
	}{
		{"presentation", "ppt/presentation.xml"},
		{"slide", "ppt/slides/slide1.xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := newTestDeck(textSp(2, "T", 0, 0, 10, 10, "x")).files()
			delete(files, tt.remove)
			data := zipFiles(t, files)

			doc, err := ReadFrom(bytes.NewReader(data), int64(len(data)))
			if doc != nil {
				t.Error("expected no partial document")
			}
			if !errors.Is(err, ErrMissingPart) {
				t.Errorf("expected ErrMissingPart, got %v", err)
			}
		})
	}
}

func TestReadFrom_MalformedSlide(t *testing.T) {
	files := newTestDeck(textSp(2, "T", 0, 0, 10, 10, "ok"), textSp(2, "T", 0, 0, 10, 10, "ok")).files()
	files["ppt/slides/slide1.xml"] = `<p:sld ` + nsDecl + `><p:cSld><p:spTree><p:sp>`
	data := zipFiles(t, files)

	_, err := ReadFrom(bytes.NewReader(data), int64(len(data)))
	var pe *DocumentParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *DocumentParseError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "slide1.xml") {
		t.Errorf("error %q does not name the slide part", err)
	}
}

func TestReadFrom_DefaultMainPart(t *testing.T) {
	files := newTestDeck(textSp(2, "T", 0, 0, 10, 10, "x")).files()
	delete(files, "_rels/.rels")
	data := zipFiles(t, files)

	doc, err := ReadFrom(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if doc.GetSlideCount() != 1 {
		t.Errorf("expected 1 slide, got %d", doc.GetSlideCount())
	}
}

func TestOpen_SetsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pptx")
	if err := os.WriteFile(path, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	var pe *DocumentParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *DocumentParseError, got %T: %v", err, err)
	}
	if pe.Path != path {
		t.Errorf("Path = %q, want %q", pe.Path, path)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q does not mention the path", err)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pptx"))
	var pe *DocumentParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *DocumentParseError, got %T: %v", err, err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestResolveRelativePath(t *testing.T) {
	tests := []struct {
		base, rel, want string
	}{
		{"ppt", "slides/slide1.xml", "ppt/slides/slide1.xml"},
		{"ppt/slides", "../slideLayouts/slideLayout2.xml", "ppt/slideLayouts/slideLayout2.xml"},
		{"ppt/slides", "/ppt/media/image1.png", "ppt/media/image1.png"},
		{".", "ppt/presentation.xml", "ppt/presentation.xml"},
	}
	for _, tt := range tests {
		if got := resolveRelativePath(tt.base, tt.rel); got != tt.want {
			t.Errorf("resolveRelativePath(%q, %q) = %q, want %q", tt.base, tt.rel, got, tt.want)
		}
	}
}
