package slidezone

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Helpers that build minimal .pptx packages in memory.

const (
	nsDecl = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
		`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`
	relNS       = "http://schemas.openxmlformats.org/package/2006/relationships"
	relTypeBase = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	// 4:3 slide, 10in x 7.5in.
	testSlideW = 9144000
	testSlideH = 6858000
)

type testDeck struct {
	width, height int64
	omitSize      bool
	// slides holds the shape tree children of each slide, in presentation order.
	slides []string
	// layout and master hold shape tree children; empty omits the part.
	layout string
	master string
}

func newTestDeck(slides ...string) *testDeck {
	return &testDeck{width: testSlideW, height: testSlideH, slides: slides}
}

func esc(s string) string {
	var b bytes.Buffer
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

func xfrmXML(x, y, cx, cy int64) string {
	return fmt.Sprintf(`<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, x, y, cx, cy)
}

func txBodyXML(paragraphs ...string) string {
	var b strings.Builder
	b.WriteString(`<p:txBody><a:bodyPr/><a:lstStyle/>`)
	for _, p := range paragraphs {
		b.WriteString(`<a:p><a:pPr algn="l"/><a:r><a:rPr lang="en-US" dirty="0"/><a:t>`)
		b.WriteString(esc(p))
		b.WriteString(`</a:t></a:r></a:p>`)
	}
	b.WriteString(`</p:txBody>`)
	return b.String()
}

// textSp returns a positioned text box.
func textSp(id int, name string, x, y, cx, cy int64, paragraphs ...string) string {
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`+
		`<p:spPr>%s<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>%s</p:sp>`,
		id, esc(name), xfrmXML(x, y, cx, cy), txBodyXML(paragraphs...))
}

// placeholderSp returns a placeholder. A nil box leaves out the xfrm so the
// box is inherited.
func placeholderSp(id int, phType, idx string, box *Rectangle, paragraphs ...string) string {
	ph := `<p:ph`
	if phType != "" {
		ph += fmt.Sprintf(` type="%s"`, phType)
	}
	if idx != "" {
		ph += fmt.Sprintf(` idx="%s"`, idx)
	}
	ph += `/>`
	spPr := `<p:spPr/>`
	if box != nil {
		spPr = `<p:spPr>` + xfrmXML(int64(box.X), int64(box.Y), int64(box.Width), int64(box.Height)) + `</p:spPr>`
	}
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Placeholder %d"/><p:cNvSpPr/><p:nvPr>%s</p:nvPr></p:nvSpPr>%s%s</p:sp>`,
		id, id, ph, spPr, txBodyXML(paragraphs...))
}

func pictureXML(id int, x, y, cx, cy int64) string {
	return fmt.Sprintf(`<p:pic><p:nvPicPr><p:cNvPr id="%d" name="Picture %d"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>`+
		`<p:blipFill><a:blip r:embed="rId9"/></p:blipFill><p:spPr>%s</p:spPr></p:pic>`, id, id, xfrmXML(x, y, cx, cy))
}

func autoShapeXML(id int, x, y, cx, cy int64) string {
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Rectangle %d"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>`+
		`<p:spPr>%s</p:spPr></p:sp>`, id, id, xfrmXML(x, y, cx, cy))
}

// groupXML wraps children in a group mapping the child box (chX, chY,
// chCx, chCy) onto (x, y, cx, cy).
func groupXML(id int, x, y, cx, cy, chX, chY, chCx, chCy int64, children ...string) string {
	return fmt.Sprintf(`<p:grpSp><p:nvGrpSpPr><p:cNvPr id="%d" name="Group %d"/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`+
		`<p:grpSpPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/><a:chOff x="%d" y="%d"/><a:chExt cx="%d" cy="%d"/></a:xfrm></p:grpSpPr>`+
		`%s</p:grpSp>`, id, id, x, y, cx, cy, chX, chY, chCx, chCy, strings.Join(children, ""))
}

func spTreeXML(root string, children string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<p:%s %s><p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`+
		`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`+
		`%s</p:spTree></p:cSld></p:%s>`, root, nsDecl, children, root)
}

func relsXML(rels ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><Relationships xmlns="` + relNS + `">` +
		strings.Join(rels, "") + `</Relationships>`
}

func relXML(id, typ, target string) string {
	return fmt.Sprintf(`<Relationship Id="%s" Type="%s/%s" Target="%s"/>`, id, relTypeBase, typ, target)
}

// files returns the package parts. Slide parts are named in reverse
// presentation order so that readers relying on file names get it wrong.
func (d *testDeck) files() map[string]string {
	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"_rels/.rels":         relsXML(relXML("rId1", "officeDocument", "ppt/presentation.xml")),
	}

	var ids, presRels []string
	n := len(d.slides)
	for i, children := range d.slides {
		rid := fmt.Sprintf("rId%d", i+10)
		part := fmt.Sprintf("slides/slide%d.xml", n-i)
		ids = append(ids, fmt.Sprintf(`<p:sldId id="%d" r:id="%s"/>`, 256+i, rid))
		presRels = append(presRels, relXML(rid, "slide", part))

		files["ppt/"+part] = spTreeXML("sld", children)
		if d.layout != "" {
			files[fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n-i)] =
				relsXML(relXML("rId1", "slideLayout", "../slideLayouts/slideLayout1.xml"))
		}
	}
	if d.layout != "" {
		files["ppt/slideLayouts/slideLayout1.xml"] = spTreeXML("sldLayout", d.layout)
		if d.master != "" {
			files["ppt/slideLayouts/_rels/slideLayout1.xml.rels"] =
				relsXML(relXML("rId1", "slideMaster", "../slideMasters/slideMaster1.xml"))
			files["ppt/slideMasters/slideMaster1.xml"] = spTreeXML("sldMaster", d.master)
		}
	}

	size := ""
	if !d.omitSize {
		size = fmt.Sprintf(`<p:sldSz cx="%d" cy="%d"/>`, d.width, d.height)
	}
	files["ppt/presentation.xml"] = fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<p:presentation %s><p:sldIdLst>%s</p:sldIdLst>%s<p:notesSz cx="6858000" cy="9144000"/></p:presentation>`,
		nsDecl, strings.Join(ids, ""), size)
	files["ppt/_rels/presentation.xml.rels"] = relsXML(presRels...)
	return files
}

func zipFiles(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func (d *testDeck) bytes(t *testing.T) []byte {
	t.Helper()
	return zipFiles(t, d.files())
}

// write stores the deck in a temporary directory and returns its path.
func (d *testDeck) write(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.pptx")
	if err := os.WriteFile(path, d.bytes(t), 0o644); err != nil {
		t.Fatalf("write deck: %v", err)
	}
	return path
}

func readTestDeck(t *testing.T, d *testDeck) *Document {
	t.Helper()
	data := d.bytes(t)
	doc, err := ReadFrom(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	return doc
}
