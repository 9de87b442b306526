package slidezone

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

func (p *pptxPackage) readSlide(part string, number int) (*Slide, error) {
	data, err := p.readPart(part)
	if err != nil {
		return nil, err
	}
	rels, err := p.readRelationships(relsPathFor(part))
	if err != nil {
		return nil, err
	}

	parser := &slideParser{frames: p.layoutFrames(part, rels)}
	if err := parser.parse(data); err != nil {
		return nil, err
	}
	return &Slide{Number: number, Part: part, Shapes: parser.shapes}, nil
}

// --- Shape tree XML ---

type xmlOffset struct {
	X int64 `xml:"x,attr"`
	Y int64 `xml:"y,attr"`
}

type xmlExtent struct {
	Cx int64 `xml:"cx,attr"`
	Cy int64 `xml:"cy,attr"`
}

type xmlXfrm struct {
	Off   xmlOffset  `xml:"off"`
	Ext   xmlExtent  `xml:"ext"`
	ChOff *xmlOffset `xml:"chOff"`
	ChExt *xmlExtent `xml:"chExt"`
}

func (x *xmlXfrm) rect() Rectangle {
	return Rectangle{
		X:      float64(x.Off.X),
		Y:      float64(x.Off.Y),
		Width:  float64(x.Ext.Cx),
		Height: float64(x.Ext.Cy),
	}
}

type xmlCNvPr struct {
	ID   int    `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type xmlPlaceholder struct {
	Type string `xml:"type,attr"`
	Idx  string `xml:"idx,attr"`
}

// kind returns the placeholder type; an absent type attribute means "obj".
func (ph *xmlPlaceholder) kind() PlaceholderType {
	if ph.Type == "" {
		return PlaceholderObject
	}
	return PlaceholderType(ph.Type)
}

func (ph *xmlPlaceholder) index() (int, bool) {
	if ph.Idx == "" {
		return 0, false
	}
	v, err := strconv.Atoi(ph.Idx)
	if err != nil {
		return 0, false
	}
	return v, true
}

type xmlShape struct {
	CNvPr       xmlCNvPr        `xml:"nvSpPr>cNvPr"`
	Placeholder *xmlPlaceholder `xml:"nvSpPr>nvPr>ph"`
	Xfrm        *xmlXfrm        `xml:"spPr>xfrm"`
	TxBody      *xmlTextBody    `xml:"txBody"`
}

// xmlFrameShape covers the non-text elements of a shape tree. Only one of
// the cNvPr paths is present for a given element.
type xmlFrameShape struct {
	PicPr         *xmlCNvPr `xml:"nvPicPr>cNvPr"`
	CxnPr         *xmlCNvPr `xml:"nvCxnSpPr>cNvPr"`
	FramePr       *xmlCNvPr `xml:"nvGraphicFramePr>cNvPr"`
	ContentPartPr *xmlCNvPr `xml:"nvContentPartPr>cNvPr"`
	SpPrXfrm      *xmlXfrm  `xml:"spPr>xfrm"`
	GraphicXfrm   *xmlXfrm  `xml:"xfrm"`
}

func (f *xmlFrameShape) cNvPr() xmlCNvPr {
	for _, pr := range []*xmlCNvPr{f.PicPr, f.CxnPr, f.FramePr, f.ContentPartPr} {
		if pr != nil {
			return *pr
		}
	}
	return xmlCNvPr{}
}

func (f *xmlFrameShape) xfrm() *xmlXfrm {
	if f.SpPrXfrm != nil {
		return f.SpPrXfrm
	}
	return f.GraphicXfrm
}

type xmlGroupProps struct {
	Xfrm *xmlXfrm `xml:"xfrm"`
}

type xmlTextBody struct {
	Paragraphs []xmlParagraph `xml:"p"`
}

type xmlParagraph struct {
	Items []xmlTextItem `xml:",any"`
}

// xmlTextItem is one child of a paragraph: a run, a field, a break, or
// properties that carry no text.
type xmlTextItem struct {
	XMLName xml.Name
	Text    string `xml:"t"`
}

// plainText concatenates runs and fields, turns breaks into newlines and
// joins paragraphs with newlines. The result is NFC-normalized and trimmed.
func (b *xmlTextBody) plainText() string {
	lines := make([]string, 0, len(b.Paragraphs))
	for _, para := range b.Paragraphs {
		var sb strings.Builder
		for _, item := range para.Items {
			switch item.XMLName.Local {
			case "r", "fld":
				sb.WriteString(item.Text)
			case "br":
				sb.WriteByte('\n')
			}
		}
		lines = append(lines, sb.String())
	}
	return strings.TrimSpace(norm.NFC.String(strings.Join(lines, "\n")))
}

// --- Group transforms ---

// transform maps child coordinates to slide coordinates: x*sx+dx, y*sy+dy.
type transform struct {
	sx, sy float64
	dx, dy float64
}

var identityTransform = transform{sx: 1, sy: 1}

func (t transform) apply(r Rectangle) Rectangle {
	return Rectangle{
		X:      r.X*t.sx + t.dx,
		Y:      r.Y*t.sy + t.dy,
		Width:  r.Width * t.sx,
		Height: r.Height * t.sy,
	}
}

// group returns t composed with a group's child-to-parent mapping. A group
// xfrm without a child extent leaves t unchanged.
func (t transform) group(x *xmlXfrm) transform {
	if x == nil || x.ChOff == nil || x.ChExt == nil {
		return t
	}
	g := transform{sx: 1, sy: 1}
	if x.ChExt.Cx != 0 {
		g.sx = float64(x.Ext.Cx) / float64(x.ChExt.Cx)
	}
	if x.ChExt.Cy != 0 {
		g.sy = float64(x.Ext.Cy) / float64(x.ChExt.Cy)
	}
	g.dx = float64(x.Off.X) - float64(x.ChOff.X)*g.sx
	g.dy = float64(x.Off.Y) - float64(x.ChOff.Y)*g.sy

	return transform{
		sx: g.sx * t.sx,
		sy: g.sy * t.sy,
		dx: g.dx*t.sx + t.dx,
		dy: g.dy*t.sy + t.dy,
	}
}

// --- Slide parser ---

type slideParser struct {
	frames *placeholderFrames
	shapes []Shape
}

func (p *slideParser) parse(data []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			// A slide without a shape tree has no shapes.
			return nil
		}
		if err != nil {
			return fmt.Errorf("malformed slide XML: %w", err)
		}
		if t, ok := token.(xml.StartElement); ok && t.Name.Local == "spTree" {
			return p.walkTree(decoder, identityTransform)
		}
	}
}

// walkTree consumes the children of a shape tree or group up to the
// matching end element, appending shapes in document order.
func (p *slideParser) walkTree(decoder *xml.Decoder, xf transform) error {
	for {
		token, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return fmt.Errorf("malformed shape tree: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sp":
				var sp xmlShape
				if err := decoder.DecodeElement(&sp, &t); err != nil {
					return fmt.Errorf("malformed shape: %w", err)
				}
				p.shapes = append(p.shapes, p.newShape(&sp, xf))
			case "pic", "cxnSp", "graphicFrame", "contentPart":
				var fs xmlFrameShape
				if err := decoder.DecodeElement(&fs, &t); err != nil {
					return fmt.Errorf("malformed %s: %w", t.Name.Local, err)
				}
				p.shapes = append(p.shapes, newFrameShape(t.Name.Local, &fs, xf))
			case "grpSpPr":
				var props xmlGroupProps
				if err := decoder.DecodeElement(&props, &t); err != nil {
					return fmt.Errorf("malformed group properties: %w", err)
				}
				xf = xf.group(props.Xfrm)
			case "grpSp":
				if err := p.walkTree(decoder, xf); err != nil {
					return err
				}
			default:
				if err := decoder.Skip(); err != nil {
					return fmt.Errorf("malformed shape tree: %w", err)
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (p *slideParser) newShape(sp *xmlShape, xf transform) Shape {
	base := BaseShape{id: sp.CNvPr.ID, name: sp.CNvPr.Name}

	if sp.TxBody == nil {
		if sp.Xfrm != nil {
			base.bounds = xf.apply(sp.Xfrm.rect())
		}
		return &OtherShape{BaseShape: base, kind: ShapeKindAutoShape}
	}

	ts := &TextShape{BaseShape: base, text: sp.TxBody.plainText()}
	if sp.Placeholder != nil {
		ts.placeholder = sp.Placeholder.kind()
	}
	switch {
	case sp.Xfrm != nil:
		ts.bounds = xf.apply(sp.Xfrm.rect())
	case sp.Placeholder != nil:
		// Layout and master frames are already in slide space.
		if r, ok := p.frames.lookup(sp.Placeholder); ok {
			ts.bounds = r
			ts.inherited = true
		}
	}
	return ts
}

func newFrameShape(element string, fs *xmlFrameShape, xf transform) Shape {
	pr := fs.cNvPr()
	other := &OtherShape{BaseShape: BaseShape{id: pr.ID, name: pr.Name}}
	switch element {
	case "pic":
		other.kind = ShapeKindPicture
	case "cxnSp":
		other.kind = ShapeKindConnector
	case "graphicFrame":
		other.kind = ShapeKindGraphicFrame
	default:
		other.kind = ShapeKindContentPart
	}
	if x := fs.xfrm(); x != nil {
		other.bounds = xf.apply(x.rect())
	}
	return other
}
