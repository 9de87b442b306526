package slidezone

// Shape is one element of a slide's shape tree. The set of implementations
// is closed: *TextShape and *OtherShape.
type Shape interface {
	GetName() string
	GetBounds() Rectangle
	// shape seals the interface to this package.
	shape()
}

// BaseShape contains the properties every shape has.
type BaseShape struct {
	id     int
	name   string
	bounds Rectangle // in EMU, slide coordinates
}

func (b *BaseShape) GetID() int           { return b.id }
func (b *BaseShape) GetName() string      { return b.name }
func (b *BaseShape) GetBounds() Rectangle { return b.bounds }
func (b *BaseShape) shape()               {}

// PlaceholderType is the ph type attribute of a placeholder shape.
type PlaceholderType string

const (
	PlaceholderNone     PlaceholderType = ""
	PlaceholderTitle    PlaceholderType = "title"
	PlaceholderCtrTitle PlaceholderType = "ctrTitle"
	PlaceholderSubTitle PlaceholderType = "subTitle"
	PlaceholderBody     PlaceholderType = "body"
	PlaceholderObject   PlaceholderType = "obj"
)

// TextShape is a shape with a text body.
type TextShape struct {
	BaseShape
	text        string
	placeholder PlaceholderType
	inherited   bool
}

// GetText returns the normalized, trimmed text of the shape.
func (t *TextShape) GetText() string { return t.text }

// GetPlaceholder returns the placeholder type, or PlaceholderNone.
func (t *TextShape) GetPlaceholder() PlaceholderType { return t.placeholder }

// IsInherited reports whether the bounds came from the slide layout or master.
func (t *TextShape) IsInherited() bool { return t.inherited }

// ShapeKind identifies a non-text shape.
type ShapeKind string

const (
	ShapeKindPicture      ShapeKind = "picture"
	ShapeKindConnector    ShapeKind = "connector"
	ShapeKindGraphicFrame ShapeKind = "graphic-frame"
	ShapeKindAutoShape    ShapeKind = "auto-shape"
	ShapeKindContentPart  ShapeKind = "content-part"
)

// OtherShape is any shape without a text body. It occupies space on the
// slide but never produces a TextBlock.
type OtherShape struct {
	BaseShape
	kind ShapeKind
}

// GetKind returns what kind of element the shape was read from.
func (o *OtherShape) GetKind() ShapeKind { return o.kind }

// TextBlock is a text shape's box and content.
type TextBlock struct {
	Rectangle
	Text string `json:"text"`
}

// Slide is one slide of a document, numbered from 1 in presentation order.
type Slide struct {
	Number int
	Part   string // package part name, e.g. "ppt/slides/slide3.xml"
	Shapes []Shape
}

// TextBlocks returns the text blocks of the slide in shape-tree order.
// Text shapes whose text is empty are skipped.
func (s *Slide) TextBlocks() []TextBlock {
	var blocks []TextBlock
	for _, sh := range s.Shapes {
		ts, ok := sh.(*TextShape)
		if !ok || ts.text == "" {
			continue
		}
		blocks = append(blocks, TextBlock{Rectangle: ts.bounds, Text: ts.text})
	}
	return blocks
}

// Document is the geometry view of a presentation package.
type Document struct {
	SlideWidth  int64 // in EMU
	SlideHeight int64 // in EMU
	Slides      []*Slide
}

// GetSlideCount returns the number of slides.
func (d *Document) GetSlideCount() int {
	return len(d.Slides)
}
