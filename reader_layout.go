package slidezone

import "encoding/xml"

// placeholderFrames holds the boxes of the placeholders a slide can inherit
// from its layout and master.
type placeholderFrames struct {
	byIdx  map[int]Rectangle
	byType map[PlaceholderType]Rectangle
}

func newPlaceholderFrames() *placeholderFrames {
	return &placeholderFrames{
		byIdx:  make(map[int]Rectangle),
		byType: make(map[PlaceholderType]Rectangle),
	}
}

// typeFallbacks lists the layout placeholder types a slide placeholder of
// type t may inherit from, most specific first.
func typeFallbacks(t PlaceholderType) []PlaceholderType {
	switch t {
	case PlaceholderCtrTitle:
		return []PlaceholderType{PlaceholderCtrTitle, PlaceholderTitle}
	case PlaceholderSubTitle:
		return []PlaceholderType{PlaceholderSubTitle, PlaceholderBody}
	case PlaceholderObject:
		return []PlaceholderType{PlaceholderObject, PlaceholderBody}
	default:
		return []PlaceholderType{t}
	}
}

func (f *placeholderFrames) lookup(ph *xmlPlaceholder) (Rectangle, bool) {
	if f == nil {
		return Rectangle{}, false
	}
	if idx, ok := ph.index(); ok {
		if r, ok := f.byIdx[idx]; ok {
			return r, true
		}
	}
	for _, t := range typeFallbacks(ph.kind()) {
		if r, ok := f.byType[t]; ok {
			return r, true
		}
	}
	return Rectangle{}, false
}

// overlay returns a copy of f with the entries of top replacing its own.
func (f *placeholderFrames) overlay(top *placeholderFrames) *placeholderFrames {
	merged := newPlaceholderFrames()
	for _, src := range []*placeholderFrames{f, top} {
		if src == nil {
			continue
		}
		for k, v := range src.byIdx {
			merged.byIdx[k] = v
		}
		for k, v := range src.byType {
			merged.byType[k] = v
		}
	}
	return merged
}

type xmlPlaceholderPart struct {
	Shapes []xmlShape `xml:"cSld>spTree>sp"`
}

// readFrames collects the explicitly positioned placeholders of a layout or
// master part.
func (p *pptxPackage) readFrames(part string) (*placeholderFrames, error) {
	data, err := p.readPart(part)
	if err != nil {
		return nil, err
	}
	var doc xmlPlaceholderPart
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	frames := newPlaceholderFrames()
	for _, sp := range doc.Shapes {
		if sp.Placeholder == nil || sp.Xfrm == nil {
			continue
		}
		r := sp.Xfrm.rect()
		if idx, ok := sp.Placeholder.index(); ok {
			frames.byIdx[idx] = r
		}
		t := sp.Placeholder.kind()
		if _, exists := frames.byType[t]; !exists {
			frames.byType[t] = r
		}
	}
	return frames, nil
}

// layoutFrames returns the placeholder boxes a slide inherits: the master's
// overlaid with the layout's. Layout and master parts are optional; any that
// cannot be read contribute nothing.
func (p *pptxPackage) layoutFrames(slidePart string, slideRels []xmlRelationship) *placeholderFrames {
	layoutPart := relTarget(slidePart, slideRels, relTypeSlideLayout)
	if layoutPart == "" {
		return nil
	}
	if cached, ok := p.frames[layoutPart]; ok {
		return cached
	}

	layout, _ := p.readFrames(layoutPart)

	var master *placeholderFrames
	if layoutRels, err := p.readRelationships(relsPathFor(layoutPart)); err == nil {
		if masterPart := relTarget(layoutPart, layoutRels, relTypeSlideMaster); masterPart != "" {
			if cached, ok := p.frames[masterPart]; ok {
				master = cached
			} else if m, err := p.readFrames(masterPart); err == nil {
				master = m
				p.frames[masterPart] = m
			}
		}
	}

	merged := master.overlay(layout)
	p.frames[layoutPart] = merged
	return merged
}
