package slidezone

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

var (
	// ErrNotPackage means the input is not a readable zip package.
	ErrNotPackage = errors.New("not a presentation package")
	// ErrMissingPart means a part the deck cannot be read without is absent.
	ErrMissingPart = errors.New("missing required part")
	// ErrMissingSlideSize means presentation.xml has no usable sldSz.
	ErrMissingSlideSize = errors.New("presentation has no slide size")
)

// DocumentParseError is returned when a deck cannot be read. No partial
// document is ever returned alongside it.
type DocumentParseError struct {
	Path  string
	Cause error
}

func (e *DocumentParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse document: %v", e.Cause)
	}
	return fmt.Sprintf("parse document %s: %v", e.Path, e.Cause)
}

func (e *DocumentParseError) Unwrap() error { return e.Cause }

// maxZipEntrySize is the maximum allowed size for a single file extracted from a ZIP.
// This prevents zip bomb attacks. 50 MB is generous for any legitimate PPTX part.
const maxZipEntrySize = 50 << 20 // 50 MB

// maxZipTotalSize is the cumulative limit for all extracted content from a single ZIP.
const maxZipTotalSize = 200 << 20 // 200 MB

// maxZipEntries is the maximum number of files allowed in a ZIP archive.
const maxZipEntries = 10000

const defaultPresentationPart = "ppt/presentation.xml"

// Relationship type suffixes. Matching on the suffix accepts both the
// transitional and the strict OOXML namespaces.
const (
	relTypeOfficeDocument = "/officeDocument"
	relTypeSlideLayout    = "/slideLayout"
	relTypeSlideMaster    = "/slideMaster"
)

// Open reads the deck at path.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DocumentParseError{Path: path, Cause: fmt.Errorf("failed to open file: %w", err)}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &DocumentParseError{Path: path, Cause: fmt.Errorf("failed to stat file: %w", err)}
	}

	doc, err := ReadFrom(f, info.Size())
	if err != nil {
		var pe *DocumentParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// ReadFrom reads a deck from an io.ReaderAt with the given size.
func ReadFrom(r io.ReaderAt, size int64) (*Document, error) {
	if size <= 0 {
		return nil, &DocumentParseError{Cause: fmt.Errorf("%w: invalid reader size %d", ErrNotPackage, size)}
	}
	if size > int64(maxZipTotalSize) {
		return nil, &DocumentParseError{Cause: fmt.Errorf("file size %d exceeds maximum allowed (%d bytes)", size, maxZipTotalSize)}
	}

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &DocumentParseError{Cause: fmt.Errorf("%w: %v", ErrNotPackage, err)}
	}
	if len(zr.File) > maxZipEntries {
		return nil, &DocumentParseError{Cause: fmt.Errorf("zip archive contains too many entries (%d > %d)", len(zr.File), maxZipEntries)}
	}

	pkg := &pptxPackage{
		files:  zipIndex(zr),
		frames: make(map[string]*placeholderFrames),
	}
	doc, err := pkg.read()
	if err != nil {
		return nil, &DocumentParseError{Cause: err}
	}
	return doc, nil
}

// pptxPackage holds the state of one read. It is not safe for concurrent use.
type pptxPackage struct {
	files     map[string]*zip.File
	extracted int64
	frames    map[string]*placeholderFrames // layout part -> merged frames
}

// zipIndex builds a map from file name to *zip.File for O(1) lookups.
func zipIndex(zr *zip.Reader) map[string]*zip.File {
	m := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		m[f.Name] = f
	}
	return m
}

func (p *pptxPackage) has(name string) bool {
	_, ok := p.files[name]
	return ok
}

func (p *pptxPackage) readPart(name string) ([]byte, error) {
	f, ok := p.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingPart, name)
	}
	if f.UncompressedSize64 > maxZipEntrySize {
		return nil, fmt.Errorf("file %s exceeds maximum allowed size (%d bytes)", name, maxZipEntrySize)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in zip: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, int64(maxZipEntrySize)+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from zip: %w", name, err)
	}
	if int64(len(data)) > int64(maxZipEntrySize) {
		return nil, fmt.Errorf("file %s actual size exceeds maximum allowed size", name)
	}
	p.extracted += int64(len(data))
	if p.extracted > int64(maxZipTotalSize) {
		return nil, fmt.Errorf("extracted content exceeds maximum allowed (%d bytes)", maxZipTotalSize)
	}
	return data, nil
}

// --- Relationship reading ---

type xmlRelationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

type xmlRelationships struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Relationships []xmlRelationship `xml:"Relationship"`
}

// readRelationships returns the relationships of a part. A part without a
// relationships file has none.
func (p *pptxPackage) readRelationships(name string) ([]xmlRelationship, error) {
	if !p.has(name) {
		return nil, nil
	}
	data, err := p.readPart(name)
	if err != nil {
		return nil, err
	}
	var rels xmlRelationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("failed to parse relationships %s: %w", name, err)
	}
	return rels.Relationships, nil
}

// relsPathFor returns the relationships part name for a part,
// e.g. ppt/slides/slide1.xml -> ppt/slides/_rels/slide1.xml.rels.
func relsPathFor(part string) string {
	dir, file := path.Split(part)
	return dir + "_rels/" + file + ".rels"
}

// resolveRelativePath resolves a relationship target against the directory
// of its source part. Targets that escape the package root resolve to a
// name that is never present in the archive.
func resolveRelativePath(base, rel string) string {
	if strings.HasPrefix(rel, "/") {
		return strings.TrimPrefix(path.Clean(rel), "/")
	}
	return path.Clean(path.Join(base, rel))
}

// relTarget returns the resolved target of the first internal relationship
// whose type ends with typeSuffix, or "".
func relTarget(source string, rels []xmlRelationship, typeSuffix string) string {
	for _, rel := range rels {
		if rel.TargetMode == "External" || !strings.HasSuffix(rel.Type, typeSuffix) {
			continue
		}
		return resolveRelativePath(path.Dir(source), rel.Target)
	}
	return ""
}

// --- Presentation part ---

type xmlPresentation struct {
	XMLName   xml.Name      `xml:"presentation"`
	SlideSize *xmlSlideSize `xml:"sldSz"`
	SlideIDs  []xmlSlideID  `xml:"sldIdLst>sldId"`
}

type xmlSlideSize struct {
	Cx int64 `xml:"cx,attr"`
	Cy int64 `xml:"cy,attr"`
}

type xmlSlideID struct {
	RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

// mainPart locates presentation.xml through the package relationships.
func (p *pptxPackage) mainPart() (string, error) {
	rels, err := p.readRelationships("_rels/.rels")
	if err != nil {
		return "", err
	}
	if target := relTarget("", rels, relTypeOfficeDocument); target != "" {
		return target, nil
	}
	return defaultPresentationPart, nil
}

func (p *pptxPackage) read() (*Document, error) {
	mainPath, err := p.mainPart()
	if err != nil {
		return nil, err
	}
	data, err := p.readPart(mainPath)
	if err != nil {
		return nil, err
	}

	var pres xmlPresentation
	if err := xml.Unmarshal(data, &pres); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", mainPath, err)
	}
	if pres.SlideSize == nil || pres.SlideSize.Cx <= 0 || pres.SlideSize.Cy <= 0 {
		return nil, ErrMissingSlideSize
	}

	presRels, err := p.readRelationships(relsPathFor(mainPath))
	if err != nil {
		return nil, err
	}
	targets := make(map[string]string, len(presRels))
	for _, rel := range presRels {
		targets[rel.ID] = rel.Target
	}

	doc := &Document{
		SlideWidth:  pres.SlideSize.Cx,
		SlideHeight: pres.SlideSize.Cy,
		Slides:      make([]*Slide, 0, len(pres.SlideIDs)),
	}
	for i, id := range pres.SlideIDs {
		target, ok := targets[id.RID]
		if !ok {
			return nil, fmt.Errorf("%w: no relationship %q for slide %d", ErrMissingPart, id.RID, i+1)
		}
		part := resolveRelativePath(path.Dir(mainPath), target)
		slide, err := p.readSlide(part, i+1)
		if err != nil {
			return nil, fmt.Errorf("failed to read slide %s: %w", part, err)
		}
		doc.Slides = append(doc.Slides, slide)
	}
	return doc, nil
}
