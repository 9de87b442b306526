package slidezone

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrRenderingUnavailable means previews cannot be produced in this
// environment, e.g. because the output directory cannot be created or is
// read-only.
var ErrRenderingUnavailable = errors.New("preview rendering unavailable")

// Preview is one written preview image.
type Preview struct {
	SlideNumber int
	// Path is the file system path of the PNG.
	Path string
	// Ref is the reference handed to the presentation layer: URLPrefix
	// followed by the file name.
	Ref string
}

// PreviewWriter renders previews and stores them as PNG files.
type PreviewWriter struct {
	Dir         string
	URLPrefix   string
	Options     *PreviewOptions
	Logger      *slog.Logger
	Concurrency int
}

// NewPreviewWriter creates a PreviewWriter storing files in dir and
// referencing them as urlPrefix+name.
func NewPreviewWriter(dir, urlPrefix string) *PreviewWriter {
	return &PreviewWriter{
		Dir:       dir,
		URLPrefix: urlPrefix,
		Options:   DefaultPreviewOptions(),
	}
}

// previewFileName returns a file name that is unique across runs, so that a
// second analysis of the same document never replaces earlier previews.
func previewFileName(slideNumber int) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("slide-%d-%s.png", slideNumber, id[:8])
}

// prepareDir creates Dir if needed and verifies that it accepts new files.
func (w *PreviewWriter) prepareDir() error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderingUnavailable, err)
	}
	probe, err := os.CreateTemp(w.Dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRenderingUnavailable, err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

// Write renders and stores a preview for every slide of a, creating Dir
// when it does not exist. It never fails: when rendering is unavailable it logs a warning and returns no previews,
// and a slide whose preview cannot be produced is logged and left out. The
// result is ordered by slide number.
func (w *PreviewWriter) Write(ctx context.Context, a *Analysis) []Preview {
	logger := w.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := w.prepareDir(); err != nil {
		logger.Warn("skipping previews", slog.String("dir", w.Dir), slog.Any("error", err))
		return []Preview{}
	}

	opts := w.Options
	if opts == nil {
		opts = DefaultPreviewOptions()
	}
	if opts.Labels && opts.FontCache == nil {
		shared := *opts
		shared.FontCache = NewFontCache(opts.FontDirs...)
		opts = &shared
	}

	written := make([]*Preview, len(a.Results))
	err := forEachSlide(ctx, len(a.Results), w.Concurrency, func(i int) {
		result := a.Results[i]
		p, err := w.writeOne(a, result, opts)
		if err != nil {
			logger.Warn("preview failed",
				slog.Int("slide", result.SlideNumber),
				slog.Any("error", err))
			return
		}
		written[i] = p
	})
	if err != nil {
		logger.Warn("previews interrupted", slog.Any("error", err))
	}

	previews := make([]Preview, 0, len(written))
	for _, p := range written {
		if p != nil {
			previews = append(previews, *p)
		}
	}
	logger.Debug("previews written", slog.Int("count", len(previews)), slog.String("dir", w.Dir))
	return previews
}

func (w *PreviewWriter) writeOne(a *Analysis, result SlideAnalysisResult, opts *PreviewOptions) (*Preview, error) {
	img, err := RenderPreview(a, result, opts)
	if err != nil {
		return nil, err
	}
	name := previewFileName(result.SlideNumber)
	path := filepath.Join(w.Dir, name)
	if err := savePNG(img, path); err != nil {
		return nil, err
	}
	return &Preview{SlideNumber: result.SlideNumber, Path: path, Ref: w.URLPrefix + name}, nil
}

func savePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

// PreviewMap maps slide numbers to preview references.
func PreviewMap(previews []Preview) map[int]string {
	m := make(map[int]string, len(previews))
	for _, p := range previews {
		m[p.SlideNumber] = p.Ref
	}
	return m
}
