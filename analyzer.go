package slidezone

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SlideIssue is a text block that the exclusion zone overlaps.
type SlideIssue struct {
	SlideNumber         int
	TextBlock           TextBlock
	IntersectionPercent float64
}

// SlideAnalysisResult holds the issues found on one slide. There is one per
// slide, including slides without issues.
type SlideAnalysisResult struct {
	SlideNumber int
	Issues      []SlideIssue
}

// HasIssues reports whether any text block on the slide is overlapped.
func (r SlideAnalysisResult) HasIssues() bool { return len(r.Issues) > 0 }

// Analysis is the outcome of analyzing one document.
type Analysis struct {
	Results     []SlideAnalysisResult
	SlideWidth  float64 // in EMU
	SlideHeight float64 // in EMU
	VideoZone   Rectangle
}

// IssueCount returns the total number of issues across all slides.
func (a *Analysis) IssueCount() int {
	n := 0
	for _, r := range a.Results {
		n += len(r.Issues)
	}
	return n
}

// AnalyzeOptions controls an Analyzer.
type AnalyzeOptions struct {
	// Concurrency bounds the number of slides analyzed at once.
	// Zero means GOMAXPROCS.
	Concurrency int
	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// DefaultAnalyzeOptions returns options with GOMAXPROCS workers and no logging.
func DefaultAnalyzeOptions() *AnalyzeOptions {
	return &AnalyzeOptions{}
}

// Analyzer checks documents against an exclusion zone.
type Analyzer struct {
	concurrency int
	logger      *slog.Logger
}

// NewAnalyzer creates an Analyzer. A nil opts uses DefaultAnalyzeOptions.
func NewAnalyzer(opts *AnalyzeOptions) *Analyzer {
	if opts == nil {
		opts = DefaultAnalyzeOptions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{concurrency: opts.Concurrency, logger: logger}
}

// Analyze reads the document at path and reports, per slide, every text
// block the zone described by cfg overlaps. Parse failures are returned as
// *DocumentParseError and no partial result is produced.
func (az *Analyzer) Analyze(ctx context.Context, path string, cfg ZoneConfig) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyze %s: %w", path, err)
	}

	start := time.Now()
	doc, err := Open(path)
	if err != nil {
		return nil, err
	}
	az.logger.Debug("document parsed",
		slog.String("path", path),
		slog.Int("slides", doc.GetSlideCount()),
		slog.Duration("elapsed", time.Since(start)))

	a, err := az.analyzeDocument(ctx, doc, cfg)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", path, err)
	}
	az.logger.Debug("document analyzed",
		slog.String("path", path),
		slog.Int("issues", a.IssueCount()),
		slog.Duration("elapsed", time.Since(start)))
	return a, nil
}

func (az *Analyzer) analyzeDocument(ctx context.Context, doc *Document, cfg ZoneConfig) (*Analysis, error) {
	slideW := float64(doc.SlideWidth)
	slideH := float64(doc.SlideHeight)
	zone := ResolveZone(cfg, slideW, slideH)

	results := make([]SlideAnalysisResult, len(doc.Slides))
	err := forEachSlide(ctx, len(doc.Slides), az.concurrency, func(i int) {
		results[i] = analyzeSlide(doc.Slides[i], zone)
	})
	if err != nil {
		return nil, err
	}

	return &Analysis{
		Results:     results,
		SlideWidth:  slideW,
		SlideHeight: slideH,
		VideoZone:   zone,
	}, nil
}

func analyzeSlide(s *Slide, zone Rectangle) SlideAnalysisResult {
	result := SlideAnalysisResult{SlideNumber: s.Number}
	for _, block := range s.TextBlocks() {
		in := Intersect(block.Rectangle, zone)
		if !in.Overlaps() {
			continue
		}
		result.Issues = append(result.Issues, SlideIssue{
			SlideNumber:         s.Number,
			TextBlock:           block,
			IntersectionPercent: in.PercentOfTarget,
		})
	}
	return result
}

// Analyze is a convenience wrapper using a default Analyzer and a
// background context.
func Analyze(path string, cfg ZoneConfig) (*Analysis, error) {
	return NewAnalyzer(nil).Analyze(context.Background(), path, cfg)
}

// AnalyzeDocument analyzes an already read document sequentially.
func AnalyzeDocument(doc *Document, cfg ZoneConfig) *Analysis {
	zone := ResolveZone(cfg, float64(doc.SlideWidth), float64(doc.SlideHeight))
	results := make([]SlideAnalysisResult, len(doc.Slides))
	for i, s := range doc.Slides {
		results[i] = analyzeSlide(s, zone)
	}
	return &Analysis{
		Results:     results,
		SlideWidth:  float64(doc.SlideWidth),
		SlideHeight: float64(doc.SlideHeight),
		VideoZone:   zone,
	}
}
