package slidezone

import (
	"encoding/json"
	"io"
	"math"
)

// Report is the JSON form of an Analysis.
type Report struct {
	VideoZone Rectangle     `json:"video_zone"`
	Slides    []SlideReport `json:"slides"`
}

// SlideReport is one slide of a Report. Preview is null when the slide has
// no preview; Issues is never null.
type SlideReport struct {
	Slide   int           `json:"slide"`
	Preview *string       `json:"preview"`
	Issues  []IssueReport `json:"issues"`
}

// IssueReport is one overlapped text block.
type IssueReport struct {
	Text                string  `json:"text"`
	X                   float64 `json:"x"`
	Y                   float64 `json:"y"`
	Width               float64 `json:"width"`
	Height              float64 `json:"height"`
	IntersectionPercent float64 `json:"intersection_percent"`
}

// NewReport builds the report for a. previews maps slide numbers to preview
// references and may be nil.
func NewReport(a *Analysis, previews map[int]string) *Report {
	r := &Report{
		VideoZone: a.VideoZone,
		Slides:    make([]SlideReport, 0, len(a.Results)),
	}
	for _, result := range a.Results {
		sr := SlideReport{
			Slide:  result.SlideNumber,
			Issues: make([]IssueReport, 0, len(result.Issues)),
		}
		if ref, ok := previews[result.SlideNumber]; ok {
			sr.Preview = &ref
		}
		for _, issue := range result.Issues {
			b := issue.TextBlock
			sr.Issues = append(sr.Issues, IssueReport{
				Text:                b.Text,
				X:                   b.X,
				Y:                   b.Y,
				Width:               b.Width,
				Height:              b.Height,
				IntersectionPercent: round2(issue.IntersectionPercent),
			})
		}
		r.Slides = append(r.Slides, sr)
	}
	return r
}

// WriteJSON writes the report as indented JSON. Non-ASCII text and HTML
// characters are written as is.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(r)
}

// round2 rounds half away from zero to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
