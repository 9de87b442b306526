// Command slidezone reports the text boxes of PowerPoint decks that a fixed
// exclusion zone, such as a speaker-video overlay, covers.
//
// Usage:
//
//	slidezone [flags] deck.pptx [deck.pptx ...]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/VantageDataChat/slidezone"
	"github.com/VantageDataChat/slidezone/config"
)

const maxTextWidth = 48

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	format     string
	noPreviews bool
	proof      string
	noColor    bool
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	fs := flag.NewFlagSet("slidezone", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: slidezone [flags] deck.pptx [deck.pptx ...]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "configuration file (.yaml, .yml or .json)")
	fs.StringVar(&opts.format, "format", "table", "output format: table or json")
	fs.BoolVar(&opts.noPreviews, "no-previews", false, "do not write preview images")
	fs.StringVar(&opts.proof, "proof", "", "write all previews of a deck into this PDF")
	fs.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return opts, fs.Args(), nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, files, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.version {
		fmt.Fprintf(stdout, "slidezone %s\n", slidezone.Version)
		return 0
	}
	if opts.format != "table" && opts.format != "json" {
		fmt.Fprintf(stderr, "unknown format %q\n", opts.format)
		return 2
	}
	if len(files) == 0 {
		fmt.Fprintf(stderr, "Usage: slidezone [flags] deck.pptx [deck.pptx ...]\n")
		return 2
	}
	if opts.proof != "" && len(files) > 1 {
		fmt.Fprintf(stderr, "-proof accepts a single deck\n")
		return 2
	}
	if opts.noColor || opts.format == "json" {
		color.NoColor = true
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fail(opts, stdout, stderr, err)
	}
	if opts.noPreviews {
		cfg.Preview.Enabled = false
	}
	logger := newLogger(cfg.Log, stderr)
	if err := cfg.VideoZone.Validate(); err != nil {
		logger.Warn("video zone configuration looks wrong", slog.Any("error", err))
	}

	analyzer := slidezone.NewAnalyzer(&slidezone.AnalyzeOptions{
		Concurrency: cfg.Analysis.Concurrency,
		Logger:      logger,
	})

	status := 0
	for _, file := range files {
		if err := analyzeFile(analyzer, cfg, opts, logger, file, stdout); err != nil {
			if code := fail(opts, stdout, stderr, err); code > status {
				status = code
			}
		}
	}
	return status
}

func analyzeFile(analyzer *slidezone.Analyzer, cfg *config.Config, opts *options, logger *slog.Logger, file string, stdout io.Writer) error {
	ctx := context.Background()
	if cfg.Analysis.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Analysis.Timeout)
		defer cancel()
	}

	a, err := analyzer.Analyze(ctx, file, cfg.VideoZone)
	if err != nil {
		return err
	}

	var previews []slidezone.Preview
	if cfg.Preview.Enabled {
		w := slidezone.NewPreviewWriter(cfg.Paths.Previews, cfg.Paths.PreviewURLPrefix)
		w.Options = cfg.PreviewOptions()
		w.Logger = logger
		w.Concurrency = cfg.Analysis.Concurrency
		previews = w.Write(ctx, a)
	}
	if opts.proof != "" {
		if err := slidezone.WriteProofPDF(previews, opts.proof); err != nil {
			logger.Warn("proof not written", slog.String("path", opts.proof), slog.Any("error", err))
		} else {
			logger.Info("proof written", slog.String("path", opts.proof), slog.Int("pages", len(previews)))
		}
	}

	report := slidezone.NewReport(a, slidezone.PreviewMap(previews))
	if opts.format == "json" {
		return report.WriteJSON(stdout)
	}
	printTable(stdout, file, a, report)
	return nil
}

func newLogger(c config.LogConfig, w io.Writer) *slog.Logger {
	level, _ := config.ParseLevel(c.Level)
	hopts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

// fail reports err in the selected format and returns the exit status.
func fail(opts *options, stdout, stderr io.Writer, err error) int {
	if opts.format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetEscapeHTML(false)
		enc.Encode(map[string]string{"error": err.Error()})
		return 1
	}
	fmt.Fprintln(stderr, color.RedString("error: %v", err))
	return 1
}

func printTable(w io.Writer, file string, a *slidezone.Analysis, r *slidezone.Report) {
	p := message.NewPrinter(language.English)
	z := a.VideoZone
	fmt.Fprintln(w, p.Sprintf("%s: %d slides, %d issues", file, len(a.Results), a.IssueCount()))
	fmt.Fprintln(w, p.Sprintf("video zone: x=%d y=%d width=%d height=%d (EMU), %.2f x %.2f in, %.0f x %.0f px",
		int64(z.X), int64(z.Y), int64(z.Width), int64(z.Height),
		slidezone.EMUToInch(z.Width), slidezone.EMUToInch(z.Height),
		slidezone.EMUToPixel(z.Width), slidezone.EMUToPixel(z.Height)))

	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed, color.Bold).SprintFunc()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Slide", "Overlap", "Text", "Preview"})
	for _, s := range r.Slides {
		preview := "-"
		if s.Preview != nil {
			preview = *s.Preview
		}
		if len(s.Issues) == 0 {
			t.AppendRow(table.Row{s.Slide, ok("clear"), "", preview})
			continue
		}
		for _, issue := range s.Issues {
			t.AppendRow(table.Row{
				s.Slide,
				bad(fmt.Sprintf("%.2f%%", issue.IntersectionPercent)),
				shorten(issue.Text),
				preview,
			})
		}
	}
	t.Render()
}

// shorten flattens text to one line and truncates it to maxTextWidth cells.
func shorten(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	return runewidth.Truncate(text, maxTextWidth, "…")
}
