package summarizer

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// MarkdownFormatter renders a Summary as a Markdown report.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// Option configures a MarkdownFormatter.
type Option func(*MarkdownFormatter)

// WithTranslator sets the function used to translate labels.
func WithTranslator(fn func(string) string) Option {
	return func(f *MarkdownFormatter) {
		f.translate = fn
	}
}

// WithVersion adds the tool version to the report header.
func WithVersion(version string) Option {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter(opts ...Option) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Conversion Summary"))
	fmt.Fprintf(&b, "%s: %s\n", t("Generated"), s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if f.version != "" {
		fmt.Fprintf(&b, "%s: %s\n", t("Version"), f.version)
	}
	b.WriteString("\n")

	f.section(&b, "Source")
	f.row(&b, "Bag", orNA(s.Source.BagPath))
	f.row(&b, "Topic", orNA(s.Source.Topic))
	f.row(&b, "Message Type", orNA(s.Source.MessageType))
	f.row(&b, "Messages", humanize.Comma(int64(s.Source.MessageCount)))
	f.row(&b, "Duration", formatMs(s.Source.DurationMs))
	f.row(&b, "Framerate", fmt.Sprintf("%.2f fps", s.Source.Framerate))
	b.WriteString("\n")

	f.section(&b, "Frames")
	f.row(&b, "Buffered", humanize.Comma(int64(s.Frames.Buffered)))
	f.row(&b, "Skipped", humanize.Comma(int64(s.Frames.Skipped)))
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Annotations"))
	switch {
	case s.Annotations.Path == "":
		fmt.Fprintf(&b, "%s\n\n", t("No annotation table supplied"))
	case s.Annotations.Error != "":
		fmt.Fprintf(&b, "%s: `%s`\n\n%s\n\n", t("Table could not be used"), s.Annotations.Path, s.Annotations.Error)
	default:
		b.WriteString("| | |\n|---|---|\n")
		f.row(&b, "Table", s.Annotations.Path)
		f.row(&b, "Boxes", humanize.Comma(int64(s.Annotations.Boxes)))
		f.row(&b, "Frames with Boxes", humanize.Comma(int64(s.Annotations.PopulatedFrames)))
		if s.Annotations.Burned > 0 {
			f.row(&b, "Burned In", humanize.Comma(int64(s.Annotations.Burned)))
		}
		b.WriteString("\n")
	}

	f.section(&b, "Video")
	f.row(&b, "Output", orNA(s.Video.OutputPath))
	codec := orNA(s.Video.FourCC)
	if s.Video.FallbackUsed {
		codec = fmt.Sprintf("%s (%s %s)", codec, t("fallback from"), s.Video.RequestedFourCC)
	}
	f.row(&b, "Codec", codec)
	if s.Video.Backend != "" {
		f.row(&b, "Backend", s.Video.Backend)
	}
	f.row(&b, "Size", fmt.Sprintf("%dx%d", s.Video.Width, s.Video.Height))
	f.row(&b, "Frames", humanize.Comma(int64(s.Video.FrameCount)))
	f.row(&b, "Duration", formatMs(int64(s.Video.DurationMs)))
	f.row(&b, "File Size", formatBytes(s.Video.FileSize))

	return b.String()
}

func (f *MarkdownFormatter) section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "## %s\n\n| | |\n|---|---|\n", f.translate(title))
}

func (f *MarkdownFormatter) row(b *strings.Builder, item, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", f.translate(item), value)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func formatMs(ms int64) string {
	return humanize.Comma(ms) + " ms"
}

// formatBytes formats a size with binary units, e.g. "1.5 MiB".
func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

var _ Formatter = (*MarkdownFormatter)(nil)
