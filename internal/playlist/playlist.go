// Package playlist writes playlist files listing the merged outputs of a batch.
package playlist

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Format represents supported playlist file formats.
//
// Each format has different features and compatibility:
//   - M3U: Simple text format, widely supported
//   - PLS: INI-style format, used by Winamp
//   - WPL: XML format, Windows Media Player
//   - ZPL: XML format, Zune/Groove Music
type Format int

const (
	// FormatM3U creates .m3u files (most compatible).
	// Can be extended with EXTINF lines for duration/title info.
	FormatM3U Format = iota

	// FormatPLS creates .pls files.
	FormatPLS

	// FormatWPL creates .wpl files.
	FormatWPL

	// FormatZPL creates .zpl files.
	FormatZPL
)

// ParseFormat maps a settings value ("m3u", "pls", "wpl", "zpl") to a
// Format. Unknown values fall back to M3U.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pls":
		return FormatPLS
	case "wpl":
		return FormatWPL
	case "zpl":
		return FormatZPL
	default:
		return FormatM3U
	}
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatPLS:
		return ".pls"
	case FormatWPL:
		return ".wpl"
	case FormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// Entry is one merged output in a playlist.
type Entry struct {
	Title    string
	Path     string
	Duration time.Duration
}

// Creator generates playlist content for a batch.
//
// Entry paths are written relative (base name only), assuming the playlist
// is saved next to the outputs.
//
// Example:
//
//	creator := NewCreator(FormatM3U, true)
//	content := creator.Create("Season 1", entries)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:1440,Episode 1
//	// Episode 1.mp4
type Creator struct {
	format   Format
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewCreator creates a new Creator. extended only affects M3U.
func NewCreator(format Format, extended bool) *Creator {
	return &Creator{
		format:   format,
		extended: extended,
	}
}

// Format returns the configured format.
func (c *Creator) Format() Format {
	return c.format
}

// Create renders the playlist.
func (c *Creator) Create(title string, entries []Entry) string {
	switch c.format {
	case FormatPLS:
		return c.createPLS(entries)
	case FormatWPL:
		return c.createWPL(title, entries)
	case FormatZPL:
		return c.createZPL(title, entries)
	default:
		return c.createM3U(entries)
	}
}

// createM3U generates an M3U playlist.
//
// Extended M3U format (when extended=true):
//
//	#EXTM3U
//	#EXTINF:1440,Title
//	Title.mp4
func (c *Creator) createM3U(entries []Entry) string {
	var sb strings.Builder

	if c.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, e := range entries {
		if c.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s\n", seconds(e.Duration), e.Title)
		}
		sb.WriteString(filepath.Base(e.Path) + "\n")
	}

	return sb.String()
}

// createPLS generates an INI-style PLS playlist.
func (c *Creator) createPLS(entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")
	for i, e := range entries {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, filepath.Base(e.Path))
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, e.Title)
		fmt.Fprintf(&sb, "Length%d=%d\n", idx, seconds(e.Duration))
	}
	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(entries))
	sb.WriteString("Version=2\n")

	return sb.String()
}

func (c *Creator) createWPL(title string, entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(title))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(filepath.Base(e.Path)))
	}
	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// createZPL is WPL plus per-entry title and duration (milliseconds).
func (c *Creator) createZPL(title string, entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(title))
	sb.WriteString("    <meta name=\"Generator\" content=\"dashdl\"/>\n")
	fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(entries))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\" albumTitle=\"%s\" trackTitle=\"%s\" duration=\"%d\"/>\n",
			escapeXML(filepath.Base(e.Path)),
			escapeXML(title),
			escapeXML(e.Title),
			e.Duration.Milliseconds())
	}
	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// seconds rounds to whole seconds; unknown durations are written as -1,
// which M3U and PLS readers treat as "unknown".
func seconds(d time.Duration) int {
	if d <= 0 {
		return -1
	}
	return int(d.Round(time.Second) / time.Second)
}

// escapeXML escapes & < > " ' for attribute and text content.
func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}
