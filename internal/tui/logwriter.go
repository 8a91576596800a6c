package tui

import "strings"

// LogWriter is an io.Writer that sends each written line as a DebugLogMsg
// to a Bubble Tea program. Use it as the output for a log.Logger.
type LogWriter struct {
	program Sender
}

// NewLogWriter creates a LogWriter that sends debug lines to the given program.
func NewLogWriter(p Sender) *LogWriter {
	return &LogWriter{program: p}
}

// Write implements io.Writer. Each call parses the log line into structured
// fields and sends a DebugLogMsg. The send is done in a goroutine to avoid
// deadlocking when called from inside a Bubble Tea command function.
func (w *LogWriter) Write(b []byte) (int, error) {
	line := strings.TrimRight(string(b), "\n")
	entry := parseLine(line)
	go w.program.Send(DebugLogMsg{Entry: entry})
	return len(b), nil
}

// parseLine extracts time, category, and message from a log line.
// Expected format: "[DEBUG] HH:MM:SS.micros message text"
// Category is inferred from the component prefix of the message (e.g.
// "mixer: ...", "listener: ...", "pulse: ...").
func parseLine(line string) DebugEntry {
	entry := DebugEntry{
		Time:     "",
		Category: "debug",
		Message:  line,
	}

	// Strip "[DEBUG] " prefix
	msg := strings.TrimPrefix(line, "[DEBUG] ")

	// Extract timestamp (HH:MM:SS.micros or HH:MM:SS)
	if len(msg) >= 8 && msg[2] == ':' && msg[5] == ':' {
		// Find the end of the timestamp (space after time)
		spaceIdx := strings.IndexByte(msg, ' ')
		if spaceIdx > 0 {
			entry.Time = msg[:spaceIdx]
			msg = msg[spaceIdx+1:]
		}
	}

	entry.Category, entry.Message = inferCategory(msg)

	return entry
}

// categories maps a component prefix to the category shown in the panel.
var categories = map[string]string{
	"mixer":     "mixer",
	"pulse":     "mixer",
	"coreaudio": "mixer",
	"listener":  "listener",
	"app":       "app",
	"config":    "config",
	"chime":     "feedback",
	"notify":    "feedback",
	"meter":     "audio",
	"portaudio": "audio",
	"tui":       "ui",
}

// inferCategory determines the log category from the message content.
func inferCategory(msg string) (category, message string) {
	prefix := msg
	if i := strings.IndexAny(msg, ": "); i >= 0 {
		prefix = msg[:i]
	}
	if cat, ok := categories[strings.ToLower(prefix)]; ok {
		return cat, msg
	}
	return "debug", msg
}
