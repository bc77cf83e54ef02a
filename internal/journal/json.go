package journal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"bidscore/internal/score/scorer"

	"gopkg.in/natefinch/lumberjack.v2"
)

// timeLayout is the journal timestamp format.
const timeLayout = "2006-01-02 15:04:05"

// jsonLineHandler is a slog handler that writes every record as one JSON
// object per line, with the time in timeLayout and without level or message.
// All attributes are written at the top level of the object.
type jsonLineHandler struct {
	out io.Writer
}

func newJSONLineHandler(out io.Writer) *jsonLineHandler {
	return &jsonLineHandler{out: out}
}

// Handle serializes a record to a single JSONL line.
func (h *jsonLineHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any)
	attrs["time"] = r.Time.UTC().Format(timeLayout)

	r.Attrs(func(a slog.Attr) bool {
		if a.Key != "" && a.Value.Any() != nil {
			attrs[a.Key] = a.Value.Any()
		}
		return true
	})

	data, err := json.Marshal(attrs)
	if err != nil {
		return err
	}

	_, err = h.out.Write(append(data, '\n'))
	return err
}

func (h *jsonLineHandler) WithAttrs([]slog.Attr) slog.Handler {
	panic("WithAttrs is not supported by jsonLineHandler")
}

func (h *jsonLineHandler) WithGroup(string) slog.Handler {
	panic("WithGroup is not supported by jsonLineHandler")
}

func (h *jsonLineHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// JSONJournal is a thread-safe audit journal of calculations. Each accepted
// calculation is written as one JSON line holding the request and the report.
// Files are rotated and compressed by lumberjack.
type JSONJournal struct {
	writer io.WriteCloser
	logger *slog.Logger
}

// Append records the request and its report.
func (j *JSONJournal) Append(request scorer.Request, report *scorer.Report) {
	j.logger.Info("",
		"id", report.ID,
		"digest", report.Digest,
		"request", request,
		"report", report,
	)
}

// Close flushes and closes the current journal file.
func (j *JSONJournal) Close() {
	if err := j.writer.Close(); err != nil {
		slog.Warn("Unable to close journal", "error", err)
	}
}

// NewJSONJournal creates a journal writing to file.
// Parameters:
//   - file: path of the journal file
//   - maxSize: size in megabytes before the file is rotated
//   - maxBackups: number of rotated files to keep
func NewJSONJournal(file string, maxSize, maxBackups int) *JSONJournal {
	return newJSONJournal(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		Compress:   true,
	})
}

func newJSONJournal(writer io.WriteCloser) *JSONJournal {
	return &JSONJournal{
		writer: writer,
		logger: slog.New(newJSONLineHandler(writer)),
	}
}
