package logger

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// WriterStrategy wraps a destination in a format-specific writer.
type WriterStrategy interface {
	CreateWriter(out io.Writer) io.Writer
}

// JSONWriterStrategy writes raw zerolog JSON lines.
type JSONWriterStrategy struct{}

func (s *JSONWriterStrategy) CreateWriter(out io.Writer) io.Writer {
	return out
}

// ConsoleWriterStrategy writes human-readable, optionally colored lines.
type ConsoleWriterStrategy struct {
	NoColor bool
}

func (s *ConsoleWriterStrategy) CreateWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    s.NoColor,
		TimeFormat: time.RFC3339,
	}
}

// TextWriterStrategy is the console layout without colors.
type TextWriterStrategy struct{}

func (s *TextWriterStrategy) CreateWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    true,
		TimeFormat: time.RFC3339,
	}
}
