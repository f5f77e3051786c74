package logger

import (
	"io"
	"log/slog"
)

// Option adjusts the configuration a logger is built from.
type Option func(*config)

// WithDebug lowers the log level to Debug when true; the level stays at
// Info otherwise.
func WithDebug(debug bool) Option {
	return func(c *config) {
		if debug {
			c.level = slog.LevelDebug
		} else {
			c.level = slog.LevelInfo
		}
	}
}

// WithPretty swaps in the charmbracelet/log handler, giving colorized
// output meant for a human at a terminal.
func WithPretty(pretty bool) Option {
	return func(c *config) {
		c.pretty = pretty
	}
}

// WithJSON selects slog's JSON handler, the format the serve command uses.
func WithJSON(json bool) Option {
	return func(c *config) {
		c.json = json
	}
}

// WithWriter redirects log output to w instead of os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.writers = []io.Writer{w}
	}
}

// WithWriters fans log output out to every given writer via io.MultiWriter.
func WithWriters(w ...io.Writer) Option {
	return func(c *config) {
		c.writers = w
	}
}

// WithSource annotates each record with the emitting source file and line.
func WithSource(source bool) Option {
	return func(c *config) {
		c.source = source
	}
}
