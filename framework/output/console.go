package output

import (
	"io"
	"strings"

	"github.com/fatih/color"
)

const indentUnit = "  "

// ConsoleSink writes indented, colored lines to a writer. Each open group adds one level of
// indentation.
type ConsoleSink struct {
	w            io.Writer
	depth        int
	groupColor   *color.Color
	infoColor    *color.Color
	successColor *color.Color
	warnColor    *color.Color
	errorColor   *color.Color
	logColor     *color.Color
}

// NewConsoleSink creates a ConsoleSink. If useColor is false, no escape sequences are written
// regardless of whether w is a terminal.
func NewConsoleSink(w io.Writer, useColor bool) *ConsoleSink {
	c := &ConsoleSink{
		w:            w,
		groupColor:   color.New(color.Bold),
		infoColor:    color.New(color.Faint, color.FgBlue),
		successColor: color.New(color.FgGreen),
		warnColor:    color.New(color.FgYellow),
		errorColor:   color.New(color.FgRed),
		logColor:     color.New(color.Reset),
	}
	for _, col := range []*color.Color{c.groupColor, c.infoColor, c.successColor, c.warnColor, c.errorColor, c.logColor} {
		if useColor {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	return c
}

func (c *ConsoleSink) Group(name string) {
	c.write(c.groupColor, name)
	c.depth++
}

func (c *ConsoleSink) GroupEnd(string) {
	if c.depth > 0 {
		c.depth--
	}
}

func (c *ConsoleSink) Info(message string) { c.write(c.infoColor, message) }

func (c *ConsoleSink) Warn(message string) { c.write(c.warnColor, message) }

func (c *ConsoleSink) Log(message string) { c.write(c.logColor, message) }

func (c *ConsoleSink) Error(message string) bool {
	c.write(c.errorColor, message)
	return false
}

func (c *ConsoleSink) Success(message string) bool {
	c.write(c.successColor, message)
	return true
}

// write indents every line of a multi-line message, so stacktraces stay inside their group.
func (c *ConsoleSink) write(col *color.Color, message string) {
	indent := strings.Repeat(indentUnit, c.depth)
	for _, line := range strings.Split(message, "\n") {
		_, _ = col.Fprintln(c.w, indent+line)
	}
}
