package codegen

import (
	"strconv"
	"strings"
)

const indentUnit = "    "

// writer accumulates indentation-sensitive source text.
type writer struct {
	b     strings.Builder
	depth int
}

// line writes one line at the current depth. An empty line carries no
// indentation.
func (w *writer) line(s string) {
	if s != "" {
		w.b.WriteString(strings.Repeat(indentUnit, w.depth))
		w.b.WriteString(s)
	}
	w.b.WriteByte('\n')
}

// lines writes a multi-line text, every line at the current depth.
func (w *writer) lines(text string) {
	for _, l := range splitLines(text) {
		w.line(l)
	}
}

// verbatim writes text exactly as given, terminated by a newline.
func (w *writer) verbatim(text string) {
	w.b.WriteString(strings.TrimRight(text, "\n"))
	w.b.WriteByte('\n')
}

func (w *writer) indent() { w.depth++ }

func (w *writer) dedent() {
	if w.depth > 0 {
		w.depth--
	}
}

func (w *writer) String() string { return w.b.String() }

// splitLines splits on \n, dropping a single trailing newline and the \r of
// CRLF endings.
func splitLines(text string) []string {
	text = strings.TrimSuffix(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	return strings.Split(text, "\n")
}

// pyString renders s as a double-quoted Python string literal. Go's quoting
// escapes (\n, \t, \xNN, \uNNNN, \UNNNNNNNN, \\, \") are all valid Python.
func pyString(s string) string {
	return strconv.Quote(s)
}

// pyBlockString renders s as a triple-quoted literal that keeps newlines
// readable. Backslashes and every double quote are escaped so neither an
// embedded delimiter nor a trailing quote can end the literal early.
func pyBlockString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"""` + s + `"""`
}

// comment renders s as a single-line comment body.
func comment(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return "# " + strings.ReplaceAll(s, "\n", " ")
}
