package querybuilder

import (
	"strconv"
	"strings"
)

// argWriter accumulates SQL text and positional ($n) arguments.
type argWriter struct {
	buf  strings.Builder
	args []any
}

func (w *argWriter) bind(value any) {
	w.args = append(w.args, value)
	w.buf.WriteString("$")
	w.buf.WriteString(strconv.Itoa(len(w.args)))
}

func (w *argWriter) raw(parts ...string) {
	for _, p := range parts {
		w.buf.WriteString(p)
	}
}

// expr writes a fragment replacing each '?' with the next bound argument.
// Surplus '?' are kept as-is.
func (w *argWriter) expr(fragment string, exprArgs []any) {
	if len(exprArgs) == 0 {
		w.buf.WriteString(fragment)
		return
	}

	next := 0
	for i := 0; i < len(fragment); i++ {
		if fragment[i] == '?' && next < len(exprArgs) {
			w.bind(exprArgs[next])
			next++
			continue
		}
		w.buf.WriteByte(fragment[i])
	}
}

func (w *argWriter) where(conditions []Condition) {
	if len(conditions) == 0 {
		return
	}
	w.raw(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			w.raw(" AND ")
		}
		c.appendSQL(w)
	}
}

func (w *argWriter) list(keyword string, parts []string) {
	if len(parts) == 0 {
		return
	}
	w.raw(" ", keyword, " ", strings.Join(parts, ", "))
}

func (w *argWriter) result() (string, []any) {
	return w.buf.String(), w.args
}
