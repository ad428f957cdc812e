package querybuilder

type Condition interface {
	appendSQL(w *argWriter)
}

type compareCondition struct {
	column string
	op     string
	value  any
}

func Eq(column string, value any) Condition {
	return compareCondition{column: column, op: "=", value: value}
}

func Neq(column string, value any) Condition {
	return compareCondition{column: column, op: "<>", value: value}
}

func (c compareCondition) appendSQL(w *argWriter) {
	w.raw(c.column, " ", c.op, " ")
	w.bind(c.value)
}

type inCondition struct {
	column string
	values []any
}

func In(column string, values []any) Condition {
	return inCondition{column: column, values: values}
}

// InStrings is In for the common text-id case.
func InStrings(column string, values []string) Condition {
	items := make([]any, 0, len(values))
	for _, v := range values {
		items = append(items, v)
	}
	return In(column, items)
}

func (c inCondition) appendSQL(w *argWriter) {
	if len(c.values) == 0 {
		w.raw("1=0")
		return
	}

	w.raw(c.column, " IN (")
	for i, v := range c.values {
		if i > 0 {
			w.raw(", ")
		}
		w.bind(v)
	}
	w.raw(")")
}

type nullCondition struct {
	column string
	not    bool
}

func IsNull(column string) Condition {
	return nullCondition{column: column}
}

func NotNull(column string) Condition {
	return nullCondition{column: column, not: true}
}

func (c nullCondition) appendSQL(w *argWriter) {
	if c.not {
		w.raw(c.column, " IS NOT NULL")
		return
	}
	w.raw(c.column, " IS NULL")
}

type exprCondition struct {
	expr string
	args []any
}

func Expr(expr string, args ...any) Condition {
	return exprCondition{expr: expr, args: args}
}

func (c exprCondition) appendSQL(w *argWriter) {
	w.expr(c.expr, c.args)
}
