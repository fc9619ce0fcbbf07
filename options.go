package scy

// OutputStyle defines the layouts Dump can produce.
type OutputStyle int

const (
	// StyleCompact renders the whole tree on a single line. It is what
	// Node.String returns.
	StyleCompact OutputStyle = iota

	// StyleIndented puts every list element on its own line, indented by
	// FormatOptions.Indent per nesting level.
	StyleIndented
)

const (
	// StyleDefault is an alias for StyleCompact.
	StyleDefault = StyleCompact
)

// FormatOptions provides options for controlling the dump output.
type FormatOptions struct {
	Style  OutputStyle
	Indent string // Indent unit for StyleIndented; defaults to four spaces.
	Spans  bool   // If true, appends each node's span as @line:col-line:col.
}

func (o FormatOptions) indentUnit() string {
	if o.Indent == "" {
		return "    "
	}
	return o.Indent
}
