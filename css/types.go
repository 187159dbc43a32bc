package css

import (
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Value represents a parsed CSS property value.
type Value struct {
	Raw     string  // Original CSS value string (e.g., "1.2rem", "bold", "clamp(...)")
	Value   float64 // Numeric value if applicable
	Unit    string  // Unit if applicable: "rem", "px", "%", "vw", etc.
	Keyword string  // Keyword or compound value text: "bold", "#ff0000", "clamp(...)"
}

// IsNumeric returns true if the value has a numeric component.
// This includes explicit zero values like "0" or "0px".
func (v Value) IsNumeric() bool {
	if v.Unit != "" {
		return true
	}
	if v.Value != 0 && v.Keyword == "" {
		return true
	}
	// "0" has neither unit nor non-zero value
	if v.Raw != "" && v.Keyword == "" {
		firstChar := rune(v.Raw[0])
		if unicode.IsDigit(firstChar) || firstChar == '.' || firstChar == '-' || firstChar == '+' {
			return true
		}
	}
	return false
}

// IsKeyword returns true if the value is a keyword (no numeric component).
func (v Value) IsKeyword() bool {
	return v.Keyword != "" && v.Unit == ""
}

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property string
	Value    Value
}

// Rule represents a single CSS rule. Unlike plain maps declarations keep
// source order, custom properties generated from tokens must come out in
// token order.
type Rule struct {
	Selector     string
	Declarations []Declaration
}

// GetProperty returns the value for a property, or empty Value if not found.
// When property is declared more than once the last declaration wins, as it
// would in a browser.
func (r Rule) GetProperty(name string) (Value, bool) {
	for i := len(r.Declarations) - 1; i >= 0; i-- {
		if r.Declarations[i].Property == name {
			return r.Declarations[i].Value, true
		}
	}
	return Value{}, false
}

// Add appends declaration to the rule.
func (r *Rule) Add(property string, value Value) {
	r.Declarations = append(r.Declarations, Declaration{Property: property, Value: value})
}

// StylesheetItem is a single top-level item in a stylesheet.
// Exactly one of Rule or Comment is non-nil.
type StylesheetItem struct {
	Rule    *Rule
	Comment *string
}

// Stylesheet represents a CSS stylesheet.
type Stylesheet struct {
	Items    []StylesheetItem // All top-level items in source order
	Warnings []string         // Warnings for unsupported features
}

// AddRule appends rule to the stylesheet.
func (s *Stylesheet) AddRule(r Rule) {
	s.Items = append(s.Items, StylesheetItem{Rule: &r})
}

// AddComment appends comment block to the stylesheet.
func (s *Stylesheet) AddComment(text string) {
	s.Items = append(s.Items, StylesheetItem{Comment: &text})
}

// Rules returns all rules in source order.
func (s *Stylesheet) Rules() []Rule {
	var rules []Rule
	for _, item := range s.Items {
		if item.Rule != nil {
			rules = append(rules, *item.Rule)
		}
	}
	return rules
}

// RulesBySelector returns all top-level rules matching the given selector string.
func (s *Stylesheet) RulesBySelector(selector string) []Rule {
	var matches []Rule
	for _, item := range s.Items {
		if item.Rule != nil && item.Rule.Selector == selector {
			matches = append(matches, *item.Rule)
		}
	}
	return matches
}

// DeclarationCount returns total number of declarations in all rules.
func (s *Stylesheet) DeclarationCount() int {
	var n int
	for _, item := range s.Items {
		if item.Rule != nil {
			n += len(item.Rule.Declarations)
		}
	}
	return n
}

// WriteTo writes the stylesheet to w in source order, implementing io.WriterTo.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i, item := range s.Items {
		var n int
		var err error

		switch {
		case item.Comment != nil:
			n, err = writeComment(w, *item.Comment)
		case item.Rule != nil:
			n, err = writeRule(w, item.Rule)
		}

		total += int64(n)
		if err != nil {
			return total, err
		}

		// Add blank line between items (except after last)
		if i < len(s.Items)-1 {
			n, err = fmt.Fprint(w, "\n")
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// writeRule writes a single CSS rule to w.
func writeRule(w io.Writer, rule *Rule) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "%s {\n", rule.Selector)
	total += n
	if err != nil {
		return total, err
	}
	for _, d := range rule.Declarations {
		n, err = fmt.Fprintf(w, "  %s: %s;\n", d.Property, d.Value.Raw)
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprint(w, "}\n")
	total += n
	return total, err
}

// writeComment writes comment block, every line prefixed for readability.
func writeComment(w io.Writer, text string) (int, error) {
	// comment cannot be closed from inside
	text = strings.ReplaceAll(text, "*/", "* /")

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) == 1 {
		return fmt.Fprintf(w, "/* %s */\n", lines[0])
	}

	var total int
	n, err := fmt.Fprint(w, "/*\n")
	total += n
	if err != nil {
		return total, err
	}
	for _, l := range lines {
		n, err = fmt.Fprintln(w, strings.TrimRight(" * "+l, " "))
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprint(w, " */\n")
	total += n
	return total, err
}
