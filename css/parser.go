package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into structured rules.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet. Only plain rulesets (including
// custom property declarations) and comments are kept, @-rules are skipped
// with a warning.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{
		Items:    make([]StylesheetItem, 0),
		Warnings: make([]string, 0),
	}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, false)

	var pending []string
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			// End of input or error
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				p.log.Debug("CSS parse error", zap.Error(err))
				sheet.Warnings = append(sheet.Warnings, "parse error: "+err.Error())
			}
			return sheet

		case css.CommentGrammar:
			text := strings.TrimSuffix(strings.TrimPrefix(string(data), "/*"), "*/")
			sheet.AddComment(strings.TrimSpace(text))

		case css.BeginAtRuleGrammar:
			p.skipAtRuleBlock(parser)
			sheet.Warnings = append(sheet.Warnings, "unsupported @-rule: "+string(data))
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))

		case css.AtRuleGrammar:
			sheet.Warnings = append(sheet.Warnings, "unsupported @-rule: "+string(data))
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))

		case css.QualifiedRuleGrammar:
			// part of grouped selector, declarations follow BeginRulesetGrammar
			pending = append(pending, p.parseSelectors(data, parser.Values())...)

		case css.BeginRulesetGrammar:
			selectors := append(pending, p.parseSelectors(data, parser.Values())...)
			pending = nil
			decls := p.parseDeclarations(parser)
			for _, sel := range selectors {
				sheet.AddRule(Rule{Selector: sel, Declarations: slices.Clone(decls)})
			}
		}
	}
}

// skipAtRuleBlock consumes tokens until the matching EndAtRuleGrammar.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar:
			depth++
		case css.EndAtRuleGrammar:
			depth--
		}
	}
}

// parseSelectors extracts selector strings from token data.
func (p *Parser) parseSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	// Split by comma for grouped selectors
	var selectors []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// parseDeclarations parses property declarations until EndRulesetGrammar.
func (p *Parser) parseDeclarations(parser *css.Parser) []Declaration {
	var decls []Declaration

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return decls

		case css.DeclarationGrammar:
			values := parser.Values()
			if len(values) > 0 {
				decls = append(decls, Declaration{Property: string(data), Value: valueFromTokens(values)})
			}

		case css.CustomPropertyGrammar:
			// value of custom property is kept verbatim
			var sb strings.Builder
			for _, v := range parser.Values() {
				sb.Write(v.Data)
			}
			raw := strings.TrimSpace(sb.String())
			val, err := ParseValue(raw)
			if err != nil {
				val = Value{Raw: raw, Keyword: raw}
			}
			decls = append(decls, Declaration{Property: string(data), Value: val})
		}
	}
}

// ParseValue lexes a single property value. It fails if value could not be
// safely placed into declaration: unbalanced parentheses, bad strings or
// urls, or characters which terminate declaration or block.
func ParseValue(raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Value{}, errors.New("empty value")
	}

	lexer := css.NewLexer(parse.NewInputString(raw))

	var (
		tokens []css.Token
		depth  int
	)
loop:
	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			if err := lexer.Err(); err != nil && !errors.Is(err, io.EOF) {
				return Value{}, fmt.Errorf("unable to lex %q: %w", raw, err)
			}
			break loop
		case css.BadStringToken, css.BadURLToken:
			return Value{}, fmt.Errorf("malformed string or url in %q", raw)
		case css.StringToken:
			// lexer accepts string running to the end of input
			if !closedString(data) {
				return Value{}, fmt.Errorf("unterminated string in %q", raw)
			}
		case css.SemicolonToken, css.LeftBraceToken, css.RightBraceToken:
			return Value{}, fmt.Errorf("unexpected %q in %q", string(data), raw)
		case css.FunctionToken, css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			if depth--; depth < 0 {
				return Value{}, fmt.Errorf("unbalanced parentheses in %q", raw)
			}
		}
		tokens = append(tokens, css.Token{TokenType: tt, Data: bytes.Clone(data)})
	}
	if depth != 0 {
		return Value{}, fmt.Errorf("unbalanced parentheses in %q", raw)
	}
	return valueFromTokens(tokens), nil
}

// IsIdent reports whether s is a single CSS identifier, suitable for class
// names and custom property names.
func IsIdent(s string) bool {
	if s == "" {
		return false
	}
	return single(s, css.IdentToken)
}

// IsPropertyName reports whether s could be used as declaration property,
// either regular or custom one ("--gutter").
func IsPropertyName(s string) bool {
	if s == "" {
		return false
	}
	return single(s, css.IdentToken, css.CustomPropertyNameToken)
}

// single reports whether s lexes into exactly one token of allowed types.
func single(s string, allowed ...css.TokenType) bool {
	lexer := css.NewLexer(parse.NewInputString(s))
	tt, data := lexer.Next()
	if !slices.Contains(allowed, tt) || string(data) != s {
		return false
	}
	tt, _ = lexer.Next()
	return tt == css.ErrorToken
}

// Normalize returns value text with insignificant whitespace removed, so
// values coming from different writers could be compared.
func Normalize(raw string) string {
	lexer := css.NewLexer(parse.NewInputString(raw))
	var sb strings.Builder
	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			return sb.String()
		}
		if tt != css.WhitespaceToken && tt != css.CommentToken {
			sb.Write(data)
		}
	}
}

// valueFromTokens converts CSS tokens to a Value.
func valueFromTokens(tokens []css.Token) Value {
	var rawParts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			rawParts = append(rawParts, string(t.Data))
		} else if len(rawParts) > 0 {
			// Add space between non-whitespace tokens
			rawParts = append(rawParts, " ")
		}
	}
	raw := strings.TrimSpace(strings.Join(rawParts, ""))

	val := Value{Raw: raw}

	var significant []css.Token
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			significant = append(significant, t)
		}
	}

	if len(significant) == 1 {
		t := significant[0]
		switch t.TokenType {
		case css.DimensionToken:
			val.Value, val.Unit = parseDimension(string(t.Data))
		case css.PercentageToken:
			val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
			val.Unit = "%"
		case css.NumberToken:
			val.Value, _ = strconv.ParseFloat(string(t.Data), 64)
		case css.IdentToken:
			val.Keyword = strings.ToLower(string(t.Data))
		case css.StringToken:
			val.Keyword = unquote(string(t.Data))
		case css.HashToken:
			// Color value
			val.Keyword = string(t.Data)
		default:
			val.Keyword = raw
		}
		return val
	}

	// Functions (clamp(), rgb(), var()) and multi-value properties
	val.Keyword = raw
	return val
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}

	if numEnd == 0 {
		return 0, ""
	}

	num, _ := strconv.ParseFloat(s[:numEnd], 64)
	unit := strings.ToLower(s[numEnd:])
	return num, unit
}

// closedString reports whether string token ends with its own unescaped
// opening quote.
func closedString(data []byte) bool {
	n := len(data)
	if n < 2 || data[n-1] != data[0] {
		return false
	}
	escapes := 0
	for i := n - 2; i > 0 && data[i] == '\\'; i-- {
		escapes++
	}
	return escapes%2 == 0
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
