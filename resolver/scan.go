package resolver

import (
	"strings"
	"unicode/utf8"
)

// ImportKind tells how a module reference was written
type ImportKind int

const (
	ImportStatic     ImportKind = iota // import x from "a"
	ImportSideEffect                   // import "a"
	ImportReexport                     // export ... from "a"
	ImportDynamic                      // import("a")
	ImportRequire                      // require("a")
)

func (k ImportKind) String() string {
	switch k {
	case ImportStatic:
		return "static"
	case ImportSideEffect:
		return "side-effect"
	case ImportReexport:
		return "re-export"
	case ImportDynamic:
		return "dynamic"
	case ImportRequire:
		return "require"
	default:
		return "unknown"
	}
}

// Import is one module reference found in a script.
// Start and End are the byte offsets of the specifier text without its quotes.
// StmtStart and StmtEnd span the whole statement (including a trailing
// semicolon) for static, side-effect and re-export forms, and the call
// expression for dynamic and require forms.
type Import struct {
	Specifier string
	Kind      ImportKind
	TypeOnly  bool // import type / export type; erased at compile time
	Start     int
	End       int
	StmtStart int
	StmtEnd   int
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokTemplate
	tokRegex
	tokNumber
	tokPunct
)

type token struct {
	kind  tokenKind
	text  string // identifier or punctuation text; raw body for strings
	start int
	end   int
}

// keywords after which a slash starts a regular expression rather than a division
var regexAfter = map[string]bool{
	"return": true, "typeof": true, "instanceof": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "throw": true, "case": true,
	"do": true, "else": true, "yield": true, "await": true,
}

// ScanImports finds the module references in JS/JSX/TS/TSX source without
// parsing it. Comments, strings, template literals and regular expressions are
// skipped, so import-like text inside them is never reported. JSX text is
// tolerated: an unbalanced quote only swallows the rest of its line.
func ScanImports(src string) []Import {
	toks := lex(src)
	var out []Import

	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		if tok.kind != tokIdent || afterDot(toks, i) {
			continue
		}
		switch tok.text {
		case "import":
			if imp, next, ok := scanImport(toks, i); ok {
				out = append(out, imp)
				i = next - 1
			}
		case "export":
			if imp, next, ok := scanExport(toks, i); ok {
				out = append(out, imp)
				i = next - 1
			}
		case "require":
			if imp, next, ok := scanCall(toks, i, ImportRequire); ok {
				out = append(out, imp)
				i = next - 1
			}
		}
	}
	return out
}

func afterDot(toks []token, i int) bool {
	return i > 0 && toks[i-1].kind == tokPunct && toks[i-1].text == "."
}

func isPunct(toks []token, i int, p string) bool {
	return i < len(toks) && toks[i].kind == tokPunct && toks[i].text == p
}

func isIdent(toks []token, i int, name string) bool {
	return i < len(toks) && toks[i].kind == tokIdent && toks[i].text == name
}

func isString(toks []token, i int) bool {
	return i < len(toks) && toks[i].kind == tokString
}

// newImport builds an Import from the specifier string token at s and the
// statement range [stmtStart, end of token at last]
func newImport(toks []token, s int, kind ImportKind, stmtStart, last int) Import {
	spec := toks[s]
	return Import{
		Specifier: spec.text,
		Kind:      kind,
		Start:     spec.start + 1,
		End:       spec.end - 1,
		StmtStart: stmtStart,
		StmtEnd:   toks[last].end,
	}
}

// withSemicolon extends a statement to a directly following semicolon
func withSemicolon(toks []token, last int) int {
	if isPunct(toks, last+1, ";") {
		return last + 1
	}
	return last
}

// scanCall matches `name ( "spec" )` starting at the name token
func scanCall(toks []token, i int, kind ImportKind) (Import, int, bool) {
	if !isPunct(toks, i+1, "(") || !isString(toks, i+2) || !isPunct(toks, i+3, ")") {
		return Import{}, 0, false
	}
	return newImport(toks, i+2, kind, toks[i].start, i+3), i + 4, true
}

func scanImport(toks []token, i int) (Import, int, bool) {
	switch {
	case isPunct(toks, i+1, "("):
		return scanCall(toks, i, ImportDynamic)
	case isPunct(toks, i+1, "."):
		// import.meta
		return Import{}, 0, false
	case isString(toks, i+1):
		last := withSemicolon(toks, i+1)
		return newImport(toks, i+1, ImportSideEffect, toks[i].start, last), last + 1, true
	}

	j := i + 1
	typeOnly := false
	// `import type X from` but not `import type from "x"` (a default binding named type)
	if isIdent(toks, j, "type") && !(isIdent(toks, j+1, "from") && isString(toks, j+2)) && !isPunct(toks, j+1, ",") {
		typeOnly = true
		j++
	}

	s, ok := scanFromClause(toks, j)
	if !ok {
		return Import{}, 0, false
	}
	last := withSemicolon(toks, s)
	imp := newImport(toks, s, ImportStatic, toks[i].start, last)
	imp.TypeOnly = typeOnly
	return imp, last + 1, true
}

func scanExport(toks []token, i int) (Import, int, bool) {
	j := i + 1
	typeOnly := false
	if isIdent(toks, j, "type") && (isPunct(toks, j+1, "{") || isPunct(toks, j+1, "*")) {
		typeOnly = true
		j++
	}
	if !isPunct(toks, j, "{") && !isPunct(toks, j, "*") {
		return Import{}, 0, false
	}

	s, ok := scanFromClause(toks, j)
	if !ok {
		return Import{}, 0, false
	}
	last := withSemicolon(toks, s)
	imp := newImport(toks, s, ImportReexport, toks[i].start, last)
	imp.TypeOnly = typeOnly
	return imp, last + 1, true
}

// scanFromClause walks an import/export clause starting at j and returns the
// index of the specifier string following `from`
func scanFromClause(toks []token, j int) (int, bool) {
	depth := 0
	for ; j < len(toks); j++ {
		tok := toks[j]
		switch tok.kind {
		case tokPunct:
			switch tok.text {
			case "{":
				depth++
			case "}":
				depth--
				if depth < 0 {
					return 0, false
				}
				// `export { a, b }` without a from clause
				if depth == 0 && !isIdent(toks, j+1, "from") {
					return 0, false
				}
			case ",", "*":
			default:
				return 0, false
			}
		case tokIdent:
			if depth == 0 && tok.text == "from" && isString(toks, j+1) {
				return j + 1, true
			}
			if depth == 0 && (tok.text == "import" || tok.text == "export") {
				return 0, false
			}
		default:
			return 0, false
		}
	}
	return 0, false
}

// lex splits src into the coarse tokens the import scanner needs
func lex(src string) []token {
	var (
		toks      []token
		depth     int   // current brace depth
		templates []int // brace depth at each open template substitution
	)

	prevAllowsRegex := func() bool {
		if len(toks) == 0 {
			return true
		}
		prev := toks[len(toks)-1]
		switch prev.kind {
		case tokPunct:
			return prev.text != ")" && prev.text != "]" && prev.text != "}"
		case tokIdent:
			return regexAfter[prev.text]
		default:
			return false
		}
	}

	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}

		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return toks
			}
			i += end + 4

		case c == '\'' || c == '"':
			end, ok := scanString(src, i)
			if ok {
				toks = append(toks, token{kind: tokString, text: src[i+1 : end-1], start: i, end: end})
			}
			i = end

		case c == '`':
			end, open := scanTemplate(src, i+1)
			if open {
				depth++
				templates = append(templates, depth)
			}
			toks = append(toks, token{kind: tokTemplate, start: i, end: end})
			i = end

		case c == '}' && len(templates) > 0 && templates[len(templates)-1] == depth:
			templates = templates[:len(templates)-1]
			depth--
			end, open := scanTemplate(src, i+1)
			if open {
				depth++
				templates = append(templates, depth)
			}
			toks = append(toks, token{kind: tokTemplate, start: i, end: end})
			i = end

		case c == '/' && prevAllowsRegex():
			if end, ok := scanRegex(src, i); ok {
				toks = append(toks, token{kind: tokRegex, start: i, end: end})
				i = end
			} else {
				toks = append(toks, token{kind: tokPunct, text: "/", start: i, end: i + 1})
				i++
			}

		case isIdentStart(c):
			end := i + 1
			for end < len(src) && isIdentPart(src[end]) {
				end++
			}
			toks = append(toks, token{kind: tokIdent, text: src[i:end], start: i, end: end})
			i = end

		case c >= '0' && c <= '9':
			end := i + 1
			for end < len(src) && (isIdentPart(src[end]) || src[end] == '.') {
				end++
			}
			toks = append(toks, token{kind: tokNumber, start: i, end: end})
			i = end

		default:
			switch c {
			case '{':
				depth++
			case '}':
				depth--
			}
			if c >= utf8.RuneSelf {
				_, size := utf8.DecodeRuneInString(src[i:])
				i += size
				continue
			}
			toks = append(toks, token{kind: tokPunct, text: src[i : i+1], start: i, end: i + 1})
			i++
		}
	}
	return toks
}

// scanString returns the offset just past the closing quote of the string
// starting at i. Strings cannot span lines: an unterminated one ends at the
// newline and is reported as not ok.
func scanString(src string, i int) (int, bool) {
	quote := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case quote:
			return j + 1, true
		case '\n':
			return j, false
		}
	}
	return len(src), false
}

// scanTemplate scans template text from i and returns the offset just past
// the closing backtick, or just past a `${` with open set
func scanTemplate(src string, i int) (end int, open bool) {
	for j := i; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '`':
			return j + 1, false
		case '$':
			if j+1 < len(src) && src[j+1] == '{' {
				return j + 2, true
			}
		}
	}
	return len(src), false
}

// scanRegex returns the offset past a regular expression literal and its flags
func scanRegex(src string, i int) (int, bool) {
	inClass := false
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '\n':
			return 0, false
		case '/':
			if inClass {
				continue
			}
			end := j + 1
			for end < len(src) && isIdentPart(src[end]) {
				end++
			}
			return end, true
		}
	}
	return 0, false
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
