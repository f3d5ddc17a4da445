// Package clike provides a tokenizer for C-family syntax (Go, Rust, C,
// JavaScript and relatives): line and block comments, string and
// character literals, numbers, identifiers with a per-language keyword
// table, and single-byte punctuation. Whitespace is emitted as tokens
// so the stream covers the input with no gaps or overlaps.
package clike

import (
	"context"
	"unicode"
	"unicode/utf8"

	"github.com/hoverdoc/hoverdoc/internal/core/domain"
	"github.com/hoverdoc/hoverdoc/internal/core/ports/driven"
)

// Ensure Tokenizer implements the interface.
var _ driven.Tokenizer = (*Tokenizer)(nil)

// keyword tables per supported language tag.
var keywordTables = map[string][]string{
	"go": {
		"break", "case", "chan", "const", "continue", "default", "defer",
		"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
		"interface", "map", "package", "range", "return", "select",
		"struct", "switch", "type", "var",
	},
	"rust": {
		"as", "async", "await", "break", "const", "continue", "crate",
		"dyn", "else", "enum", "extern", "false", "fn", "for", "if",
		"impl", "in", "let", "loop", "match", "mod", "move", "mut", "pub",
		"ref", "return", "self", "static", "struct", "super", "trait",
		"true", "type", "unsafe", "use", "where", "while",
	},
	"c": {
		"auto", "break", "case", "char", "const", "continue", "default",
		"do", "double", "else", "enum", "extern", "float", "for", "goto",
		"if", "int", "long", "register", "return", "short", "signed",
		"sizeof", "static", "struct", "switch", "typedef", "union",
		"unsigned", "void", "volatile", "while",
	},
	"javascript": {
		"async", "await", "break", "case", "catch", "class", "const",
		"continue", "default", "delete", "do", "else", "export", "extends",
		"finally", "for", "function", "if", "import", "in", "instanceof",
		"let", "new", "of", "return", "static", "switch", "throw", "try",
		"typeof", "var", "while", "yield",
	},
}

// Tokenizer scans one language's source text into tokens.
type Tokenizer struct {
	language string
	keywords map[string]struct{}
}

// New creates a tokenizer for the given language tag. Unknown tags get
// an empty keyword table, which classifies every word as an identifier.
func New(language string) *Tokenizer {
	keywords := make(map[string]struct{})
	for _, kw := range keywordTables[language] {
		keywords[kw] = struct{}{}
	}
	return &Tokenizer{language: language, keywords: keywords}
}

// Languages returns the tags with a shipped keyword table.
func Languages() []string {
	langs := make([]string, 0, len(keywordTables))
	for lang := range keywordTables {
		langs = append(langs, lang)
	}
	return langs
}

// SupportedLanguages returns the single tag this instance handles.
func (t *Tokenizer) SupportedLanguages() []string {
	return []string{t.language}
}

// Priority returns the selection priority.
func (t *Tokenizer) Priority() int {
	return 50 // Language-specific, above the plain fallback
}

// Tokenize scans text into an ordered, gap-free, non-overlapping token
// stream in byte coordinates.
func (t *Tokenizer) Tokenize(_ context.Context, text string) ([]domain.Token, error) {
	var tokens []domain.Token
	pos := 0

	emit := func(end int, kind domain.TokenKind) {
		tokens = append(tokens, domain.Token{
			Span: domain.Span{Start: pos, End: end},
			Kind: kind,
			Text: text[pos:end],
		})
		pos = end
	}

	for pos < len(text) {
		c := text[pos]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			emit(scanWhile(text, pos, isSpace), domain.KindWhitespace)

		case c == '/' && pos+1 < len(text) && text[pos+1] == '/':
			emit(scanLine(text, pos), domain.KindComment)

		case c == '/' && pos+1 < len(text) && text[pos+1] == '*':
			emit(scanBlockComment(text, pos), domain.KindComment)

		case c == '"':
			emit(scanQuoted(text, pos, c), domain.KindString)

		case c == '\'':
			if end, ok := scanChar(text, pos); ok {
				emit(end, domain.KindString)
			} else {
				// A lifetime marker ('a in &'a str) or stray quote.
				emit(pos+1, domain.KindPunctuation)
			}

		case c == '`':
			emit(scanRaw(text, pos), domain.KindString)

		case c >= '0' && c <= '9':
			emit(scanNumber(text, pos), domain.KindNumber)

		case isIdentStart(text, pos):
			end := scanIdent(text, pos)
			kind := domain.KindIdentifier
			if _, ok := t.keywords[text[pos:end]]; ok {
				kind = domain.KindKeyword
			}
			emit(end, kind)

		default:
			// Operators and any byte we do not recognise: one token each.
			emit(pos+1, domain.KindPunctuation)
		}
	}

	return tokens, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// scanWhile advances past bytes matching pred.
func scanWhile(text string, pos int, pred func(byte) bool) int {
	for pos < len(text) && pred(text[pos]) {
		pos++
	}
	return pos
}

// scanLine advances to the end of the line, excluding the newline.
func scanLine(text string, pos int) int {
	for pos < len(text) && text[pos] != '\n' {
		pos++
	}
	return pos
}

// scanBlockComment advances past the closing */, or to EOF when the
// comment is unterminated.
func scanBlockComment(text string, pos int) int {
	pos += 2
	for pos < len(text) {
		if text[pos] == '*' && pos+1 < len(text) && text[pos+1] == '/' {
			return pos + 2
		}
		pos++
	}
	return pos
}

// scanQuoted advances past a quote-delimited literal, honouring
// backslash escapes. Unterminated literals run to end of line.
func scanQuoted(text string, pos int, quote byte) int {
	pos++
	for pos < len(text) {
		switch text[pos] {
		case '\\':
			pos += 2
			continue
		case quote:
			return pos + 1
		case '\n':
			return pos
		}
		pos++
	}
	// A trailing backslash can step past the end.
	if pos > len(text) {
		pos = len(text)
	}
	return pos
}

// maxCharLiteralLen bounds a char literal's byte length; the longest
// escape form is '\u{10FFFF}'.
const maxCharLiteralLen = 12

// scanChar reports the end of a single-quoted char literal starting at
// pos: one rune or one short escape followed by a closing quote. A
// quote opening anything else, such as a Rust lifetime, reports false.
func scanChar(text string, pos int) (int, bool) {
	i := pos + 1
	if i >= len(text) {
		return 0, false
	}
	if text[i] == '\\' {
		end := scanQuoted(text, pos, '\'')
		if end > i+1 && end-pos <= maxCharLiteralLen && text[end-1] == '\'' {
			return end, true
		}
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(text[i:])
	if r == '\'' {
		return 0, false
	}
	if i+size < len(text) && text[i+size] == '\'' {
		return i + size + 1, true
	}
	return 0, false
}

// scanRaw advances past a backtick-delimited raw literal (no escapes).
func scanRaw(text string, pos int) int {
	pos++
	for pos < len(text) {
		if text[pos] == '`' {
			return pos + 1
		}
		pos++
	}
	return pos
}

// scanNumber consumes a numeric literal loosely: digits, hex and binary
// prefixes, decimal points, exponents, and numeric suffixes. Precise
// per-language grammar is not needed for rendering.
func scanNumber(text string, pos int) int {
	for pos < len(text) {
		c := text[pos]
		if c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '.' {
			pos++
			continue
		}
		break
	}
	return pos
}

func isIdentStart(text string, pos int) bool {
	r, _ := utf8.DecodeRuneInString(text[pos:])
	return r == '_' || unicode.IsLetter(r)
}

// scanIdent consumes an identifier of letters, digits and underscores.
func scanIdent(text string, pos int) int {
	for pos < len(text) {
		r, size := utf8.DecodeRuneInString(text[pos:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		pos += size
	}
	return pos
}
