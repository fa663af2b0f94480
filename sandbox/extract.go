package sandbox

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnbalanced reports a phase definition whose braces never close
	ErrUnbalanced = errors.New("unbalanced braces")
	// ErrPhaseMissing reports a phase that the program does not define
	ErrPhaseMissing = errors.New("phase not defined")
	// ErrDuplicatePhase reports a second definition of the same phase; the first wins
	ErrDuplicatePhase = errors.New("phase defined more than once")
)

// PhaseKind identifies one of the three lifecycle entry points
type PhaseKind uint8

const (
	PhaseInit PhaseKind = iota
	PhaseFrame
	PhasePress

	phaseCount
)

// String returns the canonical phase name
func (k PhaseKind) String() string {
	switch k {
	case PhaseInit:
		return "init"
	case PhaseFrame:
		return "frame"
	case PhasePress:
		return "press"
	default:
		return "unknown"
	}
}

// phaseNames maps top-level function names to phases, canonical name first
var phaseNames = [phaseCount][]string{
	PhaseInit:  {"setup", "init"},
	PhaseFrame: {"draw", "update"},
	PhasePress: {"mousePressed", "onPointerDown"},
}

// PhaseNames returns the function names recognized for kind
func PhaseNames(kind PhaseKind) []string {
	if kind >= phaseCount {
		return nil
	}
	return append([]string(nil), phaseNames[kind]...)
}

func phaseFor(name string) (PhaseKind, bool) {
	for k, names := range phaseNames {
		for _, n := range names {
			if n == name {
				return PhaseKind(k), true
			}
		}
	}
	return 0, false
}

// Phase is one extracted top-level phase definition
type Phase struct {
	Kind   PhaseKind
	Name   string
	Params []string
	Body   string
	Start  int // Offset of the 'function' keyword
	End    int // Offset just past the closing brace
}

// Source is the result of splitting program text into phases and prelude
type Source struct {
	Phases   [phaseCount]*Phase
	Prelude  string
	Problems []error
}

// Phase returns the extracted phase or nil when absent
func (s *Source) Phase(kind PhaseKind) *Phase {
	if kind >= phaseCount {
		return nil
	}
	return s.Phases[kind]
}

// Found lists the phases present, in lifecycle order
func (s *Source) Found() []PhaseKind {
	var out []PhaseKind
	for k, p := range s.Phases {
		if p != nil {
			out = append(out, PhaseKind(k))
		}
	}
	return out
}

// ExtractPhases splits program text into its three phases and the remaining prelude
// Phase bodies are bounded by balanced-brace matching that ignores braces inside string,
// template and comment text. A phase that cannot be bounded is reported and left absent.
func ExtractPhases(text string) *Source {
	src := &Source{}
	var prelude strings.Builder

	sc := scanner{text: text}
	copied := 0
	depth := 0

	for sc.pos < len(text) {
		if sc.skipTrivia() {
			continue
		}
		c := text[sc.pos]
		switch c {
		case '{', '(', '[':
			depth++
			sc.pos++
			continue
		case '}', ')', ']':
			if depth > 0 {
				depth--
			}
			sc.pos++
			continue
		}

		if depth == 0 && sc.atKeyword("function") {
			start := sc.pos
			phase, ok, err := sc.parseFunction()
			if err != nil {
				kind, known := phaseFor(phase.Name)
				if known {
					src.Problems = append(src.Problems, fmt.Errorf("phase %s (%s): %w", kind, phase.Name, err))
					// Nothing after an unclosed definition can be bounded either
					prelude.WriteString(text[copied:start])
					copied = len(text)
					break
				}
				continue
			}
			if !ok {
				continue
			}
			kind, known := phaseFor(phase.Name)
			if !known {
				continue
			}
			if src.Phases[kind] != nil {
				src.Problems = append(src.Problems, fmt.Errorf("phase %s (%s): %w", kind, phase.Name, ErrDuplicatePhase))
			} else {
				phase.Kind = kind
				phase.Start = start
				src.Phases[kind] = phase
			}
			prelude.WriteString(text[copied:start])
			copied = sc.pos
			continue
		}

		if isIdentStart(c) {
			sc.skipIdent()
			continue
		}
		sc.pos++
	}
	if copied < len(text) {
		prelude.WriteString(text[copied:])
	}
	src.Prelude = strings.TrimSpace(prelude.String())

	for k, p := range src.Phases {
		if p == nil {
			src.Problems = append(src.Problems, fmt.Errorf("phase %s: %w", PhaseKind(k), ErrPhaseMissing))
		}
	}
	return src
}

// scanner walks JavaScript-like source skipping literal and comment text
type scanner struct {
	text string
	pos  int
}

// skipTrivia skips one comment or string literal at pos; returns true if anything was skipped
func (s *scanner) skipTrivia() bool {
	t := s.text
	if s.pos >= len(t) {
		return false
	}
	switch t[s.pos] {
	case ' ', '\t', '\n', '\r':
		s.pos++
		return true
	case '/':
		if s.pos+1 < len(t) {
			switch t[s.pos+1] {
			case '/':
				end := strings.IndexByte(t[s.pos:], '\n')
				if end < 0 {
					s.pos = len(t)
				} else {
					s.pos += end + 1
				}
				return true
			case '*':
				end := strings.Index(t[s.pos+2:], "*/")
				if end < 0 {
					s.pos = len(t)
				} else {
					s.pos += end + 4
				}
				return true
			}
		}
	case '"', '\'':
		s.skipQuoted(t[s.pos])
		return true
	case '`':
		s.skipTemplate()
		return true
	}
	return false
}

func (s *scanner) skipQuoted(quote byte) {
	t := s.text
	s.pos++
	for s.pos < len(t) {
		switch t[s.pos] {
		case '\\':
			s.pos += 2
			continue
		case quote:
			s.pos++
			return
		case '\n':
			// Unterminated literal ends at the line break
			return
		}
		s.pos++
	}
}

// skipTemplate skips a template literal including nested ${...} expressions
func (s *scanner) skipTemplate() {
	t := s.text
	s.pos++
	for s.pos < len(t) {
		switch t[s.pos] {
		case '\\':
			s.pos += 2
			continue
		case '`':
			s.pos++
			return
		case '$':
			if s.pos+1 < len(t) && t[s.pos+1] == '{' {
				s.pos += 2
				s.skipBlock(1)
				continue
			}
		}
		s.pos++
	}
}

// skipBlock advances past the brace that closes an already-open block of the given depth
// Returns false if the text ends first
func (s *scanner) skipBlock(depth int) bool {
	t := s.text
	for s.pos < len(t) {
		if s.skipTrivia() {
			continue
		}
		switch t[s.pos] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				s.pos++
				return true
			}
		}
		s.pos++
	}
	return false
}

func (s *scanner) atKeyword(kw string) bool {
	t := s.text
	if !strings.HasPrefix(t[s.pos:], kw) {
		return false
	}
	if s.pos > 0 && isIdentPart(t[s.pos-1]) {
		return false
	}
	end := s.pos + len(kw)
	return end < len(t) && !isIdentPart(t[end])
}

// parseFunction parses 'function name(params) { body }' at pos
// ok is false for anything that is not a named declaration (e.g. an anonymous function)
func (s *scanner) parseFunction() (phase *Phase, ok bool, err error) {
	t := s.text
	s.pos += len("function")
	s.skipSpace()
	if s.pos < len(t) && t[s.pos] == '*' {
		// Generators are never phases
		s.pos++
		s.skipSpace()
	}
	if s.pos >= len(t) || !isIdentStart(t[s.pos]) {
		return &Phase{}, false, nil
	}
	nameStart := s.pos
	s.skipIdent()
	phase = &Phase{Name: t[nameStart:s.pos]}

	s.skipSpace()
	if s.pos >= len(t) || t[s.pos] != '(' {
		return phase, false, nil
	}
	paramStart := s.pos + 1
	pdepth := 0
	for s.pos < len(t) {
		if s.skipTrivia() {
			continue
		}
		c := t[s.pos]
		s.pos++
		if c == '(' {
			pdepth++
		} else if c == ')' {
			pdepth--
			if pdepth == 0 {
				break
			}
		}
	}
	if pdepth != 0 {
		return phase, false, ErrUnbalanced
	}
	phase.Params = splitParams(t[paramStart : s.pos-1])

	s.skipSpace()
	if s.pos >= len(t) || t[s.pos] != '{' {
		return phase, false, nil
	}
	bodyStart := s.pos + 1
	s.pos++
	if !s.skipBlock(1) {
		return phase, false, ErrUnbalanced
	}
	phase.Body = t[bodyStart : s.pos-1]
	phase.End = s.pos
	return phase, true, nil
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.text) {
		c := s.text[s.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			s.pos++
			continue
		}
		if c == '/' && s.pos+1 < len(s.text) && (s.text[s.pos+1] == '/' || s.text[s.pos+1] == '*') {
			s.skipTrivia()
			continue
		}
		return
	}
}

func (s *scanner) skipIdent() {
	for s.pos < len(s.text) && isIdentPart(s.text[s.pos]) {
		s.pos++
	}
}

func splitParams(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
