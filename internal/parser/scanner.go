package parser

// scanner walks a log line token by token. Bracketed and quoted spans are
// returned whole even when they contain spaces.
type scanner struct {
	data string
	pos  int
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.data) && (s.data[s.pos] == ' ' || s.data[s.pos] == '\t') {
		s.pos++
	}
}

// field reads a whitespace-delimited token.
func (s *scanner) field() (string, bool) {
	s.skipSpace()
	start := s.pos
	for s.pos < len(s.data) && s.data[s.pos] != ' ' && s.data[s.pos] != '\t' {
		s.pos++
	}
	if s.pos == start {
		return "", false
	}
	return s.data[start:s.pos], true
}

// enclosed reads a span delimited by open and close. The first close
// character ends the span, and it must be followed by whitespace or the end
// of the line.
func (s *scanner) enclosed(open, close byte) (string, bool) {
	s.skipSpace()
	if s.pos >= len(s.data) || s.data[s.pos] != open {
		return "", false
	}
	start := s.pos + 1
	for i := start; i < len(s.data); i++ {
		if s.data[i] != close {
			continue
		}
		if i+1 < len(s.data) && s.data[i+1] != ' ' && s.data[i+1] != '\t' {
			return "", false
		}
		s.pos = i + 1
		return s.data[start:i], true
	}
	return "", false
}

func (s *scanner) done() bool {
	s.skipSpace()
	return s.pos >= len(s.data)
}
