package cmd

import (
	"bufio"
	"io"
	"iter"
	"strings"
)

// domainSource yields domains from a reader lazily, one per line, in input
// order. Blank lines and # comments are skipped; domains are lowercased.
type domainSource struct {
	scanner *bufio.Scanner
	err     error
}

func newDomainSource(r io.Reader) *domainSource {
	return &domainSource{scanner: bufio.NewScanner(r)}
}

// All returns the sequence of domains. Iterate it once; check Err after.
func (s *domainSource) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for s.scanner.Scan() {
			line := strings.TrimSpace(s.scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if !yield(strings.ToLower(line)) {
				return
			}
		}
		s.err = s.scanner.Err()
	}
}

// Err reports a read failure encountered during iteration.
func (s *domainSource) Err() error {
	return s.err
}
