package reader

import (
	"fmt"
	"os"

	"github.com/joshuapare/bsakit/internal/mmfile"
)

// sourceKind tags how the backing bytes are held.
type sourceKind int

const (
	// sourceOwned bytes live on the heap and are dropped at close.
	sourceOwned sourceKind = iota
	// sourceMapped bytes are a view owned by the OS and must be released.
	sourceMapped
)

func (k sourceKind) String() string {
	if k == sourceMapped {
		return "mapped"
	}
	return "owned"
}

// source is the byte buffer behind a reader. Parsers only ever see bytes().
type source struct {
	kind    sourceKind
	data    []byte
	release func() error
}

func ownedSource(b []byte) *source {
	return &source{kind: sourceOwned, data: b}
}

func openSource(path string, inMemory bool) (*source, error) {
	if inMemory {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read archive: %w", err)
		}
		return ownedSource(b), nil
	}
	b, release, err := mmfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("map archive: %w", err)
	}
	return &source{kind: sourceMapped, data: b, release: release}, nil
}

func (s *source) bytes() []byte { return s.data }

// close drops the buffer. Mapped views are released exactly once.
func (s *source) close() error {
	s.data = nil
	if s.release == nil {
		return nil
	}
	release := s.release
	s.release = nil
	return release()
}
