// Package session holds the ordered file list a user builds before merging,
// along with the helpers that feed it (drop parsing) and name its output.
package session

import (
	"fmt"
	"sync"

	"github.com/agbru/pdfbasics/internal/logging"
)

// Session is the ordered list of files to merge. List order is merge order.
// A Session is safe for concurrent use.
type Session struct {
	mu     sync.RWMutex
	files  []string
	logger logging.Logger
}

// New returns an empty session. A nil logger discards log output.
func New(logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Session{logger: logger}
}

// Add appends paths to the end of the list, which is where dropped files go.
func (s *Session) Add(paths ...string) {
	if len(paths) == 0 {
		return
	}
	s.mu.Lock()
	s.files = append(s.files, paths...)
	n := len(s.files)
	s.mu.Unlock()
	s.logger.Debug("files added", logging.Strings("paths", paths), logging.Int("total", n))
}

// Insert places paths before position index. index may equal Len, which
// appends.
func (s *Session) Insert(index int, paths ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index > len(s.files) {
		return fmt.Errorf("insert position %d out of range [0, %d]", index, len(s.files))
	}
	files := make([]string, 0, len(s.files)+len(paths))
	files = append(files, s.files[:index]...)
	files = append(files, paths...)
	files = append(files, s.files[index:]...)
	s.files = files
	s.logger.Debug("files inserted", logging.Int("index", index), logging.Strings("paths", paths))
	return nil
}

// Move relocates the entry at from so that it ends up at index to, shifting
// the entries in between.
func (s *Session) Move(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.files)
	if from < 0 || from >= n {
		return fmt.Errorf("position %d out of range [0, %d)", from, n)
	}
	if to < 0 || to >= n {
		return fmt.Errorf("position %d out of range [0, %d)", to, n)
	}
	if from == to {
		return nil
	}
	p := s.files[from]
	if from < to {
		copy(s.files[from:to], s.files[from+1:to+1])
	} else {
		copy(s.files[to+1:from+1], s.files[to:from])
	}
	s.files[to] = p
	s.logger.Debug("file moved", logging.String("path", p), logging.Int("from", from), logging.Int("to", to))
	return nil
}

// Remove deletes the entry at index and returns its path.
func (s *Session) Remove(index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.files) {
		return "", fmt.Errorf("position %d out of range [0, %d)", index, len(s.files))
	}
	p := s.files[index]
	s.files = append(s.files[:index], s.files[index+1:]...)
	s.logger.Debug("file removed", logging.String("path", p))
	return p, nil
}

// Clear empties the list. Files already written by earlier merges are not
// touched.
func (s *Session) Clear() {
	s.mu.Lock()
	n := len(s.files)
	s.files = nil
	s.mu.Unlock()
	s.logger.Debug("list cleared", logging.Int("removed", n))
}

// Files returns a copy of the list.
func (s *Session) Files() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.files))
	copy(out, s.files)
	return out
}

// Len returns the number of entries.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
