package tracker

import "sync"

// Session holds the page state of the single user: which activities are
// checked, whether the export link is shown and the expected submit sequence.
// A form carries the sequence it was rendered with, so posting it twice adds
// the activities once.
type Session struct {
	mu           sync.Mutex
	seq          int
	checked      map[string]bool
	showDownload bool
}

func NewSession() *Session {
	return &Session{
		seq:     1,
		checked: make(map[string]bool),
	}
}

func (s *Session) Seq() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// accept reports whether a form rendered with seq is still current.
func (s *Session) accept(seq int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq == s.seq
}

// committed advances the sequence and clears the selection.
func (s *Session) committed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.checked = make(map[string]bool)
}

// Remember keeps the selection of a form that could not be applied.
func (s *Session) Remember(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checked = make(map[string]bool, len(names))
	for _, n := range names {
		s.checked[n] = true
	}
}

func (s *Session) IsChecked(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checked[name]
}

func (s *Session) markDownloadReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showDownload = true
}

// TakeDownloadReady returns the export link flag and resets it,
// the link is shown on the first render after a manual rollover.
func (s *Session) TakeDownloadReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	show := s.showDownload
	s.showDownload = false
	return show
}
