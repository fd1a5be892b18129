package input

import (
	"log"
	"sync"
)

var (
	keyRWin = KeySpec{VK: VK_RWIN, Ext: true}
	keyTab  = KeySpec{VK: VK_TAB, Ext: true}
)

// TaskViewSequence is the RWin+Tab chord that opens Task View.
func TaskViewSequence() []KeyStroke {
	return []KeyStroke{
		Down(keyRWin),
		Down(keyTab),
		Up(keyTab),
		Up(keyRWin),
	}
}

// Synthesizer fires key chords through a Sender. It is best effort: failures
// are logged, never returned, and never retried.
type Synthesizer struct {
	mu     sync.Mutex
	sender Sender
}

func NewSynthesizer(sender Sender) *Synthesizer {
	return &Synthesizer{sender: sender}
}

// TaskView sends TaskViewSequence.
func (s *Synthesizer) TaskView() {
	s.Chord(TaskViewSequence())
}

// Chord sends strokes as one batch. If the OS inserts only part of it, keys
// left pressed by the inserted prefix are released.
func (s *Synthesizer) Chord(strokes []KeyStroke) {
	if len(strokes) == 0 {
		return
	}
	// One batch at a time from this process.
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.sender.Send(strokes)
	if n >= len(strokes) {
		return
	}
	log.Printf("[input] chord partially sent (%d/%d): %v", n, len(strokes), err)

	release := pendingReleases(strokes, n)
	if len(release) == 0 {
		return
	}
	if m, err := s.sender.Send(release); m < len(release) {
		log.Printf("[input] releasing %d held keys failed (%d sent): %v", len(release), m, err)
	}
}

// pendingReleases returns, in reverse press order, an up stroke for every key
// pressed within strokes[:sent] and not released there.
func pendingReleases(strokes []KeyStroke, sent int) []KeyStroke {
	if sent <= 0 {
		return nil
	}
	if sent > len(strokes) {
		sent = len(strokes)
	}
	var held []KeySpec
	for _, st := range strokes[:sent] {
		if !st.Up {
			held = append(held, st.Key)
			continue
		}
		for i := len(held) - 1; i >= 0; i-- {
			if held[i] == st.Key {
				held = append(held[:i], held[i+1:]...)
				break
			}
		}
	}
	out := make([]KeyStroke, 0, len(held))
	for i := len(held) - 1; i >= 0; i-- {
		out = append(out, Up(held[i]))
	}
	return out
}
