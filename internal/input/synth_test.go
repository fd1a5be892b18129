package input

import (
	"errors"
	"reflect"
	"sync"
	"testing"
)

type recordingSender struct {
	mu      sync.Mutex
	batches [][]KeyStroke
	// accept[i] limits how many strokes batch i inserts; missing entries insert all.
	accept []int
}

func (s *recordingSender) Send(strokes []KeyStroke) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.batches)
	s.batches = append(s.batches, append([]KeyStroke(nil), strokes...))
	if i < len(s.accept) && s.accept[i] < len(strokes) {
		return s.accept[i], errors.New("blocked")
	}
	return len(strokes), nil
}

func TestTaskViewSequenceOrder(t *testing.T) {
	want := []KeyStroke{
		{Key: KeySpec{VK: VK_RWIN, Ext: true}},
		{Key: KeySpec{VK: VK_TAB, Ext: true}},
		{Key: KeySpec{VK: VK_TAB, Ext: true}, Up: true},
		{Key: KeySpec{VK: VK_RWIN, Ext: true}, Up: true},
	}
	if got := TaskViewSequence(); !reflect.DeepEqual(got, want) {
		t.Fatalf("TaskViewSequence() = %+v, want %+v", got, want)
	}
}

func TestTaskViewSendsOneBatch(t *testing.T) {
	s := &recordingSender{}
	NewSynthesizer(s).TaskView()

	if len(s.batches) != 1 {
		t.Fatalf("expected a single batch, got %d", len(s.batches))
	}
	if !reflect.DeepEqual(s.batches[0], TaskViewSequence()) {
		t.Errorf("batch = %+v, want %+v", s.batches[0], TaskViewSequence())
	}
}

func TestTaskViewPartialFailureReleasesHeldKeys(t *testing.T) {
	tests := []struct {
		name        string
		sent        int
		wantRelease []KeyStroke
	}{
		{"nothing sent", 0, nil},
		{"rwin down only", 1, []KeyStroke{Up(keyRWin)}},
		{"both down", 2, []KeyStroke{Up(keyTab), Up(keyRWin)}},
		{"tab released", 3, []KeyStroke{Up(keyRWin)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &recordingSender{accept: []int{tt.sent}}
			NewSynthesizer(s).TaskView()

			if tt.wantRelease == nil {
				if len(s.batches) != 1 {
					t.Fatalf("expected no release batch, got %d batches", len(s.batches))
				}
				return
			}
			if len(s.batches) != 2 {
				t.Fatalf("expected a release batch, got %d batches", len(s.batches))
			}
			if !reflect.DeepEqual(s.batches[1], tt.wantRelease) {
				t.Errorf("release = %+v, want %+v", s.batches[1], tt.wantRelease)
			}
		})
	}
}

func TestTaskViewDoesNotRetry(t *testing.T) {
	s := &recordingSender{accept: []int{2, 0}}
	NewSynthesizer(s).TaskView()
	if len(s.batches) != 2 {
		t.Errorf("expected chord + one release attempt, got %d batches", len(s.batches))
	}
}

func TestConcurrentChordsDoNotInterleave(t *testing.T) {
	s := &recordingSender{}
	syn := NewSynthesizer(s)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			syn.TaskView()
		}()
	}
	wg.Wait()

	if len(s.batches) != 20 {
		t.Fatalf("got %d batches, want 20", len(s.batches))
	}
	for i, b := range s.batches {
		if !reflect.DeepEqual(b, TaskViewSequence()) {
			t.Errorf("batch %d = %+v", i, b)
		}
	}
}
