package hook

import (
	"errors"
	"testing"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Mouse, "mouse"},
		{Keyboard, "keyboard"},
		{Kind(7), "kind(7)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func TestSafeRecoversPanic(t *testing.T) {
	var recovered any
	cb := Safe(func(Event) Verdict {
		panic("boom")
	}, func(rec any) { recovered = rec })

	if v := cb(Event{Kind: Mouse, Action: true, Valid: true}); v != PassThrough {
		t.Errorf("panicking callback returned %v, want PassThrough", v)
	}
	if recovered != "boom" {
		t.Errorf("onPanic got %v, want boom", recovered)
	}
}

func TestSafeKeepsVerdict(t *testing.T) {
	cb := Safe(func(Event) Verdict { return Consume }, nil)
	if v := cb(Event{}); v != Consume {
		t.Errorf("got %v, want Consume", v)
	}
}

func TestUnhookWithFallback(t *testing.T) {
	errStop := errors.New("thread did not exit")
	errDirect := errors.New("invalid hook handle")

	tests := []struct {
		name       string
		stop       error
		direct     error
		wantDirect bool
		wantErr    error
	}{
		{"thread unhooks", nil, nil, false, nil},
		{"direct unhook recovers", errStop, nil, true, nil},
		{"both fail", errStop, errDirect, true, errStop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var directCalled bool
			err := unhookWithFallback("mouse hook h=0x1 tid=7",
				func() error { return tt.stop },
				func() error { directCalled = true; return tt.direct },
			)
			if directCalled != tt.wantDirect {
				t.Errorf("direct called = %v, want %v", directCalled, tt.wantDirect)
			}
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("err = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want it to wrap %v", err, tt.wantErr)
			}
		})
	}
}
