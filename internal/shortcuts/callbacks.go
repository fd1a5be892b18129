package shortcuts

import (
	"github.com/dylanchu/WinShortcuts/internal/hook"
	"github.com/dylanchu/WinShortcuts/internal/input"
)

// cornerSize is the side of the square at the screen origin that counts as
// the hot corner.
const cornerSize = 3

// IsCornerHit reports whether ev is a left-button press inside the hot corner.
func IsCornerHit(ev hook.Event) bool {
	if ev.Kind != hook.Mouse || !ev.Action || !ev.Valid {
		return false
	}
	if ev.Message != hook.WM_LBUTTONDOWN {
		return false
	}
	return ev.Point.X < cornerSize && ev.Point.Y < cornerSize
}

// IsBlockedKey reports whether ev carries the left Windows key, down or up.
func IsBlockedKey(ev hook.Event) bool {
	if ev.Kind != hook.Keyboard || !ev.Action || !ev.Valid {
		return false
	}
	return ev.VKCode == input.VK_LWIN
}

// mouseCallback swallows corner clicks and replaces them with the Task View
// chord. Corner clicks never reach any window.
func mouseCallback(synth TaskViewer) hook.Callback {
	return func(ev hook.Event) hook.Verdict {
		if !IsCornerHit(ev) {
			return hook.PassThrough
		}
		synth.TaskView()
		return hook.Consume
	}
}

func keyboardCallback(ev hook.Event) hook.Verdict {
	if IsBlockedKey(ev) {
		return hook.Consume
	}
	return hook.PassThrough
}
