package shortcuts

import (
	"fmt"
	"strings"
)

// Feature names one of the two toggles.
type Feature int

const (
	HotCorner Feature = iota
	LWinBlocker
)

func (f Feature) String() string {
	switch f {
	case HotCorner:
		return "hot_corner"
	case LWinBlocker:
		return "lwin_blocker"
	default:
		return fmt.Sprintf("feature(%d)", int(f))
	}
}

// ParseFeature accepts the String form, case-insensitively, plus a few
// spellings used by the command line.
func ParseFeature(s string) (Feature, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hot_corner", "hotcorner", "hot-corner", "corner":
		return HotCorner, nil
	case "lwin_blocker", "lwinblocker", "lwin-blocker", "lwin":
		return LWinBlocker, nil
	}
	return 0, fmt.Errorf("unknown feature %q", s)
}

// State is a snapshot of both toggles.
type State struct {
	HotCorner   bool `json:"hot_corner"`
	LWinBlocker bool `json:"lwin_blocker"`
}

func (s State) Enabled(f Feature) bool {
	switch f {
	case HotCorner:
		return s.HotCorner
	case LWinBlocker:
		return s.LWinBlocker
	}
	return false
}
