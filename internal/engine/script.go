package engine

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/talgya/fieldwave/internal/field"
)

// ErrBadCue is returned for a script entry that is not frame:signal.
var ErrBadCue = errors.New("bad cue")

// Cue schedules a signal for a frame.
type Cue struct {
	Frame  uint64
	Signal field.Signal
}

// Script is a frame-ordered list of cues.
type Script []Cue

// ParseScript reads "120:burst,240:silence". Frames are 1-based, matching
// the frame numbers Engine hands to OnFrame, so frame 0 is rejected.
// Whitespace around entries is ignored and an empty string is an empty script.
func ParseScript(s string) (Script, error) {
	var out Script
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		frameStr, sigStr, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("%w %q: missing ':'", ErrBadCue, entry)
		}
		frame, err := strconv.ParseUint(strings.TrimSpace(frameStr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrBadCue, entry, err)
		}
		if frame == 0 {
			return nil, fmt.Errorf("%w %q: frames start at 1", ErrBadCue, entry)
		}
		sig, ok := field.ParseSignal(sigStr)
		if !ok {
			return nil, fmt.Errorf("%w %q: unknown signal", ErrBadCue, entry)
		}
		out = append(out, Cue{Frame: frame, Signal: sig})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Frame < out[j].Frame })
	return out, nil
}

// Due returns the signals scheduled for frame, in script order.
func (s Script) Due(frame uint64) []field.Signal {
	i := sort.Search(len(s), func(i int) bool { return s[i].Frame >= frame })
	var out []field.Signal
	for ; i < len(s) && s[i].Frame == frame; i++ {
		out = append(out, s[i].Signal)
	}
	return out
}
