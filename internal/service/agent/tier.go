package agent

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Model tier selection: the cheap model handles the first couple of loop
// turns for short messages, everything else goes to the capable one.
const (
	shortMessageTokens = 160
	shortMessageBytes  = 500
	cheapTierMaxTurn   = 2
)

type tierSelector struct {
	cheap   string
	capable string
}

func (s tierSelector) Select(userText string, turn int) string {
	if turn <= cheapTierMaxTurn && isShortMessage(userText) {
		return s.cheap
	}
	return s.capable
}

var (
	tkOnce sync.Once
	tk     *tiktoken.Tiktoken
)

// isShortMessage counts tokens when the encoder is available and falls back
// to byte length when it is not (the BPE table is fetched lazily and may be
// unreachable offline).
func isShortMessage(text string) bool {
	tkOnce.Do(func() {
		tk, _ = tiktoken.GetEncoding("cl100k_base")
	})
	if tk == nil {
		return len(text) <= shortMessageBytes
	}
	return len(tk.Encode(text, nil, nil)) <= shortMessageTokens
}
