package suggest

// UtteranceSource yields the next utterance to match. A real deployment
// plugs a speech-to-text feed in here.
type UtteranceSource interface {
	Next(r Rand) string
}

// MockUtterances draws uniformly from a fixed set of phrases.
type MockUtterances []string

// Next implements UtteranceSource.
func (m MockUtterances) Next(r Rand) string {
	if len(m) == 0 {
		return ""
	}
	return m[r.IntN(len(m))]
}

// DefaultUtterances are phrases typical of a service, used when no live
// speech source is attached.
var DefaultUtterances = MockUtterances{
	"Let's turn to John chapter 3 verse 16",
	"As it says in Jeremiah 29:11",
	"Romans 8:28 tells us that all things work together",
	"Let's sing Amazing Grace together",
	"Philippians 4:13 reminds us of His strength",
	"Now we'll worship with How Great Thou Art",
	"The Lord is my shepherd, Psalm 23:1",
	"Let's stand and sing 10,000 Reasons",
	"Open your Bibles to Psalm 23",
}
