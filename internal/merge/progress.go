package merge

// Stage names a step reported through progress events.
type Stage string

// Progress stages, in the order a successful merge emits them.
const (
	StageReading  Stage = "reading"
	StageStamping Stage = "stamping"
	StageMerging  Stage = "merging"
	StageWriting  Stage = "writing"
	StageDone     Stage = "done"
)

// Event is a progress notification. Index and Path are only meaningful for
// StageReading; Total is the number of sources in the merge.
type Event struct {
	Stage Stage
	Index int
	Total int
	Path  string
}

// Fraction returns an approximate completion ratio in [0, 1].
func (e Event) Fraction() float64 {
	if e.Total <= 0 {
		return 0
	}
	// Reading takes the first half; the remaining stages share the rest.
	switch e.Stage {
	case StageReading:
		return 0.5 * float64(e.Index) / float64(e.Total)
	case StageStamping:
		return 0.5
	case StageMerging:
		return 0.6
	case StageWriting:
		return 0.9
	case StageDone:
		return 1
	}
	return 0
}

// ProgressFunc receives progress events. It is called synchronously from the
// merging goroutine and must not block.
type ProgressFunc func(Event)
