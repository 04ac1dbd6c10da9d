package pipeline

import "fmt"

// State is a step of a pipeline run
type State int

const (
	StateGeneratingSource State = iota
	StateTranslating
	StateRomanizing
	StateMerging
	StateDone
	StateError
)

var stateNames = map[State]string{
	StateGeneratingSource: "GENERATING_SOURCE",
	StateTranslating:      "TRANSLATING",
	StateRomanizing:       "ROMANIZING",
	StateMerging:          "MERGING",
	StateDone:             "DONE",
	StateError:            "ERROR",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATE(%d)", int(s))
}

// StageError aborts a run. It wraps the upstream, parse or empty result
// error of the state that failed.
type StageError struct {
	State State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline failed in %s: %v", e.State, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// MismatchError reports positional lists of different lengths. Entries
// past the shortest list are discarded; the run carries on.
type MismatchError struct {
	State   State
	Lengths []int
	Kept    int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("positional lists misaligned in %s: lengths %v, kept %d", e.State, e.Lengths, e.Kept)
}
