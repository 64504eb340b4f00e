package trace

// Level is how much of a run --trace-level records.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // everything, into the ring only; dumped when a command fails
	LevelPhase        // the run and its stages
	LevelDetail       // plus one span per source file
	LevelDebug        // plus one span per annotation block
)

var levelNames = []string{LevelOff: "off", LevelError: "error", LevelPhase: "phase", LevelDetail: "detail", LevelDebug: "debug"}

func (l Level) String() string {
	if l == LevelOff {
		return "off"
	}
	return nameOf(levelNames, int(l))
}

// ParseLevel parses a --trace-level value.
func ParseLevel(s string) (Level, error) {
	i, err := parseName(levelNames, s, "trace level")
	return Level(i), err
}

// ShouldEmit reports whether events of scope are recorded at l.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelError, LevelDebug:
		return true
	case LevelPhase:
		return scope <= ScopePhase
	case LevelDetail:
		return scope <= ScopeFile
	}
	return false
}
