package countmin

// EventKind identifies a diagnostic event emitted during construction.
type EventKind int

const (
	// EventWidthAdjusted is emitted when a requested width is rounded
	// up to the next power of two.
	EventWidthAdjusted EventKind = iota + 1

	// EventDimensionsEstimated is emitted when dimensions are derived
	// from epsilon/delta accuracy targets.
	EventDimensionsEstimated
)

// Event describes a construction-time diagnostic. Fields not relevant
// to the Kind are zero.
type Event struct {
	Kind           EventKind
	RequestedWidth int     // width as requested (EventWidthAdjusted)
	Width          int     // width actually used
	Depth          int     // depth actually used
	Epsilon        float64 // accuracy target (EventDimensionsEstimated)
	Delta          float64 // failure probability target (EventDimensionsEstimated)
}

// DiagnosticFunc receives construction-time diagnostic events.
type DiagnosticFunc func(Event)

// Option configures sketch construction.
type Option func(*settings)

type settings struct {
	diag DiagnosticFunc
}

// WithDiagnostics installs a sink for construction-time diagnostics
// such as width normalization. The default is no sink: the package
// never writes to any global output.
func WithDiagnostics(fn DiagnosticFunc) Option {
	return func(s *settings) {
		s.diag = fn
	}
}

func applyOptions(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s *settings) emit(ev Event) {
	if s.diag != nil {
		s.diag(ev)
	}
}
