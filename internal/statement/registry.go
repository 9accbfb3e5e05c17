package statement

import (
	"log/slog"
	"strings"
)

// Detector is one named entry in the format registry: the keyword sets that
// identify a format plus a factory for its parser. A keyword set matches a
// line when the lowercased line contains every keyword in the set.
type Detector struct {
	Name     string
	Keywords [][]string
	New      func() BankParser
}

// Registry holds format detectors in priority order. Keyword sets overlap
// (a generic date+debit pattern would also match a named bank's header), so
// registration order is the detection order: most specific formats first,
// first match wins.
type Registry struct {
	detectors []Detector
	log       *slog.Logger
}

// NewRegistry creates an empty registry. log may be nil.
func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{log: log}
}

// Register appends a detector at the lowest priority.
func (r *Registry) Register(d Detector) {
	r.detectors = append(r.detectors, d)
}

// Names returns the registered format names in priority order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.detectors))
	for i, d := range r.detectors {
		names[i] = d.Name
	}
	return names
}

// Detect inspects up to the first 40 lines and returns the parser of the
// first detector that matches. It first restricts matching to header-like
// lines (at least 3 delimiter characters), then rescans all lines for files
// whose headers carry fewer separators. Returns UnknownFormatError when no
// detector matches.
func (r *Registry) Detect(lines []string) (BankParser, error) {
	if len(lines) > headerScanLimit {
		lines = lines[:headerScanLimit]
	}

	for _, headerOnly := range []bool{true, false} {
		for _, d := range r.detectors {
			if d.matches(lines, headerOnly) {
				if r.log != nil {
					r.log.Debug("detected statement format", "format", d.Name)
				}
				return d.New(), nil
			}
		}
	}

	return nil, &UnknownFormatError{Attempted: r.Names()}
}

// ParseStatement runs the full intake pipeline on raw statement bytes:
// normalize the container into lines, detect the format, parse.
func (r *Registry) ParseStatement(data []byte) (*ParseResult, error) {
	lines, err := NormalizeLines(data)
	if err != nil {
		return nil, err
	}
	parser, err := r.Detect(lines)
	if err != nil {
		return nil, err
	}
	res, err := parser.Parse(lines)
	if err != nil {
		return nil, err
	}
	res.Format = parser.Name()
	return res, nil
}

func (d Detector) matches(lines []string, headerOnly bool) bool {
	for _, line := range lines {
		lower := strings.ToLower(line)
		if strings.TrimSpace(lower) == "" {
			continue
		}
		if headerOnly && !isHeaderLike(lower) {
			continue
		}
		for _, set := range d.Keywords {
			if containsAll(lower, set) {
				return true
			}
		}
	}
	return false
}

// isHeaderLike reports whether a line has enough delimiters to be a column
// header rather than free text that happens to mention a keyword.
func isHeaderLike(line string) bool {
	return strings.Count(line, ",")+strings.Count(line, "\t") >= 3
}

// DefaultRegistry returns the built-in formats in detection priority order.
// HDFC's Particulars columns are the most specific signature, SBI's
// transaction-date variants next; the Generic detector must stay last or it
// would preempt both.
func DefaultRegistry(log *slog.Logger) *Registry {
	r := NewRegistry(log)

	r.Register(Detector{
		Name: "HDFC",
		Keywords: [][]string{
			{"particulars", "withdrawal"},
			{"particulars", "deposit"},
			{"date", "particulars", "withdrawal"},
			{"date", "particulars", "deposit"},
		},
		New: func() BankParser { return NewHDFCParser(log) },
	})

	r.Register(Detector{
		Name: "SBI",
		Keywords: [][]string{
			{"trans date", "debit"},
			{"txn date", "debit"},
			{"transaction date", "dr."},
			{"transaction date", "dr"},
			{"date", "debit(dr.)"},
			{"date", "narration", "debit"},
			{"date", "description", "debit"},
		},
		New: func() BankParser { return NewSBIParser(log) },
	})

	r.Register(Detector{
		Name: "Generic",
		Keywords: [][]string{
			{"date", "dr"},
			{"date", "cr"},
			{"date", "debit"},
			{"date", "credit"},
			{"date", "withdrawal"},
			{"date", "deposit"},
		},
		New: func() BankParser { return NewGenericParser(log) },
	})

	return r
}
