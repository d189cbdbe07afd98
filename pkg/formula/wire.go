package formula

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/operator-framework/lo-sat/pkg/clause"
)

// MarshalText implements encoding.TextMarshaler, producing the
// canonical wire form of §6.
func (f *Formula) MarshalText() ([]byte, error) {
	return []byte(f.Encode()), nil
}

// ParseEncoded parses the canonical wire form of §6 ("T", "F", or
// clause1&clause2&...) back into a Node. It does not attempt to
// reconstruct FinalNamesMap/OriginalValues/EvaluatedVars, since the
// wire form does not carry that provenance; callers that need it
// (persistence reload) must keep it alongside the encoded body.
func ParseEncoded(s string) (Node, error) {
	switch s {
	case "T":
		return Node{Terminal: true, Value: true, EvaluatedVars: map[int]bool{}}, nil
	case "F":
		return Node{Terminal: true, Value: false, EvaluatedVars: map[int]bool{}}, nil
	case "":
		return Node{}, errors.New("formula: empty wire form is not a valid encoding")
	}

	rawClauses := strings.Split(s, "&")
	clauses := make([]clause.Clause, 0, len(rawClauses))
	for _, rc := range rawClauses {
		rawLits := strings.Split(rc, "|")
		lits := make([]int, 0, len(rawLits))
		for _, rl := range rawLits {
			v, err := strconv.Atoi(rl)
			if err != nil {
				return Node{}, errors.Wrapf(err, "formula: malformed literal %q", rl)
			}
			if v == 0 {
				return Node{}, errors.Errorf("formula: literal 0 is not a valid signed integer")
			}
			lits = append(lits, v)
		}
		clauses = append(clauses, clause.New(lits))
	}
	return NewRoot(clauses), nil
}
