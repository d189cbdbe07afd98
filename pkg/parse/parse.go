// Package parse implements §6's two consumed input formats: the
// single-line `a|b|c&d|e|f` notation and DIMACS CNF, each producing
// clauses ready for formula.NewRoot. This is deliberately a thin
// layer — the core never sees a raw string, only []clause.Clause.
package parse

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/operator-framework/lo-sat/pkg/clause"
)

// MalformedInput is returned for any input that cannot be parsed into
// clauses under the selected format.
type MalformedInput struct {
	Format string
	Line   int
	Reason string
}

func (e *MalformedInput) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s input malformed at line %d: %s", e.Format, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s input malformed: %s", e.Format, e.Reason)
}

// OneLine parses the single-line format: clauses separated by '&',
// literals within a clause separated by '|', integers as ASCII
// decimal signed literals, optional surrounding parentheses stripped.
// Example: "1|2|-3&4|-5".
func OneLine(s string) ([]clause.Clause, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	s = strings.ReplaceAll(s, "(", "")
	s = strings.ReplaceAll(s, ")", "")
	if s == "" {
		return nil, &MalformedInput{Format: "one-line", Reason: "empty input"}
	}

	rawClauses := strings.Split(s, "&")
	out := make([]clause.Clause, 0, len(rawClauses))
	for _, rc := range rawClauses {
		lits, err := parseLiterals(strings.Split(rc, "|"))
		if err != nil {
			return nil, &MalformedInput{Format: "one-line", Reason: err.Error()}
		}
		out = append(out, clause.New(lits))
	}
	return out, nil
}

func parseLiterals(tokens []string) ([]int, error) {
	lits := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, errors.Wrapf(err, "literal %q is not an integer", tok)
		}
		if v == 0 {
			return nil, errors.Errorf("literal 0 is not a valid variable")
		}
		lits = append(lits, v)
	}
	if len(lits) == 0 {
		return nil, errors.New("clause has no literals")
	}
	return lits, nil
}

// DIMACS parses a DIMACS CNF stream: comment lines beginning with
// 'c', a single problem line `p cnf <vars> <clauses>`, and clauses as
// whitespace-separated literals terminated by a trailing 0, possibly
// spread across multiple physical lines.
func DIMACS(r io.Reader) ([]clause.Clause, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var out []clause.Clause
	var pending []int
	sawProblemLine := false
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "c") {
			continue
		}
		if strings.HasPrefix(line, "p") {
			fields := strings.Fields(line)
			if len(fields) < 4 || fields[1] != "cnf" {
				return nil, &MalformedInput{Format: "DIMACS", Line: lineNo, Reason: "malformed problem line"}
			}
			sawProblemLine = true
			continue
		}
		for _, tok := range strings.Fields(line) {
			v, err := strconv.Atoi(tok)
			if err != nil {
				return nil, &MalformedInput{Format: "DIMACS", Line: lineNo, Reason: "non-integer token " + tok}
			}
			if v == 0 {
				out = append(out, clause.New(pending))
				pending = nil
				continue
			}
			pending = append(pending, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading DIMACS input")
	}
	if !sawProblemLine {
		return nil, &MalformedInput{Format: "DIMACS", Reason: "missing problem line"}
	}
	if len(pending) > 0 {
		return nil, &MalformedInput{Format: "DIMACS", Line: lineNo, Reason: "final clause missing terminating 0"}
	}
	if len(out) == 0 {
		return nil, &MalformedInput{Format: "DIMACS", Reason: "no clauses found"}
	}
	return out, nil
}
