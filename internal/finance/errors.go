package finance

import (
	"errors"
	"fmt"

	"StockPulse/internal/model"
)

// ErrorKind classifies a finance-layer failure so callers can pick
// user-facing copy without inspecting error strings.
type ErrorKind int

const (
	// KindUpstream covers provider call failures and rate-limit payloads.
	KindUpstream ErrorKind = iota + 1
	// KindNoExactMatch means the lookup succeeded but no symbol matched
	// directly; Candidates carries the "did you mean" list.
	KindNoExactMatch
	// KindNoData means a valid lookup returned an empty result set.
	KindNoData
	// KindMalformed means the provider answered with an unexpected schema.
	KindMalformed
)

// Error is the structured failure returned by provider clients.
type Error struct {
	Kind       ErrorKind
	Op         string
	Ticker     string
	Candidates []model.SymbolMatch
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Op, e.Ticker, e.kindString())
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) kindString() string {
	switch e.Kind {
	case KindUpstream:
		return "upstream error"
	case KindNoExactMatch:
		return "no exact match"
	case KindNoData:
		return "no data available"
	case KindMalformed:
		return "malformed upstream data"
	default:
		return "unknown error"
	}
}

// IsKind reports whether err is a finance Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == kind
}

// Candidates extracts the disambiguation list from a NoExactMatch error.
func Candidates(err error) []model.SymbolMatch {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Candidates
	}
	return nil
}
