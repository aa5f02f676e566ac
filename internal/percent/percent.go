// Package percent parses percentage arguments given on the command line.
package percent

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalid is wrapped by every parse failure.
var ErrInvalid = errors.New("invalid percentage")

// ParseError reports an argument that is not a number or a number followed by %.
type ParseError struct {
	Arg string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%q: %v", e.Arg, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrInvalid, e.Err}
}

// Parse reads an integer, a decimal or an exponent form number, optionally
// suffixed with "%", and rounds it to the nearest integer.
//
// Examples: "42", "42%", "37.5", "37.5%", "4.2e1".
func Parse(arg string) (float64, error) {
	s := strings.TrimSpace(arg)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" {
		return 0, &ParseError{Arg: arg, Err: errors.New("empty value")}
	}

	if !isFloat(s) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, &ParseError{Arg: arg, Err: numError(err)}
		}
		return float64(n), nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ParseError{Arg: arg, Err: numError(err)}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ParseError{Arg: arg, Err: errors.New("not a finite number")}
	}
	return math.Round(f), nil
}

// ParseAll parses exactly four arguments in track order.
func ParseAll(args []string) ([4]float64, error) {
	var out [4]float64
	if len(args) != len(out) {
		return out, fmt.Errorf("%w: want 4 values, got %d", ErrInvalid, len(args))
	}
	for i, arg := range args {
		v, err := Parse(arg)
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}

// isFloat decides between integer and floating point syntax.
func isFloat(s string) bool {
	return strings.ContainsAny(s, ".eE")
}

// numError drops strconv's function prefix, the argument is already quoted by ParseError.
func numError(err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return ne.Err
	}
	return err
}
