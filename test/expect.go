// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

// Package test collects small assertion helpers used throughout the
// project's test suites, in place of repeating the same comparison and
// error-handling boilerplate in every _test.go file.
package test

import (
	"math"
	"reflect"
	"testing"
)

// ExpectFailure checks that the result of some operation indicates failure.
// Accepts a bool (false means failure) or an error (non-nil means failure).
func ExpectFailure(t *testing.T, result any) {
	t.Helper()

	switch r := result.(type) {
	case bool:
		if r {
			t.Errorf("expected failure, got success")
		}
	case error:
		if r == nil {
			t.Errorf("expected failure, got success")
		}
	default:
		t.Errorf("unsupported result type in ExpectFailure: %T", result)
	}
}

// ExpectSuccess checks that the result of some operation indicates success.
// Accepts a bool (true means success), a nil error, or a literal nil.
func ExpectSuccess(t *testing.T, result any) {
	t.Helper()

	switch r := result.(type) {
	case bool:
		if !r {
			t.Errorf("expected success, got failure")
		}
	case error:
		if r != nil {
			t.Errorf("expected success, got: %v", r)
		}
	case nil:
		// nothing to do, a literal nil is taken to mean success
	default:
		t.Errorf("unsupported result type in ExpectSuccess: %T", result)
	}
}

// ExpectEquality checks that two values are equal, using reflect.DeepEqual
// for anything that isn't comparable with ==.
func ExpectEquality(t *testing.T, actual, expected any) {
	t.Helper()

	if !equate(actual, expected) {
		t.Errorf("expected %v, got %v", expected, actual)
	}
}

// ExpectInequality checks that two values are not equal.
func ExpectInequality(t *testing.T, actual, expected any) {
	t.Helper()

	if equate(actual, expected) {
		t.Errorf("did not expect %v", actual)
	}
}

// ExpectApproximate checks that two numeric values are within tolerance of
// one another.
func ExpectApproximate(t *testing.T, actual, expected float64, tolerance float64) {
	t.Helper()

	if math.Abs(actual-expected) > tolerance {
		t.Errorf("expected %v to be within %v of %v", actual, tolerance, expected)
	}
}

// Equate checks that two values are equal, failing the test if they are
// not, and reports whether they were. Exported so that tests written
// against the older Equate-style assertion can keep using it.
func Equate(t *testing.T, actual, expected any) bool {
	t.Helper()
	if !equate(actual, expected) {
		t.Errorf("expected %v, got %v", expected, actual)
		return false
	}
	return true
}

func equate(actual, expected any) bool {
	if actual == nil || expected == nil {
		// a nil pointer, map, slice, etc. held in an interface equals nil
		other := actual
		if other == nil {
			other = expected
		}
		if other == nil {
			return true
		}
		v := reflect.ValueOf(other)
		switch v.Kind() {
		case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
			return v.IsNil()
		}
		return false
	}
	if reflect.TypeOf(actual).Comparable() && reflect.TypeOf(expected).Comparable() {
		return actual == expected
	}
	return reflect.DeepEqual(actual, expected)
}
