package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	err := New(ErrCodeUnknownLocation, "no such town: %s", "Atlantis")
	want := "CONFIGURATION_UNKNOWN_LOCATION: no such town: Atlantis"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestError_ErrorWithCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "fetching rates")
	want := "NETWORK_ERROR: fetching rates: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(ErrCodeInternal, cause, "wrapped")
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeOverConstrained, "bad segment")
	if !Is(err, ErrCodeOverConstrained) {
		t.Error("Is() should match the error's own code")
	}
	if Is(err, ErrCodeNetwork) {
		t.Error("Is() should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeNetwork) {
		t.Error("Is() should not match a plain error")
	}
}

func TestIs_WrappedChain(t *testing.T) {
	inner := New(ErrCodeUnmergeableWaypoints, "conflicting datetimes")
	outer := fmt.Errorf("building itinerary: %w", inner)
	if !Is(outer, ErrCodeUnmergeableWaypoints) {
		t.Error("Is() should unwrap through fmt.Errorf chains")
	}
}

func TestIsIntegrity(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{New(ErrCodeUnmergeableWaypoints, "x"), true},
		{New(ErrCodeOverConstrained, "x"), true},
		{New(ErrCodeIntegrity, "x"), true},
		{New(ErrCodeUnknownLocation, "x"), false},
		{stderrors.New("plain"), false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := IsIntegrity(tc.err); got != tc.want {
			t.Errorf("IsIntegrity(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeData, "x")); got != ErrCodeData {
		t.Errorf("GetCode() = %q, want %q", got, ErrCodeData)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode() = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodePlanNotFound, "plan %s not found", "abc")
	if got := UserMessage(err); got != "plan abc not found" {
		t.Errorf("UserMessage() = %q", got)
	}
	plain := stderrors.New("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage() = %q", got)
	}
}
