package apperror

import (
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "without field",
			err:      New(CodeInvalidInput, "task set is empty"),
			expected: "[INVALID_INPUT] task set is empty",
		},
		{
			name:     "with field",
			err:      New(CodeInvalidInput, "wcet exceeds period").WithField("wcet"),
			expected: "[INVALID_INPUT] wcet exceeds period (field: wcet)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	err := New(CodeInfeasibleFrameSize, "no admissible frame size")

	if err.Code != CodeInfeasibleFrameSize {
		t.Errorf("Code = %v, want %v", err.Code, CodeInfeasibleFrameSize)
	}
	if err.Message != "no admissible frame size" {
		t.Errorf("Message = %v, want %v", err.Message, "no admissible frame size")
	}
	if err.Severity != SeverityError {
		t.Errorf("Severity = %v, want %v", err.Severity, SeverityError)
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CodeInfeasibleAssignment, "job %d has no valid frame", 3)

	if err.Message != "job 3 has no valid frame" {
		t.Errorf("Message = %v, want %v", err.Message, "job 3 has no valid frame")
	}
	if err.Code != CodeInfeasibleAssignment {
		t.Errorf("Code = %v, want %v", err.Code, CodeInfeasibleAssignment)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("context canceled")
	err := Wrap(CodeInfeasibleAssignment, cause, "max-flow computation canceled")

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestWithField(t *testing.T) {
	base := New(CodeInvalidInput, "duplicate task id")
	err := base.WithField("task_id")

	if err.Field != "task_id" {
		t.Errorf("Field = %v, want task_id", err.Field)
	}
	if base.Field != "" {
		t.Error("WithField should not mutate the receiver")
	}
}

func TestWithDetail(t *testing.T) {
	err := New(CodeInvalidSchedule, "frame overrun").
		WithDetail("frame", 4).
		WithDetail("overrun_by", 1.5)

	if err.Details["frame"] != 4 {
		t.Errorf("Details[frame] = %v, want 4", err.Details["frame"])
	}
	if err.Details["overrun_by"] != 1.5 {
		t.Errorf("Details[overrun_by] = %v, want 1.5", err.Details["overrun_by"])
	}

	plain := New(CodeInvalidSchedule, "frame overrun")
	if plain.Details != nil {
		t.Error("WithDetail should not mutate the receiver")
	}
}

func TestIs(t *testing.T) {
	sentinel := New(CodeInfeasibleFrameSize, "")
	err := New(CodeInfeasibleFrameSize, "H mod f != 0 for every candidate f")

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should match on Code")
	}

	other := New(CodeInvalidInput, "")
	if errors.Is(err, other) {
		t.Error("errors.Is should not match on a different Code")
	}

	if errors.Is(errors.New("plain error"), sentinel) {
		t.Error("errors.Is should not match a non-*Error")
	}
}

func TestToGRPCStatus(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		st := ToGRPCStatus(nil)
		if st.Code() != codes.OK {
			t.Errorf("ToGRPCStatus(nil).Code() = %v, want OK", st.Code())
		}
	})

	t.Run("known codes", func(t *testing.T) {
		tests := []struct {
			code     Code
			expected codes.Code
		}{
			{CodeInfeasibleFrameSize, codes.FailedPrecondition},
			{CodeInfeasibleAssignment, codes.FailedPrecondition},
			{CodeInvalidSchedule, codes.Internal},
			{CodeInvalidInput, codes.InvalidArgument},
			{CodeStoreUnavailable, codes.Unavailable},
		}
		for _, tt := range tests {
			st := ToGRPCStatus(New(tt.code, "test message"))
			if st.Code() != tt.expected {
				t.Errorf("ToGRPCStatus(%v).Code() = %v, want %v", tt.code, st.Code(), tt.expected)
			}
			if st.Message() == "" {
				t.Error("ToGRPCStatus should preserve a non-empty message")
			}
		}
	})

	t.Run("unrecognized code maps to Internal", func(t *testing.T) {
		st := ToGRPCStatus(New(Code("SOMETHING_ELSE"), "mystery"))
		if st.Code() != codes.Internal {
			t.Errorf("ToGRPCStatus(unknown code).Code() = %v, want Internal", st.Code())
		}
	})

	t.Run("non-apperror error maps to Unknown", func(t *testing.T) {
		st := ToGRPCStatus(errors.New("plain error"))
		if st.Code() != codes.Unknown {
			t.Errorf("ToGRPCStatus(plain error).Code() = %v, want Unknown", st.Code())
		}
	})
}

func TestFromGRPCStatus(t *testing.T) {
	t.Run("round trip through a known code", func(t *testing.T) {
		original := New(CodeInvalidInput, "wcet must be non-negative")
		st := ToGRPCStatus(original)

		back := FromGRPCStatus(st)
		if back.Code != CodeInvalidInput {
			t.Errorf("FromGRPCStatus().Code = %v, want %v", back.Code, CodeInvalidInput)
		}
		if back.Message != original.Message {
			t.Errorf("FromGRPCStatus().Message = %v, want %v", back.Message, original.Message)
		}
	})

	t.Run("unmapped grpc code defaults to InvalidInput", func(t *testing.T) {
		st := status.New(codes.Unimplemented, "no such method")
		back := FromGRPCStatus(st)
		if back.Code != CodeInvalidInput {
			t.Errorf("FromGRPCStatus().Code = %v, want %v", back.Code, CodeInvalidInput)
		}
	})
}

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		expected string
	}{
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "error"},
	}

	for _, tt := range tests {
		if got := tt.severity.String(); got != tt.expected {
			t.Errorf("Severity(%d).String() = %v, want %v", tt.severity, got, tt.expected)
		}
	}
}
