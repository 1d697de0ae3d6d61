package metrics

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/adityadwic/mongo-acceptor/types"
)

func TestErrToLabel(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{
			name: "nil error",
			err:  nil,
		},
		{
			name: "simple error",
			err:  errors.New("connection refused"),
		},
		{
			name: "error with special chars",
			err:  errors.New("dial tcp 127.0.0.1:27017: refused!"),
		},
		{
			name: "error with multiple spaces",
			err:  errors.New("server   selection   timeout"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := errToLabel(tt.err)
			validLabelRegex := regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_]*`)
			if !validLabelRegex.MatchString(result) {
				t.Errorf("errToLabel() = %v, is not a valid Prometheus label", result)
			}
		})
	}
}

func TestRecordError(t *testing.T) {
	// just test that it doesn't panic
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("RecordError panic'd")
		}
	}()

	RecordError("test_error")
	RecordErrorDetails("setup", nil)
	RecordErrorDetails("setup", errors.New("ping failed"))
}

func TestRecordCheck(t *testing.T) {
	RecordCheck("run1", types.CategoryFunctional, types.CheckStatusPass)
	RecordCheck("run1", types.CategorySecurity, types.CheckStatusFail)
	RecordCheck("run1", types.CategorySecurity, types.CheckStatus("BOGUS"))
}

func TestRecordSuiteAndRun(t *testing.T) {
	RecordSuite("run1", types.CategoryPerformance, true, 3*time.Second)
	RecordSuite("run1", types.CategoryValidation, false, time.Second)

	summary := types.NewRunSummary(map[types.Category]bool{types.CategoryFunctional: true})
	RecordRun(&summary)
}
