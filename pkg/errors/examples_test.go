package errors_test

import (
	"fmt"

	"github.com/lastmilefood/rescuesync/pkg/errors"
)

// Example shows how a caller separates a failed job from other failures.
func Example() {
	err := errors.WrapStage("donors", &errors.JobFailedError{
		JobID:   "7503t00000XyZ",
		Object:  "Account",
		State:   "Failed",
		Message: "Row limit exceeded",
	})

	if errors.IsJobFailed(err) {
		fmt.Println(err)
	}

	// Output: stage "donors": bulk job 7503t00000XyZ on Account ended Failed: Row limit exceeded
}
