package step

import (
	"context"

	"github.com/serisow/storystudio/pipeline_type"
)

// Step is one stage of a story run. It receives the run state and returns
// the updated copy.
type Step interface {
	Execute(ctx context.Context, state pipeline_type.State) (pipeline_type.State, error)

	GetType() string
}
