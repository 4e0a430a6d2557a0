package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineRunsStagesInOrder(t *testing.T) {
	var order []string
	stage := func(name string) Stage {
		return Stage{Name: name, Run: func(context.Context) error {
			order = append(order, name)
			return nil
		}}
	}

	p := New("test", stage("first"), stage("second"), stage("third"))
	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, []string{"first", "second", "third"}, order)
	assert.Equal(t, "test", p.Name())
}

func TestPipelineAbortsOnStageError(t *testing.T) {
	var order []string
	boom := errors.New("boom")

	p := New("test",
		Stage{Name: "first", Run: func(context.Context) error {
			order = append(order, "first")
			return nil
		}},
		Stage{Name: "second", Run: func(context.Context) error {
			order = append(order, "second")
			return boom
		}},
		Stage{Name: "third", Run: func(context.Context) error {
			order = append(order, "third")
			return nil
		}},
	)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "stage second")
	// Later stages never run after a failure
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPipelineStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ran := 0
	p := New("test",
		Stage{Name: "first", Run: func(context.Context) error {
			ran++
			cancel()
			return nil
		}},
		Stage{Name: "second", Run: func(context.Context) error {
			ran++
			return nil
		}},
	)

	err := p.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, ran)
}

func TestPipelineWithoutStages(t *testing.T) {
	assert.NoError(t, New("empty").Run(context.Background()))
}
