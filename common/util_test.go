package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunParallelCountsFailures(t *testing.T) {
	boom := errors.New("boom")
	failed, err := RunParallel(
		func() error { return nil },
		func() error { return boom },
		func() error { return errors.New("bang") },
	)
	assert.Equal(t, 2, failed)
	assert.ErrorIs(t, err, boom)

	failed, err = RunParallel()
	assert.Zero(t, failed)
	assert.NoError(t, err)
}
