package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_DisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), "payledger", false, "http://collector:4318")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	shutdown, err = Setup(context.Background(), "payledger", true, "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
