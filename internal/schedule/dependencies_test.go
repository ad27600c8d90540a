package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducers(t *testing.T) {
	instrs, err := Extract(simpleBranches())
	require.NoError(t, err)

	// x_14 = concatenate(x_13); x_13 = tuple(x_10, x_7, x_3)
	assert.Equal(t, []int{1, 2, 3, 6, 7, 10, 13}, Producers(instrs, 14))
	assert.Equal(t, []int{1, 2, 3, 6, 7}, CrossStreamProducers(instrs, 14))
	assert.Empty(t, Producers(instrs, 1))
	assert.Nil(t, Producers(instrs, 99))
}
