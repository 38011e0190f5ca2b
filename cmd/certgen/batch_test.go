package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRowSpec(t *testing.T) {
	t.Run("ranges and singles", func(t *testing.T) {
		rows, err := parseRowSpec("2-5,8")
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 3, 4, 5, 8}, rows)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		rows, err := parseRowSpec("3,2-4,3")
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 3, 4}, rows)
	})

	t.Run("whitespace tolerated", func(t *testing.T) {
		rows, err := parseRowSpec(" 2 , 4 - 5 ")
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 4, 5}, rows)
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		_, err := parseRowSpec("5-2")
		assert.ErrorContains(t, err, "start exceeds end")
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := parseRowSpec("two")
		assert.Error(t, err)
	})

	t.Run("empty spec rejected", func(t *testing.T) {
		_, err := parseRowSpec(",")
		assert.ErrorContains(t, err, "no rows selected")
	})
}
