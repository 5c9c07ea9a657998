package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "failure", Failure.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}

func TestSkip(t *testing.T) {
	s := NewSkip("run.api.build", true)

	assert.Equal(t, "run.api.build", s.Name())
	assert.False(t, s.Cacheable())
	assert.False(t, s.ReportsTiming())
	assert.False(t, s.AllowsWarnings())
	assert.True(t, s.Silent())

	hash, err := s.Hash(context.Background())
	require.NoError(t, err)
	assert.Empty(t, hash)

	outcome, err := s.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Skipped, outcome)
}

func TestBoundary(t *testing.T) {
	t.Run("restore and save share the boundary contract", func(t *testing.T) {
		for _, b := range []*Boundary{NewRestore("api", "build"), NewSave("api", "build")} {
			assert.True(t, b.Cacheable())
			assert.False(t, b.ReportsTiming())
			assert.False(t, b.AllowsWarnings())
			assert.True(t, b.Silent())

			hash, err := b.Hash(context.Background())
			require.NoError(t, err)
			assert.Equal(t, boundaryHash, hash)

			outcome, err := b.Execute(context.Background())
			require.NoError(t, err)
			assert.Equal(t, Success, outcome)
		}
	})

	t.Run("names identify the bracketed pair", func(t *testing.T) {
		assert.Equal(t, "restore api:build", NewRestore("api", "build").Name())
		assert.Equal(t, "save api:build", NewSave("api", "build").Name())
	})
}

func TestCommand(t *testing.T) {
	t.Run("empty command succeeds without running anything", func(t *testing.T) {
		c := NewCommand("run.api.build", "", t.TempDir(), nil)
		outcome, err := c.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Success, outcome)
	})

	t.Run("successful command yields success", func(t *testing.T) {
		c := NewCommand("run.api.build", "true", t.TempDir(), nil)
		outcome, err := c.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Success, outcome)
	})

	t.Run("failing command yields failure with output attached", func(t *testing.T) {
		c := NewCommand("run.api.build", "echo boom >&2; exit 3", t.TempDir(), nil)
		outcome, err := c.Execute(context.Background())
		require.Error(t, err)
		assert.Equal(t, Failure, outcome)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("environment overrides reach the command", func(t *testing.T) {
		c := NewCommand("run.api.build", `test "$GREETING" = hello`, t.TempDir(), map[string]string{"GREETING": "hello"})
		outcome, err := c.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Success, outcome)
	})

	t.Run("flags", func(t *testing.T) {
		c := NewCommand("run.api.build", "true", ".", nil)
		assert.True(t, c.Cacheable())
		assert.True(t, c.ReportsTiming())
		assert.True(t, c.AllowsWarnings())
		assert.False(t, c.Silent())
	})
}

func TestCommandHash(t *testing.T) {
	ctx := context.Background()

	a := NewCommand("n", "make build", "api", map[string]string{"A": "1", "B": "2"})
	b := NewCommand("n", "make build", "api", map[string]string{"B": "2", "A": "1"})
	c := NewCommand("n", "make test", "api", nil)

	hashA, err := a.Hash(ctx)
	require.NoError(t, err)
	hashB, err := b.Hash(ctx)
	require.NoError(t, err)
	hashC, err := c.Hash(ctx)
	require.NoError(t, err)

	assert.Equal(t, hashA, hashB, "hash must not depend on env map iteration order")
	assert.NotEqual(t, hashA, hashC)
}
