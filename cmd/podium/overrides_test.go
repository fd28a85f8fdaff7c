package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/podiumlabs/podium/internal/models"
)

func baseSpec() *models.ExperimentSpec {
	spec := &models.ExperimentSpec{
		Name:     "override-test",
		Task:     "GameOf24",
		Strategy: "meta",
		Dataset:  "data.jsonl",
		Model:    models.ModelConfig{ID: "gpt-4"},
	}
	spec.ApplyDefaults()
	return spec
}

func TestApplySpecOverrides(t *testing.T) {
	t.Run("NestedFields", func(t *testing.T) {
		spec := baseSpec()
		err := applySpecOverrides(spec, []string{
			"scaffold.max_rounds=8",
			"run.parallel=true",
			"run.max_workers=3",
			"model.temperature=0.5",
		})
		require.NoError(t, err)

		require.Equal(t, 8, spec.Scaffold.MaxRounds)
		require.True(t, spec.Run.Parallel)
		require.Equal(t, 3, spec.Run.Workers)
		require.NotNil(t, spec.Model.Temperature)
		require.Equal(t, 0.5, *spec.Model.Temperature)
	})

	t.Run("TopLevelField", func(t *testing.T) {
		spec := baseSpec()
		require.NoError(t, applySpecOverrides(spec, []string{"strategy=standard"}))
		require.Equal(t, "standard", spec.Strategy)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		spec := baseSpec()
		err := applySpecOverrides(spec, []string{"scaffold.no_such_field=1"})
		require.Error(t, err)
	})

	t.Run("MissingEquals", func(t *testing.T) {
		spec := baseSpec()
		err := applySpecOverrides(spec, []string{"scaffold.max_rounds"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "key=value")
	})

	t.Run("NoPairsIsNoop", func(t *testing.T) {
		spec := baseSpec()
		require.NoError(t, applySpecOverrides(spec, nil))
		require.Equal(t, models.DefaultMaxRounds, spec.Scaffold.MaxRounds)
	})
}
