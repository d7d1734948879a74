package scenario

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("parses nested data", func(t *testing.T) {
		s, err := Decode(strings.NewReader(`
name: nested
data:
  user:
    name: ada
  items: [1, 2]
steps:
  - set: user.name
    value: grace
  - flush: true
`))
		require.NoError(t, err)

		assert.Equal(t, "nested", s.Name)
		assert.Equal(t, map[string]any{"name": "ada"}, s.Data["user"])
		assert.Equal(t, []any{1, 2}, s.Data["items"])
		assert.Equal(t, []Step{
			{Set: "user.name", Value: "grace"},
			{Flush: true},
		}, s.Steps)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`
name: typo
step: []
`))
		assert.Error(t, err)
	})

	for name, src := range map[string]string{
		"missing name": `
data: {}
`,
		"unknown mode": `
name: mode
mode: eager
`,
		"computed without operation": `
name: computed
computeds:
  - name: total
`,
		"unknown scheduler": `
name: scheduler
effects:
  - name: e
    scheduler: later
`,
		"effect reading an unknown computed": `
name: computed
effects:
  - name: e
    computeds: [total]
`,
		"watch without source": `
name: watch
watches:
  - name: w
`,
		"empty step": `
name: step
steps:
  - {}
`,
		"step with two kinds": `
name: step
steps:
  - set: a
    delete: a
`,
		"reading an unknown computed": `
name: step
steps:
  - read: total
`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(src))
			assert.ErrorIs(t, err, ErrScenario)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load("testdata/missing.yaml")
		assert.Error(t, err)
	})

	t.Run("reports the file", func(t *testing.T) {
		s, err := Load("testdata/branch.yaml")
		require.NoError(t, err)
		assert.Equal(t, "branch", s.Name)
	})
}
