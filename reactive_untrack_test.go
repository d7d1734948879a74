package reactive

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUntrack(t *testing.T) {
	t.Run("does not track reads", func(t *testing.T) {
		log := []string{}

		count := NewRef(0)

		NewEffect(func() {
			c := Untrack(count.Value)
			log = append(log, fmt.Sprintf("effect %d", c))
		})

		count.Set(10)

		assert.Equal(t, []string{
			"effect 0",
		}, log)
	})

	t.Run("tracking resumes after the untracked call", func(t *testing.T) {
		log := []string{}

		obj := Reactive(NewRecord().Put("a", 1).Put("b", 1))

		NewEffect(func() {
			a := Untrack(func() int { return Get[int](obj, "a") })
			b := Get[int](obj, "b")
			log = append(log, fmt.Sprintf("effect %d %d", a, b))
		})

		obj.Set("a", 2)
		obj.Set("b", 2)

		assert.Equal(t, []string{
			"effect 1 1",
			"effect 2 2",
		}, log)
	})
}
