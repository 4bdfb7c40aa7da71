package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMock_Advance(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewMock(start)

	assert.Equal(t, start, c.Now())

	c.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), c.Now())
	assert.Equal(t, 90*time.Second, c.Since(start))

	c.Set(start)
	assert.Zero(t, c.Since(start))
}

func TestReal_Since(t *testing.T) {
	var c Real
	past := c.Now().Add(-time.Second)
	assert.GreaterOrEqual(t, c.Since(past), time.Second)
}
