package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/spritestage/parameter"
)

func TestLog_FIFO(t *testing.T) {
	l := NewLog()
	l.Add(1, SeverityInfo, "first")
	l.Add(2, SeverityError, "second")

	assert.Equal(t, 2, l.Len())
	peeked := l.Peek()
	require.Len(t, peeked, 2)
	assert.Equal(t, 2, l.Len(), "peek does not consume")

	got := l.Consume()
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Message)
	assert.Equal(t, SeverityError, got[1].Severity)
	assert.False(t, got[0].Time.IsZero())
	assert.Nil(t, l.Consume())
}

func TestLog_OverflowDropsOldest(t *testing.T) {
	l := NewLog()
	total := parameter.DiagnosticCapacity + 10
	for i := range total {
		l.Add(int64(i), SeverityDebug, "x")
	}
	got := l.Consume()
	require.Len(t, got, parameter.DiagnosticCapacity)
	assert.Equal(t, int64(10), got[0].Frame)
	assert.Equal(t, uint64(10), l.Dropped())
}

func TestLog_ConcurrentPush(t *testing.T) {
	l := NewLog()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				l.Add(int64(i), SeverityInfo, "p")
			}
		}()
	}
	wg.Wait()
	assert.Len(t, l.Consume(), 200)
}

func TestSeverity_Text(t *testing.T) {
	b, err := SeverityWarn.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "warn", string(b))

	l := NewLog()
	l.Add(0, SeverityInfo, "gone")
	l.Reset()
	assert.Zero(t, l.Len())
}
