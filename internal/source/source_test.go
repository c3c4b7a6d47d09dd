package source

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirtan-gupta/Pixie-EventScout/internal/models"
)

type cannedSource struct {
	name  string
	raws  []models.RawEvent
	err   error
	calls int
}

func (s *cannedSource) Name() string { return s.name }

func (s *cannedSource) Fetch(ctx context.Context, city, category string) ([]models.RawEvent, error) {
	s.calls++
	return s.raws, s.err
}

func TestMultiplexerFirstNonEmptyWins(t *testing.T) {
	primary := &cannedSource{name: "primary", raws: []models.RawEvent{{Title: "A"}}}
	fallback := &cannedSource{name: "fallback", raws: []models.RawEvent{{Title: "B"}}}

	m := NewMultiplexer(primary, fallback)
	events, err := m.Fetch(context.Background(), "bangalore", "all")

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "A", events[0].Title)
	assert.Equal(t, 0, fallback.calls)
}

func TestMultiplexerSkipsFailingSource(t *testing.T) {
	broken := &cannedSource{name: "broken", err: errors.New("quota exceeded")}
	fallback := &cannedSource{name: "fallback", raws: []models.RawEvent{{Title: "B"}}}

	m := NewMultiplexer(broken, fallback)
	events, err := m.Fetch(context.Background(), "bangalore", "all")

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "B", events[0].Title)
}

func TestMultiplexerSkipsEmptySource(t *testing.T) {
	empty := &cannedSource{name: "empty"}
	fallback := &cannedSource{name: "fallback", raws: []models.RawEvent{{Title: "B"}}}

	m := NewMultiplexer(empty, fallback)
	events, err := m.Fetch(context.Background(), "bangalore", "all")

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 1, empty.calls)
}

func TestMultiplexerAllEmpty(t *testing.T) {
	m := NewMultiplexer(&cannedSource{name: "a"}, &cannedSource{name: "b", err: errors.New("down")})
	events, err := m.Fetch(context.Background(), "bangalore", "all")

	require.NoError(t, err)
	assert.Empty(t, events)
}
