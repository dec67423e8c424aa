package controller

import (
	"context"
	"testing"

	"github.com/lox/roshambo/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to subscribers of the kind", func(t *testing.T) {
		bus := NewBus()
		var got []Input
		sub := bus.Subscribe(InputChoice, func(_ context.Context, in Input) { got = append(got, in) })
		defer sub.Close()

		assert.Equal(t, 1, bus.Publish(ctx, Input{Kind: InputChoice, Choice: game.Rock}))
		assert.Equal(t, 0, bus.Publish(ctx, Input{Kind: InputReset}))
		assert.Equal(t, []Input{{Kind: InputChoice, Choice: game.Rock}}, got)
	})

	t.Run("closed subscriptions stop delivering", func(t *testing.T) {
		bus := NewBus()
		calls := 0
		sub := bus.Subscribe(InputReset, func(context.Context, Input) { calls++ })

		bus.Publish(ctx, Input{Kind: InputReset})
		sub.Close()
		sub.Close()
		bus.Publish(ctx, Input{Kind: InputReset})

		assert.Equal(t, 1, calls)
	})
}

func TestBind(t *testing.T) {
	ctx := context.Background()
	svc := newScriptedService(game.Rock)
	surface := newRecordingSurface()
	c := newTestController(t, svc, surface)

	bus := NewBus()
	c.Bind(bus)

	bus.Publish(ctx, Input{Kind: InputChoice, Choice: game.Paper})
	assert.Equal(t, game.ScoreState{PlayerWins: 1}, c.Scores())

	bus.Publish(ctx, Input{Kind: InputReset})
	assert.True(t, c.Scores().IsZero())
	require.Len(t, surface.Snapshot().notifications, 1)

	c.Close()
	assert.Zero(t, bus.Publish(ctx, Input{Kind: InputChoice, Choice: game.Paper}))
	assert.Equal(t, 1, svc.Calls())
}
