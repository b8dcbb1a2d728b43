package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInProcessBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to matching prefix", func(t *testing.T) {
		bus := NewInProcessBus(nil)

		var got []string
		bus.Subscribe("subscription.", func(_ context.Context, key string, _ []byte) error {
			got = append(got, key)
			return nil
		})

		require.NoError(t, bus.Publish(ctx, "subscription.upgraded", []byte(`{}`)))
		require.NoError(t, bus.Publish(ctx, "client.created", []byte(`{}`)))

		assert.Equal(t, []string{"subscription.upgraded"}, got)
	})

	t.Run("empty prefix receives everything", func(t *testing.T) {
		bus := NewInProcessBus(nil)

		count := 0
		bus.Subscribe("", func(context.Context, string, []byte) error {
			count++
			return nil
		})

		require.NoError(t, bus.Publish(ctx, "subscription.cancelled", nil))
		require.NoError(t, bus.Publish(ctx, "draft.generated", nil))

		assert.Equal(t, 2, count)
	})

	t.Run("handler errors are swallowed", func(t *testing.T) {
		bus := NewInProcessBus(nil)

		bus.Subscribe("subscription.", func(context.Context, string, []byte) error {
			return errors.New("subscriber exploded")
		})

		assert.NoError(t, bus.Publish(ctx, "subscription.upgraded", nil))
	})
}
