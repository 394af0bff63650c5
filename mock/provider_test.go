package mock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/moczadlo/relay"
	"github.com/moczadlo/relay/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Complete(t *testing.T) {
	t.Parallel()
	t.Run("delegates to CompleteFn", func(t *testing.T) {
		t.Parallel()
		want := relay.AssistantMessage{
			Content:    []relay.ContentBlock{relay.TextBlock{Text: "hello"}},
			StopReason: relay.StopEndTurn,
		}
		p := mock.Provider{
			CompleteFn: func(ctx context.Context, req relay.Request) (relay.AssistantMessage, error) {
				assert.Equal(t, "system", req.SystemPrompt)
				return want, nil
			},
		}
		got, err := p.Complete(context.Background(), relay.Request{SystemPrompt: "system"})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("returns error", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("api error")
		p := mock.Provider{
			CompleteFn: func(ctx context.Context, req relay.Request) (relay.AssistantMessage, error) {
				return relay.AssistantMessage{}, wantErr
			},
		}
		_, err := p.Complete(context.Background(), relay.Request{})
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("panics when CompleteFn not set", func(t *testing.T) {
		t.Parallel()
		p := mock.Provider{}
		assert.Panics(t, func() {
			_, _ = p.Complete(context.Background(), relay.Request{})
		})
	})
}
