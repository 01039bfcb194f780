package bijli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{
		BaseURL:        server.URL,
		TimeoutSeconds: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestFetchMember(t *testing.T) {
	ctx := context.Background()

	t.Run("plain array uses first element", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "00123", r.URL.Query().Get("memberNo"))
			w.Write([]byte(`[{"MemberNo": "00123", "FullName": "nguyen van an"}, {"MemberNo": "other"}]`))
		})

		record, err := client.FetchMember(ctx, "00123")
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, "00123", record["MemberNo"])
	})

	t.Run("string-encoded array is unwrapped", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`"[{\"MemberNo\": \"00123\"}]"`))
		})

		record, err := client.FetchMember(ctx, "00123")
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, "00123", record["MemberNo"])
	})

	t.Run("empty array is no data, not an error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		})

		record, err := client.FetchMember(ctx, "00123")
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("non-array body is no data", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"unexpected": "object"}`))
		})

		record, err := client.FetchMember(ctx, "00123")
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("unparseable body is no data", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<<<not json>>>`))
		})

		record, err := client.FetchMember(ctx, "00123")
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("server error is a transport failure", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.FetchMember(ctx, "00123")
		assert.ErrorIs(t, err, ErrTransport)
		assert.False(t, IsTimeout(err))
	})

	t.Run("slow endpoint is a timeout", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(1500 * time.Millisecond)
		})

		_, err := client.FetchMember(ctx, "00123")
		require.Error(t, err)
		assert.True(t, IsTimeout(err))
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("requires base URL", func(t *testing.T) {
		_, err := NewClient(&Config{TimeoutSeconds: 10}, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("requires positive timeout", func(t *testing.T) {
		_, err := NewClient(&Config{BaseURL: "http://bijli.local"}, zap.NewNop())
		assert.Error(t, err)
	})
}
