package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fabrictrade/backend/internal/infrastructure/config"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fakeResponses(t *testing.T, status int, text string, seen *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		if seen != nil {
			_ = json.Unmarshal(body, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         "resp_1",
			"object":     "response",
			"created_at": 1700000000,
			"model":      "gpt-4o-mini",
			"status":     "completed",
			"output": []any{map[string]any{
				"type":   "message",
				"id":     "msg_1",
				"role":   "assistant",
				"status": "completed",
				"content": []any{map[string]any{
					"type":        "output_text",
					"text":        text,
					"annotations": []any{},
				}},
			}},
			"usage": map[string]any{"input_tokens": 12, "output_tokens": 5, "total_tokens": 17},
		})
	}))
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(config.AssistantConfig{}, zap.NewNop())
	assert.Error(t, err)
}

func TestOpenAIClient_Reply(t *testing.T) {
	var seen map[string]any
	srv := fakeResponses(t, http.StatusOK, "  You owe 1,200.00 on BILL-7.  ", &seen)
	defer srv.Close()

	c, err := NewOpenAIClient(config.AssistantConfig{APIKey: "sk-test", Model: "gpt-4o-mini"}, zap.NewNop(),
		option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	require.NoError(t, err)

	reply, err := c.Reply(context.Background(), "Outstanding bills:\nBILL-7", "what do I owe?")
	require.NoError(t, err)
	assert.Equal(t, "You owe 1,200.00 on BILL-7.", reply)
	assert.Equal(t, "gpt-4o-mini", seen["model"])
	assert.Contains(t, seen["input"], "what do I owe?")
	assert.Contains(t, seen["input"], "BILL-7")
}

func TestOpenAIClient_EmptyReply(t *testing.T) {
	srv := fakeResponses(t, http.StatusOK, "   ", nil)
	defer srv.Close()

	c, err := NewOpenAIClient(config.AssistantConfig{APIKey: "sk-test"}, zap.NewNop(),
		option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	require.NoError(t, err)

	_, err = c.Reply(context.Background(), "", "hi")
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestOpenAIClient_UpstreamError(t *testing.T) {
	srv := fakeResponses(t, http.StatusTooManyRequests, "", nil)
	defer srv.Close()

	c, err := NewOpenAIClient(config.AssistantConfig{APIKey: "sk-test"}, zap.NewNop(),
		option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	require.NoError(t, err)

	_, err = c.Reply(context.Background(), "", "hi")
	assert.ErrorContains(t, err, "openai responses")
}
