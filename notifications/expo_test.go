package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpoClient_Send(t *testing.T) {
	var received []Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"status":"ok","id":"t-1"},
			{"status":"error","message":"gone","details":{"error":"DeviceNotRegistered"}}
		]}`))
	}))
	defer server.Close()

	client := NewExpoClient(server.URL, "secret")
	tickets, err := client.Send(context.Background(), []Message{
		{To: "ExponentPushToken[a]", Title: "t", Body: "b"},
		{To: "ExponentPushToken[b]", Title: "t", Body: "b"},
	})
	require.NoError(t, err)

	require.Len(t, received, 2)
	assert.Equal(t, "ExponentPushToken[a]", received[0].To)

	require.Len(t, tickets, 2)
	assert.Equal(t, TicketOK, tickets[0].Status)
	assert.Equal(t, "t-1", tickets[0].ID)
	assert.Equal(t, TicketError, tickets[1].Status)
	assert.True(t, tickets[1].DeviceNotRegistered())
	assert.False(t, tickets[0].DeviceNotRegistered())
}

func TestExpoClient_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `oops`},
		{"request rejected", http.StatusOK, `{"errors":[{"code":"PUSH_TOO_MANY_EXPERIENCE_IDS","message":"bad"}]}`},
		{"ticket count mismatch", http.StatusOK, `{"data":[]}`},
		{"invalid json", http.StatusOK, `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewExpoClient(server.URL, "").Send(context.Background(), []Message{{To: "ExponentPushToken[a]"}})
			assert.Error(t, err)
		})
	}
}

func TestExpoClient_RejectsOversizedBatch(t *testing.T) {
	_, err := NewExpoClient("http://127.0.0.1:0", "").Send(context.Background(), make([]Message, MaxBatchSize+1))
	assert.Error(t, err)
}
