package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surendratiwari3/taskexec/schema"
)

func TestConsumerExecute(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    interface{}
		wantErr bool
	}{
		{name: "Fetch Result", status: http.StatusOK, body: `{"result":"new-data"}`, want: schema.FetchResultNewData},
		{name: "Arbitrary Result", status: http.StatusOK, body: `{"result":{"items":2}}`, want: map[string]interface{}{"items": float64(2)}},
		{name: "Empty Body", status: http.StatusNoContent, body: "", want: schema.FetchResultNoData},
		{name: "Server Error", status: http.StatusInternalServerError, body: `{"result":"new-data"}`, wantErr: true},
		{name: "Invalid JSON", status: http.StatusOK, body: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Payload
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			consumer := NewConsumer([]string{schema.ReasonBackgroundFetch}, server.Client())
			task := schema.NewBackgroundTask("app", "sync", server.URL, consumer, nil)
			trigger := schema.NewTrigger(schema.ReasonBackgroundFetch, map[string]interface{}{"k": "v"})

			result, err := consumer.Execute(context.Background(), task, trigger)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, result)
			}
			assert.Equal(t, "app:sync", got.TaskID)
			assert.Equal(t, trigger.UUID, got.Trigger.UUID)
		})
	}
}

func TestConsumerExecute_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	}))
	defer server.Close()

	consumer := NewConsumer([]string{schema.ReasonManual}, nil)
	task := schema.NewBackgroundTask("app", "slow", server.URL, consumer, map[string]interface{}{TimeoutOption: 1})

	start := time.Now()
	_, err := consumer.Execute(context.Background(), task, schema.NewTrigger(schema.ReasonManual, nil))
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestConsumerExecute_NoURL(t *testing.T) {
	consumer := NewConsumer([]string{schema.ReasonManual}, nil)
	task := schema.NewBackgroundTask("app", "local", "", consumer, nil)

	_, err := consumer.Execute(context.Background(), task, schema.NewTrigger(schema.ReasonManual, nil))
	assert.Error(t, err)
	assert.Equal(t, []string{schema.ReasonManual}, consumer.Reasons())
}

func TestConsumerExecute_Options(t *testing.T) {
	var got Payload
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"result":"failed"}`))
	}))
	defer server.Close()

	consumer := NewConsumer([]string{schema.ReasonManual}, server.Client())
	task := schema.NewBackgroundTask("app", "secure", server.URL, consumer, map[string]interface{}{
		AuthorizationOption: "Bearer token",
		OmitOptionsOption:   true,
	})

	result, err := consumer.Execute(context.Background(), task, schema.NewTrigger(schema.ReasonManual, nil))
	require.NoError(t, err)
	assert.Equal(t, schema.FetchResultFailed, result)
	assert.Equal(t, "Bearer token", auth)
	assert.Nil(t, got.Options)
}
