package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatedTimeUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		json string
		want time.Time
	}{
		{"unix epoch", `1735689600`, time.Unix(1735689600, 0).UTC()},
		{"rfc3339 string", `"2025-01-01T00:00:00Z"`, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"null", `null`, time.Time{}},
		{"empty string", `""`, time.Time{}},
		{"unparseable string", `"yesterday"`, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ct CreatedTime
			require.NoError(t, json.Unmarshal([]byte(tt.json), &ct))
			assert.True(t, ct.Equal(tt.want), "got %v, want %v", ct.Time, tt.want)
		})
	}
}

func TestModelFree(t *testing.T) {
	tests := []struct {
		name    string
		pricing ModelPricing
		want    bool
	}{
		{"zero prices", ModelPricing{Prompt: "0", Completion: "0"}, true},
		{"zero with decimals", ModelPricing{Prompt: "0.000000", Completion: "0"}, true},
		{"empty prices", ModelPricing{}, true},
		{"paid prompt", ModelPricing{Prompt: "0.000001", Completion: "0"}, false},
		{"paid completion", ModelPricing{Prompt: "0", Completion: "0.000002"}, false},
		{"unparseable", ModelPricing{Prompt: "free", Completion: "0"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Model{Pricing: tt.pricing}.Free())
		})
	}
}

func TestThinkingClass(t *testing.T) {
	tests := []struct {
		id   string
		n    string
		want string
	}{
		{"deepseek/deepseek-r1", "DeepSeek R1", ClassThinking},
		{"qwen/qwq-thinking", "QwQ Thinking", ClassThinking},
		{"meta/llama-3-instruct", "Llama 3 Instruct", ClassStandard},
		{"openai/gpt-4o-mini", "GPT-4o Mini", ClassStandard},
		{"mystery/model-x", "Model X", ClassUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, Model{ID: tt.id, Name: tt.n}.ThinkingClass())
		})
	}
}

func TestFreeModelsFiltersAndSorts(t *testing.T) {
	old := CreatedTime{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	recent := CreatedTime{time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}

	models := []Model{
		{ID: "paid/model", Pricing: ModelPricing{Prompt: "0.01", Completion: "0.02"}, Created: recent},
		{ID: "free/old", Pricing: ModelPricing{Prompt: "0", Completion: "0"}, Created: old},
		{ID: "free/undated", Pricing: ModelPricing{Prompt: "0", Completion: "0"}},
		{ID: "free/recent", Pricing: ModelPricing{Prompt: "0", Completion: "0"}, Created: recent},
	}

	free := FreeModels(models)
	require.Len(t, free, 3)
	assert.Equal(t, "free/recent", free[0].ID)
	assert.Equal(t, "free/old", free[1].ID)
	assert.Equal(t, "free/undated", free[2].ID, "undated models go last")
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		w.Write([]byte(`{"data":[
			{"id":"a/one","name":"One","context_length":128000,"created":1735689600,"pricing":{"prompt":"0","completion":"0"}},
			{"id":"b/two","name":"Two","context_length":32000,"pricing":{"prompt":"0.001","completion":"0.002"}}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL}, discardLogger())
	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "a/one", models[0].ID)
	assert.Equal(t, 128000, models[0].ContextLength)
	assert.True(t, models[0].Free())
	assert.False(t, models[1].Free())
}

func TestListModelsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL}, discardLogger())
	_, err := client.ListModels(context.Background())
	require.Error(t, err)

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusServiceUnavailable, he.Status)
}
