package openrouter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunk(content string) string {
	return `data: {"choices":[{"delta":{"content":"` + content + `"}}]}`
}

func TestDecodeStream(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		written string
		wantErr string
	}{
		{
			name:  "fragments concatenated in order",
			input: chunk("Hello") + "\n" + chunk(", ") + "\n" + chunk("world") + "\ndata: [DONE]\n",
			want:  "Hello, world",
		},
		{
			name:  "malformed chunk skipped",
			input: chunk("A") + "\ndata: {not json\n" + chunk("B") + "\ndata: [DONE]\n",
			want:  "AB",
		},
		{
			name:  "done sentinel halts remaining payloads",
			input: chunk("before") + "\ndata: [DONE]\n" + chunk("after") + "\n",
			want:  "before",
		},
		{
			name:  "non-data lines ignored",
			input: ": keep-alive\n\nevent: ping\n" + chunk("text") + "\ndata: [DONE]\n",
			want:  "text",
		},
		{
			name:  "role-only delta contributes nothing",
			input: `data: {"choices":[{"delta":{"role":"assistant"}}]}` + "\n" + chunk("body") + "\ndata: [DONE]\n",
			want:  "body",
		},
		{
			name:  "empty choices skipped",
			input: `data: {"choices":[]}` + "\n" + chunk("x") + "\ndata: [DONE]\n",
			want:  "x",
		},
		{
			name:  "stream without done still drains",
			input: chunk("no") + "\n" + chunk(" sentinel") + "\n",
			want:  "no sentinel",
		},
		{
			name:    "only malformed chunks is an error",
			input:   "data: {bad\ndata: {worse\ndata: [DONE]\n",
			wantErr: "no content decoded from stream (2 malformed chunks skipped)",
		},
		{
			name:  "empty stream yields empty string",
			input: "data: [DONE]\n",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			got, err := DecodeStream(strings.NewReader(tt.input), &out, discardLogger())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, out.String(), "writer must see the same fragments")
		})
	}
}

func TestDecodeStreamWritesFragmentsImmediately(t *testing.T) {
	var writes []string
	w := writeRecorder{writes: &writes}

	input := chunk("one") + "\n" + chunk("two") + "\ndata: [DONE]\n"
	_, err := DecodeStream(strings.NewReader(input), w, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, writes)
}

type writeRecorder struct{ writes *[]string }

func (w writeRecorder) Write(p []byte) (int, error) {
	*w.writes = append(*w.writes, string(p))
	return len(p), nil
}

func TestTruncateForLog(t *testing.T) {
	assert.Equal(t, "short", truncateForLog("short"))

	got := truncateForLog(strings.Repeat("界", 150))
	assert.Equal(t, strings.Repeat("界", 100)+"...", got)
	assert.True(t, utf8.ValidString(got))
}

func TestDecodeStreamLargeEvent(t *testing.T) {
	big := strings.Repeat("a", 200*1024)
	input := chunk(big) + "\ndata: [DONE]\n"

	var out strings.Builder
	got, err := DecodeStream(strings.NewReader(input), &out, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, big, got)
}
