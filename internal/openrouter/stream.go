package openrouter

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	ssePrefix    = "data: "
	doneSentinel = "[DONE]"
)

// streamChunk is the subset of an SSE payload the decoder cares about. A
// chunk that parses but carries no delta content (role-only metadata,
// usage frames) contributes nothing and is not an error.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// DecodeStream consumes an SSE chat-completion body line by line. Lines
// without the "data: " prefix are ignored; the "[DONE]" sentinel halts all
// further processing, including payloads already buffered behind it. A
// malformed payload is skipped and counted, never aborting the stream.
// Each extracted fragment is written to out immediately for real-time
// display; the return value is the concatenation in arrival order.
func DecodeStream(r io.Reader, out io.Writer, logger *slog.Logger) (string, error) {
	scanner := bufio.NewScanner(r)
	// Individual deltas are small, but reasoning models occasionally emit
	// very large single events.
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var full strings.Builder
	malformed := 0

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, ssePrefix) {
			continue
		}
		payload := strings.TrimSpace(line[len(ssePrefix):])
		if payload == doneSentinel {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			malformed++
			logger.Debug("skipping malformed stream chunk", "payload", truncateForLog(payload), "error", err)
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}
		fmt.Fprint(out, content)
		full.WriteString(content)
	}

	if err := scanner.Err(); err != nil {
		return full.String(), fmt.Errorf("reading stream: %w", err)
	}
	if malformed > 0 {
		logger.Warn("skipped malformed stream chunks", "count", malformed)
		if full.Len() == 0 {
			return "", fmt.Errorf("no content decoded from stream (%d malformed chunks skipped)", malformed)
		}
	}
	return full.String(), nil
}

func truncateForLog(s string) string {
	if len(s) <= 100 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= 100 {
		return s
	}
	return string(runes[:100]) + "..."
}
