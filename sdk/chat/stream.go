package chat

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// ssePrefix frames event payloads in the newline-delimited stream.
var ssePrefix = []byte("data: ")

// StreamChunk is one unit produced by a streaming chat call: a text delta, or
// a terminal read error.
type StreamChunk struct {
	Text string
	Err  error
}

// Stream is the lazy result of a streaming chat call. It is single-consumer
// and not restartable: read text chunks from Chunks until the channel closes,
// then collect the final response from Response. Cancellation is driven by
// the request context; abandoning the channel without cancelling leaks the
// drive goroutine until the stream ends upstream.
type Stream struct {
	chunks   chan StreamChunk
	response *Response
}

func newStream() *Stream {
	return &Stream{chunks: make(chan StreamChunk)}
}

// Chunks returns the channel of incremental text deltas. The channel closes
// when the stream ends.
func (s *Stream) Chunks() <-chan StreamChunk {
	return s.chunks
}

// Response returns the accumulated final response. It is only valid after
// Chunks has closed; unreported fields stay at their zero values.
func (s *Stream) Response() *Response {
	return s.response
}

// consume drives the SSE read loop. bufio.Scanner carries unterminated line
// fragments across network reads, so a line split over two reads is neither
// dropped nor duplicated. Lines without the data prefix, [DONE] markers, and
// unparseable payloads are skipped silently.
func (s *Stream) consume(body io.ReadCloser, reqID string) {
	defer close(s.chunks)
	defer func() {
		if errClose := body.Close(); errClose != nil {
			log.Errorf("chat: close response body error: %v", errClose)
		}
	}()

	final := &Response{}
	var content strings.Builder
	emitted := 0

	scanner := bufio.NewScanner(body)
	scanner.Buffer(nil, 1_048_576) // 1MB
	for scanner.Scan() {
		line := scanner.Bytes()
		if !bytes.HasPrefix(line, ssePrefix) {
			continue
		}
		payload := line[len(ssePrefix):]
		if string(payload) == "[DONE]" {
			continue
		}
		if !gjson.ValidBytes(payload) {
			continue
		}

		event := gjson.ParseBytes(payload)
		switch event.Get("type").String() {
		case "message_start":
			final.ID = event.Get("message.id").String()
			final.Model = event.Get("message.model").String()
		case "content_block_delta":
			if text := event.Get("delta.text"); text.Exists() && text.String() != "" {
				content.WriteString(text.String())
				emitted++
				s.chunks <- StreamChunk{Text: text.String()}
			}
		case "message_delta":
			final.StopReason = event.Get("delta.stop_reason").String()
			if usage := event.Get("usage"); usage.Exists() {
				final.Usage.InputTokens = int(usage.Get("input_tokens").Int())
				final.Usage.OutputTokens = int(usage.Get("output_tokens").Int())
			}
		}
	}

	if errScan := scanner.Err(); errScan != nil {
		s.chunks <- StreamChunk{Err: errScan}
	}

	final.Content = content.String()
	// Publish the final response before close; channel close is the
	// synchronization point for readers.
	s.response = final
	log.WithField("request_id", reqID).WithField("chunks", emitted).Debug("stream completed")
}
