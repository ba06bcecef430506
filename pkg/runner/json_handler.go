package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
// Replies are written as one JSON object per line.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, reply *domain.Reply) error {
	return h.Encoder.Encode(reply)
}

// jsonInput is the object form of an input line.
type jsonInput struct {
	Input string `json:"input"`
}

// Input reads one line. It accepts {"input": "..."}, a JSON string, or raw text.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}

	text = strings.TrimSpace(text)

	var obj jsonInput
	var str string
	switch {
	case strings.HasPrefix(text, "{") && json.Unmarshal([]byte(text), &obj) == nil:
		text = obj.Input
	case json.Unmarshal([]byte(text), &str) == nil:
		text = str
	}

	return text, nil
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(map[string]string{"system": msg})
}
