// Package extract turns free note text into candidate task strings using an
// OpenAI-compatible chat completions endpoint.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Kaktotak00p/notes/internal/logging"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const systemPrompt = `You are an AI assistant that extracts actionable tasks from notes. ` +
	`Identify any sentences or phrases that represent actions the user should take. ` +
	`Convert these into assertive, task-like statements. Respond with a JSON array of tasks.`

// ErrBadCompletion means the model answered with something that is not a
// JSON array of strings.
var ErrBadCompletion = errors.New("completion is not a JSON array of strings")

// Extractor returns candidate tasks for a note.
type Extractor interface {
	Extract(ctx context.Context, noteContent string) ([]string, error)
}

// OpenAI calls the chat completions endpoint under baseURL. Upstream failures
// surface as *openai.Error; retries are left to the caller.
type OpenAI struct {
	client  openai.Client
	model   string
	timeout time.Duration
	logger  logging.Logger
}

func NewOpenAI(baseURL, apiKey, model string, timeout time.Duration, client *http.Client, logger logging.Logger) *OpenAI {
	opts := []option.RequestOption{
		option.WithBaseURL(strings.TrimRight(baseURL, "/") + "/"),
		option.WithMaxRetries(0),
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if client != nil {
		opts = append(opts, option.WithHTTPClient(client))
	}

	return &OpenAI{
		client:  openai.NewClient(opts...),
		model:   model,
		timeout: timeout,
		logger:  logger.With("module", "extract"),
	}
}

func (o *OpenAI) Extract(ctx context.Context, noteContent string) ([]string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage("Extract tasks from the following note:\n" + noteContent),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	content := "[]"
	if len(resp.Choices) > 0 && resp.Choices[0].Message.Content != "" {
		content = resp.Choices[0].Message.Content
	}

	tasks, err := ParseTasks(content)
	if err != nil {
		o.logger.Warn(ctx, "unparseable completion", "content", content)
		return nil, err
	}

	o.logger.Debug(ctx, "tasks extracted", "count", len(tasks))
	return tasks, nil
}

// ParseTasks strips a markdown code fence, if any, and decodes the JSON array
// of strings inside. Blank entries are dropped.
func ParseTasks(content string) ([]string, error) {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	var raw []string
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCompletion, err)
	}

	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}
