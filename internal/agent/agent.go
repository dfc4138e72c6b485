package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sozercan/vizbot/apimodels"
	"github.com/sozercan/vizbot/internal/chart"
	"github.com/sozercan/vizbot/internal/extract"
	"github.com/sozercan/vizbot/internal/llm"
	"github.com/sozercan/vizbot/internal/stats"
	"github.com/sozercan/vizbot/internal/tools"
)

const (
	DefaultMaxSteps = 10

	ExhaustedMessage       = "The tool agent could not complete the task in the given time. Please try again."
	InvalidResponseMessage = "Failed to generate a valid response."
	UnavailableMessage     = "The language model could not be reached. Please try again later."
)

type Input struct {
	UserMessage string
	// DatasetInfo describes the dataset for the prompt; it is never computed on.
	DatasetInfo string
	Dataset     []stats.Row
}

type Options struct {
	MaxSteps int
	Model    string
	Retry    llm.RetryConfig
}

// AgentState is the conversation of a single run. It is never shared
// between runs.
type AgentState struct {
	RunID    string
	Steps    int
	Messages []llm.Message
	Last     *llm.Response
	Usage    llm.Usage
}

type Agent struct {
	llmProvider llm.Provider
	registry    *tools.Registry
	opts        Options
}

func New(llmProvider llm.Provider, registry *tools.Registry, opts Options) *Agent {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	return &Agent{
		llmProvider: llmProvider,
		registry:    registry,
		opts:        opts,
	}
}

// Run drives the model until it produces a final answer. The returned answer
// is never nil; a non-nil error only reports why the answer is an error.
func (a *Agent) Run(ctx context.Context, in Input) (*apimodels.Answer, error) {
	state := &AgentState{
		RunID: uuid.NewString(),
		Messages: []llm.Message{
			llm.SystemMessage(SystemPrompt),
			llm.UserMessage(composePrompt(in.UserMessage, in.DatasetInfo)),
		},
	}
	log := slog.With("run", state.RunID)
	startTime := time.Now()
	log.Info("Starting agent run", "rows", len(in.Dataset))
	if stat := requestedStatistic(in.UserMessage); stat != "" {
		log.Debug("Question mentions a statistic", "statistic", stat)
	}

	answer, err := a.loop(ctx, log, state, in.Dataset)
	log.Info("Agent run finished",
		"steps", state.Steps,
		"duration", time.Since(startTime).String(),
		"tokensUsed", state.Usage.TotalTokens,
		"error", err,
	)
	return answer, err
}

func (a *Agent) loop(ctx context.Context, log *slog.Logger, state *AgentState, dataset []stats.Row) (*apimodels.Answer, error) {
	definitions := a.registry.Definitions()

	for state.Steps < a.opts.MaxSteps {
		state.Steps++

		resp, err := llm.ChatWithRetry(ctx, a.opts.Retry, a.llmProvider, state.Messages,
			llm.WithModel(a.opts.Model),
			llm.WithTools(definitions),
		)
		if err != nil {
			log.Error("LLM call failed", "step", state.Steps, "error", err)
			return apimodels.ErrorAnswer(UnavailableMessage), fmt.Errorf("step %d: %w", state.Steps, err)
		}
		state.Last = resp
		addUsage(&state.Usage, resp.Usage)

		if content := strings.TrimSpace(resp.Content); content != "" {
			log.Debug("LLM provided final response", "step", state.Steps, "content", content)
			return contentAnswer(content), nil
		}

		if len(resp.ToolCalls) == 0 {
			log.Info("No tool calls requested, ending loop", "step", state.Steps)
			break
		}

		state.Messages = append(state.Messages, resp.AssistantMessage())
		if answer := a.handleToolCalls(ctx, log, state, resp.ToolCalls, dataset); answer != nil {
			return answer, nil
		}
	}

	if state.Last != nil && len(state.Last.ToolCalls) > 0 {
		log.Warn("Max steps reached without final response", "maxSteps", a.opts.MaxSteps)
		return apimodels.ErrorAnswer(ExhaustedMessage), nil
	}
	return fallbackAnswer(log, state.Last), nil
}

// handleToolCalls answers every call with one tool message, unless a call
// yields a chart, which ends the run at once.
func (a *Agent) handleToolCalls(ctx context.Context, log *slog.Logger, state *AgentState, calls []llm.ToolCall, dataset []stats.Row) *apimodels.Answer {
	for _, tc := range calls {
		log.Info("Executing tool call", "step", state.Steps, "tool", tc.Name, "id", tc.ID)
		log.Debug("Tool call arguments", "tool", tc.Name, "arguments", tc.Arguments)

		result, err := a.registry.Invoke(ctx, tc.Name, tc.Arguments, dataset)
		if err != nil {
			if errors.Is(err, tools.ErrUnknownTool) {
				log.Warn("Tool not found", "tool", tc.Name)
			} else {
				log.Error("Tool call failed", "tool", tc.Name, "error", err)
			}
			state.Messages = append(state.Messages, llm.ToolMessage(tc.ID, errorPayload(err)))
			continue
		}

		if env, ok := result.(chart.Envelope); ok {
			log.Info("Chart specification generated", "tool", tc.Name)
			return apimodels.ChartAnswer(env.VegaSpec)
		}

		payload := resultPayload(result)
		log.Debug("Tool call result", "tool", tc.Name, "result", payload)
		state.Messages = append(state.Messages, llm.ToolMessage(tc.ID, payload))
	}
	return nil
}

// contentAnswer turns a text reply into an answer: a chart when the text
// embeds one, otherwise the text itself.
func contentAnswer(content string) *apimodels.Answer {
	if obj, ok := extract.ChartAnswer(content); ok {
		spec, _ := extract.ChartSpec(obj)
		return apimodels.ChartAnswer(spec)
	}
	return apimodels.StatisticsAnswer(content)
}

// fallbackAnswer parses the last reply as bare JSON. The loop only gets here
// when that reply had no text, so in practice this yields the error answer.
func fallbackAnswer(log *slog.Logger, last *llm.Response) *apimodels.Answer {
	if last != nil {
		if obj, ok := extract.JSONObject(last.Content); ok {
			if spec, ok := extract.ChartSpec(obj); ok {
				return apimodels.ChartAnswer(spec)
			}
			return apimodels.StatisticsAnswer(obj)
		}
	}
	log.Error("Failed to parse JSON from LLM response")
	return apimodels.ErrorAnswer(InvalidResponseMessage)
}

func resultPayload(result any) string {
	data, err := json.Marshal(map[string]any{"result": result})
	if err != nil {
		return errorPayload(fmt.Errorf("failed to encode tool result: %w", err))
	}
	return string(data)
}

func errorPayload(err error) string {
	data, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(data)
}

func addUsage(total *llm.Usage, u llm.Usage) {
	total.PromptTokens += u.PromptTokens
	total.CompletionTokens += u.CompletionTokens
	total.TotalTokens += u.TotalTokens
}
