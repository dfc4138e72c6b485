// Package tools declares the functions the model may call and binds each to
// a typed argument payload.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"

	"github.com/sozercan/vizbot/internal/chart"
	"github.com/sozercan/vizbot/internal/llm"
	"github.com/sozercan/vizbot/internal/stats"
)

var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

// Call is a decoded tool invocation, ready to run.
type Call interface {
	ToolName() string
	Invoke(ctx context.Context) (any, error)
}

type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{}

	newCall func() Call
	schema  *gojsonschema.Schema
}

// Registry holds the tool set exposed to the model. Lookups are exact and
// case-sensitive.
type Registry struct {
	tools map[string]*Tool
	order []string
}

func NewRegistry() (*Registry, error) {
	r := &Registry{tools: make(map[string]*Tool, len(definitions))}
	for _, def := range definitions {
		tool := def
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(tool.Parameters))
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", tool.Name, err)
		}
		tool.schema = schema
		if _, dup := r.tools[tool.Name]; dup {
			return nil, fmt.Errorf("tool %s registered twice", tool.Name)
		}
		r.tools[tool.Name] = &tool
		r.order = append(r.order, tool.Name)
	}
	slog.Debug("Tool registry initialized", "tools", r.order)
	return r, nil
}

// Definitions returns the declarations sent to the model.
func (r *Registry) Definitions() []llm.Tool {
	out := make([]llm.Tool, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		out = append(out, llm.Tool{Name: t.Name, Description: t.Description, Parameters: t.Parameters})
	}
	return out
}

// Decode turns the model's JSON arguments for tool name into a typed Call.
// The statistics tool always computes over dataset, whatever data the model
// sent.
func (r *Registry) Decode(name, arguments string, dataset []stats.Row) (Call, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	args := map[string]interface{}{}
	if strings.TrimSpace(arguments) != "" {
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArguments, name, err)
		}
		if args == nil {
			return nil, fmt.Errorf("%w: %s: arguments must be a JSON object", ErrInvalidArguments, name)
		}
	}
	// null means absent for the optional parameters
	for k, v := range args {
		if v == nil {
			delete(args, k)
		}
	}
	if name == CalculateStatisticsName {
		if dataset == nil {
			dataset = []stats.Row{}
		}
		args["data"] = dataset
	}

	if err := validate(tool.schema, args); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArguments, name, err)
	}

	call := tool.newCall()
	if err := decode(args, call); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArguments, name, err)
	}
	if sc, ok := call.(*StatisticsCall); ok {
		sc.Data = dataset
	}
	return call, nil
}

// Invoke decodes and runs a tool call in one step.
func (r *Registry) Invoke(ctx context.Context, name, arguments string, dataset []stats.Row) (any, error) {
	call, err := r.Decode(name, arguments, dataset)
	if err != nil {
		return nil, err
	}
	return call.Invoke(ctx)
}

func validate(schema *gojsonschema.Schema, args map[string]interface{}) error {
	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, len(result.Errors()))
	for i, e := range result.Errors() {
		msgs[i] = e.String()
	}
	return errors.New(strings.Join(msgs, "; "))
}

func decode(args map[string]interface{}, out Call) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(args)
}

// VegaSpecCall carries the GenerateVegaSpec arguments.
type VegaSpecCall struct {
	ChartType   string `mapstructure:"chart_type"`
	XField      string `mapstructure:"x_field"`
	YField      string `mapstructure:"y_field"`
	ColorField  string `mapstructure:"color_field"`
	IsHistogram int    `mapstructure:"is_histogram"`
}

func (c *VegaSpecCall) ToolName() string { return GenerateVegaSpecName }

func (c *VegaSpecCall) Invoke(_ context.Context) (any, error) {
	spec, err := chart.Build(chart.Params{
		ChartType:   c.ChartType,
		XField:      c.XField,
		YField:      c.YField,
		ColorField:  c.ColorField,
		IsHistogram: c.IsHistogram,
	})
	if err != nil {
		return nil, err
	}
	return chart.Envelope{VegaSpec: spec}, nil
}

// StatisticsCall carries the CalculateStatistics arguments.
type StatisticsCall struct {
	Data        []stats.Row   `mapstructure:"-"`
	Field       string        `mapstructure:"field"`
	SecondField string        `mapstructure:"second_field"`
	GroupBy     string        `mapstructure:"group_by"`
	FilterBy    *stats.Filter `mapstructure:"filter_by"`
}

func (c *StatisticsCall) ToolName() string { return CalculateStatisticsName }

func (c *StatisticsCall) Invoke(_ context.Context) (any, error) {
	return stats.Compute(c.Data, stats.Params{
		Field:       c.Field,
		SecondField: c.SecondField,
		GroupBy:     c.GroupBy,
		FilterBy:    c.FilterBy,
	})
}
