package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/vizbot/internal/chart"
	"github.com/sozercan/vizbot/internal/stats"
)

var dataset = []stats.Row{
	{"Origin": "USA", "Horsepower": 130.0, "Miles_per_Gallon": 18.0},
	{"Origin": "USA", "Horsepower": 165.0, "Miles_per_Gallon": 15.0},
	{"Origin": "Japan", "Horsepower": 95.0, "Miles_per_Gallon": 24.0},
	{"Origin": "Japan", "Horsepower": 88, "Miles_per_Gallon": "27"},
}

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry()
	require.NoError(t, err)
	return r
}

func TestInvokeVegaSpec(t *testing.T) {
	r := newRegistry(t)

	result, err := r.Invoke(context.Background(), GenerateVegaSpecName,
		`{"chart_type":"point","x_field":"Horsepower","y_field":"Miles_per_Gallon","color_field":"Origin","is_histogram":0}`, dataset)
	require.NoError(t, err)

	env, ok := result.(chart.Envelope)
	require.True(t, ok, "expected a chart envelope, got %T", result)
	assert.Equal(t, "point", env.VegaSpec.Mark)
	assert.Equal(t, chart.Quantitative, env.VegaSpec.Encoding.X.Type)
	require.NotNil(t, env.VegaSpec.Encoding.Color)
	assert.Equal(t, "Origin", env.VegaSpec.Encoding.Color.Field)
}

func TestDecodeVegaSpecHistogram(t *testing.T) {
	r := newRegistry(t)

	call, err := r.Decode(GenerateVegaSpecName,
		`{"chart_type":"bar","x_field":"Miles_per_Gallon","y_field":"count","color_field":"","is_histogram":1}`, nil)
	require.NoError(t, err)
	assert.Equal(t, &VegaSpecCall{ChartType: "bar", XField: "Miles_per_Gallon", YField: "count", IsHistogram: 1}, call)
	assert.Equal(t, GenerateVegaSpecName, call.ToolName())
}

func TestDecodeStatisticsInjectsDataset(t *testing.T) {
	r := newRegistry(t)

	// models often pass a placeholder for data; it is replaced with the real rows
	call, err := r.Decode(CalculateStatisticsName,
		`{"data":"csv_full","field":"Horsepower","second_field":null,"group_by":"Origin","filter_by":{"field":"Origin","value":"USA"}}`, dataset)
	require.NoError(t, err)

	sc, ok := call.(*StatisticsCall)
	require.True(t, ok, "expected *StatisticsCall, got %T", call)
	assert.Equal(t, dataset, sc.Data)
	assert.Equal(t, "Horsepower", sc.Field)
	assert.Empty(t, sc.SecondField)
	assert.Equal(t, "Origin", sc.GroupBy)
	assert.Equal(t, &stats.Filter{Field: "Origin", Value: "USA"}, sc.FilterBy)
}

func TestInvokeStatistics(t *testing.T) {
	r := newRegistry(t)

	result, err := r.Invoke(context.Background(), CalculateStatisticsName, `{"field":"Horsepower","group_by":"Origin"}`, dataset)
	require.NoError(t, err)

	grouped, ok := result.(stats.Grouped)
	require.True(t, ok, "expected grouped statistics, got %T", result)
	assert.InDelta(t, 147.5, grouped["USA"].Mean, 1e-9)
	assert.InDelta(t, 91.5, grouped["Japan"].Mean, 1e-9)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"USA":{"mean":147.5,"median":147.5,"range":35}`)
}

func TestInvokeStatisticsError(t *testing.T) {
	r := newRegistry(t)

	_, err := r.Invoke(context.Background(), CalculateStatisticsName, `{"field":"Weight"}`, dataset)
	assert.ErrorIs(t, err, stats.ErrFieldNotFound)
}

func TestDecodeErrors(t *testing.T) {
	r := newRegistry(t)

	tests := []struct {
		name      string
		tool      string
		arguments string
		want      error
	}{
		{"unknown tool", "DeleteDataset", `{}`, ErrUnknownTool},
		{"case sensitive lookup", "generatevegaspec", `{}`, ErrUnknownTool},
		{"malformed json", GenerateVegaSpecName, `{"chart_type":`, ErrInvalidArguments},
		{"missing required", GenerateVegaSpecName, `{"chart_type":"bar"}`, ErrInvalidArguments},
		{"extra property", GenerateVegaSpecName, `{"chart_type":"bar","x_field":"a","y_field":"b","color_field":"","is_histogram":0,"title":"x"}`, ErrInvalidArguments},
		{"wrong type", GenerateVegaSpecName, `{"chart_type":"bar","x_field":"a","y_field":"b","color_field":"","is_histogram":"yes"}`, ErrInvalidArguments},
		{"statistics without field", CalculateStatisticsName, `{}`, ErrInvalidArguments},
		{"null chart arguments", GenerateVegaSpecName, `null`, ErrInvalidArguments},
		{"null statistics arguments", CalculateStatisticsName, `null`, ErrInvalidArguments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() { _, err = r.Decode(tt.tool, tt.arguments, dataset) })
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestInvokeInvalidHistogramFlag(t *testing.T) {
	r := newRegistry(t)

	_, err := r.Invoke(context.Background(), GenerateVegaSpecName,
		`{"chart_type":"bar","x_field":"a","y_field":"b","color_field":"","is_histogram":3}`, nil)
	assert.ErrorIs(t, err, chart.ErrInvalidHistogramFlag)
}
