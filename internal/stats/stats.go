// Package stats computes summary statistics over rows of a tabular dataset.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrFieldNotFound    = errors.New("field not found in data")
	ErrInsufficientData = errors.New("at least two values are required")
	ErrNotNumeric       = errors.New("value is not numeric")
)

// Row maps a column name to its value, which is a number or a string.
type Row = map[string]any

type Filter struct {
	Field string `json:"field" mapstructure:"field"`
	Value string `json:"value" mapstructure:"value"`
}

type Params struct {
	Field       string
	SecondField string
	GroupBy     string
	FilterBy    *Filter
}

// Result is one of Summary, Grouped or Comparison.
type Result interface {
	isResult()
}

type Summary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Range  float64 `json:"range"`
	StdDev float64 `json:"std_dev"`
}

type GroupSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Range  float64 `json:"range"`
}

// Grouped maps each distinct group value to the statistics of its rows.
type Grouped map[string]GroupSummary

type FieldSummary struct {
	Name   string  `json:"name"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

type Comparison struct {
	Field1 FieldSummary `json:"field_1"`
	Field2 FieldSummary `json:"field_2"`
	// CorrelationCoefficient is nil when either field has zero variance.
	CorrelationCoefficient *float64 `json:"correlation_coefficient"`
}

func (Summary) isResult()    {}
func (Grouped) isResult()    {}
func (Comparison) isResult() {}

// Compute selects the statistics shape from p. A second field wins over
// grouping; with neither, the whole field is summarized.
func Compute(data []Row, p Params) (Result, error) {
	if p.Field == "" {
		return nil, fmt.Errorf("%w: field name is empty", ErrFieldNotFound)
	}
	if p.FilterBy != nil && p.FilterBy.Field != "" {
		data = filterRows(data, *p.FilterBy)
	}

	switch {
	case p.SecondField != "":
		return compare(data, p.Field, p.SecondField)
	case p.GroupBy != "":
		return group(data, p.Field, p.GroupBy)
	default:
		// empty cells are skipped here rather than rejected as non-numeric
		return summarize(data, p.Field)
	}
}

func filterRows(data []Row, f Filter) []Row {
	out := make([]Row, 0, len(data))
	for _, row := range data {
		v, ok := row[f.Field]
		if ok && v != nil && cast.ToString(v) == f.Value {
			out = append(out, row)
		}
	}
	return out
}

func summarize(data []Row, field string) (Summary, error) {
	values, err := column(data, field)
	if err != nil {
		return Summary{}, err
	}
	if len(values) < 2 {
		return Summary{}, fmt.Errorf("%w: field %q has %d value(s)", ErrInsufficientData, field, len(values))
	}
	return Summary{
		Mean:   stat.Mean(values, nil),
		Median: median(values),
		Range:  floats.Max(values) - floats.Min(values),
		StdDev: stat.StdDev(values, nil),
	}, nil
}

func group(data []Row, field, groupBy string) (Grouped, error) {
	if len(data) > 0 && !present(data, field) {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, field)
	}

	buckets := make(map[string][]float64)
	for _, row := range data {
		key, ok := row[groupBy]
		if !ok || isEmpty(key) {
			continue
		}
		var value float64
		if v, ok := row[field]; ok && !isEmpty(v) {
			f, err := toFloat(v)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", field, err)
			}
			value = f
		}
		k := cast.ToString(key)
		buckets[k] = append(buckets[k], value)
	}

	out := make(Grouped, len(buckets))
	for k, values := range buckets {
		out[k] = GroupSummary{
			Mean:   stat.Mean(values, nil),
			Median: median(values),
			Range:  floats.Max(values) - floats.Min(values),
		}
	}
	return out, nil
}

// compare pairs the two columns by position after dropping empty cells from
// each independently, so the pairs need not come from the same row.
func compare(data []Row, field, second string) (Comparison, error) {
	xs, err := column(data, field)
	if err != nil {
		return Comparison{}, err
	}
	ys, err := column(data, second)
	if err != nil {
		return Comparison{}, err
	}

	n := min(len(xs), len(ys))
	if n < 2 {
		return Comparison{}, fmt.Errorf("%w: only %d paired value(s) for %q and %q", ErrInsufficientData, n, field, second)
	}
	xs, ys = xs[:n], ys[:n]

	xMean, xStd := stat.PopMeanStdDev(xs, nil)
	yMean, yStd := stat.PopMeanStdDev(ys, nil)

	res := Comparison{
		Field1: FieldSummary{Name: field, Mean: xMean, StdDev: xStd},
		Field2: FieldSummary{Name: second, Mean: yMean, StdDev: yStd},
	}
	if xStd > 0 && yStd > 0 {
		r := clamp(stat.Correlation(xs, ys, nil), -1, 1)
		res.CorrelationCoefficient = &r
	}
	return res, nil
}

// column collects the non-empty values of field as floats.
func column(data []Row, field string) ([]float64, error) {
	values := make([]float64, 0, len(data))
	found := false
	for _, row := range data {
		v, ok := row[field]
		if !ok {
			continue
		}
		found = true
		if isEmpty(v) {
			continue
		}
		f, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field, err)
		}
		values = append(values, f)
	}
	if !found && len(data) > 0 {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, field)
	}
	return values, nil
}

func present(data []Row, field string) bool {
	for _, row := range data {
		if _, ok := row[field]; ok {
			return true
		}
	}
	return false
}

func toFloat(v any) (float64, error) {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNotNumeric, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrNotNumeric, v)
	}
	return f, nil
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
