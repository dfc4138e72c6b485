package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cars() []Row {
	return []Row{
		{"Name": "chevrolet chevelle", "Origin": "USA", "Horsepower": 130.0, "Miles_per_Gallon": 18.0, "Cylinders": 8},
		{"Name": "buick skylark", "Origin": "USA", "Horsepower": 165.0, "Miles_per_Gallon": 15.0, "Cylinders": 8},
		{"Name": "toyota corona", "Origin": "Japan", "Horsepower": 95.0, "Miles_per_Gallon": 24.0, "Cylinders": 4},
		{"Name": "datsun pl510", "Origin": "Japan", "Horsepower": "88", "Miles_per_Gallon": 27.0, "Cylinders": 4},
		{"Name": "vw 1131", "Origin": "Europe", "Horsepower": 46.0, "Miles_per_Gallon": 26.0, "Cylinders": 4},
		{"Name": "citroen ds-21", "Origin": "", "Horsepower": 115.0, "Miles_per_Gallon": nil, "Cylinders": 4},
	}
}

func TestSummary(t *testing.T) {
	data := []Row{{"v": 1.0}, {"v": 2.0}, {"v": "3"}, {"v": 4.0}, {"other": 9.0}}

	res, err := Compute(data, Params{Field: "v"})
	require.NoError(t, err)

	s, ok := res.(Summary)
	require.True(t, ok, "expected a Summary, got %T", res)
	assert.InDelta(t, 2.5, s.Mean, 1e-9)
	assert.InDelta(t, 2.5, s.Median, 1e-9)
	assert.InDelta(t, 3.0, s.Range, 1e-9)
	// sample standard deviation divides by N-1
	assert.InDelta(t, math.Sqrt(5.0/3.0), s.StdDev, 1e-9)
}

func TestSummarySkipsEmptyCells(t *testing.T) {
	res, err := Compute(cars(), Params{Field: "Miles_per_Gallon"})
	require.NoError(t, err)
	s := res.(Summary)
	assert.InDelta(t, 22.0, s.Mean, 1e-9)
	assert.InDelta(t, 24.0, s.Median, 1e-9)
	assert.InDelta(t, 12.0, s.Range, 1e-9)
}

func TestSummaryErrors(t *testing.T) {
	_, err := Compute(cars(), Params{Field: "Acceleration"})
	assert.ErrorIs(t, err, ErrFieldNotFound)

	_, err = Compute([]Row{{"v": 1.0}}, Params{Field: "v"})
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = Compute(cars(), Params{Field: "Name"})
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, err = Compute(cars(), Params{})
	assert.ErrorIs(t, err, ErrFieldNotFound)
}

func TestFilter(t *testing.T) {
	res, err := Compute(cars(), Params{Field: "Horsepower", FilterBy: &Filter{Field: "Origin", Value: "USA"}})
	require.NoError(t, err)
	s := res.(Summary)
	assert.InDelta(t, 147.5, s.Mean, 1e-9)
	assert.InDelta(t, 35.0, s.Range, 1e-9)
}

func TestFilterComparesStringForm(t *testing.T) {
	res, err := Compute(cars(), Params{Field: "Horsepower", FilterBy: &Filter{Field: "Cylinders", Value: "8"}})
	require.NoError(t, err)
	assert.InDelta(t, 147.5, res.(Summary).Mean, 1e-9)
}

func TestGrouped(t *testing.T) {
	res, err := Compute(cars(), Params{Field: "Horsepower", GroupBy: "Origin"})
	require.NoError(t, err)

	g, ok := res.(Grouped)
	require.True(t, ok, "expected Grouped, got %T", res)
	assert.ElementsMatch(t, []string{"USA", "Japan", "Europe"}, keys(g))

	assert.InDelta(t, 147.5, g["USA"].Mean, 1e-9)
	assert.InDelta(t, 147.5, g["USA"].Median, 1e-9)
	assert.InDelta(t, 35.0, g["USA"].Range, 1e-9)
	assert.InDelta(t, 91.5, g["Japan"].Mean, 1e-9)
	assert.InDelta(t, 0.0, g["Europe"].Range, 1e-9)
}

func TestGroupedKeysAreDistinctNonEmptyValues(t *testing.T) {
	data := []Row{
		{"g": "a", "v": 1.0}, {"g": "b", "v": 2.0}, {"g": "a", "v": 3.0},
		{"g": "", "v": 4.0}, {"v": 5.0}, {"g": nil, "v": 6.0}, {"g": 7.0, "v": 8.0},
	}
	res, err := Compute(data, Params{Field: "v", GroupBy: "g"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "7"}, keys(res.(Grouped)))
}

func TestGroupedMissingValueCountsAsZero(t *testing.T) {
	data := []Row{{"g": "a", "v": 4.0}, {"g": "a"}}
	res, err := Compute(data, Params{Field: "v", GroupBy: "g"})
	require.NoError(t, err)
	g := res.(Grouped)
	assert.InDelta(t, 2.0, g["a"].Mean, 1e-9)
	assert.InDelta(t, 4.0, g["a"].Range, 1e-9)
}

func TestGroupedWithFilter(t *testing.T) {
	res, err := Compute(cars(), Params{Field: "Horsepower", GroupBy: "Origin", FilterBy: &Filter{Field: "Cylinders", Value: "4"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Japan", "Europe"}, keys(res.(Grouped)))
}

func TestGroupedFieldMissing(t *testing.T) {
	_, err := Compute(cars(), Params{Field: "Weight", GroupBy: "Origin"})
	assert.ErrorIs(t, err, ErrFieldNotFound)
}

func TestComparison(t *testing.T) {
	data := []Row{{"x": 1.0, "y": 2.0}, {"x": 2.0, "y": 4.0}, {"x": 3.0, "y": 6.0}, {"x": 4.0, "y": 8.0}}
	res, err := Compute(data, Params{Field: "x", SecondField: "y", GroupBy: "ignored"})
	require.NoError(t, err)

	c, ok := res.(Comparison)
	require.True(t, ok, "second field must take precedence over grouping, got %T", res)
	assert.Equal(t, "x", c.Field1.Name)
	assert.Equal(t, "y", c.Field2.Name)
	assert.InDelta(t, 2.5, c.Field1.Mean, 1e-9)
	assert.InDelta(t, 5.0, c.Field2.Mean, 1e-9)
	// population standard deviation divides by N
	assert.InDelta(t, math.Sqrt(1.25), c.Field1.StdDev, 1e-9)
	assert.InDelta(t, math.Sqrt(5.0), c.Field2.StdDev, 1e-9)
	require.NotNil(t, c.CorrelationCoefficient)
	assert.InDelta(t, 1.0, *c.CorrelationCoefficient, 1e-9)
}

func TestComparisonTruncatesByPosition(t *testing.T) {
	data := []Row{
		{"x": 1.0, "y": ""},
		{"x": 2.0, "y": 10.0},
		{"x": 3.0, "y": 20.0},
		{"x": 4.0},
	}
	res, err := Compute(data, Params{Field: "x", SecondField: "y"})
	require.NoError(t, err)
	c := res.(Comparison)
	// y has two values, so x is cut to its first two: 1 and 2
	assert.InDelta(t, 1.5, c.Field1.Mean, 1e-9)
	assert.InDelta(t, 15.0, c.Field2.Mean, 1e-9)
}

func TestComparisonCorrelationBounds(t *testing.T) {
	res, err := Compute(cars(), Params{Field: "Horsepower", SecondField: "Miles_per_Gallon"})
	require.NoError(t, err)
	c := res.(Comparison)
	require.NotNil(t, c.CorrelationCoefficient)
	assert.GreaterOrEqual(t, *c.CorrelationCoefficient, -1.0)
	assert.LessOrEqual(t, *c.CorrelationCoefficient, 1.0)
	assert.Less(t, *c.CorrelationCoefficient, 0.0)
}

func TestComparisonZeroVariance(t *testing.T) {
	data := []Row{{"x": 1.0, "y": 3.0}, {"x": 2.0, "y": 3.0}, {"x": 3.0, "y": 3.0}}
	res, err := Compute(data, Params{Field: "x", SecondField: "y"})
	require.NoError(t, err)
	assert.Nil(t, res.(Comparison).CorrelationCoefficient)
}

func TestComparisonErrors(t *testing.T) {
	_, err := Compute(cars(), Params{Field: "Horsepower", SecondField: "Weight"})
	assert.ErrorIs(t, err, ErrFieldNotFound)

	_, err = Compute([]Row{{"x": 1.0, "y": 1.0}}, Params{Field: "x", SecondField: "y"})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func keys(g Grouped) []string {
	out := make([]string, 0, len(g))
	for k := range g {
		out = append(out, k)
	}
	return out
}
