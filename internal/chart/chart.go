// Package chart builds Vega-Lite specifications from field selections.
package chart

import (
	"errors"
	"fmt"
)

var ErrInvalidHistogramFlag = errors.New("is_histogram must be 0 or 1")

const (
	Quantitative = "quantitative"
	Ordinal      = "ordinal"
	Nominal      = "nominal"
)

type Channel struct {
	Field     string `json:"field,omitempty"`
	Type      string `json:"type"`
	Bin       bool   `json:"bin,omitempty"`
	Aggregate string `json:"aggregate,omitempty"`
}

type Encoding struct {
	X     Channel  `json:"x"`
	Y     Channel  `json:"y"`
	Color *Channel `json:"color,omitempty"`
}

type Spec struct {
	Mark     string   `json:"mark"`
	Encoding Encoding `json:"encoding"`
}

// Envelope is the {"vegaSpec": ...} object the web client renders.
type Envelope struct {
	VegaSpec Spec `json:"vegaSpec"`
}

type Params struct {
	ChartType   string
	XField      string
	YField      string
	ColorField  string
	IsHistogram int
}

// marks whose x axis reads as a continuous scale
var quantitativeX = map[string]bool{
	"point": true,
	"line":  true,
	"area":  true,
}

// Build returns the spec for p. A histogram is always a binned bar chart
// counting x, whatever chart type was asked for.
func Build(p Params) (Spec, error) {
	var spec Spec
	switch p.IsHistogram {
	case 0:
		xType := Ordinal
		if quantitativeX[p.ChartType] {
			xType = Quantitative
		}
		spec = Spec{
			Mark: p.ChartType,
			Encoding: Encoding{
				X: Channel{Field: p.XField, Type: xType},
				Y: Channel{Field: p.YField, Type: Quantitative},
			},
		}
	case 1:
		spec = Spec{
			Mark: "bar",
			Encoding: Encoding{
				X: Channel{Field: p.XField, Type: Quantitative, Bin: true},
				Y: Channel{Aggregate: "count", Type: Quantitative},
			},
		}
	default:
		return Spec{}, fmt.Errorf("%w, got %d", ErrInvalidHistogramFlag, p.IsHistogram)
	}

	if p.ColorField != "" {
		spec.Encoding.Color = &Channel{Field: p.ColorField, Type: Nominal}
	}
	return spec, nil
}
