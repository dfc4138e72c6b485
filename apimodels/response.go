package apimodels

type ChatResponse struct {
	Response *Answer `json:"response"`
}

// Answer is the final result of one request. Exactly one field is set.
type Answer struct {
	// A Vega-Lite specification, either built by the chart tool or taken
	// from the model's reply
	VegaSpec any `json:"vegaSpec,omitempty"`

	// The model's text answer, or a parsed object it returned
	Statistics any `json:"statistics,omitempty"`

	// A user-facing failure message
	Error string `json:"error,omitempty"`
}

func ChartAnswer(spec any) *Answer {
	return &Answer{VegaSpec: spec}
}

func StatisticsAnswer(stats any) *Answer {
	return &Answer{Statistics: stats}
}

func ErrorAnswer(msg string) *Answer {
	return &Answer{Error: msg}
}
