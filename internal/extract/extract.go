// Package extract recovers structured answers from free-text model output.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ChartKey is the key a chart answer carries at its top level.
const ChartKey = "vegaSpec"

var fencedJSON = regexp.MustCompile("(?s)```json\\s+(\\{.*?\\})\\s+```")

// FencedJSON returns the object inside the first ```json fenced block of text.
func FencedJSON(text string) (map[string]any, bool) {
	m := fencedJSON.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	return JSONObject(m[1])
}

// ChartAnswer returns the fenced JSON object of text when it holds a chart
// specification. Missing or malformed blocks are not an error.
func ChartAnswer(text string) (map[string]any, bool) {
	obj, ok := FencedJSON(text)
	if !ok {
		return nil, false
	}
	if _, ok := ChartSpec(obj); !ok {
		return nil, false
	}
	return obj, true
}

// ChartSpec returns the chart specification under ChartKey. Only a JSON
// object counts; null or scalar values do not.
func ChartSpec(obj map[string]any) (map[string]any, bool) {
	spec, ok := obj[ChartKey].(map[string]any)
	if !ok || spec == nil {
		return nil, false
	}
	return spec, true
}

// JSONObject parses text as a single JSON object.
func JSONObject(text string) (map[string]any, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
