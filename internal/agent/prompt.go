package agent

import (
	"fmt"
	"strings"
)

var SystemPrompt = `You are a data assistant that can create Vega-Lite specifications and perform data analysis.
You will be given a user message with instructions and a sample of the dataset.
Use GenerateVegaSpec to generate the Vega-Lite specification when the user asks for a chart.
Use CalculateStatistics to calculate statistics such as mean, median, range or standard deviation when the user asks for an analysis,
for example "What is the average worldwide gross for the movies?".
If the user wants both an analysis and a chart, call both functions.
If the user says something unrelated to data analysis, ask them to keep their questions relevant to data analysis.

In Vega-Lite a scatter plot has a chart_type of 'point'.
A histogram has a chart_type of 'bar', a y_field of count, and an is_histogram of 1.
If the user does not want a histogram then is_histogram = 0.
A bar chart is not a histogram; they are not the same thing.

For the data argument of CalculateStatistics pass the string 'csv_full'; the server substitutes the full dataset.

The words 'average' and 'expected value' are equivalent to the word 'mean'.`

// composePrompt builds the user turn from the question and the dataset sample.
func composePrompt(userMessage, datasetInfo string) string {
	return fmt.Sprintf("User Message: %s\n\nDataset Info: %s", userMessage, datasetInfo)
}

// requestedStatistic names the statistic a question asks for, if any. It is
// only logged.
func requestedStatistic(question string) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "mean"), strings.Contains(q, "average"), strings.Contains(q, "expected value"):
		return "mean"
	case strings.Contains(q, "median"):
		return "median"
	case strings.Contains(q, "range"):
		return "range"
	}
	return ""
}
