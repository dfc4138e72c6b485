package tools

const (
	GenerateVegaSpecName    = "GenerateVegaSpec"
	CalculateStatisticsName = "CalculateStatistics"
)

var vegaSpecParameters = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"chart_type": map[string]interface{}{
			"type":        "string",
			"description": "Vega-Lite mark type, e.g. bar, point, line or area. A scatter plot is point.",
		},
		"x_field": map[string]interface{}{
			"type":        "string",
			"description": "Dataset field encoded on the x axis.",
		},
		"y_field": map[string]interface{}{
			"type":        "string",
			"description": "Dataset field encoded on the y axis. Use count for a histogram.",
		},
		"color_field": map[string]interface{}{
			"type":        "string",
			"description": "Dataset field encoded as color, or an empty string for none.",
		},
		"is_histogram": map[string]interface{}{
			"type":        "integer",
			"description": "1 for a histogram of x_field, otherwise 0. A bar chart is not a histogram.",
		},
	},
	"required":             []string{"chart_type", "x_field", "y_field", "color_field", "is_histogram"},
	"additionalProperties": false,
}

var statisticsParameters = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"data": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"additionalProperties": map[string]interface{}{
					"type": []string{"number", "string", "boolean", "null"},
				},
			},
			"description": "Array of rows, each mapping field names to values. The full dataset is supplied by the server.",
		},
		"field": map[string]interface{}{
			"type":        "string",
			"description": "The field name in the dataset for which to calculate the statistics.",
		},
		"second_field": map[string]interface{}{
			"type":        "string",
			"description": "Optional second field name in the dataset for which to calculate correlation and summary statistics.",
			"nullable":    true,
		},
		"group_by": map[string]interface{}{
			"type":        "string",
			"description": "Optional field name to group data by categories.",
			"nullable":    true,
		},
		"filter_by": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"field": map[string]interface{}{"type": "string"},
				"value": map[string]interface{}{"type": "string"},
			},
			"description": "Optional field and value to filter data.",
			"nullable":    true,
		},
	},
	"required":             []string{"data", "field"},
	"additionalProperties": false,
}

var definitions = []Tool{
	{
		Name:        GenerateVegaSpecName,
		Description: "Generate a Vega-Lite chart specification for the dataset.",
		Parameters:  vegaSpecParameters,
		newCall:     func() Call { return &VegaSpecCall{} },
	},
	{
		Name: CalculateStatisticsName,
		Description: "Calculate statistics like mean, median, range, standard deviation, and correlation for specific fields " +
			"in the dataset, optionally filtering by a category or grouping by a field.",
		Parameters: statisticsParameters,
		newCall:    func() Call { return &StatisticsCall{} },
	},
}
