package apimodels

import "github.com/sozercan/vizbot/internal/stats"

type ChatRequest struct {
	// The user's natural language question
	UserMessage string `json:"user_message"`

	// Description of the dataset with a few sample rows, used only for prompting
	CSVInfo string `json:"csv_info"`

	// Every row of the dataset, used for computation
	CSVFull []stats.Row `json:"csv_full"`
}
