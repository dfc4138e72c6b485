package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sozercan/vizbot/apimodels"
	"github.com/sozercan/vizbot/internal/agent"
	"github.com/sozercan/vizbot/internal/llm"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req apimodels.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, apimodels.ChatResponse{
			Response: apimodels.ErrorAnswer(fmt.Sprintf("Invalid request: %v", err)),
		})
		return
	}

	slog.Debug("Received chat request", "userMessage", req.UserMessage, "rows", len(req.CSVFull))

	answer, err := s.agent.Run(r.Context(), agent.Input{
		UserMessage: req.UserMessage,
		DatasetInfo: req.CSVInfo,
		Dataset:     req.CSVFull,
	})

	status := http.StatusOK
	if err != nil {
		slog.Error("Chat request failed", "error", err)
		if errors.Is(err, llm.ErrProviderUnavailable) {
			status = http.StatusBadGateway
		}
	}
	if answer == nil {
		answer = apimodels.ErrorAnswer(agent.InvalidResponseMessage)
	}

	writeJSON(w, status, apimodels.ChatResponse{Response: answer})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
