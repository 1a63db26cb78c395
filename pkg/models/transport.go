package models

import "go-screenshot-optimizer/internal/optimizer"

// OptimizeBufferRequest carries an in-memory screenshot to the control API
type OptimizeBufferRequest struct {
	// Data is the base64 encoded raw screenshot
	Data string `json:"data" binding:"required"`
	// Destination is where the optimized artifact should be written
	Destination string `json:"destination" binding:"required"`
}

// SweepResponse reports the outcome of a capture-directory sweep
type SweepResponse struct {
	Results []optimizer.Result `json:"results"`
	Stats   optimizer.Stats    `json:"stats"`
}

// ResultsResponse lists recent optimization results, newest first
type ResultsResponse struct {
	Results []optimizer.Result `json:"results"`
}

// StatsResponse combines retained-result totals with lifetime counters
type StatsResponse struct {
	History  optimizer.Stats        `json:"history"`
	Counters map[string]interface{} `json:"counters"`
}

// ErrorResponse is the uniform error body of the control API
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
