package llm_service

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GroqError represents the error structure returned by the Groq API
// (OpenAI-compatible wire format).
type GroqError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

type GroqHTTPError struct {
	StatusCode int
	Message    string
	ErrorType  string
	RawBody    string
}

func (e *GroqHTTPError) Error() string {
	return fmt.Sprintf("Groq API error (HTTP %d): %s (Type: %s)", e.StatusCode, e.Message, e.ErrorType)
}

// extractGroqErrorDetails extracts error information from Groq API responses
func extractGroqErrorDetails(resp *http.Response) (string, *GroqError) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil
	}

	var groqErr GroqError
	if err := json.Unmarshal(body, &groqErr); err == nil && groqErr.Error.Message != "" {
		return string(body), &groqErr
	}

	return string(body), nil
}
