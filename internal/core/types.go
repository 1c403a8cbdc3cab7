// Package core provides shared types and the error taxonomy for the proxy.
package core

// Action types accepted on the /api/ollama-action endpoint.
const (
	ActionGenerate = "generate"
	ActionChat     = "chat"
	ActionPull     = "pull"
	ActionDelete   = "delete"
)

// KnownAction reports whether s is one of the dispatchable action types.
func KnownAction(s string) bool {
	switch s {
	case ActionGenerate, ActionChat, ActionPull, ActionDelete:
		return true
	}
	return false
}

// ActionRequest is the client-submitted intent decoded from the request body.
// It lives for exactly one request and is never persisted.
type ActionRequest struct {
	ActionType string           `json:"actionType"`
	Model      string           `json:"model"`
	Prompt     string           `json:"prompt,omitempty"`
	Messages   []Message        `json:"messages,omitempty"`
	Params     GenerationParams `json:"params"`
}

// Message is a single turn in a chat history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerationParams holds optional sampling overrides. A zero value means the
// caller did not supply the parameter and the backend default must win.
type GenerationParams struct {
	Temperature   float64 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	TopK          int     `json:"top_k,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	NumPredict    int     `json:"num_predict,omitempty"`
}

// Options converts the params into the backend's options map, including only
// fields the caller actually set. Returns nil when nothing was supplied so
// the options key is omitted from the backend payload entirely.
func (p GenerationParams) Options() map[string]any {
	opts := make(map[string]any)
	if p.Temperature > 0 {
		opts["temperature"] = p.Temperature
	}
	if p.TopP > 0 {
		opts["top_p"] = p.TopP
	}
	if p.TopK > 0 {
		opts["top_k"] = p.TopK
	}
	if p.RepeatPenalty > 0 {
		opts["repeat_penalty"] = p.RepeatPenalty
	}
	if p.NumPredict > 0 {
		opts["num_predict"] = p.NumPredict
	}
	if len(opts) == 0 {
		return nil
	}
	return opts
}

// GenerateRequest is the payload sent to the backend's /api/generate endpoint.
type GenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

// ChatRequest is the payload sent to the backend's /api/chat endpoint.
type ChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

// ModelActionRequest is the payload for the backend's pull and delete
// endpoints. The backend calls the field "name", not "model".
type ModelActionRequest struct {
	Name string `json:"name"`
}

// Status is the response body of GET /api/status.
type Status struct {
	OllamaURL string `json:"ollama_url"`
	Connected bool   `json:"connected"`
	Port      string `json:"port"`
}
