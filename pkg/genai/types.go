package genai

import "time"

// Config 文本生成服务配置
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "http://localhost:11434",
		Model:   "default",
		Timeout: 30 * time.Second,
	}
}

// GenerateRequest is the wire request for a completion.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// GenerateResponse is the wire response for a completion.
type GenerateResponse struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
	Error string `json:"error,omitempty"`
}
