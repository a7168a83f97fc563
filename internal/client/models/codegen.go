package models

// ModelPricing describes a generation model and its per-request cost.
type ModelPricing struct {
	ID                   int64   `json:"id"`
	ModelName            string  `json:"model_name"`
	CreditCostPerRequest float64 `json:"credit_cost_per_request"`
	Description          string  `json:"description,omitempty"`
}

// GenerateRequest is the JSON payload of POST /code/generate-code.
// Language is optional; the backend picks its default when empty.
type GenerateRequest struct {
	ModelName string `json:"model_name"`
	Prompt    string `json:"prompt"`
	Language  string `json:"language,omitempty"`
}

// CodeGeneration is one generation record. History is ordered most recent first.
type CodeGeneration struct {
	ID            int64   `json:"id"`
	UserID        int64   `json:"user_id"`
	ModelName     string  `json:"model_name"`
	Prompt        string  `json:"prompt"`
	Language      string  `json:"language,omitempty"`
	GeneratedCode string  `json:"generated_code"`
	CreditsUsed   float64 `json:"credits_used"`
	Timestamp     string  `json:"timestamp"`
}
