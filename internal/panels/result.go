// Package panels implements the simulated demo panels: registration,
// document upload and the oracle registry lookup. Nothing is stored.
package panels

// Result is the outcome shown under a panel.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
	Status  string `json:"status,omitempty"`
}

func failed(message string) Result {
	return Result{Message: message}
}
