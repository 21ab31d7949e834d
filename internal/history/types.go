// Package history records uploads and questions in the local database so a
// contract identifier outlives the session that obtained it.
package history

import "time"

// Upload is one successful document upload.
type Upload struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentHash string    `json:"content_hash"`
	Size        int64     `json:"size"`
	ContractID  string    `json:"contract_id"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Question is one answered question. ContractID is empty when the question
// was asked without a contract.
type Question struct {
	ID           string    `json:"id"`
	ContractID   string    `json:"contract_id,omitempty"`
	Question     string    `json:"question"`
	Answer       string    `json:"answer"`
	MatchedChunk string    `json:"matched_chunk,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListFilter narrows List queries.
type ListFilter struct {
	ContractID string
	Limit      int
}
