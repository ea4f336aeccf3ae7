package types

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse wraps the result of a state changing call
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SearchResponse is the body of a search call
type SearchResponse struct {
	Repository string      `json:"repository"`
	Query      string      `json:"query"`
	Count      int         `json:"count"`
	Results    interface{} `json:"results"`
}

// AdvancedSearchRequest is a structured query as a list of clauses joined
// by their operators
type AdvancedSearchRequest struct {
	Clauses []ClauseRequest `json:"clauses" binding:"required,min=1,dive"`
}

// ClauseRequest is one clause of an advanced search. Operator is and, or
// or not and defaults to and.
type ClauseRequest struct {
	Operator string `json:"operator"`
	Field    string `json:"field" binding:"required"`
	Value    string `json:"value" binding:"required"`
}

// RepositoryResponse describes a configured repository
type RepositoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Layout    string `json:"layout"`
	Location  string `json:"location,omitempty"`
	URL       string `json:"url,omitempty"`
	Releases  bool   `json:"releases,omitempty"`
	Snapshots bool   `json:"snapshots,omitempty"`
	Scanned   bool   `json:"scanned,omitempty"`
}
