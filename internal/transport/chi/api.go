package chi

import "time"

// ErrorResponseCode is the machine-readable error code in ErrorResponse.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed ErrorResponseCode = "validation_failed"
	ErrorResponseCodeProfileNotFound  ErrorResponseCode = "profile_not_found"
	ErrorResponseCodeUnauthorized     ErrorResponseCode = "unauthorized"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
// Detail repeats Message for clients written against {"detail": "..."} errors.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
	Detail  string            `json:"detail"`
}

// CreateProfileRequest is the body of POST /profiles.
type CreateProfileRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Age         *int    `json:"age,omitempty"`
	Location    *string `json:"location,omitempty"`
}

// CreateProfilesBatchRequest is the body of POST /profiles/batch.
type CreateProfilesBatchRequest struct {
	Profiles []CreateProfileRequest `json:"profiles"`
}

// SearchProfilesRequest is the body of POST /profiles/search.
type SearchProfilesRequest struct {
	QueryDescription string  `json:"query_description"`
	Limit            *int    `json:"limit,omitempty"`
	ExcludeID        *string `json:"exclude_id,omitempty"`
}

// ListProfilesParams holds query parameters of GET /profiles.
type ListProfilesParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// ProfileID is the {id} path parameter.
type ProfileID = string

// Profile is a stored profile.
type Profile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Age         *int      `json:"age"`
	Location    *string   `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProfileResponse acknowledges a single-profile write.
type ProfileResponse struct {
	Message   string `json:"message"`
	ProfileID string `json:"profile_id"`
	Status    string `json:"status"`
}

// BatchResponse acknowledges a batch insert. IDs are in request order.
type BatchResponse struct {
	Message    string   `json:"message"`
	ProfileIDs []string `json:"profile_ids"`
	Status     string   `json:"status"`
}

// SearchResultItem is a matched profile with its similarity in [0,1].
type SearchResultItem struct {
	Profile
	SimilarityScore float64 `json:"similarity_score"`
}

// SearchProfilesResponse is the body of POST /profiles/search.
type SearchProfilesResponse struct {
	Query        string             `json:"query"`
	Results      []SearchResultItem `json:"results"`
	TotalResults int                `json:"total_results"`
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	TotalProfiles    int    `json:"total_profiles"`
	CollectionName   string `json:"collection_name"`
	PersistDirectory string `json:"persist_directory"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string            `json:"status"`
	Database string            `json:"database"`
	Stats    *StatsResponse    `json:"stats,omitempty"`
	Error    string            `json:"error,omitempty"`
	Checks   map[string]string `json:"checks"`
}

// RootResponse is the body of GET /.
type RootResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}
