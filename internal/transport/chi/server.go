package chi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/profilematch/internal/domain"
	"github.com/kailas-cloud/profilematch/internal/domain/match"
	domprofile "github.com/kailas-cloud/profilematch/internal/domain/profile"
	healthuc "github.com/kailas-cloud/profilematch/internal/usecase/health"
	profileuc "github.com/kailas-cloud/profilematch/internal/usecase/profile"
	"github.com/kailas-cloud/profilematch/internal/version"
)

const defaultMaxBatchSize = 100

const statusSuccess = "success"

// Server implements ServerInterface on top of the profile and health services.
type Server struct {
	profiles     *profileuc.Service
	health       *healthuc.Service
	logger       *zap.Logger
	maxBatchSize int
	metrics      http.Handler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(profiles *profileuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{
		profiles:     profiles,
		health:       health,
		logger:       logger,
		maxBatchSize: defaultMaxBatchSize,
		metrics:      promhttp.Handler(),
	}
}

// WithMaxBatchSize caps POST /profiles/batch.
func (s *Server) WithMaxBatchSize(n int) *Server {
	if n > 0 {
		s.maxBatchSize = n
	}
	return s
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Message: "Profile Matching Service",
		Version: version.Version,
		Status:  "running",
		Endpoints: map[string]string{
			"add_profile":      "POST /profiles",
			"add_profiles":     "POST /profiles/batch",
			"get_profile":      "GET /profiles/{profile_id}",
			"search_similar":   "POST /profiles/search",
			"get_all_profiles": "GET /profiles",
			"delete_profile":   "DELETE /profiles/{profile_id}",
			"stats":            "GET /stats",
			"health":           "GET /health",
		},
	})
}

// CreateProfile handles POST /profiles.
func (s *Server) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	in, err := inputFromRequest(req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx, usage := domain.WithUsage(r.Context())
	id, err := s.profiles.Add(ctx, in)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusCreated, ProfileResponse{
		Message:   "Profile added successfully",
		ProfileID: id,
		Status:    statusSuccess,
	})
}

// CreateProfilesBatch handles POST /profiles/batch.
func (s *Server) CreateProfilesBatch(w http.ResponseWriter, r *http.Request) {
	var req CreateProfilesBatchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if len(req.Profiles) == 0 {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "profiles must not be empty")
		return
	}
	if len(req.Profiles) > s.maxBatchSize {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed,
			fmt.Sprintf("batch size %d exceeds maximum %d", len(req.Profiles), s.maxBatchSize))
		return
	}

	inputs := make([]domprofile.Input, len(req.Profiles))
	for i, p := range req.Profiles {
		in, err := inputFromRequest(p)
		if err != nil {
			s.handleDomainError(w, r, fmt.Errorf("profiles[%d]: %w", i, err))
			return
		}
		inputs[i] = in
	}

	ctx, usage := domain.WithUsage(r.Context())
	ids, err := s.profiles.AddBatch(ctx, inputs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusCreated, BatchResponse{
		Message:    fmt.Sprintf("%d profiles added successfully", len(ids)),
		ProfileIDs: ids,
		Status:     statusSuccess,
	})
}

// SearchProfiles handles POST /profiles/search.
func (s *Server) SearchProfiles(w http.ResponseWriter, r *http.Request) {
	var req SearchProfilesRequest
	if !decodeBody(w, r, &req) {
		return
	}

	limit := profileuc.DefaultSearchLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	excludeID := ""
	if req.ExcludeID != nil {
		excludeID = *req.ExcludeID
	}

	ctx, usage := domain.WithUsage(r.Context())
	results, err := s.profiles.Search(ctx, req.QueryDescription, limit, excludeID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]SearchResultItem, len(results))
	for i := range results {
		items[i] = searchResultToAPI(&results[i])
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, SearchProfilesResponse{
		Query:        req.QueryDescription,
		Results:      items,
		TotalResults: len(items),
	})
}

// ListProfiles handles GET /profiles.
func (s *Server) ListProfiles(w http.ResponseWriter, r *http.Request, params ListProfilesParams) {
	limit := 0
	if params.Limit != nil {
		if *params.Limit < 1 {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "limit must be positive")
			return
		}
		limit = *params.Limit
	}

	profiles, err := s.profiles.List(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]Profile, len(profiles))
	for i := range profiles {
		items[i] = profileToAPI(&profiles[i])
	}
	writeJSON(w, http.StatusOK, items)
}

// GetProfile handles GET /profiles/{id}.
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request, id ProfileID) {
	p, err := s.profiles.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileToAPI(&p))
}

// DeleteProfile handles DELETE /profiles/{id}.
func (s *Server) DeleteProfile(w http.ResponseWriter, r *http.Request, id ProfileID) {
	if err := s.profiles.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{
		Message:   "Profile deleted successfully",
		ProfileID: id,
		Status:    statusSuccess,
	})
}

// GetStats handles GET /stats.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.profiles.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsToAPI(st))
}

// HealthCheck handles GET /health. Always 200, the body carries the verdict.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	resp := HealthResponse{
		Status:   string(report.Status),
		Database: report.Database,
		Error:    report.Error,
		Checks:   checks,
	}
	if report.Stats != nil {
		st := statsToAPI(*report.Stats)
		resp.Stats = &st
	}
	writeJSON(w, http.StatusOK, resp)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func inputFromRequest(req CreateProfileRequest) (domprofile.Input, error) {
	return domprofile.NewInput(req.Name, req.Description, req.Age, req.Location) //nolint:wrapcheck // message goes to the client as is
}

func profileToAPI(p *domprofile.Profile) Profile {
	return Profile{
		ID:          p.ID(),
		Name:        p.Name(),
		Description: p.Description(),
		Age:         p.Age(),
		Location:    p.Location(),
		CreatedAt:   p.CreatedAt(),
	}
}

func searchResultToAPI(r *match.Result) SearchResultItem {
	p := r.Profile()
	return SearchResultItem{
		Profile:         profileToAPI(&p),
		SimilarityScore: r.Score(),
	}
}

func statsToAPI(st profileuc.Stats) StatsResponse {
	return StatsResponse{
		TotalProfiles:    st.TotalProfiles,
		CollectionName:   st.CollectionName,
		PersistDirectory: st.PersistLocation,
	}
}
