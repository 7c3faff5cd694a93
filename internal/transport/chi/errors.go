package chi

import (
	"encoding/json"
	"net/http"
	"strconv"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/profilematch/internal/domain"
)

// handleDomainError maps an error kind to a status code.
// Validation messages are built by the domain and safe to return; internal details never reach the client.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.logger.With(zap.String("request_id", chiMiddleware.GetReqID(r.Context())))

	switch domain.KindOf(err) {
	case domain.KindValidation:
		log.Warn("validation error", zap.Error(err))
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
	case domain.KindNotFound:
		log.Warn("domain error", zap.Error(err))
		writeError(w, http.StatusNotFound, ErrorResponseCodeProfileNotFound, domain.ErrProfileNotFound.Error())
	default:
		log.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
	}
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Calls > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.Tokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
		Detail:  message,
	})
}
