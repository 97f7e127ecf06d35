package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/autocarehq/autocare/internal/identity"
	"github.com/autocarehq/autocare/internal/metrics"
)

type UploadHandler struct {
	issuer  UploadIssuer
	metrics *metrics.Collector
	logger  *slog.Logger
}

func NewUploadHandler(issuer UploadIssuer, collector *metrics.Collector, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{issuer: issuer, metrics: collector, logger: logger}
}

type uploadURLRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}

type uploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ImageURL  string `json:"imageUrl"`
}

// Issue returns a pre-signed PUT URL for a fresh object key plus the public
// URL the image will have afterwards. No object exists until the client
// actually uploads.
func (h *UploadHandler) Issue(w http.ResponseWriter, r *http.Request, _ identity.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req uploadURLRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.FileName = strings.TrimSpace(req.FileName)
	req.FileType = strings.TrimSpace(req.FileType)
	if req.FileName == "" || req.FileType == "" {
		badRequest(w, "fileName and fileType are required")
		return
	}

	uploadURL, imageURL, err := h.issuer.IssueUploadURL(r.Context(), req.FileName, req.FileType)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordUploadURLIssued()
	}
	writeJSON(w, http.StatusOK, uploadURLResponse{UploadURL: uploadURL, ImageURL: imageURL})
}
