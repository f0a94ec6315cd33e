package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	apperrors "github.com/folioworks/folio/internal/platform/errors"
	"github.com/folioworks/folio/internal/registry/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type pageViewBody struct {
	ID         uint64   `json:"id"`
	Name       string   `json:"name"`
	Thumbnail  string   `json:"thumbnail"`
	Content    string   `json:"content"`
	Immutable  bool     `json:"immutable"`
	UpdateFee  uint64   `json:"update_fee"`
	PolicyKind string   `json:"policy_kind"`
	Owners     []string `json:"owners,omitempty"`
	Threshold  int      `json:"threshold,omitempty"`
	Balance    uint64   `json:"balance"`
	Likes      uint64   `json:"likes"`
	Dislikes   uint64   `json:"dislikes"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
}

func pageView(page domain.Page) pageViewBody {
	return pageViewBody{
		ID:         page.ID,
		Name:       page.Name,
		Thumbnail:  page.Thumbnail,
		Content:    page.Content,
		Immutable:  page.Immutable,
		UpdateFee:  page.UpdateFee,
		PolicyKind: page.Policy.Kind.String(),
		Owners:     page.Policy.Owners,
		Threshold:  page.Policy.Threshold,
		Balance:    page.Balance,
		Likes:      page.LikeCount,
		Dislikes:   page.DislikeCount,
		CreatedAt:  page.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  page.UpdatedAt.Format(time.RFC3339),
	}
}

type updateRequestView struct {
	PageID     uint64 `json:"page_id"`
	Seq        uint64 `json:"seq"`
	Name       string `json:"name,omitempty"`
	Thumbnail  string `json:"thumbnail,omitempty"`
	Content    string `json:"content,omitempty"`
	Submitter  string `json:"submitter"`
	Approvals  int    `json:"approvals"`
	Executed   bool   `json:"executed"`
	CreatedAt  string `json:"created_at"`
	ExecutedAt string `json:"executed_at,omitempty"`
}

func requestView(request domain.UpdateRequest) updateRequestView {
	view := updateRequestView{
		PageID:    request.PageID,
		Seq:       request.Seq,
		Name:      request.Fields.Name,
		Thumbnail: request.Fields.Thumbnail,
		Content:   request.Fields.Content,
		Submitter: request.Submitter,
		Approvals: request.Approvals,
		Executed:  request.Executed,
		CreatedAt: request.CreatedAt.Format(time.RFC3339),
	}
	if request.ExecutedAt != nil {
		view.ExecutedAt = request.ExecutedAt.Format(time.RFC3339)
	}
	return view
}

type reactionViewBody struct {
	PageID    uint64 `json:"page_id"`
	Principal string `json:"principal"`
	Liked     bool   `json:"liked"`
	Disliked  bool   `json:"disliked"`
}

func reactionView(reaction domain.Reaction) reactionViewBody {
	return reactionViewBody{
		PageID:    reaction.PageID,
		Principal: reaction.Principal,
		Liked:     reaction.Liked,
		Disliked:  reaction.Disliked,
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, into any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(into); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Code:    string(apperrors.CodeUnknown),
			Message: "invalid request body",
		})
		return false
	}
	return true
}

type errorBody struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func writeBadID(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusBadRequest, errorBody{
		Code:    string(apperrors.CodeUnknown),
		Message: "invalid path parameter",
	})
}

// writeError maps a domain error through the shared gRPC status codes to
// an HTTP status, carrying the machine code and metadata in the body and
// the locale-formatted message from the i18n catalog.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	grpcErr := apperrors.HandleError(err, r.Header.Get("Accept-Language"))
	statusCode := http.StatusInternalServerError
	message := "an unexpected error occurred"
	if st, ok := status.FromError(grpcErr); ok {
		statusCode = httpStatusFromGRPC(st.Code())
		message = st.Message()
	}
	writeJSON(w, statusCode, errorBody{
		Code:     string(apperrors.GetCode(err)),
		Message:  message,
		Metadata: apperrors.GetMetadata(err),
	})
}

func httpStatusFromGRPC(code codes.Code) int {
	switch code {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.FailedPrecondition, codes.Aborted:
		return http.StatusConflict
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
