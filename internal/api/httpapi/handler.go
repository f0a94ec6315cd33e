// Package httpapi exposes the page registry over a JSON HTTP surface.
// Caller identity is taken from the X-Folio-Principal header; errors are
// mapped through the shared error codes to HTTP statuses.
package httpapi

import (
	"net/http"
	"strconv"

	"github.com/folioworks/folio/internal/registry/domain"
	"github.com/folioworks/folio/internal/registry/service"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// PrincipalHeader carries the caller's principal address.
const PrincipalHeader = "X-Folio-Principal"

const tracerName = "folio.httpapi"

// Handler serves the registry JSON API.
type Handler struct {
	registry *service.Registry
}

// New builds the API handler around a registry.
func New(registry *service.Registry) http.Handler {
	h := &Handler{registry: registry}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/pages", h.createPage)
	mux.HandleFunc("GET /v1/pages/count", h.getPageCount)
	mux.HandleFunc("GET /v1/pages/{id}", h.getPage)
	mux.HandleFunc("GET /v1/pages/{id}/content", h.getContent)
	mux.HandleFunc("GET /v1/pages/{id}/owners", h.getOwners)
	mux.HandleFunc("GET /v1/pages/{id}/balance", h.getBalance)
	mux.HandleFunc("GET /v1/pages/{id}/participants", h.getParticipants)
	mux.HandleFunc("POST /v1/pages/{id}/updates", h.submitUpdate)
	mux.HandleFunc("GET /v1/pages/{id}/updates", h.listUpdates)
	mux.HandleFunc("GET /v1/pages/{id}/updates/{seq}", h.getUpdate)
	mux.HandleFunc("POST /v1/pages/{id}/updates/{seq}/approve", h.approveUpdate)
	mux.HandleFunc("POST /v1/pages/{id}/withdraw", h.withdraw)
	mux.HandleFunc("POST /v1/pages/{id}/distribute", h.distribute)
	mux.HandleFunc("POST /v1/pages/{id}/ownership", h.changeOwnership)
	mux.HandleFunc("POST /v1/pages/{id}/vote", h.castVote)
	mux.HandleFunc("GET /v1/pages/{id}/reactions/{principal}", h.getReaction)

	return withTracing(mux)
}

// withTracing opens one span per request when a tracer provider is
// registered; with the no-op global provider it costs nothing.
func withTracing(next http.Handler) http.Handler {
	tracer := otel.Tracer(tracerName)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path)
		span.SetAttributes(attribute.String("http.method", r.Method))
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func principal(r *http.Request) string {
	return r.Header.Get(PrincipalHeader)
}

func pageID(r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	return id, err == nil
}

type createPageRequest struct {
	Name       string   `json:"name"`
	Thumbnail  string   `json:"thumbnail"`
	Content    string   `json:"content"`
	PolicyKind string   `json:"policy_kind"`
	Owners     []string `json:"owners"`
	Threshold  int      `json:"threshold"`
	UpdateFee  uint64   `json:"update_fee"`
	Immutable  bool     `json:"immutable"`
}

func (h *Handler) createPage(w http.ResponseWriter, r *http.Request) {
	var body createPageRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	page, err := h.registry.CreatePage(r.Context(), service.CreatePageParams{
		Name:       body.Name,
		Thumbnail:  body.Thumbnail,
		Content:    body.Content,
		PolicyKind: domain.ParsePolicyKind(body.PolicyKind),
		Owners:     body.Owners,
		Threshold:  body.Threshold,
		UpdateFee:  body.UpdateFee,
		Immutable:  body.Immutable,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pageView(page))
}

func (h *Handler) getPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pageID(r)
	if !ok {
		writeBadID(w, r)
		return
	}
	page, err := h.registry.GetPageInfo(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageView(page))
}

func (h *Handler) getContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pageID(r)
	if !ok {
		writeBadID(w, r)
		return
	}
	content, err := h.registry.GetCurrentContent(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": content})
}

func (h *Handler) getOwners(w http.ResponseWriter, r *http.Request) {
	id, ok := pageID(r)
	if !ok {
		writeBadID(w, r)
		return
	}
	owners, err := h.registry.GetOwners(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"owners": owners})
}

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := pageID(r)
	if !ok {
		writeBadID(w, r)
		return
	}
	balance, err := h.registry.GetBalance(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"balance": balance})
}

func (h *Handler) getPageCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.registry.GetPageCount(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

func (h *Handler) getParticipants(w http.ResponseWriter, r *http.Request) {
	id, ok := pageID(r)
	if !ok {
		writeBadID(w, r)
		return
	}
	participants, err := h.registry.ListParticipants(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"participants": participants})
}

type submitUpdateRequest struct {
	Name      string `json:"name"`
	Thumbnail string `json:"thumbnail"`
	Content   string `json:"content"`
	Fee       uint64 `json:"fee"`
}

func (h *Handler) submitUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pageID(r)
	if !ok {
		writeBadID(w, r)
		return
	}
	var body submitUpdateRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	request, err := h.registry.SubmitUpdate(r.Context(), service.SubmitUpdateParams{
		PageID: id,
		Fields: domain.UpdateFields{
			Name:      body.Name,
			Thumbnail: body.Thumbnail,
			Content:   body.Content,
		},
		Fee:    body.Fee,
		Caller: principal(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, requestView(request))
}

func (h *Handler) listUpdates(w http.ResponseWriter, r *http.Request) {
	id, ok := pageID(r)
	if !ok {
		writeBadID(w, r)
		return
	}
	requests, err := h.registry.ListUpdateRequests(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]updateRequestView, 0, len(requests))
	for _, request := range requests {
		views = append(views, requestView(request))
	}
	writeJSON(w, http.StatusOK, map[string][]updateRequestView{"requests": views})
}

func (h *Handler) getUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pageID(r)
	if !ok {
		writeBadID(w, r)
		return
	}
	seq, err := strconv.ParseUint(r.PathValue("seq"), 10, 64)
	if err != nil {
		writeBadID(w, r)
		return
	}
	request, err := h.registry.GetUpdateRequest(r.Context(), id, seq)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requestView(request))
}

func (h *Handler) approveUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pageID(r)
	if !ok {
		writeBadID(w, r)
		return
	}
	seq, err := strconv.ParseUint(r.PathValue("seq"), 10, 64)
	if err != nil {
		writeBadID(w, r)
		return
	}
	request, err := h.registry.ApproveRequest(r.Context(), id, seq, principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requestView(request))
}

func (h *Handler) withdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := pageID(r)
	if !ok {
		writeBadID(w, r)
		return
	}
	if err := h.registry.WithdrawFees(r.Context(), id, principal(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "withdrawn"})
}

func (h *Handler) distribute(w http.ResponseWriter, r *http.Request) {
	id, ok := pageID(r)
	if !ok {
		writeBadID(w, r)
		return
	}
	winner, err := h.registry.DistributeTreasury(r.Context(), id, principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"winner": winner})
}

type changeOwnershipRequest struct {
	PolicyKind string   `json:"policy_kind"`
	Owners     []string `json:"owners"`
	Threshold  int      `json:"threshold"`
}

func (h *Handler) changeOwnership(w http.ResponseWriter, r *http.Request) {
	id, ok := pageID(r)
	if !ok {
		writeBadID(w, r)
		return
	}
	var body changeOwnershipRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	page, err := h.registry.ChangeOwnership(r.Context(), id, domain.ParsePolicyKind(body.PolicyKind), body.Owners, body.Threshold, principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageView(page))
}

type castVoteRequest struct {
	Kind string `json:"kind"`
}

func (h *Handler) castVote(w http.ResponseWriter, r *http.Request) {
	id, ok := pageID(r)
	if !ok {
		writeBadID(w, r)
		return
	}
	var body castVoteRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	var kind domain.ReactionKind
	switch body.Kind {
	case "like":
		kind = domain.ReactionKindLike
	case "dislike":
		kind = domain.ReactionKindDislike
	}
	reaction, err := h.registry.CastVote(r.Context(), id, principal(r), kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reactionView(reaction))
}

func (h *Handler) getReaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pageID(r)
	if !ok {
		writeBadID(w, r)
		return
	}
	reaction, err := h.registry.GetReaction(r.Context(), id, r.PathValue("principal"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reactionView(reaction))
}
