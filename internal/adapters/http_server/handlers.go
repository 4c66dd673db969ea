// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"flexreviews/internal/adapters/google"
	"flexreviews/internal/app"
	"flexreviews/internal/domain"
)

type Handlers struct {
	Q *app.ReviewService
	A *app.ApprovalService
	G *google.Client // nil when places search is not configured
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// envelope matches the upstream convention the dashboard already speaks.
type envelope struct {
	Status string `json:"status"`
	Result any    `json:"result"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/api/reviews", func(r chi.Router) {
		r.Get("/hostaway", h.listReviews)
		r.Get("/categories", h.listCategories)
		r.Get("/analytics", h.analytics)
		r.Get("/approvals", h.listApprovals)
		r.Get("/public", h.publicReviews)
		r.Patch("/{id}/approval", h.setApproval)
	})

	s.mux.Route("/api/google", func(r chi.Router) {
		r.Get("/search", h.googleSearch)
		r.Get("/details", h.googleDetails)
		r.Get("/reviews", h.googleReviews)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeResult(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(envelope{Status: "success", Result: v}); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(envelope{Status: "success", Result: v})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeConditional(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// parseFilter decodes the filter clauses from query params. Category bounds
// arrive as repeated range=<category>:<min>:<max>; the category name is
// everything before the last two colon fields, so names containing a colon
// or a dash still parse.
func parseFilter(q url.Values) (domain.Filter, error) {
	f := domain.Filter{
		Property:   q.Get("property"),
		Channel:    q.Get("channel"),
		SearchText: q.Get("search"),
	}

	switch ds := q.Get("displayStatus"); ds {
	case "", string(domain.DisplayAll):
		f.DisplayStatus = domain.DisplayAll
	case string(domain.DisplayShown), string(domain.DisplayHidden):
		f.DisplayStatus = domain.DisplayStatus(ds)
	default:
		return domain.Filter{}, errors.New("displayStatus must be one of all, shown, hidden")
	}

	for _, raw := range q["range"] {
		j := strings.LastIndexByte(raw, ':')
		if j < 0 {
			return domain.Filter{}, errors.New("range must be <category>:<min>:<max>")
		}
		i := strings.LastIndexByte(raw[:j], ':')
		if i <= 0 {
			return domain.Filter{}, errors.New("range must be <category>:<min>:<max>")
		}
		minV, errMin := strconv.ParseFloat(raw[i+1:j], 64)
		maxV, errMax := strconv.ParseFloat(raw[j+1:], 64)
		if errMin != nil || errMax != nil || minV > maxV {
			return domain.Filter{}, errors.New("range bounds must be numbers with min <= max")
		}
		if f.CategoryRanges == nil {
			f.CategoryRanges = map[string]domain.RatingRange{}
		}
		f.CategoryRanges[raw[:i]] = domain.RatingRange{Min: minV, Max: maxV}
	}
	return f, nil
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}
	key := app.ParseSortKey(r.URL.Query().Get("sort"))

	out, err := h.Q.Query(r.Context(), f, key)
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Upstream failure", "could not load reviews")
		return
	}
	writeConditional(w, r, out)
}

func (h *Handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Q.Categories(r.Context())
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Upstream failure", "could not load reviews")
		return
	}
	// the dashboard seeds its range sliders from the unrestricted bounds
	writeResult(w, map[string]any{
		"categories": cats,
		"ranges":     app.DefaultCategoryRanges(cats),
	})
}

func (h *Handlers) analytics(w http.ResponseWriter, r *http.Request) {
	d, err := h.Q.Dashboard(r.Context(), r.URL.Query().Get("property"))
	if errors.Is(err, domain.ErrNoData) {
		writeProblem(w, http.StatusNotFound, "No Data", "no reviews match the selection")
		return
	}
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Upstream failure", "could not load reviews")
		return
	}
	writeResult(w, d)
}

func (h *Handlers) listApprovals(w http.ResponseWriter, r *http.Request) {
	m, err := h.A.Approvals(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Approval store failure", "could not read approvals")
		return
	}
	writeResult(w, m)
}

func (h *Handlers) publicReviews(w http.ResponseWriter, r *http.Request) {
	property := r.URL.Query().Get("property")
	if property == "" {
		writeProblem(w, http.StatusBadRequest, "Missing property", "property query parameter is required")
		return
	}
	out, err := h.Q.PublicReviews(r.Context(), property)
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Upstream failure", "could not load reviews")
		return
	}
	writeConditional(w, r, out)
}

func (h *Handlers) setApproval(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	var body struct {
		DisplayOnWebsite *bool `json:"displayOnWebsite"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.DisplayOnWebsite == nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "expected {\"displayOnWebsite\": bool}")
		return
	}
	// no optimistic update: surface the failure and keep prior state
	if err := h.A.SetApproval(r.Context(), id, *body.DisplayOnWebsite); err != nil {
		log.Error().Int64("id", id).Err(err).Msg("approval update failed")
		writeProblem(w, http.StatusServiceUnavailable, "Approval update failed", "the change was not saved; try again")
		return
	}
	writeResult(w, map[string]any{"id": id, "displayOnWebsite": *body.DisplayOnWebsite})
}

// ---- Google places proxy ----

func (h *Handlers) requireGoogle(w http.ResponseWriter) bool {
	if h.G == nil {
		writeProblem(w, http.StatusServiceUnavailable, "Places search unavailable", "no Google API key configured")
		return false
	}
	return true
}

func (h *Handlers) googleSearch(w http.ResponseWriter, r *http.Request) {
	if !h.requireGoogle(w) {
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeProblem(w, http.StatusBadRequest, "Missing query", "q query parameter is required")
		return
	}
	places, err := h.G.Search(r.Context(), q)
	if errors.Is(err, google.ErrNoResults) {
		writeResult(w, []google.Place{})
		return
	}
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Places search failed", "upstream error")
		return
	}
	writeResult(w, places)
}

func (h *Handlers) googleDetails(w http.ResponseWriter, r *http.Request) {
	if !h.requireGoogle(w) {
		return
	}
	placeID := r.URL.Query().Get("placeId")
	if placeID == "" {
		writeProblem(w, http.StatusBadRequest, "Missing placeId", "placeId query parameter is required")
		return
	}
	details, err := h.G.Details(r.Context(), placeID)
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Place details failed", "upstream error")
		return
	}
	writeResult(w, details)
}

func (h *Handlers) googleReviews(w http.ResponseWriter, r *http.Request) {
	if !h.requireGoogle(w) {
		return
	}
	placeID := r.URL.Query().Get("placeId")
	if placeID == "" {
		writeProblem(w, http.StatusBadRequest, "Missing placeId", "placeId query parameter is required")
		return
	}
	name, raws, err := h.G.Reviews(r.Context(), placeID)
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Place reviews failed", "upstream error")
		return
	}
	if r.URL.Query().Get("normalize") == "1" {
		writeResult(w, google.NormalizeReviews(name, raws))
		return
	}
	writeResult(w, raws)
}
