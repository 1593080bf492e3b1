// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ritrovo/ritrovo/internal/domain/feature"
	"github.com/ritrovo/ritrovo/internal/domain/model"
)

// RecommendationDependencies defines the interface for recommendation operations.
type RecommendationDependencies interface {
	Recommend(ctx context.Context, targetID string, features feature.Set) (model.Recommendation, error)
}

// RecommendationsHandler handles recommendation requests.
type RecommendationsHandler struct {
	deps RecommendationDependencies
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(deps RecommendationDependencies) *RecommendationsHandler {
	return &RecommendationsHandler{deps: deps}
}

// HandleGetRecommendations handles
// GET /users/{userID}/recommendations?features[0]=age&features[1]=city requests.
// A comma-separated features=age,city form is accepted as shorthand.
func (h *RecommendationsHandler) HandleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	features, err := parseFeatures(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	rec, err := h.deps.Recommend(r.Context(), userID, features)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// parseFeatures extracts the selected features from the query string,
// supporting both the indexed features[i]=... form and a comma-separated
// features=... form.
func parseFeatures(r *http.Request) (feature.Set, error) {
	query := r.URL.Query()

	var names []string
	for i := 0; ; i++ {
		v := query.Get(fmt.Sprintf("features[%d]", i))
		if v == "" {
			break
		}
		names = append(names, v)
	}
	if flat := query.Get("features"); flat != "" {
		names = append(names, strings.Split(flat, ",")...)
	}

	set := feature.NewSet()
	for _, name := range names {
		f, err := feature.Parse(strings.TrimSpace(name))
		if err != nil {
			return nil, errors.Join(ErrBadRequest, err)
		}
		set[f] = struct{}{}
	}
	return set, nil
}
