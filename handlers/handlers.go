// Package handlers provides HTTP request handlers for the diagnosis
// search API endpoints: fuzzy search, cascading topography filters,
// vocabulary pagination, term lookup, and health checks.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/idea4rc/diagnosis-search/interfaces"
	"github.com/idea4rc/diagnosis-search/logging"
	"github.com/idea4rc/diagnosis-search/metrics"
	"github.com/idea4rc/diagnosis-search/search"
	"github.com/idea4rc/diagnosis-search/vocabularyparser/entities"
)

const pageSize = 100

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Error("Failed to write JSON response", "error", err)
	}
}

// RespondWithError writes a JSON error response
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	})
}

// searchRequest is the POST /search body. Node IDs of 0 mean "not
// selected"; threshold defaults to 80 like the UI slider.
type searchRequest struct {
	Query     string `json:"query"`
	Threshold *int   `json:"threshold"`
	MacroID   int32  `json:"macroId"`
	GroupID   int32  `json:"groupId"`
	SiteID    int32  `json:"siteId"`
}

// resultRow is one display row. Score is null for filter-only queries.
type resultRow struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Score *int   `json:"score"`
}

type searchResponse struct {
	Total     int         `json:"total"`
	Truncated bool        `json:"truncated"`
	IDs       []string    `json:"ids"`
	IDsCSV    string      `json:"ids_csv"`
	Results   []resultRow `json:"results"`
}

// Search evaluates a fuzzy search and/or topography filter query. The
// response always carries the complete ID set; the results table is
// capped at the engine's display limit.
func Search(dataStore interfaces.DataStore, engine *search.Engine, validator interfaces.DataValidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		query := strings.TrimSpace(req.Query)
		if query != "" {
			if err := validator.ValidateInput(query); err != nil {
				RespondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		threshold := 80
		if req.Threshold != nil {
			threshold = *req.Threshold
		}

		spec := search.QuerySpec{
			Text:      query,
			MacroID:   req.MacroID,
			GroupID:   req.GroupID,
			SiteID:    req.SiteID,
			Threshold: threshold,
		}

		start := time.Now()
		result, err := engine.Query(r.Context(), spec)
		if err != nil {
			switch {
			case errors.Is(err, search.ErrInvalidQuery):
				RespondWithError(w, http.StatusBadRequest, "Provide a search term or a topography filter")
			case errors.Is(err, search.ErrInvalidFilterSelection):
				RespondWithError(w, http.StatusBadRequest, "Invalid topography filter selection")
			default:
				logging.Error("Search failed", "error", err)
				RespondWithError(w, http.StatusInternalServerError, "Search failed")
			}
			return
		}

		metrics.SearchDuration.Observe(time.Since(start).Seconds())
		metrics.SearchRequestsTotal.WithLabelValues(queryMode(spec)).Inc()

		RespondWithJSON(w, http.StatusOK, buildSearchResponse(dataStore, engine, query, result))
	}
}

func queryMode(spec search.QuerySpec) string {
	hasFilter := spec.MacroID != 0 || spec.GroupID != 0 || spec.SiteID != 0
	switch {
	case spec.Text != "" && hasFilter:
		return "combined"
	case spec.Text != "":
		return "text"
	default:
		return "filter"
	}
}

func buildSearchResponse(dataStore interfaces.DataStore, engine *search.Engine, query string, result *search.Result) searchResponse {
	resp := searchResponse{
		Total:     result.Count,
		Truncated: result.Truncated,
		IDs:       result.IDs,
		IDsCSV:    strings.Join(result.IDs, ","),
		Results:   make([]resultRow, 0, len(result.Matches)),
	}

	if query != "" {
		for _, m := range result.Matches {
			score := m.Score
			resp.Results = append(resp.Results, resultRow{
				ID:    m.TermID,
				Code:  m.Code,
				Name:  m.Name,
				Score: &score,
			})
		}
		return resp
	}

	// Filter-only queries are unscored; the table shows the first rows
	// of the candidate set with a null score.
	snap := dataStore.GetSnapshot()
	shown := len(result.IDs)
	if shown > engine.TableLimit() {
		shown = engine.TableLimit()
	}
	for _, id := range result.IDs[:shown] {
		if term, ok := snap.Term(id); ok {
			resp.Results = append(resp.Results, resultRow{
				ID:   term.ID,
				Code: term.Code,
				Name: term.Name,
			})
		}
	}
	return resp
}

// filterOption is one selectable node in a cascading filter dropdown.
type filterOption struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// Filters returns the full cascading option sets in one response:
// macrogroupings, groups keyed by macrogrouping ID, and sites keyed by
// group ID.
func Filters(dataStore interfaces.DataStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := dataStore.GetSnapshot()

		macros := make([]filterOption, 0)
		groups := make(map[string][]filterOption)
		sites := make(map[string][]filterOption)

		if snap != nil && snap.Index != nil {
			for _, macro := range snap.Index.Macrogroupings() {
				macros = append(macros, filterOption{ID: macro.ID, Name: macro.Name})

				macroKey := strconv.Itoa(int(macro.ID))
				for _, group := range snap.Index.ChildrenOf(macro.ID) {
					groups[macroKey] = append(groups[macroKey], filterOption{ID: group.ID, Name: group.Name})

					groupKey := strconv.Itoa(int(group.ID))
					for _, site := range snap.Index.ChildrenOf(group.ID) {
						sites[groupKey] = append(sites[groupKey], filterOption{ID: site.ID, Name: site.Name})
					}
				}
			}
		}

		RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"macrogroupings": macros,
			"groups":         groups,
			"sites":          sites,
		})
	}
}

// FilterGroups lists the groups under one macrogrouping
func FilterGroups(engine *search.Engine, validator interfaces.DataValidator) http.HandlerFunc {
	return filterChildren(engine, validator, entities.LevelGroup, "macroId")
}

// FilterSites lists the sites under one group
func FilterSites(engine *search.Engine, validator interfaces.DataValidator) http.HandlerFunc {
	return filterChildren(engine, validator, entities.LevelSite, "groupId")
}

func filterChildren(engine *search.Engine, validator interfaces.DataValidator, level entities.Level, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID, err := validator.ValidateNodeID(chi.URLParam(r, param))
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		nodes, err := engine.FilterOptions(level, parentID)
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid topography filter selection")
			return
		}

		options := make([]filterOption, 0, len(nodes))
		for _, n := range nodes {
			options = append(options, filterOption{ID: n.ID, Name: n.Name})
		}

		RespondWithJSON(w, http.StatusOK, options)
	}
}

// ServeAllTerms returns the whole vocabulary
func ServeAllTerms(dataStore interfaces.DataStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := dataStore.GetSnapshot()
		RespondWithJSON(w, http.StatusOK, snap.Terms)
	}
}

// ServePagedTerms returns one vocabulary page
func ServePagedTerms(dataStore interfaces.DataStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageNumber := chi.URLParam(r, "pageNumber")
		page, err := strconv.Atoi(pageNumber)
		if err != nil || page < 1 {
			logging.Warn("Unusual user input", "pageNumber", pageNumber)
			RespondWithError(w, http.StatusBadRequest, "Invalid page number")
			return
		}

		terms := dataStore.GetSnapshot().Terms
		start := (page - 1) * pageSize
		end := start + pageSize

		if start >= len(terms) {
			RespondWithError(w, http.StatusNotFound, "Page not found")
			return
		}

		if end > len(terms) {
			end = len(terms)
		}

		totalItems := len(terms)
		maxPage := (totalItems + pageSize - 1) / pageSize

		RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"data":       terms[start:end],
			"page":       page,
			"pageSize":   pageSize,
			"totalItems": totalItems,
			"maxPage":    maxPage,
		})
	}
}

// FindTerm looks up a single term by its ID
func FindTerm(dataStore interfaces.DataStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			RespondWithError(w, http.StatusBadRequest, "Missing term id")
			return
		}

		term, ok := dataStore.GetSnapshot().Term(id)
		if !ok {
			RespondWithError(w, http.StatusNotFound, "Term not found")
			return
		}

		RespondWithJSON(w, http.StatusOK, term)
	}
}

// HealthCheck returns server health information
func HealthCheck(checker interfaces.HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, data, httpStatus := checker.HealthCheck()

		data["next_update"] = checker.CalculateNextUpdate().Format(time.RFC3339)

		RespondWithJSON(w, httpStatus, map[string]interface{}{
			"status": status,
			"data":   data,
		})
	}
}
