package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"github.com/secmon-lab/shelfcheck/pkg/domain/types"
	"github.com/secmon-lab/shelfcheck/pkg/usecase"
	"github.com/secmon-lab/shelfcheck/pkg/utils/errutil"
)

// decodeBody decodes a JSON body into v. An empty body leaves v unchanged when optional.
func decodeBody(r *http.Request, v any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return nil
	}
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return goerr.Wrap(errBadRequest, "invalid request body", goerr.V("error", err.Error()))
}

func photoIDParam(r *http.Request) model.PhotoID {
	return model.PhotoID(chi.URLParam(r, "photoID"))
}

func syncHandler(uc *usecase.SyncUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req syncRequest
		if err := decodeBody(r, &req, true); err != nil {
			writeJSON(ctx, w, http.StatusBadRequest, syncResponse{Error: err.Error()})
			return
		}

		result, err := uc.Run(ctx, model.SyncRequest{StartDate: req.StartDate, EndDate: req.EndDate})
		if err != nil {
			status := statusOf(err)
			if status >= http.StatusInternalServerError {
				errutil.Handle(ctx, err, "sync failed")
			}
			writeJSON(ctx, w, status, newSyncResponse(result))
			return
		}

		writeJSON(ctx, w, http.StatusOK, newSyncResponse(result))
	}
}

func listPhotosHandler(uc *usecase.TriageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := usecase.PhotoQuery{
			Status:  types.PhotoStatus(r.URL.Query().Get("status")),
			StoreID: model.StoreID(r.URL.Query().Get("storeId")),
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			limit, err := strconv.Atoi(v)
			if err != nil || limit < 0 {
				writeError(r.Context(), w, goerr.Wrap(errBadRequest, "invalid limit", goerr.V("limit", v)))
				return
			}
			q.Limit = limit
		}

		photos, err := uc.ListPhotos(r.Context(), q)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}

		resp := make([]photoResponse, 0, len(photos))
		for _, p := range photos {
			resp = append(resp, newPhotoResponse(p))
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}

// clearPhotosHandler removes the whole pending queue. Only status=pending is accepted.
func clearPhotosHandler(uc *usecase.TriageUseCase) http.HandlerFunc {
	type response struct {
		Deleted int `json:"deleted"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		if types.PhotoStatus(status) != types.PhotoStatusPending {
			writeError(r.Context(), w, goerr.Wrap(errBadRequest, "only the pending queue can be cleared", goerr.V("status", status)))
			return
		}

		n, err := uc.ClearPending(r.Context())
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, response{Deleted: n})
	}
}

func getPhotoHandler(uc *usecase.TriageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		photo, err := uc.GetPhoto(r.Context(), photoIDParam(r))
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, newPhotoResponse(photo))
	}
}

func deletePhotoHandler(uc *usecase.TriageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.Delete(r.Context(), photoIDParam(r)); err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

func approvePhotoHandler(uc *usecase.TriageUseCase) http.HandlerFunc {
	type request struct {
		StoreID string   `json:"storeId"`
		Brands  []string `json:"brands"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req, false); err != nil {
			writeError(r.Context(), w, err)
			return
		}

		photo, err := uc.Approve(r.Context(), photoIDParam(r), model.StoreID(req.StoreID), req.Brands)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, newPhotoResponse(photo))
	}
}

func rejectPhotoHandler(uc *usecase.TriageUseCase) http.HandlerFunc {
	type request struct {
		Reason string `json:"reason"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req, false); err != nil {
			writeError(r.Context(), w, err)
			return
		}

		photo, err := uc.Reject(r.Context(), photoIDParam(r), req.Reason)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, newPhotoResponse(photo))
	}
}

func redundantPhotoHandler(uc *usecase.TriageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		photo, err := uc.MarkRedundant(r.Context(), photoIDParam(r))
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, newPhotoResponse(photo))
	}
}

func storeSuggestionHandler(uc *usecase.TriageUseCase) http.HandlerFunc {
	type response struct {
		Store *storeResponse `json:"store"`
		Score float64        `json:"score"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		match, err := uc.SuggestStore(r.Context(), photoIDParam(r))
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}

		var resp response
		if match != nil {
			s := newStoreResponse(match.Store)
			resp = response{Store: &s, Score: match.Score}
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}

func rejectionReasonsHandler(uc *usecase.TriageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, uc.RejectionReasons())
	}
}

func listStoresHandler(uc *usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stores, err := uc.ListStores(r.Context())
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}

		resp := make([]storeResponse, 0, len(stores))
		for _, s := range stores {
			resp = append(resp, newStoreResponse(s))
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}

func createStoreHandler(uc *usecase.CatalogUseCase) http.HandlerFunc {
	type request struct {
		Name string `json:"name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req, false); err != nil {
			writeError(r.Context(), w, err)
			return
		}

		store, err := uc.CreateStore(r.Context(), req.Name)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, newStoreResponse(store))
	}
}

func listContestsHandler(uc *usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		brands, err := uc.ListBrands(r.Context())
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		stores, err := uc.ListStores(r.Context())
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}

		resp := make([]contestResponse, 0, len(brands))
		for _, b := range brands {
			resp = append(resp, newContestResponse(b, stores))
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}

// saveContestHandler creates a contest on POST and updates {brandID} on PUT
func saveContestHandler(uc *usecase.CatalogUseCase) http.HandlerFunc {
	type request struct {
		Name         string   `json:"name"`
		PayoutAmount int64    `json:"payoutAmount"`
		StoreIDs     []string `json:"storeIds"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeBody(r, &req, false); err != nil {
			writeError(r.Context(), w, err)
			return
		}

		input := usecase.BrandInput{
			ID:           model.BrandID(chi.URLParam(r, "brandID")),
			Name:         req.Name,
			PayoutAmount: req.PayoutAmount,
		}
		for _, id := range req.StoreIDs {
			input.StoreIDs = append(input.StoreIDs, model.StoreID(id))
		}

		brand, err := uc.SaveBrand(r.Context(), input)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		stores, err := uc.ListStores(r.Context())
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}

		status := http.StatusOK
		if input.ID == "" {
			status = http.StatusCreated
		}
		writeJSON(r.Context(), w, status, newContestResponse(brand, stores))
	}
}

func deleteContestHandler(uc *usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.DeleteBrand(r.Context(), model.BrandID(chi.URLParam(r, "brandID"))); err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

func payoutQuery(r *http.Request) usecase.PayoutQuery {
	return usecase.PayoutQuery{
		Brand:  r.URL.Query().Get("brand"),
		Month:  r.URL.Query().Get("month"),
		Search: r.URL.Query().Get("search"),
	}
}

func dashboardHandler(uc *usecase.DashboardUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := uc.Payout(r.Context(), payoutQuery(r))
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, newPayoutResponse(report))
	}
}

func dashboardExportHandler(uc *usecase.DashboardUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := uc.Payout(r.Context(), payoutQuery(r))
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+usecase.CSVFileName(report)+`"`)
		w.WriteHeader(http.StatusOK)
		if err := usecase.ExportCSV(w, report); err != nil {
			errutil.Handle(r.Context(), err, "failed to write CSV export")
		}
	}
}
