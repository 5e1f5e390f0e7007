package http_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/shelfcheck/pkg/controller/http"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model/slack"
	"github.com/secmon-lab/shelfcheck/pkg/domain/types"
	"github.com/secmon-lab/shelfcheck/pkg/usecase"
)

type syncBody struct {
	Success bool     `json:"success"`
	Count   int      `json:"count"`
	Scanned int      `json:"scanned"`
	Skipped int      `json:"skipped"`
	HasMore bool     `json:"hasMore"`
	Errors  []string `json:"errors"`
	Error   string   `json:"error"`
}

type photoBody struct {
	ID              string   `json:"id"`
	Status          string   `json:"status"`
	StoreID         string   `json:"storeId"`
	Brands          []string `json:"brands"`
	RejectionReason string   `json:"rejectionReason"`
	ReviewedBy      string   `json:"reviewedBy"`
}

type storeBody struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	EligibleBrands []string `json:"eligibleBrands"`
}

type contestBody struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	PayoutAmount int64    `json:"payoutAmount"`
	MaxPayout    int64    `json:"maxPayout"`
	StoreIDs     []string `json:"storeIds"`
}

type errorBody struct {
	Error string `json:"error"`
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.do(t, http.MethodGet, "/health", nil)
	gt.Value(t, w.Code).Equal(http.StatusOK)
}

func TestSyncEndpoint(t *testing.T) {
	posted := time.Date(2024, 5, 3, 10, 0, 0, 0, time.Local)
	msg := slack.Message{
		ChannelID: testChannel,
		Timestamp: slack.FormatTimestamp(posted),
		Text:      "Store A",
		Files: []slack.File{
			{Name: "a.jpg", Mimetype: "image/jpeg", URLPrivateDownload: "https://files/a"},
		},
	}

	t.Run("imports and reports counts", func(t *testing.T) {
		ts := newTestServer(t, nil)
		ts.source.page = &interfaces.HistoryPage{Messages: []slack.Message{msg}}

		w := ts.do(t, http.MethodPost, "/api/sync", nil)
		gt.Value(t, w.Code).Equal(http.StatusOK)
		body := decode[syncBody](t, w)
		gt.Bool(t, body.Success).True()
		gt.Value(t, body.Count).Equal(1)
		gt.Value(t, body.Scanned).Equal(1)
		gt.Bool(t, body.HasMore).False()

		again := decode[syncBody](t, ts.do(t, http.MethodPost, "/api/sync", map[string]string{}))
		gt.Value(t, again.Count).Equal(0)
		gt.Value(t, again.Skipped).Equal(1)
	})

	t.Run("date range", func(t *testing.T) {
		ts := newTestServer(t, nil)
		ts.source.page = &interfaces.HistoryPage{Messages: []slack.Message{msg}}

		body := decode[syncBody](t, ts.do(t, http.MethodPost, "/api/sync", map[string]string{
			"startDate": "2024-05-04",
			"endDate":   "2024-05-05",
		}))
		gt.Value(t, body.Count).Equal(0)
		gt.Value(t, body.Scanned).Equal(0)
	})

	t.Run("invalid date", func(t *testing.T) {
		ts := newTestServer(t, nil)
		w := ts.do(t, http.MethodPost, "/api/sync", map[string]string{"startDate": "yesterday"})
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
		body := decode[syncBody](t, w)
		gt.Bool(t, body.Success).False()
		gt.String(t, body.Error).NotEqual("")
	})

	t.Run("concurrent run is rejected", func(t *testing.T) {
		ts := newTestServer(t, nil)
		_, err := ts.repo.SyncState().AcquireLock(context.Background(), "other", time.Minute)
		gt.NoError(t, err).Required()

		w := ts.do(t, http.MethodPost, "/api/sync", nil)
		gt.Value(t, w.Code).Equal(http.StatusConflict)
		gt.Bool(t, decode[syncBody](t, w).Success).False()
	})
}

func seedPending(t *testing.T, ts *testServer, text string) *model.Photo {
	t.Helper()
	p := &model.Photo{
		ID:        model.NewPhotoID(),
		SourceKey: model.NewPhotoID().String() + ":0",
		RawText:   text,
		Status:    types.PhotoStatusPending,
		CreatedAt: time.Now(),
	}
	gt.NoError(t, ts.repo.Photo().Create(context.Background(), p)).Required()
	return p
}

func TestPhotoEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	store := decode[storeBody](t, ts.do(t, http.MethodPost, "/api/stores", map[string]string{"name": "Walmart Downtown"}))
	w := ts.do(t, http.MethodPost, "/api/contests", map[string]any{
		"name": "Acme", "payoutAmount": 100, "storeIds": []string{store.ID},
	})
	gt.Value(t, w.Code).Equal(http.StatusCreated)

	t.Run("list pending", func(t *testing.T) {
		seedPending(t, ts, "first")
		photos := decode[[]photoBody](t, ts.do(t, http.MethodGet, "/api/photos?limit=10", nil))
		gt.Array(t, photos).Length(1)
		gt.Value(t, photos[0].Status).Equal("pending")

		w := ts.do(t, http.MethodGet, "/api/photos?status=unknown", nil)
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("approve", func(t *testing.T) {
		p := seedPending(t, ts, "walmart downtown")
		w := ts.do(t, http.MethodPost, "/api/photos/"+p.ID.String()+"/approve", map[string]any{
			"storeId": store.ID, "brands": []string{"acme"},
		})
		gt.Value(t, w.Code).Equal(http.StatusOK)
		body := decode[photoBody](t, w)
		gt.Value(t, body.Status).Equal("approved")
		gt.Value(t, body.Brands).Equal([]string{"Acme"})
		gt.Value(t, body.ReviewedBy).Equal("anonymous")

		again := ts.do(t, http.MethodPost, "/api/photos/"+p.ID.String()+"/approve", map[string]any{
			"storeId": store.ID, "brands": []string{"Acme"},
		})
		gt.Value(t, again.Code).Equal(http.StatusConflict)
	})

	t.Run("approve requires brands", func(t *testing.T) {
		p := seedPending(t, ts, "x")
		w := ts.do(t, http.MethodPost, "/api/photos/"+p.ID.String()+"/approve", map[string]any{"storeId": store.ID})
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("reject and redundant", func(t *testing.T) {
		p := seedPending(t, ts, "x")
		w := ts.do(t, http.MethodPost, "/api/photos/"+p.ID.String()+"/reject", map[string]string{"reason": "Others"})
		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.Value(t, decode[photoBody](t, w).RejectionReason).Equal("Others")

		d := seedPending(t, ts, "y")
		w = ts.do(t, http.MethodPost, "/api/photos/"+d.ID.String()+"/redundant", nil)
		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.Value(t, decode[photoBody](t, w).Status).Equal("redundant")
	})

	t.Run("store suggestion", func(t *testing.T) {
		p := seedPending(t, ts, "<@U1> new end cap at Walmart Downtown")
		type suggestion struct {
			Store *storeBody `json:"store"`
			Score float64    `json:"score"`
		}
		body := decode[suggestion](t, ts.do(t, http.MethodGet, "/api/photos/"+p.ID.String()+"/store-suggestion", nil))
		gt.Value(t, body.Store).NotNil()
		gt.Value(t, body.Store.ID).Equal(store.ID)
	})

	t.Run("unknown photo", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/photos/missing/redundant", nil)
		gt.Value(t, w.Code).Equal(http.StatusNotFound)
		gt.String(t, decode[errorBody](t, w).Error).Contains("photo not found")
	})

	t.Run("delete and clear", func(t *testing.T) {
		p := seedPending(t, ts, "z")
		gt.Value(t, ts.do(t, http.MethodDelete, "/api/photos/"+p.ID.String(), nil).Code).Equal(http.StatusOK)
		gt.Value(t, ts.do(t, http.MethodDelete, "/api/photos/"+p.ID.String(), nil).Code).Equal(http.StatusNotFound)

		gt.Value(t, ts.do(t, http.MethodDelete, "/api/photos?status=approved", nil).Code).Equal(http.StatusBadRequest)

		w := ts.do(t, http.MethodDelete, "/api/photos?status=pending", nil)
		gt.Value(t, w.Code).Equal(http.StatusOK)
		type cleared struct {
			Deleted int `json:"deleted"`
		}
		gt.Bool(t, decode[cleared](t, w).Deleted >= 1).True()

		photos := decode[[]photoBody](t, ts.do(t, http.MethodGet, "/api/photos", nil))
		gt.Array(t, photos).Length(0)
	})

	t.Run("rejection reasons", func(t *testing.T) {
		reasons := decode[[]string](t, ts.do(t, http.MethodGet, "/api/rejection-reasons", nil))
		gt.Value(t, reasons).Equal(usecase.DefaultRejectionReasons)
	})
}

func TestCatalogEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	a := decode[storeBody](t, ts.do(t, http.MethodPost, "/api/stores", map[string]string{"name": "Store A"}))
	b := decode[storeBody](t, ts.do(t, http.MethodPost, "/api/stores", map[string]string{"name": "Store B"}))

	gt.Value(t, ts.do(t, http.MethodPost, "/api/stores", map[string]string{"name": "store a"}).Code).Equal(http.StatusConflict)
	gt.Value(t, ts.do(t, http.MethodPost, "/api/stores", map[string]string{"name": ""}).Code).Equal(http.StatusBadRequest)
	gt.Value(t, ts.do(t, http.MethodPost, "/api/stores", nil).Code).Equal(http.StatusBadRequest)

	created := decode[contestBody](t, ts.do(t, http.MethodPost, "/api/contests", map[string]any{
		"name": "Acme", "payoutAmount": 100, "storeIds": []string{a.ID},
	}))
	gt.Value(t, created.MaxPayout).Equal(int64(400))
	gt.Value(t, created.StoreIDs).Equal([]string{a.ID})

	w := ts.do(t, http.MethodPut, "/api/contests/"+created.ID, map[string]any{
		"name": "Acme", "payoutAmount": 120, "storeIds": []string{a.ID, b.ID},
	})
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.Array(t, decode[contestBody](t, w).StoreIDs).Length(2)

	contests := decode[[]contestBody](t, ts.do(t, http.MethodGet, "/api/contests", nil))
	gt.Array(t, contests).Length(1)
	gt.Value(t, contests[0].PayoutAmount).Equal(int64(120))

	gt.Value(t, ts.do(t, http.MethodPut, "/api/contests/missing", map[string]any{"name": "X", "payoutAmount": 1}).Code).Equal(http.StatusNotFound)
	gt.Value(t, ts.do(t, http.MethodPost, "/api/contests", map[string]any{"name": "Bad", "payoutAmount": -5}).Code).Equal(http.StatusBadRequest)

	gt.Value(t, ts.do(t, http.MethodDelete, "/api/contests/"+created.ID, nil).Code).Equal(http.StatusOK)
	stores := decode[[]storeBody](t, ts.do(t, http.MethodGet, "/api/stores", nil))
	gt.Array(t, stores).Length(2)
	for _, s := range stores {
		gt.Array(t, s.EligibleBrands).Length(0)
	}
}

func TestDashboardEndpoints(t *testing.T) {
	ts := newTestServer(t, []usecase.Option{usecase.WithLocation(time.UTC)})
	ctx := context.Background()

	store := decode[storeBody](t, ts.do(t, http.MethodPost, "/api/stores", map[string]string{"name": "Store A"}))
	ts.do(t, http.MethodPost, "/api/contests", map[string]any{"name": "Acme", "payoutAmount": 100, "storeIds": []string{store.ID}})

	gt.NoError(t, ts.repo.Photo().Create(ctx, &model.Photo{
		ID:        model.NewPhotoID(),
		SourceKey: "1714730400.000000:0",
		Status:    types.PhotoStatusApproved,
		StoreID:   model.StoreID(store.ID),
		Brands:    []string{"Acme"},
		CreatedAt: time.Date(2024, 5, 16, 9, 0, 0, 0, time.UTC),
	})).Required()

	type rowBody struct {
		StoreName  string   `json:"storeName"`
		Weeks      []string `json:"weeks"`
		ValidWeeks int      `json:"validWeeks"`
		Earned     int64    `json:"earned"`
		Max        int64    `json:"max"`
	}
	type reportBody struct {
		Brand string    `json:"brand"`
		Month string    `json:"month"`
		Rows  []rowBody `json:"rows"`
		Total int64     `json:"total"`
	}

	w := ts.do(t, http.MethodGet, "/api/dashboard?brand=Acme&month=2024-05", nil)
	gt.Value(t, w.Code).Equal(http.StatusOK)
	report := decode[reportBody](t, w)
	gt.Value(t, report.Month).Equal("2024-05")
	gt.Array(t, report.Rows).Length(1)
	gt.Value(t, report.Rows[0].Weeks).Equal([]string{"missing", "missing", "valid", "missing"})
	gt.Value(t, report.Total).Equal(int64(100))

	gt.Value(t, ts.do(t, http.MethodGet, "/api/dashboard?brand=Acme&month=May", nil).Code).Equal(http.StatusBadRequest)
	gt.Value(t, ts.do(t, http.MethodGet, "/api/dashboard?brand=Nope", nil).Code).Equal(http.StatusNotFound)

	t.Run("csv export", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/dashboard/export.csv?brand=Acme&month=2024-05", nil)
		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.String(t, w.Header().Get("Content-Type")).Contains("text/csv")
		gt.String(t, w.Header().Get("Content-Disposition")).Contains("payout-Acme-2024-05.csv")

		lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
		gt.Array(t, lines).Length(3)
		gt.Value(t, lines[1]).Equal("Store A,missing,missing,valid,missing,1,100,400")
	})
}

func TestStatusOf(t *testing.T) {
	gt.Value(t, httpctrl.StatusOf(usecase.ErrSyncNotConfigured)).Equal(http.StatusServiceUnavailable)
	gt.Value(t, httpctrl.StatusOf(model.ErrInvalidDateRange)).Equal(http.StatusBadRequest)
	gt.Value(t, httpctrl.StatusOf(context.DeadlineExceeded)).Equal(http.StatusInternalServerError)
}
