package usecase_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"github.com/secmon-lab/shelfcheck/pkg/domain/types"
	"github.com/secmon-lab/shelfcheck/pkg/repository/memory"
	"github.com/secmon-lab/shelfcheck/pkg/usecase"
)

func approvedPhoto(storeID model.StoreID, created time.Time, brands ...string) *model.Photo {
	return &model.Photo{
		ID:        model.NewPhotoID(),
		SourceKey: model.NewPhotoID().String() + ":0",
		Status:    types.PhotoStatusApproved,
		StoreID:   storeID,
		Brands:    brands,
		CreatedAt: created,
	}
}

func TestBuildPayoutReport(t *testing.T) {
	month := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	brand := &model.Brand{ID: "b1", Name: "Acme", PayoutAmount: 100}

	a := &model.Store{ID: "a", Name: "Alpha Mart", EligibleBrands: []string{"acme"}}
	b := &model.Store{ID: "b", Name: "Beta Store", EligibleBrands: []string{"Acme"}}
	c := &model.Store{ID: "c", Name: "Gamma", EligibleBrands: []string{"Globex"}}

	photos := []*model.Photo{
		approvedPhoto("a", time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), "Acme"),
		approvedPhoto("a", time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC), "Acme"),
		approvedPhoto("a", time.Date(2024, 5, 31, 9, 0, 0, 0, time.UTC), "Acme", "Globex"),
		approvedPhoto("b", time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC), "Globex"),
		approvedPhoto("b", time.Date(2024, 4, 30, 9, 0, 0, 0, time.UTC), "Acme"),
		approvedPhoto("c", time.Date(2024, 5, 8, 9, 0, 0, 0, time.UTC), "Acme"),
	}

	report := usecase.BuildPayoutReport(brand, month, []*model.Store{a, b, c}, photos, "")
	gt.Array(t, report.Rows).Length(2)

	alpha := report.Rows[0]
	gt.Value(t, alpha.Store.ID).Equal(model.StoreID("a"))
	gt.Value(t, alpha.Weeks).Equal([model.WeeksPerMonth]model.WeekStatus{
		model.WeekValid, model.WeekMissing, model.WeekMissing, model.WeekValid,
	})
	gt.Value(t, alpha.ValidWeeks).Equal(2)
	gt.Value(t, alpha.Earned).Equal(int64(200))
	gt.Value(t, alpha.Max).Equal(int64(400))

	beta := report.Rows[1]
	gt.Value(t, beta.ValidWeeks).Equal(0)
	gt.Value(t, beta.Earned).Equal(int64(0))

	gt.Value(t, report.Total).Equal(int64(200))

	t.Run("search filters stores", func(t *testing.T) {
		filtered := usecase.BuildPayoutReport(brand, month, []*model.Store{a, b, c}, photos, "BETA")
		gt.Array(t, filtered.Rows).Length(1)
		gt.Value(t, filtered.Rows[0].Store.Name).Equal("Beta Store")
		gt.Value(t, filtered.Total).Equal(int64(0))
	})
}

func TestDashboardPayout(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	store := seedStore(t, repo, "Alpha Mart", "Acme")
	seedBrand(t, repo, "Acme", 100)

	for _, p := range []*model.Photo{
		approvedPhoto(store.ID, time.Date(2024, 5, 9, 9, 0, 0, 0, time.UTC), "Acme"),
		approvedPhoto(store.ID, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "Acme"),
	} {
		gt.NoError(t, repo.Photo().Create(ctx, p)).Required()
	}

	uc := usecase.NewDashboardUseCase(repo, time.UTC)
	usecase.SetDashboardNow(uc, func() time.Time { return time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC) })

	report, err := uc.Payout(ctx, usecase.PayoutQuery{Brand: "acme"})
	gt.NoError(t, err).Required()
	gt.Value(t, report.Month.Format(usecase.MonthLayout)).Equal("2024-05")
	gt.Array(t, report.Rows).Length(1)
	gt.Value(t, report.Rows[0].Weeks[1]).Equal(model.WeekValid)
	gt.Value(t, report.Total).Equal(int64(100))

	june, err := uc.Payout(ctx, usecase.PayoutQuery{Brand: "Acme", Month: "2024-06"})
	gt.NoError(t, err).Required()
	gt.Value(t, june.Rows[0].Weeks[0]).Equal(model.WeekValid)

	_, err = uc.Payout(ctx, usecase.PayoutQuery{Brand: "Acme", Month: "June"})
	gt.Error(t, err).Is(usecase.ErrInvalidMonth)

	_, err = uc.Payout(ctx, usecase.PayoutQuery{Brand: "Initech"})
	gt.Error(t, err).Is(usecase.ErrBrandNotFound)
}

func TestExportCSV(t *testing.T) {
	brand := &model.Brand{Name: "Acme & Co", PayoutAmount: 100}
	report := &model.PayoutReport{
		Brand: brand,
		Month: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Rows: []*model.PayoutRow{{
			Store:      &model.Store{Name: "Alpha, Mart"},
			Weeks:      [model.WeeksPerMonth]model.WeekStatus{model.WeekValid, model.WeekMissing, model.WeekValid, model.WeekMissing},
			ValidWeeks: 2,
			Earned:     200,
			Max:        400,
		}},
		Total: 200,
	}

	var buf bytes.Buffer
	gt.NoError(t, usecase.ExportCSV(&buf, report)).Required()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	gt.Array(t, lines).Length(3)
	gt.Value(t, lines[0]).Equal("Store,Week 1,Week 2,Week 3,Week 4,Valid Weeks,Earned,Max")
	gt.Value(t, lines[1]).Equal(`"Alpha, Mart",valid,missing,valid,missing,2,200,400`)
	gt.Value(t, lines[2]).Equal("Total,,,,,,200,")

	gt.Value(t, usecase.CSVFileName(report)).Equal("payout-Acme___Co-2024-05.csv")
}
