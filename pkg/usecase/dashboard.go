package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"github.com/secmon-lab/shelfcheck/pkg/domain/types"
	"golang.org/x/sync/errgroup"
)

// MonthLayout is the format of dashboard months
const MonthLayout = "2006-01"

// DashboardUseCase computes the weekly payout tables
type DashboardUseCase struct {
	repo     interfaces.Repository
	location *time.Location
	now      func() time.Time
}

// NewDashboardUseCase creates a DashboardUseCase. Weeks are cut in loc.
func NewDashboardUseCase(repo interfaces.Repository, loc *time.Location) *DashboardUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardUseCase{
		repo:     repo,
		location: loc,
		now:      time.Now,
	}
}

// PayoutQuery selects a payout table. An empty Month means the current month.
// Search filters stores by a case-insensitive name substring.
type PayoutQuery struct {
	Brand  string
	Month  string
	Search string
}

func (uc *DashboardUseCase) parseMonth(month string) (time.Time, error) {
	if strings.TrimSpace(month) == "" {
		now := uc.now().In(uc.location)
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, uc.location), nil
	}

	t, err := time.ParseInLocation(MonthLayout, strings.TrimSpace(month), uc.location)
	if err != nil {
		return time.Time{}, goerr.Wrap(ErrInvalidMonth, "month must be YYYY-MM", goerr.V("month", month))
	}
	return t, nil
}

// Payout builds the payout table of one brand for one month. Stores, the brand and the
// approved photos of the month are loaded concurrently.
func (uc *DashboardUseCase) Payout(ctx context.Context, q PayoutQuery) (*model.PayoutReport, error) {
	monthStart, err := uc.parseMonth(q.Month)
	if err != nil {
		return nil, err
	}
	monthEnd := monthStart.AddDate(0, 1, 0)

	var (
		stores []*model.Store
		brand  *model.Brand
		photos []*model.Photo
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		stores, err = uc.repo.Store().List(egCtx)
		if err != nil {
			return goerr.Wrap(err, "failed to list stores")
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		brand, err = uc.repo.Brand().GetByName(egCtx, q.Brand)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return goerr.Wrap(ErrBrandNotFound, "brand not found", goerr.V("brand", q.Brand))
			}
			return goerr.Wrap(err, "failed to get brand", goerr.V("brand", q.Brand))
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		photos, err = uc.repo.Photo().List(egCtx, interfaces.PhotoFilter{
			Status: types.PhotoStatusApproved,
			From:   &monthStart,
			To:     &monthEnd,
		})
		if err != nil {
			return goerr.Wrap(err, "failed to list approved photos")
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return BuildPayoutReport(brand, monthStart, stores, photos, q.Search), nil
}

// BuildPayoutReport buckets approved photos of the brand into weeks per eligible store
func BuildPayoutReport(brand *model.Brand, month time.Time, stores []*model.Store, photos []*model.Photo, search string) *model.PayoutReport {
	loc := month.Location()
	valid := make(map[model.StoreID]*[model.WeeksPerMonth]bool)
	for _, p := range photos {
		if p.Status != types.PhotoStatusApproved || p.StoreID == "" || !p.HasBrand(brand.Name) {
			continue
		}
		created := p.CreatedAt.In(loc)
		if created.Year() != month.Year() || created.Month() != month.Month() {
			continue
		}

		weeks, ok := valid[p.StoreID]
		if !ok {
			weeks = &[model.WeeksPerMonth]bool{}
			valid[p.StoreID] = weeks
		}
		weeks[model.WeekOfMonth(created)-1] = true
	}

	search = strings.ToLower(strings.TrimSpace(search))
	report := &model.PayoutReport{
		Brand: brand,
		Month: month,
		Rows:  []*model.PayoutRow{},
	}
	for _, s := range stores {
		if !s.IsEligible(brand.Name) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(s.Name), search) {
			continue
		}

		row := &model.PayoutRow{Store: s, Max: brand.MaxPayout()}
		weeks := valid[s.ID]
		for i := range row.Weeks {
			row.Weeks[i] = model.WeekMissing
			if weeks != nil && weeks[i] {
				row.Weeks[i] = model.WeekValid
				row.ValidWeeks++
			}
		}
		row.Earned = int64(row.ValidWeeks) * brand.PayoutAmount
		report.Total += row.Earned
		report.Rows = append(report.Rows, row)
	}

	return report
}

// ExportCSV writes the payout table with one row per store
func ExportCSV(w io.Writer, report *model.PayoutReport) error {
	cw := csv.NewWriter(w)

	header := []string{"Store"}
	for i := 1; i <= model.WeeksPerMonth; i++ {
		header = append(header, "Week "+strconv.Itoa(i))
	}
	header = append(header, "Valid Weeks", "Earned", "Max")
	if err := cw.Write(header); err != nil {
		return goerr.Wrap(err, "failed to write CSV header")
	}

	for _, row := range report.Rows {
		record := []string{row.Store.Name}
		for _, st := range row.Weeks {
			record = append(record, string(st))
		}
		record = append(record,
			strconv.Itoa(row.ValidWeeks),
			strconv.FormatInt(row.Earned, 10),
			strconv.FormatInt(row.Max, 10))
		if err := cw.Write(record); err != nil {
			return goerr.Wrap(err, "failed to write CSV row", goerr.V("store", row.Store.Name))
		}
	}

	if err := cw.Write([]string{"Total", "", "", "", "", "", strconv.FormatInt(report.Total, 10), ""}); err != nil {
		return goerr.Wrap(err, "failed to write CSV total")
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return goerr.Wrap(err, "failed to flush CSV")
	}
	return nil
}

// CSVFileName is the download name of an exported payout table
func CSVFileName(report *model.PayoutReport) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, report.Brand.Name)
	return "payout-" + name + "-" + report.Month.Format(MonthLayout) + ".csv"
}
