package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"github.com/secmon-lab/shelfcheck/pkg/domain/types"
)

const photoColumns = `id, message_id, source_key, image_url, blob_name, raw_text, status,
	store_id, brands, rejection_reason, reviewed_by, reviewed_at, created_at`

type photoRepository struct {
	db *sql.DB
}

var _ interfaces.PhotoRepository = &photoRepository{}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row rowScanner) (*model.Photo, error) {
	var (
		p          model.Photo
		id, status string
		messageID  sql.NullString
		storeID    sql.NullString
		reviewedAt sql.NullTime
		brands     []string
	)
	if err := row.Scan(&id, &messageID, &p.SourceKey, &p.ImageURL, &p.BlobName, &p.RawText, &status,
		&storeID, pq.Array(&brands), &p.RejectionReason, &p.ReviewedBy, &reviewedAt, &p.CreatedAt); err != nil {
		return nil, err
	}

	p.ID = model.PhotoID(id)
	p.MessageID = model.MessageID(messageID.String)
	p.Status = types.PhotoStatus(status)
	p.StoreID = model.StoreID(storeID.String)
	p.Brands = brands
	if reviewedAt.Valid {
		t := reviewedAt.Time
		p.ReviewedAt = &t
	}
	return &p, nil
}

func brandsArray(brands []string) any {
	if brands == nil {
		brands = []string{}
	}
	return pq.Array(brands)
}

func (r *photoRepository) Create(ctx context.Context, photo *model.Photo) error {
	if photo.SourceKey == "" {
		return goerr.New("photo source key is required", goerr.V("id", photo.ID))
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO photos (`+photoColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		string(photo.ID), nullString(string(photo.MessageID)), photo.SourceKey, photo.ImageURL,
		photo.BlobName, photo.RawText, string(photo.Status), nullString(string(photo.StoreID)),
		brandsArray(photo.Brands), photo.RejectionReason, photo.ReviewedBy, nullTime(photo.ReviewedAt),
		photo.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "photo already imported",
				goerr.V("id", photo.ID), goerr.V("source_key", photo.SourceKey))
		}
		return goerr.Wrap(err, "failed to insert photo", goerr.V("id", photo.ID))
	}
	return nil
}

func (r *photoRepository) getBy(ctx context.Context, column string, value string) (*model.Photo, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `SELECT `+photoColumns+` FROM photos WHERE `+column+` = $1`, value)
	p, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "photo not found", goerr.V(column, value))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to select photo", goerr.V(column, value))
	}
	return p, nil
}

func (r *photoRepository) Get(ctx context.Context, id model.PhotoID) (*model.Photo, error) {
	return r.getBy(ctx, "id", string(id))
}

func (r *photoRepository) GetBySourceKey(ctx context.Context, sourceKey string) (*model.Photo, error) {
	return r.getBy(ctx, "source_key", sourceKey)
}

func (r *photoRepository) List(ctx context.Context, filter interfaces.PhotoFilter) ([]*model.Photo, error) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.StoreID != "" {
		add("store_id = $%d", string(filter.StoreID))
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at < $%d", *filter.To)
	}

	query := `SELECT ` + photoColumns + ` FROM photos`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at ASC, source_key ASC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list photos")
	}
	defer func() { _ = rows.Close() }()

	photos := make([]*model.Photo, 0)
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan photo")
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate photos")
	}
	return photos, nil
}

func (r *photoRepository) Update(ctx context.Context, photo *model.Photo) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE photos SET status = $2, store_id = $3, brands = $4, rejection_reason = $5,
			reviewed_by = $6, reviewed_at = $7
		WHERE id = $1`,
		string(photo.ID), string(photo.Status), nullString(string(photo.StoreID)), brandsArray(photo.Brands),
		photo.RejectionReason, photo.ReviewedBy, nullTime(photo.ReviewedAt))
	if err != nil {
		return goerr.Wrap(err, "failed to update photo", goerr.V("id", photo.ID))
	}
	return expectOneRow(res, "photo", string(photo.ID))
}

func (r *photoRepository) Delete(ctx context.Context, id model.PhotoID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM photos WHERE id = $1`, string(id))
	if err != nil {
		return goerr.Wrap(err, "failed to delete photo", goerr.V("id", id))
	}
	return expectOneRow(res, "photo", string(id))
}

func (r *photoRepository) DeleteByStatus(ctx context.Context, status types.PhotoStatus) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM photos WHERE status = $1`, string(status))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to delete photos", goerr.V("status", status))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get affected rows")
	}
	return int(n), nil
}

func expectOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to get affected rows", goerr.V("id", id))
	}
	if n == 0 {
		return goerr.Wrap(interfaces.ErrNotFound, kind+" not found", goerr.V("id", id))
	}
	return nil
}
