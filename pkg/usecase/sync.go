package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model/slack"
	"github.com/secmon-lab/shelfcheck/pkg/domain/types"
	"github.com/secmon-lab/shelfcheck/pkg/utils/errutil"
	"github.com/secmon-lab/shelfcheck/pkg/utils/logging"
	libslack "github.com/slack-go/slack"
)

const (
	DefaultSyncPageSize    = 200
	DefaultSyncMaxPages    = 3
	DefaultSyncLockTTL     = 15 * time.Minute
	DefaultSyncCallTimeout = 30 * time.Second
	DefaultSyncMaxRetries  = 3
	// defaultRetryAfter is used when a rate limit response carries no Retry-After
	defaultRetryAfter = time.Second
)

// SyncUseCase imports image attachments of a Slack channel into the photo queue
type SyncUseCase struct {
	repo      interfaces.Repository
	source    interfaces.MessageSource
	blob      interfaces.BlobStore
	channelID string

	pageSize    int
	maxPages    int
	resume      types.ResumeStrategy
	epoch       time.Time
	location    *time.Location
	lockTTL     time.Duration
	callTimeout time.Duration
	maxRetries  int

	sleep func(ctx context.Context, d time.Duration) error
}

// SyncOption is a functional option for SyncUseCase
type SyncOption func(*SyncUseCase)

// WithSyncChannel sets the Slack channel to import from
func WithSyncChannel(channelID string) SyncOption {
	return func(uc *SyncUseCase) {
		uc.channelID = channelID
	}
}

// WithSyncPageSize sets the number of messages requested per page
func WithSyncPageSize(size int) SyncOption {
	return func(uc *SyncUseCase) {
		uc.pageSize = size
	}
}

// WithSyncMaxPages caps the pages fetched by one run
func WithSyncMaxPages(pages int) SyncOption {
	return func(uc *SyncUseCase) {
		uc.maxPages = pages
	}
}

// WithSyncResume sets how the lower bound is chosen when no range is requested
func WithSyncResume(strategy types.ResumeStrategy) SyncOption {
	return func(uc *SyncUseCase) {
		uc.resume = strategy
	}
}

// WithSyncEpoch sets the fixed lower bound used by the epoch strategy and as the
// watermark fallback on an empty store
func WithSyncEpoch(epoch time.Time) SyncOption {
	return func(uc *SyncUseCase) {
		uc.epoch = epoch
	}
}

// WithSyncLocation sets the location calendar dates are resolved in
func WithSyncLocation(loc *time.Location) SyncOption {
	return func(uc *SyncUseCase) {
		uc.location = loc
	}
}

// WithSyncLockTTL sets the lease duration of the run lock
func WithSyncLockTTL(ttl time.Duration) SyncOption {
	return func(uc *SyncUseCase) {
		uc.lockTTL = ttl
	}
}

// WithSyncCallTimeout bounds each external call of a run
func WithSyncCallTimeout(timeout time.Duration) SyncOption {
	return func(uc *SyncUseCase) {
		uc.callTimeout = timeout
	}
}

// WithSyncMaxRetries sets how many times a rate limited page request is retried
func WithSyncMaxRetries(n int) SyncOption {
	return func(uc *SyncUseCase) {
		uc.maxRetries = n
	}
}

// NewSyncUseCase creates a SyncUseCase. source and blob may be nil, in which case Run
// fails with ErrSyncNotConfigured.
func NewSyncUseCase(repo interfaces.Repository, source interfaces.MessageSource, blob interfaces.BlobStore, opts ...SyncOption) *SyncUseCase {
	uc := &SyncUseCase{
		repo:        repo,
		source:      source,
		blob:        blob,
		pageSize:    DefaultSyncPageSize,
		maxPages:    DefaultSyncMaxPages,
		resume:      types.ResumeWatermark,
		location:    time.Local,
		lockTTL:     DefaultSyncLockTTL,
		callTimeout: DefaultSyncCallTimeout,
		maxRetries:  DefaultSyncMaxRetries,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ChannelID returns the configured channel
func (uc *SyncUseCase) ChannelID() string {
	return uc.channelID
}

func (uc *SyncUseCase) configured() error {
	if uc.source == nil || uc.blob == nil || uc.channelID == "" {
		return goerr.Wrap(ErrSyncNotConfigured, "slack token, channel and blob store are required",
			goerr.V("has_source", uc.source != nil),
			goerr.V("has_blob", uc.blob != nil),
			goerr.V(ChannelIDKey, uc.channelID))
	}
	return nil
}

// scanBounds are the Slack timestamp bounds and continuation cursor of one run
type scanBounds struct {
	oldest string
	latest string
	cursor string
	// resumed is set when the cursor came from a stored checkpoint
	resumed bool
}

// Run performs one bounded catch-up scan. A fatal error is returned together with a
// result whose Success is false; per-file failures only populate result.Errors.
func (uc *SyncUseCase) Run(ctx context.Context, req model.SyncRequest) (*model.SyncResult, error) {
	result := &model.SyncResult{}
	if err := uc.run(ctx, req, result); err != nil {
		result.Success = false
		result.Error = err.Error()
		return result, err
	}
	result.Success = true
	return result, nil
}

func (uc *SyncUseCase) run(ctx context.Context, req model.SyncRequest, result *model.SyncResult) error {
	if err := uc.configured(); err != nil {
		return err
	}

	rng, err := req.Range(uc.location)
	if err != nil {
		return err
	}

	holder := uuid.NewString()
	if _, err := uc.repo.SyncState().AcquireLock(ctx, holder, uc.lockTTL); err != nil {
		if errors.Is(err, interfaces.ErrLockHeld) {
			return goerr.Wrap(ErrSyncInProgress, "sync lock is held", goerr.V(ChannelIDKey, uc.channelID))
		}
		return goerr.Wrap(err, "failed to acquire sync lock")
	}
	defer func() {
		if err := uc.repo.SyncState().ReleaseLock(context.WithoutCancel(ctx), holder); err != nil {
			errutil.Handle(ctx, err, "failed to release sync lock")
		}
	}()

	bounds, err := uc.resolveBounds(ctx, req, rng)
	if err != nil {
		return err
	}

	logger := logging.From(ctx).With("channel_id", uc.channelID, "run", holder)
	logger.Info("sync started",
		"oldest", bounds.oldest,
		"latest", bounds.latest,
		"resumed", bounds.resumed,
		"resume_strategy", uc.resume.String())

	cursor := bounds.cursor
	for pages := 0; ; {
		page, err := uc.fetchPage(ctx, interfaces.HistoryQuery{
			ChannelID: uc.channelID,
			Oldest:    bounds.oldest,
			Latest:    bounds.latest,
			Limit:     uc.pageSize,
			Cursor:    cursor,
		})
		if err != nil {
			uc.keepPosition(ctx, bounds, cursor, pages, err, result)
			return goerr.Wrap(err, "failed to fetch history page", goerr.V("page", pages+1))
		}
		pages++

		for _, msg := range page.Messages {
			uc.scanMessage(ctx, msg, rng, result)
		}

		cursor = page.NextCursor
		if cursor == "" || len(page.Messages) == 0 {
			uc.dropCheckpoint(ctx)
			break
		}
		if pages >= uc.maxPages {
			result.HasMore = true
			uc.saveCheckpoint(ctx, bounds, cursor, result)
			break
		}
	}

	logger.Info("sync finished",
		"imported", result.ImportedCount,
		"scanned", result.ScannedCount,
		"skipped", result.SkippedCount,
		"errors", len(result.Errors),
		"has_more", result.HasMore)
	return nil
}

// resolveBounds picks the scan bounds. A stored checkpoint wins when the request has no
// range or the same range; otherwise the range or the resume strategy defines the bounds.
func (uc *SyncUseCase) resolveBounds(ctx context.Context, req model.SyncRequest, rng model.DateRange) (*scanBounds, error) {
	bounds := &scanBounds{}
	if rng.End != nil {
		bounds.latest = slack.FormatTimestamp(*rng.End)
	}

	switch {
	case rng.Start != nil:
		bounds.oldest = slack.FormatTimestamp(*rng.Start)

	case uc.resume == types.ResumeEpoch:
		bounds.oldest = uc.epochTimestamp()

	default:
		watermark, err := uc.repo.Message().LatestTimestamp(ctx, uc.channelID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get watermark", goerr.V(ChannelIDKey, uc.channelID))
		}
		bounds.oldest = watermark
		if watermark == "" {
			bounds.oldest = uc.epochTimestamp()
		}
	}

	cp, err := uc.repo.SyncState().GetCheckpoint(ctx, uc.channelID)
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		return bounds, nil
	case err != nil:
		return nil, goerr.Wrap(err, "failed to get checkpoint", goerr.V(ChannelIDKey, uc.channelID))
	}

	if req.IsEmpty() || cp.SameBounds(bounds.oldest, bounds.latest) {
		return &scanBounds{
			oldest:  cp.Oldest,
			latest:  cp.Latest,
			cursor:  cp.Cursor,
			resumed: true,
		}, nil
	}
	return bounds, nil
}

func (uc *SyncUseCase) epochTimestamp() string {
	if uc.epoch.IsZero() {
		return ""
	}
	return slack.FormatTimestamp(uc.epoch)
}

func (uc *SyncUseCase) saveCheckpoint(ctx context.Context, bounds *scanBounds, cursor string, result *model.SyncResult) {
	cp := &model.SyncCheckpoint{
		ChannelID: uc.channelID,
		Oldest:    bounds.oldest,
		Latest:    bounds.latest,
		Cursor:    cursor,
		UpdatedAt: time.Now(),
	}
	if err := uc.repo.SyncState().PutCheckpoint(ctx, cp); err != nil {
		errutil.Handle(ctx, err, "failed to save sync checkpoint")
		result.AddError("checkpoint", "save", err)
	}
}

// keepPosition records where a failed scan stopped so the next run continues it. Older
// messages on unread pages lie below the watermark and are only reachable through the
// checkpoint bounds.
func (uc *SyncUseCase) keepPosition(ctx context.Context, bounds *scanBounds, cursor string, pages int, fetchErr error, result *model.SyncResult) {
	switch {
	case pages > 0:
		uc.saveCheckpoint(ctx, bounds, cursor, result)

	case bounds.resumed:
		var rateErr *libslack.RateLimitedError
		if errors.As(fetchErr, &rateErr) {
			return
		}
		// the stored cursor may be stale; rescan the same bounds from the newest page
		uc.saveCheckpoint(ctx, bounds, "", result)
	}
}

func (uc *SyncUseCase) dropCheckpoint(ctx context.Context) {
	if err := uc.repo.SyncState().DeleteCheckpoint(ctx, uc.channelID); err != nil {
		errutil.Handle(ctx, err, "failed to delete sync checkpoint")
	}
}

// fetchPage requests one history page, waiting out rate limits up to maxRetries times
func (uc *SyncUseCase) fetchPage(ctx context.Context, query interfaces.HistoryQuery) (*interfaces.HistoryPage, error) {
	for attempt := 0; ; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, uc.callTimeout)
		page, err := uc.source.History(callCtx, query)
		cancel()
		if err == nil {
			return page, nil
		}

		var rateErr *libslack.RateLimitedError
		if !errors.As(err, &rateErr) {
			return nil, goerr.Wrap(err, "failed to list message history", goerr.V("cursor", query.Cursor))
		}
		if attempt >= uc.maxRetries {
			return nil, goerr.Wrap(err, "rate limit retries exhausted", goerr.V("attempts", attempt+1))
		}

		wait := rateErr.RetryAfter
		if wait <= 0 {
			wait = defaultRetryAfter
		}
		logging.From(ctx).Warn("history request rate limited",
			"retry_after", wait.String(),
			"attempt", attempt+1)
		if err := uc.sleep(ctx, wait); err != nil {
			return nil, goerr.Wrap(err, "interrupted while waiting for rate limit")
		}
	}
}

// scanMessage counts the message and imports its files when it falls in the range
func (uc *SyncUseCase) scanMessage(ctx context.Context, msg slack.Message, rng model.DateRange, result *model.SyncResult) {
	date, err := slack.MessageDate(msg.Timestamp)
	if err != nil {
		result.ScannedCount++
		result.AddError(msg.Timestamp, "parse timestamp", err)
		return
	}
	if !rng.Contains(date) {
		return
	}

	result.ScannedCount++
	if !msg.HasFiles() {
		return
	}
	uc.importFiles(ctx, msg, date, result)
}

// ImportMessage imports the image files of a single message through the same dedup path
// as Run. It is used by the realtime webhook and takes no run lock.
func (uc *SyncUseCase) ImportMessage(ctx context.Context, msg slack.Message) (*model.SyncResult, error) {
	if err := uc.configured(); err != nil {
		return nil, err
	}

	date, err := slack.MessageDate(msg.Timestamp)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse message timestamp")
	}

	result := &model.SyncResult{ScannedCount: 1}
	if msg.HasFiles() {
		uc.importFiles(ctx, msg, date, result)
	}
	result.Success = true
	return result, nil
}

func (uc *SyncUseCase) importFiles(ctx context.Context, msg slack.Message, date time.Time, result *model.SyncResult) {
	hasImage := false
	for _, f := range msg.Files {
		if f.IsImage() && f.DownloadURL() != "" {
			hasImage = true
			break
		}
	}
	if !hasImage {
		return
	}

	saved, err := uc.ensureMessage(ctx, msg, date)
	if err != nil {
		errutil.Handle(ctx, err, "failed to save message")
		result.AddError(msg.Timestamp, "save message", err)
		return
	}

	for idx, f := range msg.Files {
		uc.importFile(ctx, msg, saved, date, idx, f, result)
	}
}

// ensureMessage returns the stored message of ts, inserting it on first encounter.
// A concurrent insert of the same ts resolves by lookup.
func (uc *SyncUseCase) ensureMessage(ctx context.Context, msg slack.Message, date time.Time) (*model.Message, error) {
	existing, err := uc.repo.Message().GetByTimestamp(ctx, uc.channelOf(msg), msg.Timestamp)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}

	created := &model.Message{
		ID:        model.NewMessageID(),
		ChannelID: uc.channelOf(msg),
		Timestamp: msg.Timestamp,
		Text:      msg.Text,
		CreatedAt: date,
	}
	if err := uc.repo.Message().Create(ctx, created); err != nil {
		if errors.Is(err, interfaces.ErrAlreadyExists) {
			return uc.repo.Message().GetByTimestamp(ctx, created.ChannelID, created.Timestamp)
		}
		return nil, err
	}
	return created, nil
}

func (uc *SyncUseCase) channelOf(msg slack.Message) string {
	if msg.ChannelID != "" {
		return msg.ChannelID
	}
	return uc.channelID
}

func (uc *SyncUseCase) importFile(ctx context.Context, msg slack.Message, saved *model.Message, date time.Time, idx int, f slack.File, result *model.SyncResult) {
	if !f.IsImage() || f.DownloadURL() == "" {
		return
	}

	name := f.DisplayName()
	key := slack.SourceKey(msg.Timestamp, idx)

	_, err := uc.repo.Photo().GetBySourceKey(ctx, key)
	if err == nil {
		result.SkippedCount++
		return
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		result.AddError(name, "check duplicate", err)
		return
	}

	data, err := uc.download(ctx, f.DownloadURL())
	if err != nil {
		result.AddError(name, "download", err)
		return
	}

	blobName := slack.BlobName(msg.Timestamp, idx, name)
	url, err := uc.upload(ctx, blobName, data, f.Mimetype)
	if err != nil {
		result.AddError(name, "upload", err)
		return
	}

	photo := &model.Photo{
		ID:        model.NewPhotoID(),
		MessageID: saved.ID,
		SourceKey: key,
		ImageURL:  url,
		BlobName:  blobName,
		RawText:   msg.Text,
		Status:    types.PhotoStatusPending,
		CreatedAt: date,
	}
	if err := uc.repo.Photo().Create(ctx, photo); err != nil {
		if errors.Is(err, interfaces.ErrAlreadyExists) {
			result.SkippedCount++
			return
		}
		result.AddError(name, "save photo", err)
		return
	}

	result.ImportedCount++
}

func (uc *SyncUseCase) download(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.callTimeout)
	defer cancel()
	return uc.source.Download(ctx, url)
}

func (uc *SyncUseCase) upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.callTimeout)
	defer cancel()
	return uc.blob.Put(ctx, name, data, contentType)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
