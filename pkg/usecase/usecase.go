package usecase

import (
	"time"

	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/service/matcher"
)

type UseCases struct {
	repo     interfaces.Repository
	source   interfaces.MessageSource
	blob     interfaces.BlobStore
	syncOpts []SyncOption
	matcher  *matcher.Matcher
	location *time.Location
	reasons  []string

	Sync      *SyncUseCase
	Triage    *TriageUseCase
	Catalog   *CatalogUseCase
	Dashboard *DashboardUseCase
	Slack     *SlackUseCases
	Auth      AuthUseCaseInterface
}

type Option func(*UseCases)

// WithMessageSource sets the Slack history client used by the sync engine
func WithMessageSource(source interfaces.MessageSource) Option {
	return func(uc *UseCases) {
		uc.source = source
	}
}

// WithBlobStore sets where imported images are uploaded
func WithBlobStore(blob interfaces.BlobStore) Option {
	return func(uc *UseCases) {
		uc.blob = blob
	}
}

func WithSyncOptions(opts ...SyncOption) Option {
	return func(uc *UseCases) {
		uc.syncOpts = append(uc.syncOpts, opts...)
	}
}

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

func WithMatcher(m *matcher.Matcher) Option {
	return func(uc *UseCases) {
		uc.matcher = m
	}
}

// WithLocation sets the location calendar dates and weeks are resolved in
func WithLocation(loc *time.Location) Option {
	return func(uc *UseCases) {
		uc.location = loc
	}
}

func WithRejectionReasons(reasons []string) Option {
	return func(uc *UseCases) {
		uc.reasons = reasons
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		location: time.Local,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.matcher == nil {
		uc.matcher = matcher.New()
	}
	if uc.Auth == nil {
		uc.Auth = NewNoAuthnUseCase("", "")
	}

	syncOpts := append([]SyncOption{WithSyncLocation(uc.location)}, uc.syncOpts...)
	uc.Sync = NewSyncUseCase(repo, uc.source, uc.blob, syncOpts...)
	uc.Triage = NewTriageUseCase(repo, uc.matcher, uc.reasons)
	uc.Catalog = NewCatalogUseCase(repo)
	uc.Dashboard = NewDashboardUseCase(repo, uc.location)
	uc.Slack = NewSlackUseCases(uc.Sync)

	return uc
}
