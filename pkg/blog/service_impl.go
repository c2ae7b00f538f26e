package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository    Repository
	resolver      IdentityResolver
	identities    IdentityStore
	blobStore     BlobStore
	blobStoreName string
	eventSink     EventSink
	logger        *slog.Logger
	clock         func() time.Time
	maxUploadSize int64
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithIdentityResolver sets how the caller identity is resolved
func WithIdentityResolver(resolver IdentityResolver) Option {
	return func(s *service) {
		s.resolver = resolver
	}
}

// WithIdentityStore sets the account and role store
func WithIdentityStore(store IdentityStore) Option {
	return func(s *service) {
		s.identities = store
	}
}

// WithBlobStore sets the media storage backend
func WithBlobStore(name string, store BlobStore) Option {
	return func(s *service) {
		s.blobStoreName = name
		s.blobStore = store
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithClock overrides the time source
func WithClock(clock func() time.Time) Option {
	return func(s *service) {
		s.clock = clock
	}
}

// WithMaxUploadSize overrides the media size ceiling
func WithMaxUploadSize(n int64) Option {
	return func(s *service) {
		s.maxUploadSize = n
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		maxUploadSize: MaxUploadSize,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.maxUploadSize <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	if s.resolver == nil {
		s.resolver = NewContextIdentityResolver()
	}
	if s.eventSink == nil {
		s.eventSink = NewNoopEventSink()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.clock == nil {
		s.clock = time.Now
	}

	return s, nil
}

func (s *service) now() time.Time {
	return s.clock().UTC()
}

func (s *service) CurrentIdentity(ctx context.Context) (Identity, error) {
	return s.resolver.CurrentIdentity(ctx)
}

// authorize is the single guard for owner-scoped mutations. The caller must
// own the resource, or hold the admin role when adminOverride is set.
func authorize(caller Identity, ownerID uuid.UUID, adminOverride bool) error {
	if caller.UserID == ownerID {
		return nil
	}
	if adminOverride && caller.IsAdmin() {
		return nil
	}
	return ErrForbidden
}

func (s *service) requireAdmin(ctx context.Context) (Identity, error) {
	caller, err := s.resolver.CurrentIdentity(ctx)
	if err != nil {
		return Identity{}, err
	}
	if !caller.IsAdmin() {
		return caller, ErrForbidden
	}
	return caller, nil
}

func (s *service) requireIdentityStore() error {
	if s.identities == nil {
		return fmt.Errorf("identity store not configured: %w", ErrStorageUnavailable)
	}
	return nil
}

// notify reports an event sink failure without failing the operation.
func (s *service) notify(ctx context.Context, event string, err error) {
	if err != nil {
		s.logger.WarnContext(ctx, "event sink failed", "event", event, "error", err)
	}
}

// projector fills the Owner, Category, FeaturedImage and Author projections.
// References that no longer resolve are cleared instead of failing the read.
type projector struct {
	s          *service
	users      map[uuid.UUID]*User
	categories map[uuid.UUID]*Category
	media      map[uuid.UUID]*MediaFile
}

func (s *service) newProjector() *projector {
	return &projector{
		s:          s,
		users:      make(map[uuid.UUID]*User),
		categories: make(map[uuid.UUID]*Category),
		media:      make(map[uuid.UUID]*MediaFile),
	}
}

func (p *projector) user(ctx context.Context, id uuid.UUID) (*User, error) {
	if p.s.identities == nil {
		return nil, nil
	}
	if u, ok := p.users[id]; ok {
		return u, nil
	}
	u, err := p.s.identities.GetUser(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		u = nil
	}
	p.users[id] = u
	return u, nil
}

func (p *projector) category(ctx context.Context, id uuid.UUID) (*Category, error) {
	if c, ok := p.categories[id]; ok {
		return c, nil
	}
	c, err := p.s.repository.GetCategory(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		c = nil
	}
	p.categories[id] = c
	return c, nil
}

func (p *projector) mediaFile(ctx context.Context, id uuid.UUID) (*MediaFile, error) {
	if m, ok := p.media[id]; ok {
		return m, nil
	}
	m, err := p.s.repository.GetMediaFile(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		m = nil
	}
	p.media[id] = m
	return m, nil
}

func (p *projector) post(ctx context.Context, post *Post) error {
	owner, err := p.user(ctx, post.OwnerID)
	if err != nil {
		return err
	}
	post.Owner = owner

	post.Category = nil
	if post.CategoryID != nil {
		c, err := p.category(ctx, *post.CategoryID)
		if err != nil {
			return err
		}
		if c == nil {
			post.CategoryID = nil
		}
		post.Category = c
	}

	post.FeaturedImage = nil
	if post.FeaturedImageID != nil {
		m, err := p.mediaFile(ctx, *post.FeaturedImageID)
		if err != nil {
			return err
		}
		if m == nil {
			post.FeaturedImageID = nil
		}
		post.FeaturedImage = m
	}
	return nil
}

func (p *projector) posts(ctx context.Context, posts []*Post) error {
	for _, post := range posts {
		if err := p.post(ctx, post); err != nil {
			return err
		}
	}
	return nil
}

func (p *projector) comments(ctx context.Context, comments []*Comment) error {
	for _, c := range comments {
		author, err := p.user(ctx, c.AuthorID)
		if err != nil {
			return err
		}
		c.Author = author
	}
	return nil
}
