package issues

import (
	"context"
	"errors"
	"strings"

	"github.com/gastrohub/console-backend/internal/platform"
	"github.com/gastrohub/console-backend/pkg/enums"
	pkgerrors "github.com/gastrohub/console-backend/pkg/errors"
	"github.com/gastrohub/console-backend/pkg/logger"
	"github.com/gastrohub/console-backend/pkg/redis"
)

var (
	errClientRequired = errors.New("issues platform client is required")
	errLoggerRequired = errors.New("issues logger is required")
)

const maxNotesLength = 4000

// PlatformClient is the slice of the platform API the issue service needs.
type PlatformClient interface {
	ListIssues(ctx context.Context, restaurantID string) ([]platform.OrderIssue, error)
	UpdateStatus(ctx context.Context, issueID string, status string) (*platform.OrderIssue, error)
	UpdateNotes(ctx context.Context, issueID string, notes string) (*platform.OrderIssue, error)
	FetchOrderItems(ctx context.Context, issueID string) ([]platform.OrderItem, error)
}

// Service owns the issue registry and the mutation workflow against the
// platform.
type Service interface {
	List(ctx context.Context, restaurantID string, refresh bool) ([]platform.OrderIssue, error)
	Reload(ctx context.Context, restaurantID string) ([]platform.OrderIssue, error)
	Get(ctx context.Context, restaurantID, issueID string) (platform.OrderIssue, error)
	Badges(ctx context.Context, restaurantID string) (Badges, error)
	SetStatus(ctx context.Context, restaurantID, issueID string, status enums.IssueStatus) (*platform.OrderIssue, error)
	SetNotes(ctx context.Context, restaurantID, issueID, notes string) (*platform.OrderIssue, error)
	OrderItems(ctx context.Context, restaurantID, issueID string) ([]platform.OrderItem, error)

	// Guard serializes mutations per issue; refunds share it so a refund and
	// a status change never race on the same issue.
	Acquire(issueID string) error
	Release(issueID string)
	Invalidate(ctx context.Context, restaurantID string)
}

type service struct {
	client   PlatformClient
	registry *Registry
	badges   redis.BadgePublisher
	logger   *logger.Logger
}

// NewService validates dependencies and builds the issue service. The badge
// publisher may be nil.
func NewService(client PlatformClient, registry *Registry, badges redis.BadgePublisher, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, errClientRequired
	}
	if logg == nil {
		return nil, errLoggerRequired
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &service{
		client:   client,
		registry: registry,
		badges:   badges,
		logger:   logg,
	}, nil
}

func (s *service) List(ctx context.Context, restaurantID string, refresh bool) ([]platform.OrderIssue, error) {
	if restaurantID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}
	if refresh || !s.registry.Loaded(restaurantID) {
		return s.Reload(ctx, restaurantID)
	}
	return s.registry.List(restaurantID), nil
}

func (s *service) Reload(ctx context.Context, restaurantID string) ([]platform.OrderIssue, error) {
	if restaurantID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}

	before := s.registry.Counts(restaurantID)
	issues, err := s.client.ListIssues(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	s.registry.Replace(restaurantID, issues)
	s.publishIfCountsChanged(ctx, restaurantID, before)

	ctx = s.logger.WithRestaurantID(ctx, restaurantID)
	s.logger.Info(ctx, "issue registry reloaded")
	return s.registry.List(restaurantID), nil
}

func (s *service) Get(ctx context.Context, restaurantID, issueID string) (platform.OrderIssue, error) {
	if !s.registry.Loaded(restaurantID) {
		if _, err := s.Reload(ctx, restaurantID); err != nil {
			return platform.OrderIssue{}, err
		}
	}
	issue, ok := s.registry.Get(restaurantID, issueID)
	if !ok {
		return platform.OrderIssue{}, pkgerrors.New(pkgerrors.CodeNotFound, "issue not found")
	}
	return issue, nil
}

func (s *service) Badges(ctx context.Context, restaurantID string) (Badges, error) {
	if restaurantID == "" {
		return Badges{}, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}
	if !s.registry.Loaded(restaurantID) {
		if _, err := s.Reload(ctx, restaurantID); err != nil {
			return Badges{}, err
		}
	}
	return s.registry.Counts(restaurantID), nil
}

// SetStatus applies the new status to the cached issue immediately, then
// confirms it with the platform. On error the previous value is restored.
// Responses landing after a reload are discarded; the reload already carried
// the authoritative state.
func (s *service) SetStatus(ctx context.Context, restaurantID, issueID string, status enums.IssueStatus) (*platform.OrderIssue, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid issue status")
	}
	if status == enums.IssueStatusDismissed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dismissing issues is reserved for platform support")
	}

	previous, err := s.Get(ctx, restaurantID, issueID)
	if err != nil {
		return nil, err
	}
	if previous.Status == status {
		return &previous, nil
	}

	if err := s.Acquire(issueID); err != nil {
		return nil, err
	}
	defer s.Release(issueID)

	before := s.registry.Counts(restaurantID)
	epoch := s.registry.Epoch(restaurantID)

	optimistic := previous
	optimistic.Status = status
	s.registry.Apply(restaurantID, epoch, optimistic)

	updated, err := s.client.UpdateStatus(ctx, issueID, status.String())
	if err != nil {
		s.registry.Apply(restaurantID, epoch, previous)
		return nil, err
	}

	if !s.registry.Apply(restaurantID, epoch, *updated) {
		ctx := s.logger.WithIssueID(ctx, issueID)
		s.logger.Warn(ctx, "discarding stale status response after reload")
	}
	s.publishIfCountsChanged(ctx, restaurantID, before)
	return updated, nil
}

// SetNotes mirrors SetStatus for the manager notes field.
func (s *service) SetNotes(ctx context.Context, restaurantID, issueID, notes string) (*platform.OrderIssue, error) {
	notes = strings.TrimSpace(notes)
	if len(notes) > maxNotesLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notes exceed maximum length")
	}

	previous, err := s.Get(ctx, restaurantID, issueID)
	if err != nil {
		return nil, err
	}

	if err := s.Acquire(issueID); err != nil {
		return nil, err
	}
	defer s.Release(issueID)

	epoch := s.registry.Epoch(restaurantID)

	optimistic := previous
	optimistic.ManagerNotes = &notes
	s.registry.Apply(restaurantID, epoch, optimistic)

	updated, err := s.client.UpdateNotes(ctx, issueID, notes)
	if err != nil {
		s.registry.Apply(restaurantID, epoch, previous)
		return nil, err
	}

	if !s.registry.Apply(restaurantID, epoch, *updated) {
		ctx := s.logger.WithIssueID(ctx, issueID)
		s.logger.Warn(ctx, "discarding stale notes response after reload")
	}
	return updated, nil
}

func (s *service) OrderItems(ctx context.Context, restaurantID, issueID string) ([]platform.OrderItem, error) {
	if _, err := s.Get(ctx, restaurantID, issueID); err != nil {
		return nil, err
	}
	return s.client.FetchOrderItems(ctx, issueID)
}

func (s *service) Acquire(issueID string) error {
	return s.registry.Acquire(issueID)
}

func (s *service) Release(issueID string) {
	s.registry.Release(issueID)
}

// Invalidate drops the cached list so the next read refetches. Refunds call
// this after changing the world behind the cache's back.
func (s *service) Invalidate(ctx context.Context, restaurantID string) {
	s.registry.Drop(restaurantID)
	s.publishBadges(ctx, restaurantID)
}

func (s *service) publishIfCountsChanged(ctx context.Context, restaurantID string, before Badges) {
	after := s.registry.Counts(restaurantID)
	if after == before {
		return
	}
	s.publishBadges(ctx, restaurantID)
}

func (s *service) publishBadges(ctx context.Context, restaurantID string) {
	if s.badges == nil {
		return
	}
	if err := s.badges.PublishBadgeInvalidation(ctx, restaurantID); err != nil {
		s.logger.Warn(s.logger.WithRestaurantID(ctx, restaurantID), "publishing badge invalidation failed")
	}
}
