// README: Notification service; writes, lists and acknowledges user notifications.
package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"carrental/internal/modules/realtime"
	"carrental/internal/types"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListRecent(ctx context.Context, userID string, limit int) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id types.ID, userID string) error
}

type Service struct {
	store  Repository
	events realtime.Publisher
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewService(store Repository, events realtime.Publisher, log logrus.FieldLogger) *Service {
	return &Service{store: store, events: events, log: log, now: time.Now}
}

// Notify stores a notification for userID and announces it to that user.
func (s *Service) Notify(ctx context.Context, userID, title, message string, kind Kind) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: user and title are required", ErrBadRequest)
	}
	if kind == "" {
		kind = KindSystem
	}
	n := &Notification{
		ID:        types.NewID(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Kind:      kind,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	s.publish(ctx, realtime.ActionInsert, n.ID, userID)
	return nil
}

func (s *Service) NotifyBooking(ctx context.Context, userID, title, message string) error {
	return s.Notify(ctx, userID, title, message, KindBooking)
}

func (s *Service) List(ctx context.Context, userID string) (Inbox, error) {
	items, err := s.store.ListRecent(ctx, userID, PageSize)
	if err != nil {
		return Inbox{}, err
	}
	unread, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return Inbox{}, err
	}
	if items == nil {
		items = []Notification{}
	}
	return Inbox{Notifications: items, Unread: unread}, nil
}

// MarkRead acknowledges a notification. Notifications of other users look
// missing.
func (s *Service) MarkRead(ctx context.Context, id types.ID, userID string) error {
	if err := s.store.MarkRead(ctx, id, userID); err != nil {
		return err
	}
	s.publish(ctx, realtime.ActionUpdate, id, userID)
	return nil
}

func (s *Service) publish(ctx context.Context, action realtime.Action, id types.ID, userID string) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, realtime.NewEvent(realtime.TableNotifications, action, id, userID)); err != nil {
		s.log.WithError(err).WithField("notification_id", id).Warn("publish notification change")
	}
}
