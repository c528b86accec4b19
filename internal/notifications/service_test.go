package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorforge/workshop-backend/pkg/db/models"
	pkgerrors "github.com/motorforge/workshop-backend/pkg/errors"
	"github.com/motorforge/workshop-backend/pkg/pagination"
)

type stubServiceRepo struct {
	rows      []models.Notification
	next      *pagination.Cursor
	marked    []uuid.UUID
	markFound bool
	allCount  int64
	unread    int64
}

func (s *stubServiceRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubServiceRepo) Create(ctx context.Context, notification *models.Notification) error {
	s.rows = append(s.rows, *notification)
	return nil
}

func (s *stubServiceRepo) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	s.rows = append(s.rows, notifications...)
	return nil
}

func (s *stubServiceRepo) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	return s.rows, s.next, nil
}

func (s *stubServiceRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.unread, nil
}

func (s *stubServiceRepo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	s.marked = append(s.marked, notificationID)
	return notificationMarkResult{Updated: s.markFound, Found: s.markFound}, nil
}

func (s *stubServiceRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	return s.allCount, nil
}

func TestListRequiresUser(t *testing.T) {
	svc, err := NewService(&stubServiceRepo{})
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}
	_, err = svc.List(context.Background(), ListParams{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestListEncodesCursor(t *testing.T) {
	next := &pagination.Cursor{CreatedAt: time.Now().UTC(), ID: uuid.New()}
	repo := &stubServiceRepo{
		rows: []models.Notification{{ID: uuid.New()}},
		next: next,
	}
	svc, _ := NewService(repo)

	result, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Limit: 10})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if result.Cursor == "" {
		t.Fatal("expected encoded cursor")
	}
	parsed, err := pagination.ParseCursor(result.Cursor)
	if err != nil || parsed.ID != next.ID {
		t.Fatalf("cursor round trip failed: %v", err)
	}
}

func TestListRejectsBadCursor(t *testing.T) {
	svc, _ := NewService(&stubServiceRepo{})
	_, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Cursor: "not-a-cursor"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestMarkReadNotFound(t *testing.T) {
	svc, _ := NewService(&stubServiceRepo{markFound: false})
	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestMarkAllRead(t *testing.T) {
	svc, _ := NewService(&stubServiceRepo{allCount: 4})
	count, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 got %d", count)
	}
}
