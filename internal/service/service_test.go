package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hadracha/guides-portal/internal/model"
	"github.com/hadracha/guides-portal/pkg/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Named shared-cache DSN so every pooled connection sees the same
	// in-memory database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.MainTopic{},
		&model.SubTopic{},
		&model.PendingTopic{},
		&model.Material{},
		&model.TargetAudience{},
		&model.Like{},
		&model.Comment{},
	))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, role string) *model.User {
	t.Helper()

	user := &model.User{
		Phone:    "05" + uuid.NewString()[:8],
		FullName: "משתמש בדיקה",
		Role:     role,
		Active:   true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func asActing(u *model.User) model.ActingUser {
	return model.ActingUser{ID: u.ID, Role: u.Role}
}

// fakeStorage records uploads and deletes so tests can assert exactly which
// storage calls a workflow made.
type fakeStorage struct {
	mu         sync.Mutex
	uploads    []string
	deletes    []string
	failUpload bool
	failDelete bool
}

func (f *fakeStorage) UploadFile(_ context.Context, r io.Reader, folder, fileName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpload {
		return "", errors.New("storage unavailable")
	}
	_, _ = io.Copy(io.Discard, r)
	url := "https://storage.test/" + folder + "/" + fileName
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeStorage) DeleteFile(_ context.Context, fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return errors.New("storage unavailable")
	}
	f.deletes = append(f.deletes, fileURL)
	return nil
}

type fakeSMS struct {
	mu       sync.Mutex
	messages map[string]string
}

func newFakeSMS() *fakeSMS {
	return &fakeSMS{messages: map[string]string{}}
}

func (f *fakeSMS) Send(_ context.Context, phone, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[phone] = message
	return nil
}

// memOTPStore is an in-memory stand-in for the redis store. Expiry is not
// simulated; tests drive the flow within a single instant.
type memOTPStore struct {
	mu    sync.Mutex
	codes map[string]string
	slots map[string]bool
}

func newMemOTPStore() *memOTPStore {
	return &memOTPStore{codes: map[string]string{}, slots: map[string]bool{}}
}

func (s *memOTPStore) SaveCode(_ context.Context, phone, code string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[phone] = code
	return nil
}

func (s *memOTPStore) GetCode(_ context.Context, phone string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[phone], nil
}

func (s *memOTPStore) DeleteCode(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, phone)
	return nil
}

func (s *memOTPStore) AcquireSendSlot(_ context.Context, phone string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slots[phone] {
		return false, nil
	}
	s.slots[phone] = true
	return true, nil
}

type fakeSearch struct {
	mu      sync.Mutex
	indexed []string
	deleted []string
}

func (f *fakeSearch) IndexMaterial(m *model.Material) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, m.ID.String())
	return nil
}

func (f *fakeSearch) DeleteMaterial(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func testLogger() *logger.Logger {
	return logger.NewNop()
}
