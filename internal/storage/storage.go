// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"time"

	"newsbot/internal/model"
)

// Storage is the interface for all persistence operations.
// Preference mutations are atomic per user record.
type Storage interface {
	GetOrCreateUser(ctx context.Context, chatID int64) (*model.Preferences, error)
	ToggleMacro(ctx context.Context, chatID int64, macro string) (*model.Preferences, error)
	ToggleBranch(ctx context.Context, chatID int64, branch string) (*model.Preferences, error)
	SetMacros(ctx context.Context, chatID int64, macros []string) error
	SetBranches(ctx context.Context, chatID int64, branches []string) error
	ResetPreferences(ctx context.Context, chatID int64) error
	ListUsers(ctx context.Context) ([]int64, error)

	MarkSent(ctx context.Context, chatID int64, url string) error
	FilterUnsent(ctx context.Context, chatID int64, urls []string) ([]string, error)
	PruneSentBefore(ctx context.Context, cutoff time.Time) (int64, error)

	Close() error
}
