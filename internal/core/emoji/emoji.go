// Package emoji holds the custom emoji repository port and the metadata
// resync flow driven by streaming emoji events.
package emoji

import (
	"context"
	"fmt"

	"Fediview/internal/client"
	"Fediview/internal/core/accounts"
)

// Emoji is one custom emoji, keyed by (host, name).
type Emoji struct {
	Name string
	URL  string
}

// WithAliases pairs an emoji with its alias names.
type WithAliases struct {
	Emoji   Emoji
	Aliases []string
}

// Repository is the durable custom emoji store, keyed by normalized host.
// Persistence collaborator.
type Repository interface {
	AddAll(ctx context.Context, host string, emojis []WithAliases) error
	DeleteAll(ctx context.Context, host string, names []string) error
	ReplaceAll(ctx context.Context, host string, emojis []WithAliases) error
	FindByHost(ctx context.Context, host string) ([]WithAliases, error)
}

// Service owns the full-resync path: on an "emoji added" event the whole
// instance metadata is refetched and the host's set replaced, because added
// events do not carry enough detail to apply incrementally.
type Service struct {
	repo    Repository
	misskey client.MisskeyProvider
}

func NewService(repo Repository, misskey client.MisskeyProvider) *Service {
	return &Service{repo: repo, misskey: misskey}
}

// Resync refetches the instance emoji set and replaces the host's cache.
func (s *Service) Resync(ctx context.Context, account accounts.Account) error {
	dtos, err := s.misskey.Get(account).Emojis(ctx)
	if err != nil {
		return fmt.Errorf("fetching emoji metadata from %s: %w", account.NormalizedHost(), err)
	}
	emojis := make([]WithAliases, len(dtos))
	for i, dto := range dtos {
		emojis[i] = WithAliases{
			Emoji:   Emoji{Name: dto.Name, URL: dto.URL},
			Aliases: dto.Aliases,
		}
	}
	if err := s.repo.ReplaceAll(ctx, account.NormalizedHost(), emojis); err != nil {
		return fmt.Errorf("replacing emoji cache for %s: %w", account.NormalizedHost(), err)
	}
	return nil
}

// Add applies an incremental "emoji updated" event.
func (s *Service) Add(ctx context.Context, account accounts.Account, emojis []WithAliases) error {
	return s.repo.AddAll(ctx, account.NormalizedHost(), emojis)
}

// Delete applies an incremental "emoji deleted" event.
func (s *Service) Delete(ctx context.Context, account accounts.Account, names []string) error {
	return s.repo.DeleteAll(ctx, account.NormalizedHost(), names)
}
