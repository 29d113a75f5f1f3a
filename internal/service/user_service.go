package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"couple-checklist/internal/model"
	"couple-checklist/internal/repository"
)

const maxNameLength = 100

// DefaultPair is the pair of users created on first start.
var DefaultPair = []model.User{
	{Name: "Jenifer", AvatarEmoji: "💕"},
	{Name: "Argenis", AvatarEmoji: "🍷"},
}

// UserService manages the two users sharing the checklist.
type UserService struct {
	repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// SeedPair creates the default users that are missing.
func (s *UserService) SeedPair(ctx context.Context) error {
	users := make([]model.User, len(DefaultPair))
	copy(users, DefaultPair)
	return s.repo.EnsureUsers(ctx, users)
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.repo.ListAll(ctx)
}

func (s *UserService) Get(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// Update changes the display name and avatar of a user.
func (s *UserService) Update(ctx context.Context, id uint, name, avatar string) (*model.User, error) {
	name = strings.TrimSpace(name)
	avatar = strings.TrimSpace(avatar)
	if name == "" {
		return nil, invalid("name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, invalid("name is longer than %d characters", maxNameLength)
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if avatar == "" {
		avatar = current.AvatarEmoji
	}

	if err := s.repo.UpdateProfile(ctx, id, name, avatar); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	current.Name = name
	current.AvatarEmoji = avatar
	return current, nil
}

// LinkTelegram binds a Telegram chat to the user with the given name.
func (s *UserService) LinkTelegram(ctx context.Context, name string, chatID int64) (*model.User, error) {
	user, err := s.repo.FindByName(ctx, strings.TrimSpace(name))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.repo.LinkChat(ctx, user.ID, chatID); err != nil {
		return nil, err
	}
	user.TelegramChatID = &chatID
	return user, nil
}

// ByChat returns the user linked to a Telegram chat.
func (s *UserService) ByChat(ctx context.Context, chatID int64) (*model.User, error) {
	user, err := s.repo.FindByChatID(ctx, chatID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// Partner returns the other user of the pair.
func (s *UserService) Partner(ctx context.Context, userID uint) (*model.User, error) {
	users, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID != userID {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}
