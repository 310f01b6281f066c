package service

import (
	"context"
	"fmt"
	"time"

	"github.com/skycastlabs/skycast-api/internal/domain"
	"github.com/skycastlabs/skycast-api/internal/security"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// maxSearchHistory caps a user's stored search history. Truncation
// happens on every insert so the stored record stays bounded.
const maxSearchHistory = 5

const defaultTemperatureUnit = "metric"

// UserStore is the persistence contract the account service depends on.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
}

// UserService handles registration, login, profile reads and updates,
// and the bounded search history.
type UserService struct {
	store  UserStore
	tokens *security.TokenManager
}

// NewUserService creates a new user service.
func NewUserService(store UserStore, tokens *security.TokenManager) *UserService {
	return &UserService{
		store:  store,
		tokens: tokens,
	}
}

// Register creates a new account and signs the user in.
func (s *UserService) Register(ctx context.Context, input domain.UserCreate) (*domain.AuthenticatedUser, error) {
	existing, err := s.store.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Name:          input.Name,
		Email:         input.Email,
		PasswordHash:  string(hashed),
		SearchHistory: []domain.SearchEntry{},
		Preferences: domain.Preferences{
			TemperatureUnit: defaultTemperatureUnit,
		},
	}

	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.withToken(user)
}

// Login authenticates a user. A wrong email and a wrong password both
// yield domain.ErrInvalidCredentials, never distinguishing which.
func (s *UserService) Login(ctx context.Context, input domain.UserLogin) (*domain.AuthenticatedUser, error) {
	user, err := s.store.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.withToken(user)
}

// GetProfile returns the public view of a user.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := user.PublicProfile()
	return &profile, nil
}

// UpdateProfile applies a partial mutation: only provided fields
// change, preferences merge field by field, a new password is rehashed.
// A fresh token is issued alongside the updated profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input domain.ProfileUpdate) (*domain.AuthenticatedUser, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	if input.Preferences != nil {
		if input.Preferences.TemperatureUnit != "" {
			user.Preferences.TemperatureUnit = input.Preferences.TemperatureUnit
		}
		if input.Preferences.DefaultLocation != nil {
			user.Preferences.DefaultLocation = input.Preferences.DefaultLocation
		}
	}
	if input.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.store.Update(ctx, user); err != nil {
		return nil, err
	}

	return s.withToken(user)
}

// AddSearchHistory inserts a search at the front of the user's history,
// truncates it to maxSearchHistory entries and persists the result.
func (s *UserService) AddSearchHistory(ctx context.Context, userID string, input domain.HistoryAdd) ([]domain.SearchEntry, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry := domain.SearchEntry{
		City:      input.City,
		Country:   input.Country,
		Timestamp: time.Now().UTC(),
	}

	history := append([]domain.SearchEntry{entry}, user.SearchHistory...)
	if len(history) > maxSearchHistory {
		history = history[:maxSearchHistory]
	}
	user.SearchHistory = history

	if err := s.store.Update(ctx, user); err != nil {
		return nil, err
	}

	return user.SearchHistory, nil
}

func (s *UserService) getUser(ctx context.Context, userID string) (*domain.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) withToken(user *domain.User) (*domain.AuthenticatedUser, error) {
	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &domain.AuthenticatedUser{
		Profile: user.PublicProfile(),
		Token:   token,
	}, nil
}
