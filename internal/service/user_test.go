package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/skycastlabs/skycast-api/internal/domain"
	"github.com/skycastlabs/skycast-api/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(store UserStore) *UserService {
	tokens := security.NewTokenManager("test-secret-key-with-32-chars!!", 30*24*time.Hour)
	return NewUserService(store, tokens)
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		store := new(MockUserStore)
		store.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, nil)
		store.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
			Run(func(args mock.Arguments) {
				user := args.Get(1).(*domain.User)
				user.ID = primitive.NewObjectID()
			}).
			Return(nil)

		svc := newTestService(store)
		auth, err := svc.Register(ctx, domain.UserCreate{Name: "A", Email: "a@x.com", Password: "secret123"})
		require.NoError(t, err)

		assert.Equal(t, "A", auth.Name)
		assert.Equal(t, "a@x.com", auth.Email)
		assert.NotEmpty(t, auth.Token)
		assert.Empty(t, auth.SearchHistory)
		assert.NotNil(t, auth.SearchHistory)
		assert.Equal(t, "metric", auth.Preferences.TemperatureUnit)

		store.AssertExpectations(t)
	})

	t.Run("password never stored in clear", func(t *testing.T) {
		store := new(MockUserStore)
		var created *domain.User
		store.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, nil)
		store.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*domain.User)
				created.ID = primitive.NewObjectID()
			}).
			Return(nil)

		svc := newTestService(store)
		_, err := svc.Register(ctx, domain.UserCreate{Name: "A", Email: "a@x.com", Password: "secret123"})
		require.NoError(t, err)

		require.NotNil(t, created)
		assert.NotEqual(t, "secret123", created.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret123")))
	})

	t.Run("duplicate email", func(t *testing.T) {
		store := new(MockUserStore)
		store.On("FindByEmail", mock.Anything, "a@x.com").
			Return(&domain.User{ID: primitive.NewObjectID(), Email: "a@x.com"}, nil)

		svc := newTestService(store)
		_, err := svc.Register(ctx, domain.UserCreate{Name: "B", Email: "a@x.com", Password: "whatever1"})
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()

	user := &domain.User{
		ID:           primitive.NewObjectID(),
		Name:         "A",
		Email:        "a@x.com",
		PasswordHash: hashOf(t, "secret123"),
	}

	t.Run("success", func(t *testing.T) {
		store := new(MockUserStore)
		store.On("FindByEmail", mock.Anything, "a@x.com").Return(user, nil)

		svc := newTestService(store)
		auth, err := svc.Login(ctx, domain.UserLogin{Email: "a@x.com", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, user.ID.Hex(), auth.ID)
		assert.NotEmpty(t, auth.Token)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		store := new(MockUserStore)
		store.On("FindByEmail", mock.Anything, "a@x.com").Return(user, nil)
		store.On("FindByEmail", mock.Anything, "nobody@x.com").Return(nil, nil)

		svc := newTestService(store)

		_, errWrongPassword := svc.Login(ctx, domain.UserLogin{Email: "a@x.com", Password: "wrong-pass"})
		_, errUnknownEmail := svc.Login(ctx, domain.UserLogin{Email: "nobody@x.com", Password: "secret123"})

		assert.ErrorIs(t, errWrongPassword, domain.ErrInvalidCredentials)
		assert.ErrorIs(t, errUnknownEmail, domain.ErrInvalidCredentials)
		assert.Equal(t, errWrongPassword, errUnknownEmail)
	})
}

func TestUserService_GetProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("no hash in profile", func(t *testing.T) {
		user := &domain.User{
			ID:           primitive.NewObjectID(),
			Name:         "A",
			Email:        "a@x.com",
			PasswordHash: hashOf(t, "secret123"),
		}
		store := new(MockUserStore)
		store.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		svc := newTestService(store)
		profile, err := svc.GetProfile(ctx, user.ID.Hex())
		require.NoError(t, err)

		body, err := json.Marshal(profile)
		require.NoError(t, err)
		assert.NotContains(t, string(body), "password")
		assert.NotContains(t, string(body), user.PasswordHash)
	})

	t.Run("not found", func(t *testing.T) {
		store := new(MockUserStore)
		store.On("FindByID", mock.Anything, mock.Anything).Return(nil, nil)

		svc := newTestService(store)
		_, err := svc.GetProfile(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		store := new(MockUserStore)
		svc := newTestService(store)
		_, err := svc.GetProfile(ctx, "not-an-object-id")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("preferences merge, not replace", func(t *testing.T) {
		user := &domain.User{
			ID:           primitive.NewObjectID(),
			Name:         "A",
			Email:        "a@x.com",
			PasswordHash: hashOf(t, "secret123"),
			Preferences: domain.Preferences{
				TemperatureUnit: "metric",
				DefaultLocation: &domain.DefaultLocation{City: "Oslo", Country: "NO"},
			},
		}
		store := new(MockUserStore)
		store.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		store.On("Update", mock.Anything, user).Return(nil)

		svc := newTestService(store)
		auth, err := svc.UpdateProfile(ctx, user.ID.Hex(), domain.ProfileUpdate{
			Preferences: &domain.PreferencesUpdate{TemperatureUnit: "imperial"},
		})
		require.NoError(t, err)

		assert.Equal(t, "imperial", auth.Preferences.TemperatureUnit)
		require.NotNil(t, auth.Preferences.DefaultLocation)
		assert.Equal(t, "Oslo", auth.Preferences.DefaultLocation.City)
		assert.Equal(t, "NO", auth.Preferences.DefaultLocation.Country)
	})

	t.Run("only provided fields change", func(t *testing.T) {
		user := &domain.User{
			ID:           primitive.NewObjectID(),
			Name:         "A",
			Email:        "a@x.com",
			PasswordHash: hashOf(t, "secret123"),
		}
		store := new(MockUserStore)
		store.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		store.On("Update", mock.Anything, user).Return(nil)

		svc := newTestService(store)
		auth, err := svc.UpdateProfile(ctx, user.ID.Hex(), domain.ProfileUpdate{Name: "B"})
		require.NoError(t, err)

		assert.Equal(t, "B", auth.Name)
		assert.Equal(t, "a@x.com", auth.Email)
		assert.NotEmpty(t, auth.Token)
	})

	t.Run("password change rehashes", func(t *testing.T) {
		oldHash := hashOf(t, "secret123")
		user := &domain.User{
			ID:           primitive.NewObjectID(),
			Email:        "a@x.com",
			PasswordHash: oldHash,
		}
		store := new(MockUserStore)
		store.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		store.On("Update", mock.Anything, user).Return(nil)

		svc := newTestService(store)
		_, err := svc.UpdateProfile(ctx, user.ID.Hex(), domain.ProfileUpdate{Password: "brand-new-pass"})
		require.NoError(t, err)

		assert.NotEqual(t, oldHash, user.PasswordHash)
		assert.NotEqual(t, "brand-new-pass", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("brand-new-pass")))
	})
}

func TestUserService_AddSearchHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("newest first, capped at five", func(t *testing.T) {
		user := &domain.User{
			ID:            primitive.NewObjectID(),
			Email:         "a@x.com",
			SearchHistory: []domain.SearchEntry{},
		}
		store := new(MockUserStore)
		store.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		store.On("Update", mock.Anything, user).Return(nil)

		svc := newTestService(store)

		var history []domain.SearchEntry
		for i := 1; i <= 6; i++ {
			var err error
			history, err = svc.AddSearchHistory(ctx, user.ID.Hex(), domain.HistoryAdd{
				City:    fmt.Sprintf("C%d", i),
				Country: "XX",
			})
			require.NoError(t, err)
			assert.LessOrEqual(t, len(history), 5)
		}

		require.Len(t, history, 5)
		got := make([]string, 0, len(history))
		for _, e := range history {
			got = append(got, e.City)
		}
		assert.Equal(t, []string{"C6", "C5", "C4", "C3", "C2"}, got)
		assert.False(t, strings.Contains(strings.Join(got, ","), "C1"))
	})

	t.Run("entries carry a timestamp", func(t *testing.T) {
		user := &domain.User{ID: primitive.NewObjectID(), Email: "a@x.com"}
		store := new(MockUserStore)
		store.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		store.On("Update", mock.Anything, user).Return(nil)

		svc := newTestService(store)
		history, err := svc.AddSearchHistory(ctx, user.ID.Hex(), domain.HistoryAdd{City: "Oslo", Country: "NO"})
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.WithinDuration(t, time.Now().UTC(), history[0].Timestamp, time.Minute)
	})

	t.Run("unknown user", func(t *testing.T) {
		store := new(MockUserStore)
		store.On("FindByID", mock.Anything, mock.Anything).Return(nil, nil)

		svc := newTestService(store)
		_, err := svc.AddSearchHistory(ctx, primitive.NewObjectID().Hex(), domain.HistoryAdd{City: "Oslo"})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
