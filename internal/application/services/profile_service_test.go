package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/raunelaunch/fooddiscovery/internal/adapters/cache"
	"github.com/raunelaunch/fooddiscovery/internal/adapters/catalog"
	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/raunelaunch/fooddiscovery/internal/domain/repositories"
	apperrors "github.com/raunelaunch/fooddiscovery/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockAccountSeed struct {
	mock.Mock
}

func (m *mockAccountSeed) ListAccounts(ctx context.Context) ([]entities.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Account), args.Error(1)
}

var profileClock = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newProfileService(t *testing.T, seed repositories.AccountSeedRepository) (*ProfileService, *cache.MemoryAdapter) {
	t.Helper()
	store, err := cache.NewMemoryAdapter(128)
	require.NoError(t, err)

	svc, err := NewProfileService(store, seed, "test-secret", time.Hour)
	require.NoError(t, err)
	svc.hashCost = bcrypt.MinCost
	svc.now = func() time.Time { return profileClock }
	return svc, store
}

func login(t *testing.T, svc *ProfileService, identifier, password string) *LoginResult {
	t.Helper()
	result, err := svc.Login(context.Background(), identifier, password)
	require.NoError(t, err)
	return result
}

func TestNewProfileService_RequiresSecret(t *testing.T) {
	store, err := cache.NewMemoryAdapter(8)
	require.NoError(t, err)

	_, err = NewProfileService(store, nil, "", time.Hour)
	assert.Error(t, err)
}

func TestProfileService_InitializeAccountsOnce(t *testing.T) {
	seed := new(mockAccountSeed)
	seed.On("ListAccounts", mock.Anything).Return([]entities.Account{
		{ID: 1, Username: "An", Email: "an@raune.vn", Password: "secret"},
	}, nil).Once()
	svc, _ := newProfileService(t, seed)
	ctx := context.Background()

	require.NoError(t, svc.InitializeAccounts(ctx))
	require.NoError(t, svc.InitializeAccounts(ctx))

	accounts, err := svc.AllAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Empty(t, accounts[0].Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(accounts[0].PasswordHash), []byte("secret")))
	seed.AssertExpectations(t)
}

func TestProfileService_InitializeSeedFailure(t *testing.T) {
	seed := new(mockAccountSeed)
	seed.On("ListAccounts", mock.Anything).Return(nil, errors.New("disk error"))
	svc, _ := newProfileService(t, seed)

	_, err := svc.AllAccounts(context.Background())
	assert.Error(t, err)
}

func TestProfileService_Login(t *testing.T) {
	svc, _ := newProfileService(t, catalog.NewEmbeddedJSONAdapter())

	byEmail := login(t, svc, "MinhAnh@raune.vn", "password123")
	assert.NotEmpty(t, byEmail.Token)
	assert.Equal(t, int64(1), byEmail.Session.UserID)
	assert.Equal(t, profileClock.Add(time.Hour), byEmail.Session.ExpiresAt)
	assert.Equal(t, []string{"Vietnamese", "Cafe"}, byEmail.Profile.Prefs)

	byName := login(t, svc, "Lê Thu Hà", "hanoi@123")
	assert.Equal(t, int64(3), byName.Session.UserID)
	assert.Equal(t, entities.DefaultProfileImage, byName.Session.ProfileImage)

	_, err := svc.Login(context.Background(), "quocbao@raune.vn", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	assert.Contains(t, err.Error(), CodeInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@raune.vn", "password123")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
}

func TestProfileService_CurrentProfile(t *testing.T) {
	svc, _ := newProfileService(t, catalog.NewEmbeddedJSONAdapter())
	ctx := context.Background()

	result := login(t, svc, "quocbao@raune.vn", "baobao2024")

	profile, err := svc.CurrentProfile(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(2), profile.ID)

	anonymous, err := svc.CurrentProfile(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), anonymous.ID)

	garbage, err := svc.CurrentProfile(ctx, "not-a-token")
	require.NoError(t, err)
	assert.Equal(t, int64(1), garbage.ID)

	prefs, err := svc.PreferenceProfile(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{"Western", "Fast Food"}, prefs.Prefs)
	assert.Equal(t, []int64{4, 6}, prefs.History)
}

func TestProfileService_CurrentProfileWithoutAccounts(t *testing.T) {
	svc, _ := newProfileService(t, nil)

	profile, err := svc.CurrentProfile(context.Background(), "")

	require.NoError(t, err)
	assert.Zero(t, profile.ID)
	assert.Equal(t, entities.DefaultProfileImage, profile.ProfileImage)
	assert.Empty(t, profile.Prefs)
	assert.NotNil(t, profile.History)
}

func TestProfileService_Logout(t *testing.T) {
	svc, store := newProfileService(t, catalog.NewEmbeddedJSONAdapter())
	ctx := context.Background()

	result := login(t, svc, "minhanh@raune.vn", "password123")
	require.NoError(t, svc.Logout(ctx, result.Token))

	exists, err := store.Exists(ctx, KeySessionPrefix+result.Session.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	session, err := svc.CurrentSession(ctx, result.Token)
	require.NoError(t, err)
	assert.Nil(t, session)

	assert.NoError(t, svc.Logout(ctx, "garbage"))
}

func TestProfileService_ExpiredSessionRemoved(t *testing.T) {
	svc, store := newProfileService(t, catalog.NewEmbeddedJSONAdapter())
	ctx := context.Background()

	result := login(t, svc, "minhanh@raune.vn", "password123")
	svc.now = func() time.Time { return profileClock.Add(2 * time.Hour) }

	session, err := svc.CurrentSession(ctx, result.Token)
	require.NoError(t, err)
	assert.Nil(t, session)

	exists, err := store.Exists(ctx, KeySessionPrefix+result.Session.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProfileService_TokenSignedWithOtherSecret(t *testing.T) {
	svc, _ := newProfileService(t, catalog.NewEmbeddedJSONAdapter())
	other, _ := newProfileService(t, catalog.NewEmbeddedJSONAdapter())
	other.secret = []byte("other-secret")

	result := login(t, other, "minhanh@raune.vn", "password123")

	session, err := svc.CurrentSession(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestValidateProfile(t *testing.T) {
	assert.NoError(t, ValidateProfile("An", "an@raune.vn"))

	err := ValidateProfile("  ", "an@raune.vn")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Contains(t, err.Error(), CodeUsernameRequired)

	err = ValidateProfile("An", "an.raune.vn")
	assert.Contains(t, err.Error(), CodeEmailInvalid)

	err = ValidateProfile("An", " ")
	assert.Contains(t, err.Error(), CodeEmailInvalid)
}

func TestProfileService_SaveExistingMergesEditableFields(t *testing.T) {
	svc, _ := newProfileService(t, catalog.NewEmbeddedJSONAdapter())
	ctx := context.Background()
	result := login(t, svc, "minhanh@raune.vn", "password123")

	saved, err := svc.SaveProfile(ctx, result.Token, ProfileUpdate{
		ID:           1,
		Username:     "Minh Anh",
		Email:        "anh.nguyen@raune.vn",
		ProfileImage: "/profile-image/avt5.jpg",
		Prefs:        []string{"Western"},
		History:      []int64{12},
	})
	require.NoError(t, err)

	assert.Equal(t, "Minh Anh", saved.Username)
	assert.Equal(t, "/profile-image/avt5.jpg", saved.ProfileImage)
	// Preferences and history are not editable through a save.
	assert.Equal(t, []string{"Vietnamese", "Cafe"}, saved.Prefs)
	assert.Equal(t, []int64{1, 3, 7}, saved.History)

	session, err := svc.CurrentSession(ctx, result.Token)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "Minh Anh", session.Username)
	assert.Equal(t, "anh.nguyen@raune.vn", session.Email)

	// Password unchanged when none given.
	login(t, svc, "anh.nguyen@raune.vn", "password123")

	updated, err := svc.LastUpdated(ctx)
	require.NoError(t, err)
	assert.Equal(t, profileClock, updated)
}

func TestProfileService_SaveOtherAccountKeepsSession(t *testing.T) {
	svc, _ := newProfileService(t, catalog.NewEmbeddedJSONAdapter())
	ctx := context.Background()
	result := login(t, svc, "minhanh@raune.vn", "password123")

	_, err := svc.SaveProfile(ctx, result.Token, ProfileUpdate{ID: 2, Username: "Bảo", Email: "bao@raune.vn"})
	require.NoError(t, err)

	session, err := svc.CurrentSession(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "Nguyễn Minh Anh", session.Username)
}

func TestProfileService_SaveNewAccount(t *testing.T) {
	svc, _ := newProfileService(t, catalog.NewEmbeddedJSONAdapter())
	ctx := context.Background()

	saved, err := svc.SaveProfile(ctx, "", ProfileUpdate{
		Username: "Phạm Hương",
		Email:    "huong@raune.vn",
		Password: "hello123",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), saved.ID)
	assert.Equal(t, entities.DefaultProfileImage, saved.ProfileImage)
	assert.Empty(t, saved.Prefs)
	assert.Empty(t, saved.History)

	accounts, err := svc.AllAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 4)
	assert.Equal(t, profileClock, accounts[3].CreatedAt)

	login(t, svc, "huong@raune.vn", "hello123")
}

func TestProfileService_SaveRejectsInvalidInput(t *testing.T) {
	svc, _ := newProfileService(t, catalog.NewEmbeddedJSONAdapter())
	ctx := context.Background()

	_, err := svc.SaveProfile(ctx, "", ProfileUpdate{ID: 1, Username: "", Email: "a@b"})
	assert.Contains(t, err.Error(), CodeUsernameRequired)

	_, err = svc.SaveProfile(ctx, "", ProfileUpdate{ID: 1, Username: "An", Email: "a@b", ProfileImage: "/uploads/me.png"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Contains(t, err.Error(), CodeImageInvalid)
}

func TestProfileService_ChangePassword(t *testing.T) {
	svc, _ := newProfileService(t, catalog.NewEmbeddedJSONAdapter())
	ctx := context.Background()
	result := login(t, svc, "thuha@raune.vn", "hanoi@123")

	err := svc.ChangePassword(ctx, result.Token, "wrong", "newpass")
	assert.Contains(t, err.Error(), CodeInvalidOldPassword)

	err = svc.ChangePassword(ctx, result.Token, "hanoi@123", "")
	assert.Contains(t, err.Error(), CodePasswordRequired)

	err = svc.ChangePassword(ctx, "", "hanoi@123", "newpass")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))

	require.NoError(t, svc.ChangePassword(ctx, result.Token, "hanoi@123", "newpass"))

	ok, err := svc.VerifyOldPassword(ctx, 3, "newpass")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Login(ctx, "thuha@raune.vn", "hanoi@123")
	assert.Error(t, err)
	login(t, svc, "thuha@raune.vn", "newpass")
}

func TestProfileService_VerifyOldPasswordUnknownAccount(t *testing.T) {
	svc, _ := newProfileService(t, catalog.NewEmbeddedJSONAdapter())

	_, err := svc.VerifyOldPassword(context.Background(), 42, "x")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestAvailableImages(t *testing.T) {
	images := AvailableImages()
	require.Len(t, images, 8)
	assert.Equal(t, "/profile-image/avt1.jpg", images[0])
	assert.Equal(t, "/profile-image/avt8.jpg", images[7])

	images[0] = "mutated"
	assert.Equal(t, "/profile-image/avt1.jpg", AvailableImages()[0])
}

func TestProfileService_RegisteredAccountSurvivesCacheChurn(t *testing.T) {
	svc, store := newProfileService(t, catalog.NewEmbeddedJSONAdapter())
	ctx := context.Background()

	_, err := svc.SaveProfile(ctx, "", ProfileUpdate{Username: "newbie", Email: "newbie@raune.vn", Password: "fresh-pass"})
	require.NoError(t, err)

	for i := 0; i < 127; i++ {
		require.NoError(t, store.Set(ctx, fmt.Sprintf("http:cache:%d", i), []byte(`{}`), 60))
		if i%8 == 0 {
			_, err := svc.AllAccounts(ctx)
			require.NoError(t, err)
		}
	}

	accounts, err := svc.AllAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 4)
	login(t, svc, "newbie@raune.vn", "fresh-pass")
}

func TestProfileService_LostInitFlagKeepsStoredAccounts(t *testing.T) {
	seed := new(mockAccountSeed)
	seed.On("ListAccounts", mock.Anything).Return([]entities.Account{
		{ID: 1, Username: "An", Email: "an@raune.vn", Password: "secret"},
	}, nil).Once()
	svc, store := newProfileService(t, seed)
	ctx := context.Background()

	_, err := svc.SaveProfile(ctx, "", ProfileUpdate{Username: "Bình", Email: "binh@raune.vn", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, KeyAccountsInitialized))

	accounts, err := svc.AllAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	flag, err := store.Exists(ctx, KeyAccountsInitialized)
	require.NoError(t, err)
	assert.True(t, flag)
	seed.AssertExpectations(t)
}

func TestProfileService_SaveRejectsDuplicateIdentifiers(t *testing.T) {
	tests := []struct {
		name   string
		update ProfileUpdate
		code   string
	}{
		{
			name:   "register with taken email",
			update: ProfileUpdate{Username: "Impostor", Email: "MINHANH@raune.vn", Password: "newpass"},
			code:   CodeEmailTaken,
		},
		{
			name:   "register with taken username",
			update: ProfileUpdate{Username: " nguyễn minh anh ", Email: "other@raune.vn", Password: "newpass"},
			code:   CodeUsernameTaken,
		},
		{
			name:   "register with another account's email as username",
			update: ProfileUpdate{Username: "quocbao@raune.vn", Email: "other@raune.vn", Password: "newpass"},
			code:   CodeUsernameTaken,
		},
		{
			name:   "update takes another account's email",
			update: ProfileUpdate{ID: 2, Username: "Trần Quốc Bảo", Email: "minhanh@raune.vn"},
			code:   CodeEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newProfileService(t, catalog.NewEmbeddedJSONAdapter())
			ctx := context.Background()

			_, err := svc.SaveProfile(ctx, "", tt.update)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
			assert.Contains(t, err.Error(), tt.code)

			accounts, err := svc.AllAccounts(ctx)
			require.NoError(t, err)
			assert.Len(t, accounts, 3)
			login(t, svc, "minhanh@raune.vn", "password123")
		})
	}
}

func TestProfileService_SaveKeepsOwnIdentifiers(t *testing.T) {
	svc, _ := newProfileService(t, catalog.NewEmbeddedJSONAdapter())
	ctx := context.Background()

	saved, err := svc.SaveProfile(ctx, "", ProfileUpdate{ID: 1, Username: "NGUYỄN MINH ANH", Email: "MinhAnh@raune.vn"})
	require.NoError(t, err)
	assert.Equal(t, "MinhAnh@raune.vn", saved.Email)
}
