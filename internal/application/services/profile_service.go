package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/raunelaunch/fooddiscovery/internal/domain/providers"
	"github.com/raunelaunch/fooddiscovery/internal/domain/repositories"
	apperrors "github.com/raunelaunch/fooddiscovery/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// Store keys
const (
	KeyAccounts            = "accounts"
	KeyAccountsInitialized = "accountsInitialized"
	KeySessionPrefix       = "userSession:"
	KeyProfileLastUpdated  = "userProfileLastUpdated"
)

// Validation codes returned in error messages; clients translate them.
const (
	CodeUsernameRequired   = "usernameRequired"
	CodeEmailInvalid       = "emailInvalid"
	CodePasswordRequired   = "passwordRequired"
	CodeInvalidOldPassword = "invalidOldPassword"
	CodeImageInvalid       = "profileImageInvalid"
	CodeInvalidCredentials = "invalidCredentials"
	CodeUsernameTaken      = "usernameTaken"
	CodeEmailTaken         = "emailTaken"
)

// DefaultSessionTTL is used when no session TTL is configured.
const DefaultSessionTTL = 24 * time.Hour

var availableImages = []string{
	"/profile-image/avt1.jpg",
	"/profile-image/avt2.jpg",
	"/profile-image/avt3.jpg",
	"/profile-image/avt4.jpg",
	"/profile-image/avt5.jpg",
	"/profile-image/avt6.jpg",
	"/profile-image/avt7.jpg",
	"/profile-image/avt8.jpg",
}

// AvailableImages lists the selectable avatars
func AvailableImages() []string {
	return slices.Clone(availableImages)
}

// ProfileUpdate is the editable part of a profile. An empty Password keeps the
// current one. ID 0 creates a new account.
type ProfileUpdate struct {
	ID           int64    `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	ProfileImage string   `json:"profileImage"`
	Password     string   `json:"password,omitempty"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	Prefs        []string `json:"prefs,omitempty"`
	History      []int64  `json:"history,omitempty"`
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Token   string           `json:"token"`
	Session entities.Session `json:"session"`
	Profile entities.Profile `json:"profile"`
}

// ProfileService is the mock account and session store. Every read-modify-write
// goes through the key-value store; concurrent writers are last-writer-wins.
type ProfileService struct {
	store      providers.KeyValueStore
	seed       repositories.AccountSeedRepository
	secret     []byte
	sessionTTL time.Duration
	hashCost   int
	now        func() time.Time

	// serializes writers within this process only
	mu sync.Mutex
}

// NewProfileService creates a profile service
func NewProfileService(store providers.KeyValueStore, seed repositories.AccountSeedRepository, secret string, sessionTTL time.Duration) (*ProfileService, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &ProfileService{
		store:      store,
		seed:       seed,
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		hashCost:   bcrypt.DefaultCost,
		now:        time.Now,
	}, nil
}

// InitializeAccounts copies the seed accounts into the store once, hashing
// their plaintext passwords.
func (s *ProfileService) InitializeAccounts(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initializeLocked(ctx)
}

func (s *ProfileService) initializeLocked(ctx context.Context) error {
	initialized, err := s.store.Exists(ctx, KeyAccountsInitialized)
	if err != nil {
		return apperrors.NewInternalError("failed to read account store", err)
	}
	if initialized {
		return nil
	}

	// A stored account list means seeding already happened; only the flag was lost.
	stored, err := s.store.Exists(ctx, KeyAccounts)
	if err != nil {
		return apperrors.NewInternalError("failed to read account store", err)
	}
	if stored {
		if err := s.store.Set(ctx, KeyAccountsInitialized, []byte("true"), 0); err != nil {
			return apperrors.NewInternalError("failed to mark accounts initialized", err)
		}
		log.Warn().Msg("Account initialization flag missing, keeping stored accounts")
		return nil
	}

	var accounts []entities.Account
	if s.seed != nil {
		accounts, err = s.seed.ListAccounts(ctx)
		if err != nil {
			return fmt.Errorf("failed to load seed accounts: %w", err)
		}
	}

	for i := range accounts {
		if accounts[i].Password == "" {
			continue
		}
		hash, err := s.hash(accounts[i].Password)
		if err != nil {
			return err
		}
		accounts[i].PasswordHash = hash
		accounts[i].Password = ""
	}

	if err := s.writeAccounts(ctx, accounts); err != nil {
		return err
	}
	if err := s.store.Set(ctx, KeyAccountsInitialized, []byte("true"), 0); err != nil {
		return apperrors.NewInternalError("failed to mark accounts initialized", err)
	}

	log.Info().Int("accounts", len(accounts)).Msg("Accounts initialized from seed data")
	return nil
}

// AllAccounts returns every stored account
func (s *ProfileService) AllAccounts(ctx context.Context) ([]entities.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.initializeLocked(ctx); err != nil {
		return nil, err
	}
	return s.readAccounts(ctx)
}

// Login matches identifier against username or email (case-insensitive) and
// opens a session.
func (s *ProfileService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	accounts, err := s.AllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	identifier = strings.TrimSpace(identifier)
	var account *entities.Account
	for i := range accounts {
		if strings.EqualFold(accounts[i].Username, identifier) || strings.EqualFold(accounts[i].Email, identifier) {
			account = &accounts[i]
			break
		}
	}
	if account == nil || !s.passwordMatches(*account, password) {
		return nil, apperrors.NewUnauthorizedError(CodeInvalidCredentials)
	}

	now := s.now()
	session := entities.Session{
		ID:           uuid.NewString(),
		UserID:       account.ID,
		Username:     account.Username,
		Email:        account.Email,
		ProfileImage: account.Profile().ProfileImage,
		ExpiresAt:    now.Add(s.sessionTTL),
	}
	if err := s.writeSession(ctx, session); err != nil {
		return nil, err
	}

	token, err := s.signToken(session, now)
	if err != nil {
		return nil, err
	}

	log.Info().Int64("user_id", account.ID).Str("session_id", session.ID).Msg("User logged in")
	return &LoginResult{Token: token, Session: session, Profile: account.Profile()}, nil
}

// Logout removes the session behind token. Unknown tokens are ignored.
func (s *ProfileService) Logout(ctx context.Context, token string) error {
	sessionID, _ := s.parseToken(token)
	if sessionID == "" {
		return nil
	}
	if err := s.store.Delete(ctx, KeySessionPrefix+sessionID); err != nil {
		return apperrors.NewInternalError("failed to remove session", err)
	}
	return nil
}

// CurrentSession returns the live session behind token, or nil. An expired
// session is removed.
func (s *ProfileService) CurrentSession(ctx context.Context, token string) (*entities.Session, error) {
	if token == "" {
		return nil, nil
	}
	sessionID, err := s.parseToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && sessionID != "" {
			_ = s.store.Delete(ctx, KeySessionPrefix+sessionID)
		}
		log.Debug().Err(err).Msg("Rejected session token")
		return nil, nil
	}

	payload, err := s.store.Get(ctx, KeySessionPrefix+sessionID)
	if err != nil {
		if errors.Is(err, providers.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewInternalError("failed to read session", err)
	}

	var session entities.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("Discarding malformed session")
		_ = s.store.Delete(ctx, KeySessionPrefix+sessionID)
		return nil, nil
	}

	if session.Expired(s.now()) {
		_ = s.store.Delete(ctx, KeySessionPrefix+sessionID)
		return nil, nil
	}
	return &session, nil
}

// CurrentProfile returns the session account's profile, else the first
// account, else an empty profile with the default avatar.
func (s *ProfileService) CurrentProfile(ctx context.Context, token string) (entities.Profile, error) {
	session, err := s.CurrentSession(ctx, token)
	if err != nil {
		return entities.Profile{}, err
	}
	accounts, err := s.AllAccounts(ctx)
	if err != nil {
		return entities.Profile{}, err
	}

	if session != nil {
		if idx := findAccount(accounts, session.UserID); idx >= 0 {
			return accounts[idx].Profile(), nil
		}
	}
	if len(accounts) > 0 {
		return accounts[0].Profile(), nil
	}
	return entities.Account{}.Profile(), nil
}

// PreferenceProfile returns the scoring input for the current profile
func (s *ProfileService) PreferenceProfile(ctx context.Context, token string) (entities.PreferenceProfile, error) {
	profile, err := s.CurrentProfile(ctx, token)
	if err != nil {
		return entities.PreferenceProfile{}, err
	}
	return profile.Preferences(), nil
}

// ValidateProfile checks username and email
func ValidateProfile(username, email string) error {
	if strings.TrimSpace(username) == "" {
		return apperrors.NewValidationError(CodeUsernameRequired)
	}
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return apperrors.NewValidationError(CodeEmailInvalid)
	}
	return nil
}

// SaveProfile stores update. For an existing account only username, email,
// profile image and (when set) password are merged; a new account gets empty
// preferences and history unless given. The session behind token is refreshed
// when it belongs to the saved account.
func (s *ProfileService) SaveProfile(ctx context.Context, token string, update ProfileUpdate) (entities.Profile, error) {
	if err := ValidateProfile(update.Username, update.Email); err != nil {
		return entities.Profile{}, err
	}
	if update.ProfileImage != "" && !slices.Contains(availableImages, update.ProfileImage) {
		return entities.Profile{}, apperrors.NewValidationError(CodeImageInvalid)
	}

	var hash string
	if update.Password != "" {
		var err error
		if hash, err = s.hash(update.Password); err != nil {
			return entities.Profile{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.initializeLocked(ctx); err != nil {
		return entities.Profile{}, err
	}
	accounts, err := s.readAccounts(ctx)
	if err != nil {
		return entities.Profile{}, err
	}

	idx := -1
	if update.ID != 0 {
		idx = findAccount(accounts, update.ID)
	}
	if err := checkIdentifiersFree(accounts, idx, update.Username, update.Email); err != nil {
		return entities.Profile{}, err
	}

	var saved entities.Account
	if idx >= 0 {
		existing := accounts[idx]
		existing.Username = update.Username
		existing.Email = update.Email
		existing.ProfileImage = update.ProfileImage
		if hash != "" {
			existing.PasswordHash = hash
			existing.Password = ""
		}
		accounts[idx] = existing
		saved = existing
	} else {
		id := update.ID
		if id == 0 {
			id = nextAccountID(accounts)
		}
		saved = entities.Account{
			ID:           id,
			Username:     update.Username,
			Email:        update.Email,
			ProfileImage: update.ProfileImage,
			PasswordHash: hash,
			Lat:          update.Lat,
			Lng:          update.Lng,
			Prefs:        update.Prefs,
			History:      update.History,
			CreatedAt:    s.now().UTC(),
		}
		if saved.Prefs == nil {
			saved.Prefs = []string{}
		}
		if saved.History == nil {
			saved.History = []int64{}
		}
		accounts = append(accounts, saved)
	}

	if err := s.writeAccounts(ctx, accounts); err != nil {
		return entities.Profile{}, err
	}

	if err := s.refreshSession(ctx, token, saved); err != nil {
		log.Warn().Err(err).Int64("user_id", saved.ID).Msg("Failed to refresh session after profile save")
	}

	if err := s.store.Set(ctx, KeyProfileLastUpdated, []byte(s.now().UTC().Format(time.RFC3339)), 0); err != nil {
		log.Warn().Err(err).Msg("Failed to record profile update time")
	}

	return saved.Profile(), nil
}

// VerifyOldPassword reports whether password is the current password of userID
func (s *ProfileService) VerifyOldPassword(ctx context.Context, userID int64, password string) (bool, error) {
	accounts, err := s.AllAccounts(ctx)
	if err != nil {
		return false, err
	}
	idx := findAccount(accounts, userID)
	if idx < 0 {
		return false, apperrors.NewNotFoundError(fmt.Sprintf("account %d not found", userID))
	}
	return s.passwordMatches(accounts[idx], password), nil
}

// ChangePassword replaces the password of the session's account after
// verifying the old one.
func (s *ProfileService) ChangePassword(ctx context.Context, token, oldPassword, newPassword string) error {
	session, err := s.CurrentSession(ctx, token)
	if err != nil {
		return err
	}
	if session == nil {
		return apperrors.NewUnauthorizedError("login required")
	}
	if newPassword == "" {
		return apperrors.NewValidationError(CodePasswordRequired)
	}

	ok, err := s.VerifyOldPassword(ctx, session.UserID, oldPassword)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewValidationError(CodeInvalidOldPassword)
	}

	profile, err := s.CurrentProfile(ctx, token)
	if err != nil {
		return err
	}
	_, err = s.SaveProfile(ctx, token, ProfileUpdate{
		ID:           profile.ID,
		Username:     profile.Username,
		Email:        profile.Email,
		ProfileImage: profile.ProfileImage,
		Password:     newPassword,
	})
	return err
}

// LastUpdated returns the time of the last profile save, zero if none
func (s *ProfileService) LastUpdated(ctx context.Context) (time.Time, error) {
	payload, err := s.store.Get(ctx, KeyProfileLastUpdated)
	if err != nil {
		if errors.Is(err, providers.ErrKeyNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, apperrors.NewInternalError("failed to read profile timestamp", err)
	}
	return time.Parse(time.RFC3339, string(payload))
}

func (s *ProfileService) refreshSession(ctx context.Context, token string, account entities.Account) error {
	session, err := s.CurrentSession(ctx, token)
	if err != nil || session == nil || session.UserID != account.ID {
		return err
	}
	session.Username = account.Username
	session.Email = account.Email
	session.ProfileImage = account.Profile().ProfileImage
	return s.writeSession(ctx, *session)
}

func (s *ProfileService) readAccounts(ctx context.Context) ([]entities.Account, error) {
	payload, err := s.store.Get(ctx, KeyAccounts)
	if err != nil {
		if errors.Is(err, providers.ErrKeyNotFound) {
			return []entities.Account{}, nil
		}
		return nil, apperrors.NewInternalError("failed to read accounts", err)
	}

	var accounts []entities.Account
	if err := json.Unmarshal(payload, &accounts); err != nil {
		return nil, apperrors.NewInternalError("failed to decode accounts", err)
	}
	return accounts, nil
}

func (s *ProfileService) writeAccounts(ctx context.Context, accounts []entities.Account) error {
	if accounts == nil {
		accounts = []entities.Account{}
	}
	payload, err := json.Marshal(accounts)
	if err != nil {
		return apperrors.NewInternalError("failed to encode accounts", err)
	}
	if err := s.store.Set(ctx, KeyAccounts, payload, 0); err != nil {
		return apperrors.NewInternalError("failed to write accounts", err)
	}
	return nil
}

func (s *ProfileService) writeSession(ctx context.Context, session entities.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return apperrors.NewInternalError("failed to encode session", err)
	}
	ttl := int(session.ExpiresAt.Sub(s.now()) / time.Second)
	if ttl <= 0 {
		ttl = int(s.sessionTTL / time.Second)
	}
	if err := s.store.Set(ctx, KeySessionPrefix+session.ID, payload, ttl); err != nil {
		return apperrors.NewInternalError("failed to write session", err)
	}
	return nil
}

func (s *ProfileService) signToken(session entities.Session, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   strconv.FormatInt(session.UserID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperrors.NewInternalError("failed to sign session token", err)
	}
	return signed, nil
}

// parseToken validates token and returns its session ID. The ID of a
// correctly signed but expired token is returned along with the error.
func (s *ProfileService) parseToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return claims.ID, fmt.Errorf("failed to parse token: %w", err)
		}
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsed.Valid || claims.ID == "" {
		return "", fmt.Errorf("invalid token claims")
	}
	return claims.ID, nil
}

func (s *ProfileService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", apperrors.NewInternalError("failed to hash password", err)
	}
	return string(hash), nil
}

// passwordMatches also accepts a plaintext password on records written
// before hashing was introduced.
func (s *ProfileService) passwordMatches(account entities.Account, password string) bool {
	if password == "" {
		return false
	}
	if account.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) == nil
	}
	return account.Password != "" && account.Password == password
}

// checkIdentifiersFree rejects a username or email already used as a login
// identifier by any account other than accounts[self]. Login matches either
// field case-insensitively, so both fields are checked against both.
func checkIdentifiersFree(accounts []entities.Account, self int, username, email string) error {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	for i, other := range accounts {
		if i == self {
			continue
		}
		if strings.EqualFold(other.Username, username) || strings.EqualFold(other.Email, username) {
			return apperrors.NewConflictError(CodeUsernameTaken)
		}
		if strings.EqualFold(other.Email, email) || strings.EqualFold(other.Username, email) {
			return apperrors.NewConflictError(CodeEmailTaken)
		}
	}
	return nil
}

func findAccount(accounts []entities.Account, id int64) int {
	for i := range accounts {
		if accounts[i].ID == id {
			return i
		}
	}
	return -1
}

func nextAccountID(accounts []entities.Account) int64 {
	var maxID int64
	for _, a := range accounts {
		if a.ID > maxID {
			maxID = a.ID
		}
	}
	return maxID + 1
}
