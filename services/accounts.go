package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"friendgraph/apperrors"
	"friendgraph/metrics"
	"friendgraph/models"
	"friendgraph/store"
	"friendgraph/utils"
)

// ErrInvalidPage is returned by Search for a page outside the result set.
var ErrInvalidPage = errors.New("invalid page")

const invalidCredentials = "Invalid credentials"

type AccountService struct {
	users    store.UserStore
	tokens   *utils.TokenManager
	logger   *slog.Logger
	pageSize int
	now      func() time.Time
}

func NewAccountService(users store.UserStore, tokens *utils.TokenManager, logger *slog.Logger, pageSize int) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &AccountService{
		users:    users,
		tokens:   tokens,
		logger:   logger,
		pageSize: pageSize,
		now:      time.Now,
	}
}

type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	Password2 string
}

type RegisterResult struct {
	User   *models.User
	Tokens *utils.TokenPair
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if in.Password != in.Password2 {
		return nil, apperrors.Validation("password and confirm password does not match")
	}

	email := utils.NormalizeEmail(in.Email)
	taken, err := s.users.ExistsEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("check email: %w", err))
	}
	if taken {
		return nil, duplicateUserError(store.KeyEmail)
	}
	taken, err = s.users.ExistsUsername(ctx, in.Username)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("check username: %w", err))
	}
	if taken {
		return nil, duplicateUserError(store.KeyUsername)
	}

	user, err := s.createUser(ctx, email, in.Username, in.Password, false)
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokens.GeneratePair(user.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	metrics.UsersRegisteredTotal.Inc()
	s.logger.Info("user registered", slog.String("user_id", user.ID), slog.String("username", user.Username))
	return &RegisterResult{User: user, Tokens: tokens}, nil
}

// CreateSuperuser creates an active account with every admin flag set.
func (s *AccountService) CreateSuperuser(ctx context.Context, email, username, password string) (*models.User, error) {
	if email == "" || username == "" || password == "" {
		return nil, apperrors.Validation("email, username and password are required")
	}
	user, err := s.createUser(ctx, utils.NormalizeEmail(email), username, password, true)
	if err != nil {
		return nil, err
	}
	s.logger.Info("superuser created", slog.String("user_id", user.ID), slog.String("username", user.Username))
	return user, nil
}

func (s *AccountService) createUser(ctx context.Context, email, username, password string, superuser bool) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("hash password: %w", err))
	}

	now := s.now().UTC()
	user := &models.User{
		ID:          utils.GenerateUUID(),
		Email:       email,
		Username:    username,
		Password:    hash,
		IsActive:    true,
		IsAdmin:     superuser,
		IsStaff:     superuser,
		IsSuperuser: superuser,
		DateJoined:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		var dup *store.DuplicateError
		if errors.As(err, &dup) {
			return nil, duplicateUserError(dup.Key)
		}
		return nil, apperrors.Internal(fmt.Errorf("create user: %w", err))
	}
	return user, nil
}

func duplicateUserError(key string) error {
	if key == store.KeyUsername {
		return apperrors.Conflict("username", "user with this username already exists.")
	}
	return apperrors.Conflict("email", "user with this email already exists.")
}

type LoginInput struct {
	Email    string
	Username string
	Password string
}

// Login authenticates by email or username. Email wins when both are set.
// Every credential failure yields the same authentication error.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*utils.TokenPair, error) {
	if in.Email == "" && in.Username == "" {
		return nil, apperrors.Validation("Either email or username must be provided.")
	}

	var (
		user *models.User
		err  error
	)
	if in.Email != "" {
		user, err = s.users.GetUserByEmail(ctx, utils.NormalizeEmail(in.Email))
	} else {
		user, err = s.users.GetUserByUsername(ctx, in.Username)
	}
	if errors.Is(err, store.ErrNotFound) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, apperrors.Authentication(invalidCredentials)
	}
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("load user: %w", err))
	}

	if !utils.CheckPassword(user.Password, in.Password) || !user.IsActive {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		s.logger.Info("login rejected", slog.String("user_id", user.ID))
		return nil, apperrors.Authentication(invalidCredentials)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("stamp last login: %w", err))
	}

	tokens, err := s.tokens.GeneratePair(user.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	return tokens, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ParseToken(refreshToken, utils.TokenTypeRefresh)
	if err != nil {
		return "", apperrors.Authentication("Token is invalid or expired")
	}
	if _, err := s.ActiveUser(ctx, claims.UserID); err != nil {
		return "", err
	}
	access, err := s.tokens.GenerateAccessToken(claims.UserID)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return access, nil
}

// ActiveUser loads the user a token was issued to. Missing or inactive
// accounts are an authentication failure.
func (s *AccountService) ActiveUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.Authentication("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("load user: %w", err))
	}
	if !user.IsActive {
		return nil, apperrors.Authentication("User is inactive")
	}
	return user, nil
}

type SearchQuery struct {
	Username string
	Email    string
	Page     int
}

type SearchPage struct {
	Count   int
	Page    int
	HasNext bool
	HasPrev bool
	Results []models.UserSummary
}

// Search matches exactly one of username or email. Supplying both, or
// neither, yields an empty page.
func (s *AccountService) Search(ctx context.Context, q SearchQuery) (*SearchPage, error) {
	if q.Page < 1 || q.Page > math.MaxInt/s.pageSize {
		return nil, ErrInvalidPage
	}

	var (
		field store.SearchField
		term  string
	)
	switch {
	case q.Username != "" && q.Email != "":
	case q.Email != "":
		field, term = store.SearchByEmail, q.Email
	case q.Username != "":
		field, term = store.SearchByUsername, q.Username
	}

	if field == "" {
		if q.Page != 1 {
			return nil, ErrInvalidPage
		}
		return &SearchPage{Page: 1, Results: []models.UserSummary{}}, nil
	}

	offset := (q.Page - 1) * s.pageSize
	users, total, err := s.users.SearchUsers(ctx, field, term, s.pageSize, offset)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("search users: %w", err))
	}
	if q.Page > 1 && offset >= total {
		return nil, ErrInvalidPage
	}

	results := make([]models.UserSummary, 0, len(users))
	for i := range users {
		results = append(results, users[i].ToSummary())
	}
	return &SearchPage{
		Count:   total,
		Page:    q.Page,
		HasNext: offset+len(users) < total,
		HasPrev: q.Page > 1,
		Results: results,
	}, nil
}
