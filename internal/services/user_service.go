package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AnshRaj112/nutrameter-backend/internal/apperr"
	"github.com/AnshRaj112/nutrameter-backend/internal/models"
	"github.com/AnshRaj112/nutrameter-backend/internal/store"
	"github.com/AnshRaj112/nutrameter-backend/pkg/utils"
)

const invalidCredentials = "Invalid credentials"

type RegisterInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Weight   float64     `json:"weight"`
	Height   float64     `json:"height"`
	Age      int         `json:"age"`
	Goal     models.Goal `json:"goal"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type UserService struct {
	store  store.Store
	hasher *utils.PasswordHasher
	tokens *TokenService
	logger *zap.Logger
	now    func() time.Time
}

func NewUserService(s store.Store, hasher *utils.PasswordHasher, tokens *TokenService, logger *zap.Logger) *UserService {
	return &UserService{store: s, hasher: hasher, tokens: tokens, logger: logger, now: time.Now}
}

// Register creates an account with profile defaults for anything omitted and
// returns it with a fresh token.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := utils.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apperr.Validation("Name, email, and password are required")
	}
	for _, err := range []error{utils.ValidateName(name), utils.ValidateEmail(email), utils.ValidatePassword(in.Password)} {
		if err != nil {
			return nil, validationErr(err)
		}
	}
	if in.Weight < 0 || in.Height < 0 || in.Age < 0 {
		return nil, apperr.Validation("Weight, height and age must not be negative")
	}
	if in.Goal != "" && !in.Goal.Valid() {
		return nil, apperr.Validation("Goal must be one of lose_weight, maintain, gain_muscle")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "hash password")
	}

	u := &models.User{
		Name:               name,
		Email:              email,
		PasswordHash:       hash,
		Weight:             orDefault(in.Weight, models.DefaultWeightKg),
		Height:             orDefault(in.Height, models.DefaultHeightCm),
		Age:                in.Age,
		Goal:               in.Goal,
		DailyCalorieTarget: models.DefaultCalorieTarget,
		DailyWaterTarget:   models.DefaultWaterTarget,
		CreatedAt:          s.now(),
	}
	if u.Age == 0 {
		u.Age = models.DefaultAge
	}
	if u.Goal == "" {
		u.Goal = models.GoalMaintain
	}

	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", u.ID))
	return s.authResult(u)
}

// Login answers "Invalid credentials" for an unknown email and for a wrong
// password alike.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := utils.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperr.Validation("Email and password are required")
	}

	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized(invalidCredentials)
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(in.Password, u.PasswordHash)
	if err != nil {
		s.logger.Warn("stored password hash is unreadable", zap.String("user_id", u.ID), zap.Error(err))
		return nil, apperr.Unauthorized(invalidCredentials)
	}
	if !ok {
		return nil, apperr.Unauthorized(invalidCredentials)
	}
	return s.authResult(u)
}

func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	return s.store.GetUserByID(ctx, userID)
}

// Update applies the profile allow-list. Fields outside UserUpdate never reach
// the store.
func (s *UserService) Update(ctx context.Context, userID string, update models.UserUpdate) (*models.User, error) {
	if err := validateUserUpdate(&update); err != nil {
		return nil, err
	}
	if update.Empty() {
		return s.store.GetUserByID(ctx, userID)
	}
	return s.store.UpdateUser(ctx, userID, update)
}

func validateUserUpdate(u *models.UserUpdate) error {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if err := utils.ValidateName(name); err != nil {
			return validationErr(err)
		}
		u.Name = &name
	}
	if u.Goal != nil && !u.Goal.Valid() {
		return apperr.Validation("Goal must be one of lose_weight, maintain, gain_muscle")
	}
	for _, v := range []*float64{u.Weight, u.Height, u.DailyCalorieTarget} {
		if v != nil && *v <= 0 {
			return apperr.Validation("Weight, height and calorie target must be positive")
		}
	}
	if u.Age != nil && *u.Age <= 0 {
		return apperr.Validation("Age must be positive")
	}
	if u.DailyWaterTarget != nil && *u.DailyWaterTarget < 0 {
		return apperr.Validation("Water target must not be negative")
	}
	return nil
}

func (s *UserService) authResult(u *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token}, nil
}

// SeedDemoAccount puts the built-in demo login into the in-memory store so the
// app is usable without any database.
func SeedDemoAccount(mem *store.Memory, hasher *utils.PasswordHasher, now time.Time) error {
	hash, err := hasher.Hash(store.DemoPassword)
	if err != nil {
		return err
	}
	mem.SeedDemoUser(models.User{
		Name:               "Demo User",
		PasswordHash:       hash,
		Weight:             70,
		Height:             175,
		Age:                28,
		Goal:               models.GoalMaintain,
		DailyCalorieTarget: models.DefaultCalorieTarget,
		DailyWaterTarget:   models.DefaultWaterTarget,
		CreatedAt:          now,
	})
	return nil
}

func validationErr(err error) error {
	var ve *utils.ValidationError
	if errors.As(err, &ve) {
		return apperr.Validation(ve.Message)
	}
	return apperr.Validation(err.Error())
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
