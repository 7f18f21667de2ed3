package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/auth"
	"github.com/herohabits/platform/internal/domain"
	"github.com/herohabits/platform/internal/guard"
	"github.com/herohabits/platform/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles parent registration/login and child PIN sign-in.
type AuthService struct {
	pool       *pgxpool.Pool
	parents    repository.ParentAccountRepository
	characters repository.CharacterRepository
	jwtMgr     *auth.JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	pool *pgxpool.Pool,
	parents repository.ParentAccountRepository,
	characters repository.CharacterRepository,
	jwtMgr *auth.JWTManager,
) *AuthService {
	return &AuthService{
		pool:       pool,
		parents:    parents,
		characters: characters,
		jwtMgr:     jwtMgr,
	}
}

// RegisterInput holds the parent registration request fields.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned on successful registration or sign-in.
type AuthResult struct {
	Token string    `json:"token"`
	ID    uuid.UUID `json:"id"`
	Realm string    `json:"realm"`
	Name  string    `json:"name,omitempty"`
	Email string    `json:"email,omitempty"`
}

// Register creates a new parent account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if len(input.Password) < 8 {
		return nil, domain.ErrValidation("password must be at least 8 characters")
	}

	existing, err := s.parents.FindByEmail(ctx, s.pool, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("find parent", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	account := &domain.ParentAccount{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: string(hash),
	}
	if err := s.parents.Create(ctx, s.pool, account); err != nil {
		return nil, domain.ErrInternal("create parent", err)
	}

	token, err := s.jwtMgr.GenerateToken(auth.RealmParent, account.ID, account.Email, "")
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{Token: token, ID: account.ID, Realm: string(auth.RealmParent), Email: account.Email}, nil
}

// LoginInput holds the parent login request fields.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	IP       string `json:"-"`
}

// Login authenticates a parent account.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := guard.CheckLocked(ctx, s.pool, input.Email, string(auth.RealmParent)); err != nil {
		return nil, err
	}

	account, err := s.parents.FindByEmail(ctx, s.pool, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("find parent", err)
	}
	if account == nil || bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)) != nil {
		guard.RecordAttempt(ctx, s.pool, input.Email, string(auth.RealmParent), input.IP, false)
		return nil, domain.ErrUnauthorized("invalid email or password")
	}
	guard.RecordAttempt(ctx, s.pool, input.Email, string(auth.RealmParent), input.IP, true)

	token, err := s.jwtMgr.GenerateToken(auth.RealmParent, account.ID, account.Email, "")
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{Token: token, ID: account.ID, Realm: string(auth.RealmParent), Email: account.Email}, nil
}

// ChildLoginInput holds the child sign-in request: a character picks itself
// and enters its PIN.
type ChildLoginInput struct {
	CharacterID uuid.UUID `json:"character_id"`
	PIN         string    `json:"pin"`
	IP          string    `json:"-"`
}

// ChildLogin authenticates a character by PIN.
func (s *AuthService) ChildLogin(ctx context.Context, input ChildLoginInput) (*AuthResult, error) {
	if err := domain.ValidatePIN(input.PIN); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := guard.CheckLocked(ctx, s.pool, input.CharacterID.String(), string(auth.RealmChild)); err != nil {
		return nil, err
	}

	character, err := s.characters.FindByID(ctx, s.pool, input.CharacterID)
	if err != nil {
		return nil, domain.ErrInternal("find character", err)
	}
	if character == nil || bcrypt.CompareHashAndPassword([]byte(character.PINHash), []byte(input.PIN)) != nil {
		guard.RecordAttempt(ctx, s.pool, input.CharacterID.String(), string(auth.RealmChild), input.IP, false)
		return nil, domain.ErrUnauthorized("invalid character or PIN")
	}
	guard.RecordAttempt(ctx, s.pool, input.CharacterID.String(), string(auth.RealmChild), input.IP, true)

	token, err := s.jwtMgr.GenerateToken(auth.RealmChild, character.ID, "", character.Name)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{Token: token, ID: character.ID, Realm: string(auth.RealmChild), Name: character.Name}, nil
}
