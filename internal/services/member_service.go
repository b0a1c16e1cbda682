package services

import (
	"context"
	"errors"

	"filmsoc-backend/internal/auth"
	"filmsoc-backend/internal/cache"
	"filmsoc-backend/internal/models"
	"filmsoc-backend/internal/repositories"
	"filmsoc-backend/internal/timeutil"

	"github.com/google/uuid"
)

type MemberService struct {
	Repo       *repositories.MemberRepository
	JWTManager *auth.JWTManager
}

func NewMemberService(repo *repositories.MemberRepository, jwtManager *auth.JWTManager) *MemberService {
	return &MemberService{
		Repo:       repo,
		JWTManager: jwtManager,
	}
}

// Signup creates a new member with a hashed password. The very first
// member to sign up becomes the core-team admin so a fresh deployment
// is never locked out.
func (s *MemberService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	if req.Username == "" || req.Password == "" || req.Name == "" {
		return nil, errors.New("username, name, and password are required")
	}

	existing, _ := s.Repo.GetByUsername(ctx, req.Username)
	if existing != nil {
		return nil, errors.New("member with this username already exists")
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	count, err := s.Repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	now := timeutil.Now()
	member := &models.Member{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		Hostel:       req.Hostel,
		Year:         req.Year,
		Domain:       req.Domain,
		PasswordHash: hashedPassword,
		IsAdmin:      count == 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Repo.Create(ctx, member); err != nil {
		return nil, err
	}

	cache.InvalidateMemberCaches(ctx)

	token, err := s.JWTManager.GenerateToken(member)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token:  token,
		Member: member,
	}, nil
}

// CreateMember lets an admin add a member directly, bypassing signup
func (s *MemberService) CreateMember(ctx context.Context, req *models.CreateMemberRequest) (*models.Member, error) {
	if req.Username == "" || req.Password == "" || req.Name == "" {
		return nil, errors.New("username, name, and password are required")
	}

	existing, _ := s.Repo.GetByUsername(ctx, req.Username)
	if existing != nil {
		return nil, errors.New("member with this username already exists")
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := timeutil.Now()
	member := &models.Member{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		Hostel:       req.Hostel,
		Year:         req.Year,
		Domain:       req.Domain,
		PasswordHash: hashedPassword,
		IsAdmin:      req.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Repo.Create(ctx, member); err != nil {
		return nil, err
	}

	cache.InvalidateMemberCaches(ctx)
	return member, nil
}

// Login authenticates a member and returns a JWT token. Members with
// 2FA enabled get a short-lived temp token instead and must follow up
// with their TOTP code.
func (s *MemberService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, errors.New("username and password are required")
	}

	member, err := s.Repo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, errors.New("invalid username or password")
	}

	if !auth.VerifyPassword(member.PasswordHash, req.Password) {
		return nil, errors.New("invalid username or password")
	}

	if member.TOTPEnabled {
		tempToken, err := s.JWTManager.GenerateTempToken(member)
		if err != nil {
			return nil, err
		}
		return &models.AuthResponse{
			TempToken:   tempToken,
			Requires2FA: true,
		}, nil
	}

	token, err := s.JWTManager.GenerateToken(member)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token:  token,
		Member: member,
	}, nil
}

func (s *MemberService) GetMember(ctx context.Context, id string) (*models.Member, error) {
	return s.Repo.Get(ctx, id)
}

// ListMembers returns all members
func (s *MemberService) ListMembers(ctx context.Context) ([]models.Member, error) {
	return s.Repo.List(ctx)
}

// UpdateMember updates profile fields; an empty password keeps the
// current hash
func (s *MemberService) UpdateMember(ctx context.Context, id string, req *models.UpdateMemberRequest) (*models.Member, error) {
	member, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		member.Name = req.Name
	}
	if req.Email != "" {
		member.Email = req.Email
	}
	if req.Hostel != "" {
		member.Hostel = req.Hostel
	}
	if req.Year != 0 {
		member.Year = req.Year
	}
	if req.Domain != "" {
		member.Domain = req.Domain
	}

	// Repo keeps the stored hash when PasswordHash is empty
	member.PasswordHash = ""
	if req.Password != "" {
		member.PasswordHash, err = auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
	}

	if err := s.Repo.Update(ctx, member); err != nil {
		return nil, err
	}

	cache.InvalidateMemberCaches(ctx)
	return member, nil
}

// DeleteMember removes a member
func (s *MemberService) DeleteMember(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateMemberCaches(ctx)
	return nil
}

// SetAdmin grants or revokes core-team access
func (s *MemberService) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	if err := s.Repo.SetAdmin(ctx, id, isAdmin); err != nil {
		return err
	}
	cache.InvalidateMemberCaches(ctx)
	return nil
}
