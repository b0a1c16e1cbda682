package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"

	"filmsoc-backend/internal/auth"
	"filmsoc-backend/internal/models"
	"filmsoc-backend/internal/repositories"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const totpIssuer = "FilmSoc"

type TOTPService struct {
	memberRepo *repositories.MemberRepository
}

func NewTOTPService(memberRepo *repositories.MemberRepository) *TOTPService {
	return &TOTPService{memberRepo: memberRepo}
}

// GenerateSetup creates a new TOTP secret and QR code for a member
func (s *TOTPService) GenerateSetup(ctx context.Context, member *models.Member) (*models.TOTPSetupResponse, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: member.Username,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, err
	}

	// Store the secret (not yet enabled)
	if err := s.memberRepo.SetTOTPSecret(ctx, member.ID, key.Secret()); err != nil {
		return nil, err
	}

	qrImage, err := key.Image(200, 200)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qrImage); err != nil {
		return nil, err
	}
	qrBase64 := base64.StdEncoding.EncodeToString(buf.Bytes())

	return &models.TOTPSetupResponse{
		Secret:      key.Secret(),
		QRCode:      "data:image/png;base64," + qrBase64,
		Issuer:      totpIssuer,
		AccountName: member.Username,
	}, nil
}

// VerifyAndEnable verifies a TOTP code and enables 2FA for the member
func (s *TOTPService) VerifyAndEnable(ctx context.Context, memberID, code string) error {
	member, err := s.memberRepo.Get(ctx, memberID)
	if err != nil {
		return err
	}

	if member.TOTPSecret == "" {
		return ErrNoTOTPSecret
	}

	if !totp.Validate(code, member.TOTPSecret) {
		return ErrInvalidTOTPCode
	}

	return s.memberRepo.EnableTOTP(ctx, memberID)
}

// Verify validates a TOTP code during login step 2
func (s *TOTPService) Verify(ctx context.Context, memberID, code string) error {
	member, err := s.memberRepo.Get(ctx, memberID)
	if err != nil {
		return err
	}

	if !member.TOTPEnabled || member.TOTPSecret == "" {
		return ErrTOTPNotEnabled
	}

	if !totp.Validate(code, member.TOTPSecret) {
		return ErrInvalidTOTPCode
	}

	return nil
}

// Disable turns 2FA off after verifying the password and a current code
func (s *TOTPService) Disable(ctx context.Context, memberID, password, code string) error {
	member, err := s.memberRepo.Get(ctx, memberID)
	if err != nil {
		return err
	}

	if !auth.VerifyPassword(member.PasswordHash, password) {
		return ErrInvalidPassword
	}

	if !totp.Validate(code, member.TOTPSecret) {
		return ErrInvalidTOTPCode
	}

	return s.memberRepo.DisableTOTP(ctx, memberID)
}

// Custom errors
var (
	ErrNoTOTPSecret    = &TOTPError{Message: "2FA setup not initiated"}
	ErrInvalidTOTPCode = &TOTPError{Message: "invalid verification code"}
	ErrTOTPNotEnabled  = &TOTPError{Message: "2FA is not enabled"}
	ErrInvalidPassword = &TOTPError{Message: "invalid password"}
)

type TOTPError struct {
	Message string
}

func (e *TOTPError) Error() string {
	return e.Message
}
