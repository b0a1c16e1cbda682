package repositories

import (
	"context"

	"filmsoc-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MemberRepository struct {
	DB *pgxpool.Pool
}

func NewMemberRepository(db *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{DB: db}
}

const memberColumns = `id, username, name, email, hostel, year, domain,
	password_hash, is_admin, totp_secret, totp_enabled, created_at, updated_at`

func scanMember(row interface{ Scan(dest ...any) error }) (*models.Member, error) {
	m := &models.Member{}
	err := row.Scan(
		&m.ID, &m.Username, &m.Name, &m.Email, &m.Hostel, &m.Year, &m.Domain,
		&m.PasswordHash, &m.IsAdmin, &m.TOTPSecret, &m.TOTPEnabled,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Create inserts a new member row
func (r *MemberRepository) Create(ctx context.Context, m *models.Member) error {
	query := `
		INSERT INTO users (
			id, username, name, email, hostel, year, domain, password_hash,
			is_admin, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.DB.Exec(ctx, query,
		m.ID, m.Username, m.Name, m.Email, m.Hostel, m.Year, m.Domain,
		m.PasswordHash, m.IsAdmin, m.CreatedAt, m.UpdatedAt,
	)
	return err
}

// Get retrieves a member by id
func (r *MemberRepository) Get(ctx context.Context, id string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM users WHERE id = $1`
	return scanMember(r.DB.QueryRow(ctx, query, id))
}

// GetByUsername retrieves a member by username (used by login)
func (r *MemberRepository) GetByUsername(ctx context.Context, username string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM users WHERE username = $1`
	return scanMember(r.DB.QueryRow(ctx, query, username))
}

// List returns the member directory ordered by name
func (r *MemberRepository) List(ctx context.Context) ([]models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM users ORDER BY name ASC`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

// Update modifies member profile fields; the password hash is only
// replaced when non-empty
func (r *MemberRepository) Update(ctx context.Context, m *models.Member) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, hostel = $4, year = $5, domain = $6,
		    password_hash = CASE WHEN $7 = '' THEN password_hash ELSE $7 END,
		    updated_at = NOW()
		WHERE id = $1`

	_, err := r.DB.Exec(ctx, query,
		m.ID, m.Name, m.Email, m.Hostel, m.Year, m.Domain, m.PasswordHash,
	)
	return err
}

// Delete removes a member row
func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

// SetAdmin toggles the admin flag
func (r *MemberRepository) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE users SET is_admin = $2, updated_at = NOW() WHERE id = $1`,
		id, isAdmin,
	)
	return err
}

// Count returns the total number of members
func (r *MemberRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// SetTOTPSecret stores a pending TOTP secret (2FA not yet enabled)
func (r *MemberRepository) SetTOTPSecret(ctx context.Context, id, secret string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE users SET totp_secret = $2, updated_at = NOW() WHERE id = $1`,
		id, secret,
	)
	return err
}

// EnableTOTP marks 2FA as active for the member
func (r *MemberRepository) EnableTOTP(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE users SET totp_enabled = TRUE, updated_at = NOW() WHERE id = $1`,
		id,
	)
	return err
}

// DisableTOTP clears the secret and flag
func (r *MemberRepository) DisableTOTP(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE users SET totp_secret = '', totp_enabled = FALSE, updated_at = NOW() WHERE id = $1`,
		id,
	)
	return err
}
