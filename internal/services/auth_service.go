package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/authmail/authmail-be/internal/apierr"
	"github.com/authmail/authmail-be/internal/auth"
	"github.com/authmail/authmail-be/internal/mail"
	"github.com/authmail/authmail-be/internal/models"
)

// OTPTTL is how long an issued one-time code stays valid.
const OTPTTL = 10 * time.Minute

// AuthServiceProvider defines the interface for authentication services.
type AuthServiceProvider interface {
	Register(ctx context.Context, name, email, password string) (models.User, string, error)
	Login(ctx context.Context, email, password string) (models.User, string, error)
	SendVerifyOTP(ctx context.Context, userID string) error
	VerifyAccount(ctx context.Context, userID, otp string) error
	SendResetOTP(ctx context.Context, email string) error
	VerifyResetOTP(ctx context.Context, email, otp string) error
	ResetPassword(ctx context.Context, email, otp, newPassword string) error
}

// AuthService provides business logic for registration, login and the
// two OTP flows.
type AuthService struct {
	db        *sql.DB
	mailer    mail.Mailer
	jwtSecret []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(db *sql.DB, mailer mail.Mailer, jwtSecret []byte) *AuthService {
	return &AuthService{db: db, mailer: mailer, jwtSecret: jwtSecret}
}

// Register creates a new account, issues a session token and sends a
// welcome email. The welcome email is best-effort: a relay failure is
// logged and never fails the registration.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (models.User, string, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)", email).Scan(&exists)
	if err != nil {
		return models.User{}, "", fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return models.User{}, "", apierr.Conflict("User already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		CreatedAt:    time.Now(),
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users(id, name, email, password_hash) VALUES(?, ?, ?, ?)",
		user.ID, user.Name, user.Email, user.PasswordHash)
	if err != nil {
		return models.User{}, "", fmt.Errorf("insert user: %w", err)
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret)
	if err != nil {
		return models.User{}, "", fmt.Errorf("generate token: %w", err)
	}

	if err := s.mailer.Send(ctx, user.Email, "Welcome to Authmail",
		fmt.Sprintf("Welcome! Your account has been created with the email id: %s", user.Email)); err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("Welcome email failed")
	}

	return user, token, nil
}

// Login verifies credentials and issues a session token. Email
// verification is not required to log in.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	user, err := s.getUserByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, "", apierr.Auth("Invalid email")
		}
		return models.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, "", apierr.Auth("Invalid password")
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret)
	if err != nil {
		return models.User{}, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}

// SendVerifyOTP stores a fresh verification code on the account and
// emails it. A new code overwrites any previous one.
func (s *AuthService) SendVerifyOTP(ctx context.Context, userID string) error {
	user, err := s.getUserByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return apierr.NotFound("User not found")
		}
		return err
	}

	if user.IsVerified {
		return apierr.AlreadyVerified("Account already verified")
	}

	otp, err := GenerateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	expiresAt := time.Now().Add(OTPTTL).Unix()

	_, err = s.db.ExecContext(ctx,
		"UPDATE users SET verify_otp = ?, verify_otp_expires_at = ? WHERE id = ?",
		otp, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("store verify otp: %w", err)
	}

	if err := s.mailer.Send(ctx, user.Email, "Account Verification OTP",
		fmt.Sprintf("Your OTP is %s. Please verify your account.", otp)); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Verification OTP email failed")
		return apierr.Internal("Failed to send verification OTP")
	}

	return nil
}

// VerifyAccount consumes a verification code. On success the account is
// marked verified and the code is cleared; a verified account never
// returns to the unverified state.
func (s *AuthService) VerifyAccount(ctx context.Context, userID, otp string) error {
	user, err := s.getUserByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return apierr.NotFound("User not found")
		}
		return err
	}

	if user.VerifyOTP == "" || user.VerifyOTP != otp {
		return apierr.InvalidOTP("Invalid OTP")
	}
	if user.VerifyOTPExp < time.Now().Unix() {
		return apierr.ExpiredOTP("OTP expired")
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE users SET is_verified = 1, verify_otp = '', verify_otp_expires_at = 0 WHERE id = ?",
		userID)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

// SendResetOTP is the forgot-password entry point: no session required,
// the account is addressed by email.
func (s *AuthService) SendResetOTP(ctx context.Context, email string) error {
	user, err := s.getUserByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return apierr.NotFound("User not found")
		}
		return err
	}

	otp, err := GenerateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	expiresAt := time.Now().Add(OTPTTL).Unix()

	_, err = s.db.ExecContext(ctx,
		"UPDATE users SET reset_otp = ?, reset_otp_expires_at = ? WHERE id = ?",
		otp, expiresAt, user.ID)
	if err != nil {
		return fmt.Errorf("store reset otp: %w", err)
	}

	if err := s.mailer.Send(ctx, user.Email, "Password Reset OTP",
		fmt.Sprintf("Your OTP is %s. Use this OTP to reset your password.", otp)); err != nil {
		log.Error().Err(err).Str("email", email).Msg("Reset OTP email failed")
		return apierr.Internal("Failed to send reset OTP")
	}

	return nil
}

// VerifyResetOTP checks a reset code without consuming it, so the
// client can confirm the code before showing the new-password form.
func (s *AuthService) VerifyResetOTP(ctx context.Context, email, otp string) error {
	user, err := s.getUserByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return apierr.NotFound("User not found")
		}
		return err
	}
	return checkResetOTP(user, otp)
}

// ResetPassword consumes a reset code and replaces the stored password
// hash.
func (s *AuthService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	user, err := s.getUserByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return apierr.NotFound("User not found")
		}
		return err
	}

	if err := checkResetOTP(user, otp); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, reset_otp = '', reset_otp_expires_at = 0 WHERE id = ?",
		string(hashed), user.ID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// checkResetOTP validates a reset code against the stored one. Mismatch
// is reported before expiry, matching the client-facing contract.
func checkResetOTP(user models.User, otp string) error {
	if user.ResetOTP == "" || user.ResetOTP != otp {
		return apierr.InvalidOTP("Invalid OTP")
	}
	if user.ResetOTPExp < time.Now().Unix() {
		return apierr.ExpiredOTP("OTP expired")
	}
	return nil
}

const userColumns = "id, name, email, password_hash, is_verified, verify_otp, verify_otp_expires_at, reset_otp, reset_otp_expires_at, created_at"

func (s *AuthService) getUserByID(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

func (s *AuthService) getUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.IsVerified,
		&user.VerifyOTP,
		&user.VerifyOTPExp,
		&user.ResetOTP,
		&user.ResetOTPExp,
		&user.CreatedAt,
	)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
