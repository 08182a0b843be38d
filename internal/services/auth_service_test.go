package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authmail/authmail-be/internal/apierr"
	"github.com/authmail/authmail-be/internal/database"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// fakeMailer records outgoing mail and can be told to fail.
type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	// A pooled second connection would see a different in-memory DB.
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestService(t *testing.T) (*AuthService, *fakeMailer, *sql.DB) {
	t.Helper()
	db := newTestDB(t)
	mailer := &fakeMailer{}
	return NewAuthService(db, mailer, []byte("test-secret")), mailer, db
}

func storedOTP(t *testing.T, db *sql.DB, email, column string) string {
	t.Helper()
	var code string
	require.NoError(t, db.QueryRow("SELECT "+column+" FROM users WHERE email = ?", email).Scan(&code))
	return code
}

func expireOTP(t *testing.T, db *sql.DB, email, purpose string) {
	t.Helper()
	past := time.Now().Add(-time.Minute).Unix()
	_, err := db.Exec("UPDATE users SET "+purpose+"_otp_expires_at = ? WHERE email = ?", past, email)
	require.NoError(t, err)
}

func apiCode(t *testing.T, err error) string {
	t.Helper()
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	return apiErr.Code
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()

	_, token, err := svc.Register(ctx, "Alice", "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, _, err = svc.Register(ctx, "Alice Again", "alice@example.com", "other-pass")
	assert.Equal(t, "CONFLICT", apiCode(t, err))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRegister_WelcomeMailFailureIsSwallowed(t *testing.T) {
	svc, mailer, _ := newTestService(t)
	mailer.err = errors.New("relay down")

	_, token, err := svc.Register(context.Background(), "Bob", "bob@example.com", "pass1234")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Carol", "carol@example.com", "correct-horse")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		user, token, err := svc.Login(ctx, "carol@example.com", "correct-horse")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "Carol", user.Name)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "whatever")
		require.Error(t, err)
		assert.Equal(t, "AUTH_ERROR", apiCode(t, err))
		assert.EqualError(t, err, "Invalid email")
	})

	t.Run("wrong password", func(t *testing.T) {
		_, token, err := svc.Login(ctx, "carol@example.com", "wrong-horse")
		require.Error(t, err)
		assert.Equal(t, "AUTH_ERROR", apiCode(t, err))
		assert.EqualError(t, err, "Invalid password")
		assert.Empty(t, token)
	})
}

func TestVerifyAccountFlow(t *testing.T) {
	svc, mailer, db := newTestService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "Dave", "dave@example.com", "pass1234")
	require.NoError(t, err)

	require.NoError(t, svc.SendVerifyOTP(ctx, user.ID))
	firstCode := storedOTP(t, db, "dave@example.com", "verify_otp")
	assert.Len(t, firstCode, OTPLength)
	require.Len(t, mailer.sent, 2) // welcome + OTP
	assert.Contains(t, mailer.sent[1].Body, firstCode)

	// A reissued code replaces the first one.
	require.NoError(t, svc.SendVerifyOTP(ctx, user.ID))
	secondCode := storedOTP(t, db, "dave@example.com", "verify_otp")
	if firstCode != secondCode {
		err := svc.VerifyAccount(ctx, user.ID, firstCode)
		assert.Equal(t, "INVALID_OTP", apiCode(t, err))
	}

	// Past the 10-minute window the right code is rejected.
	expireOTP(t, db, "dave@example.com", "verify")
	err = svc.VerifyAccount(ctx, user.ID, secondCode)
	assert.Equal(t, "EXPIRED_OTP", apiCode(t, err))

	// A fresh code flips the account to verified and is consumed.
	require.NoError(t, svc.SendVerifyOTP(ctx, user.ID))
	thirdCode := storedOTP(t, db, "dave@example.com", "verify_otp")
	require.NoError(t, svc.VerifyAccount(ctx, user.ID, thirdCode))

	var verified bool
	require.NoError(t, db.QueryRow("SELECT is_verified FROM users WHERE id = ?", user.ID).Scan(&verified))
	assert.True(t, verified)
	assert.Empty(t, storedOTP(t, db, "dave@example.com", "verify_otp"))

	// Reuse after consumption fails: the stored code is gone.
	err = svc.VerifyAccount(ctx, user.ID, thirdCode)
	assert.Equal(t, "INVALID_OTP", apiCode(t, err))

	// And issuing another verification code is refused outright.
	err = svc.SendVerifyOTP(ctx, user.ID)
	assert.Equal(t, "ALREADY_VERIFIED", apiCode(t, err))
}

func TestSendVerifyOTP_MailFailurePropagates(t *testing.T) {
	svc, mailer, _ := newTestService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "Eve", "eve@example.com", "pass1234")
	require.NoError(t, err)

	mailer.err = errors.New("relay down")
	err = svc.SendVerifyOTP(ctx, user.ID)
	require.Error(t, err)
	assert.Equal(t, "INTERNAL_ERROR", apiCode(t, err))
}

func TestSendVerifyOTP_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.SendVerifyOTP(context.Background(), "no-such-id")
	assert.Equal(t, "NOT_FOUND", apiCode(t, err))
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Frank", "frank@example.com", "old-password")
	require.NoError(t, err)

	t.Run("missing user", func(t *testing.T) {
		err := svc.SendResetOTP(ctx, "ghost@example.com")
		assert.Equal(t, "NOT_FOUND", apiCode(t, err))
	})

	require.NoError(t, svc.SendResetOTP(ctx, "frank@example.com"))
	code := storedOTP(t, db, "frank@example.com", "reset_otp")

	t.Run("verify-otp is a pure check", func(t *testing.T) {
		require.NoError(t, svc.VerifyResetOTP(ctx, "frank@example.com", code))
		// Still present, still usable.
		assert.Equal(t, code, storedOTP(t, db, "frank@example.com", "reset_otp"))
	})

	t.Run("wrong code", func(t *testing.T) {
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		err := svc.ResetPassword(ctx, "frank@example.com", wrong, "new-password")
		assert.Equal(t, "INVALID_OTP", apiCode(t, err))
	})

	t.Run("expired code", func(t *testing.T) {
		expireOTP(t, db, "frank@example.com", "reset")
		err := svc.ResetPassword(ctx, "frank@example.com", code, "new-password")
		assert.Equal(t, "EXPIRED_OTP", apiCode(t, err))
	})

	require.NoError(t, svc.SendResetOTP(ctx, "frank@example.com"))
	code = storedOTP(t, db, "frank@example.com", "reset_otp")
	require.NoError(t, svc.ResetPassword(ctx, "frank@example.com", code, "new-password"))

	// Reset code is consumed.
	assert.Empty(t, storedOTP(t, db, "frank@example.com", "reset_otp"))

	// Old credentials no longer work, new ones do.
	_, _, err = svc.Login(ctx, "frank@example.com", "old-password")
	assert.Equal(t, "AUTH_ERROR", apiCode(t, err))
	_, _, err = svc.Login(ctx, "frank@example.com", "new-password")
	assert.NoError(t, err)
}

func TestResetOTPIndependentOfVerifyOTP(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "Grace", "grace@example.com", "pass1234")
	require.NoError(t, err)

	require.NoError(t, svc.SendVerifyOTP(ctx, user.ID))
	require.NoError(t, svc.SendResetOTP(ctx, "grace@example.com"))

	verifyCode := storedOTP(t, db, "grace@example.com", "verify_otp")
	resetCode := storedOTP(t, db, "grace@example.com", "reset_otp")

	// Consuming the verification code leaves the reset code untouched.
	require.NoError(t, svc.VerifyAccount(ctx, user.ID, verifyCode))
	assert.Equal(t, resetCode, storedOTP(t, db, "grace@example.com", "reset_otp"))
	require.NoError(t, svc.VerifyResetOTP(ctx, "grace@example.com", resetCode))
}
