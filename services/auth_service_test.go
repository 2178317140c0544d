package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/princinho/eventsbackend/models"
	"github.com/princinho/eventsbackend/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (n *recordingNotifier) NotifyRegistered(_ context.Context, user *models.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, user.Email)
	return n.err
}

func (n *recordingNotifier) emails() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

type authFixture struct {
	svc      *AuthService
	users    *memory.Users
	tokens   *TokenService
	notifier *recordingNotifier
	logs     *observer.ObservedLogs
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	f := &authFixture{
		users:    memory.NewUsers(),
		tokens:   NewTokenService(testJWTConfig()),
		notifier: &recordingNotifier{},
		logs:     logs,
	}
	f.svc = NewAuthService(f.users, f.tokens, NewBcryptHasher(bcrypt.MinCost), f.notifier, zap.New(core))
	return f
}

func (f *authFixture) register(t *testing.T, username, email, password string) *models.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
		Role:     models.RoleUser,
	})
	require.NoError(t, err)
	return user
}

func TestRegister_CreatesUserAndNotifies(t *testing.T) {
	f := newAuthFixture(t)

	user := f.register(t, "alice", " Alice@X.com ", "pw123456")
	f.svc.Wait()

	assert.Equal(t, "alice@x.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "pw123456", user.PasswordHash)
	assert.Equal(t, []string{"alice@x.com"}, f.notifier.emails())
}

func TestRegister_EmailAlreadyInUse(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "a@x.com", "pw123456")

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Username: "bob",
		Email:    "a@x.com",
		Password: "pw",
		Role:     models.RoleUser,
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyInUse)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestRegister_UsernameAlreadyInUse(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "a@x.com", "pw123456")

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "b@x.com",
		Password: "pw123456",
	})
	assert.ErrorIs(t, err, ErrUsernameAlreadyInUse)
}

func TestRegister_RejectsAdminRole(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Username: "mallory",
		Email:    "m@x.com",
		Password: "pw123456",
		Role:     models.RoleAdmin,
	})
	assert.ErrorIs(t, err, ErrInvalidRole)

	admin, err := f.svc.CreateUser(context.Background(), RegisterInput{
		Username: "root",
		Email:    "root@x.com",
		Password: "pw123456",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
}

func TestRegister_NotificationFailureIsOnlyLogged(t *testing.T) {
	f := newAuthFixture(t)
	f.notifier.err = errors.New("smtp down")

	user := f.register(t, "alice", "a@x.com", "pw123456")
	f.svc.Wait()

	stored, err := f.users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
	assert.Equal(t, 1, f.logs.FilterMessage("welcome notification failed").Len())
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "a@x.com", "pw123456")

	_, wrongPassword := f.svc.Login(context.Background(), "a@x.com", "nope")
	_, unknownEmail := f.svc.Login(context.Background(), "ghost@x.com", "pw123456")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, KindOf(wrongPassword), KindOf(unknownEmail))
}

// brokenHasher cannot hash and records the hashes it is asked to verify against.
type brokenHasher struct {
	mu       sync.Mutex
	verified []string
}

func (h *brokenHasher) Hash(string) (string, error) {
	return "", errors.New("hasher unavailable")
}

func (h *brokenHasher) Verify(_, hash string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.verified = append(h.verified, hash)
	return false
}

func TestLogin_UnknownEmailStillComparesWhenHasherFails(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	hasher := &brokenHasher{}
	svc := NewAuthService(memory.NewUsers(), NewTokenService(testJWTConfig()), hasher, &recordingNotifier{}, zap.New(core))

	_, err := svc.Login(context.Background(), "ghost@x.com", "pw123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.Len(t, hasher.verified, 1)
	cost, err := bcrypt.Cost([]byte(hasher.verified[0]))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
	assert.Equal(t, 1, logs.FilterMessage("failed to build dummy credential hash").Len())
}

func TestLogin_IssuesTokens(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "alice", "a@x.com", "pw123456")

	session, err := f.svc.Login(context.Background(), "A@X.COM", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.User.ID)

	subject, err := f.tokens.VerifyAccess(session.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)
}

func TestRefresh(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "alice", "a@x.com", "pw123456")
	session, err := f.svc.Login(context.Background(), "a@x.com", "pw123456")
	require.NoError(t, err)

	pair, err := f.svc.Refresh(context.Background(), session.Tokens.RefreshToken)
	require.NoError(t, err)
	subject, err := f.tokens.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)

	_, err = f.svc.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Refresh(context.Background(), session.Tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_DeletedUser(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "alice", "a@x.com", "pw123456")
	session, err := f.svc.Login(context.Background(), "a@x.com", "pw123456")
	require.NoError(t, err)

	f.users.Delete(user.ID)

	_, err = f.svc.Refresh(context.Background(), session.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrPrincipalNotFound)
	assert.Equal(t, KindUnauthenticated, KindOf(err))
}

func TestAuthenticate(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "alice", "a@x.com", "pw123456")
	pair, err := f.tokens.Issue(user.ID)
	require.NoError(t, err)

	got, err := f.svc.Authenticate(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = f.svc.Authenticate(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	ghost, err := f.tokens.Issue(bson.NewObjectID())
	require.NoError(t, err)
	_, err = f.svc.Authenticate(context.Background(), ghost.AccessToken)
	assert.ErrorIs(t, err, ErrPrincipalNotFound)
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "alice", "a@x.com", "pw123456")
	ctx := context.Background()

	err := f.svc.ChangePassword(ctx, user.ID, "wrong", "newpass99")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, f.svc.ChangePassword(ctx, user.ID, "pw123456", "newpass99"))

	_, err = f.svc.Login(ctx, "a@x.com", "pw123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "a@x.com", "newpass99")
	assert.NoError(t, err)
}

func TestSeedAdmin_IsIdempotent(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	created, err := f.svc.SeedAdmin(ctx, f.users, "Root@X.com", "s3cret!!")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.svc.SeedAdmin(ctx, f.users, "root@x.com", "other")
	require.NoError(t, err)
	assert.False(t, created)

	session, err := f.svc.Login(ctx, "root@x.com", "s3cret!!")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, session.User.Role)

	_, err = f.svc.SeedAdmin(ctx, f.users, "", "x")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
