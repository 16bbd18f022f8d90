package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-grocery-store/internal/apperr"
	"go-grocery-store/internal/core/auth"
	"go-grocery-store/internal/domain"
	"go-grocery-store/internal/repo/repotest"
)

func newAuthFixture(t *testing.T) (*AuthService, *auth.JWTer, *repotest.Mem) {
	t.Helper()
	mem := repotest.New()
	j := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "grocery-test", TTL: time.Hour}
	return NewAuthService(mem.Stores(), j, zap.NewNop()), j, mem
}

func registerAlice(t *testing.T, svc *AuthService) *TokenPayload {
	t.Helper()
	p, err := svc.Register(context.Background(), RegisterInput{
		FullName:        "Alice Smith",
		Email:           "alice@example.com",
		Password:        "Passw0rd!",
		ConfirmPassword: "Passw0rd!",
	})
	require.NoError(t, err)
	return p
}

func TestRegisterAndLoginRoundtrip(t *testing.T) {
	svc, j, _ := newAuthFixture(t)
	reg := registerAlice(t, svc)
	assert.Equal(t, "Bearer", reg.Type)
	assert.Equal(t, domain.RoleCustomer, reg.Role)
	assert.NotEmpty(t, reg.Token)

	login, err := svc.Login(context.Background(), "alice@example.com", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, login.ID)

	claims, err := j.Parse(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, claims.UID)
	assert.Equal(t, domain.RoleCustomer, claims.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	registerAlice(t, svc)

	_, err := svc.Register(context.Background(), RegisterInput{
		FullName:        "Alice Again",
		Email:           "alice@example.com",
		Password:        "Other123",
		ConfirmPassword: "Other123",
	})
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.CodeBadRequest, ae.Code)
	assert.Contains(t, ae.Error(), "already in use")
}

// 预检和插入之间被并发注册抢先时，唯一索引错误也要映射成 400
type racingUserStore struct{ domain.UserRepository }

func (racingUserStore) ExistsByEmail(context.Context, string) (bool, error) { return false, nil }

func TestRegisterDuplicateEmailUnderRace(t *testing.T) {
	mem := repotest.New()
	j := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "grocery-test", TTL: time.Hour}
	stores := mem.Stores()
	stores.Users = racingUserStore{stores.Users}
	svc := NewAuthService(stores, j, zap.NewNop())

	registerAlice(t, svc)

	_, err := svc.Register(context.Background(), RegisterInput{
		FullName:        "Alice Again",
		Email:           "alice@example.com",
		Password:        "Other123",
		ConfirmPassword: "Other123",
	})
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.CodeBadRequest, ae.Code)
	assert.Equal(t, "Email is already in use", ae.Error())
}

func TestRegisterPasswordMismatch(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, err := svc.Register(context.Background(), RegisterInput{
		FullName:        "Alice Smith",
		Email:           "alice@example.com",
		Password:        "Passw0rd!",
		ConfirmPassword: "different",
	})
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.CodeBadRequest, ae.Code)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	registerAlice(t, svc)

	// 密码错和账号不存在给同一个提示
	for _, c := range []struct{ email, pw string }{
		{"alice@example.com", "wrong"},
		{"nobody@example.com", "Passw0rd!"},
	} {
		_, err := svc.Login(context.Background(), c.email, c.pw)
		var ae *apperr.Error
		require.True(t, errors.As(err, &ae))
		assert.Equal(t, apperr.CodeUnauthorized, ae.Code)
		assert.Equal(t, "Invalid email or password", ae.Error())
	}
}

func TestRefreshReissuesToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	reg := registerAlice(t, svc)

	p, err := svc.Refresh(context.Background(), reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, p.ID)
	assert.NotEmpty(t, p.Token)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, err := svc.Refresh(context.Background(), "not-a-token")
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.CodeUnauthorized, ae.Code)
}

func TestValidate(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	reg := registerAlice(t, svc)
	assert.True(t, svc.Validate(reg.Token))
	assert.False(t, svc.Validate("garbage"))
}
