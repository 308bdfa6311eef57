package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/projectnuraya/tilawah-tracker/internal/dto"
	"github.com/projectnuraya/tilawah-tracker/pkg/jwt"
)

func setupTestAuthService() (AuthService, *jwt.Manager, *memBlacklist) {
	store := newMemStore()
	repo := newMemRepository(store)
	cfg := testConfig()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	blacklist := newMemBlacklist()
	return NewAuthService(repo, jwtMgr, blacklist, zap.NewNop()), jwtMgr, blacklist
}

func registerTestCoordinator(t *testing.T, svc AuthService) *dto.TokenResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Ustadz Hasan",
		Email:    "Hasan@Example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	return resp
}

// ── 注册 ──

func TestRegister_Success(t *testing.T) {
	svc, _, _ := setupTestAuthService()
	resp := registerTestCoordinator(t, svc)

	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("Token 对不应为空")
	}
	if resp.Coordinator.Email != "hasan@example.com" {
		t.Errorf("期望邮箱统一小写，实际=%s", resp.Coordinator.Email)
	}
	if resp.ExpiresIn != 900 {
		t.Errorf("期望 ExpiresIn=900，实际=%d", resp.ExpiresIn)
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	svc, _, _ := setupTestAuthService()
	registerTestCoordinator(t, svc)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Lain",
		Email:    "HASAN@example.com",
		Password: "password456",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("期望 ErrEmailTaken，实际: %v", err)
	}
}

// ── 登录 ──

func TestLogin(t *testing.T) {
	svc, jwtMgr, _ := setupTestAuthService()
	registerTestCoordinator(t, svc)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"成功（邮箱大小写不敏感）", "HASAN@example.com", "password123", nil},
		{"密码错误", "hasan@example.com", "wrong_password", ErrInvalidCredentials},
		{"账号不存在", "nobody@example.com", "password123", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Login(context.Background(), &dto.LoginRequest{Email: tt.email, Password: tt.password})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("期望错误 %v，实际: %v", tt.wantErr, err)
			}
			if tt.wantErr != nil {
				return
			}
			claims, err := jwtMgr.ParseToken(resp.AccessToken)
			if err != nil {
				t.Fatalf("AccessToken 无法解析: %v", err)
			}
			if claims.CoordinatorID != resp.Coordinator.ID || claims.TokenType != "access" {
				t.Errorf("AccessToken 声明不符合预期: %+v", claims)
			}
		})
	}
}

func TestLogin_RememberMe(t *testing.T) {
	svc, jwtMgr, _ := setupTestAuthService()
	registerTestCoordinator(t, svc)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:      "hasan@example.com",
		Password:   "password123",
		RememberMe: true,
	})
	if err != nil {
		t.Fatalf("Login(RememberMe) 应成功: %v", err)
	}
	claims, err := jwtMgr.ParseToken(resp.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken 无法解析: %v", err)
	}
	if !claims.RememberMe {
		t.Error("RefreshToken 应携带 remember_me")
	}
}

// ── 刷新与登出 ──

func TestRefresh_RotatesToken(t *testing.T) {
	svc, _, _ := setupTestAuthService()
	first := registerTestCoordinator(t, svc)

	second, err := svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: first.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Error("刷新后应签发新的 RefreshToken")
	}

	// 旧 refresh token 已加入黑名单
	if _, err := svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: first.RefreshToken}); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("期望 ErrTokenRevoked，实际: %v", err)
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, _, _ := setupTestAuthService()
	resp := registerTestCoordinator(t, svc)

	_, err := svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: resp.AccessToken})
	if !errors.Is(err, ErrRefreshTokenType) {
		t.Errorf("期望 ErrRefreshTokenType，实际: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: "garbage"}); !errors.Is(err, jwt.ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestLogout_RevokesBothTokens(t *testing.T) {
	svc, jwtMgr, _ := setupTestAuthService()
	resp := registerTestCoordinator(t, svc)

	access, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("AccessToken 无法解析: %v", err)
	}
	refresh, err := jwtMgr.ParseToken(resp.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken 无法解析: %v", err)
	}

	if err := svc.Logout(context.Background(), access, resp.RefreshToken); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	for _, jti := range []string{access.ID, refresh.ID} {
		revoked, err := svc.IsRevoked(context.Background(), jti)
		if err != nil || !revoked {
			t.Errorf("jti=%s 应已注销，实际=%v err=%v", jti, revoked, err)
		}
	}
}

func TestMe(t *testing.T) {
	svc, _, _ := setupTestAuthService()
	resp := registerTestCoordinator(t, svc)

	me, err := svc.Me(context.Background(), resp.Coordinator.ID)
	if err != nil {
		t.Fatalf("Me 应成功: %v", err)
	}
	if me.Name != "Ustadz Hasan" {
		t.Errorf("期望名称=Ustadz Hasan，实际=%s", me.Name)
	}
	if _, err := svc.Me(context.Background(), "missing"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}
