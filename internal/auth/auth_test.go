// internal/auth/auth_test.go
package auth

import (
	"strings"
	"testing"
	"time"
)

func testTokenConfig() *TokenConfig {
	return &TokenConfig{
		Secret:     []byte("0123456789abcdef0123456789abcdef"),
		Expiration: time.Hour,
	}
}

// TestTokenRoundTrip 生成并解析令牌
func TestTokenRoundTrip(t *testing.T) {
	cfg := testTokenConfig()

	tokenString, err := GenerateToken("admin", RoleAdmin, cfg)
	if err != nil {
		t.Fatalf("生成令牌失败: %v", err)
	}

	token, err := ParseToken(tokenString, cfg)
	if err != nil {
		t.Fatalf("解析令牌失败: %v", err)
	}
	if token.UserID != "admin" || token.Role != RoleAdmin {
		t.Fatalf("令牌内容不正确: %+v", token)
	}
}

// TestTokenTamperedSignature 篡改后的令牌被拒绝
func TestTokenTamperedSignature(t *testing.T) {
	cfg := testTokenConfig()

	tokenString, err := GenerateToken("admin", RoleAdmin, cfg)
	if err != nil {
		t.Fatalf("生成令牌失败: %v", err)
	}

	parts := strings.Split(tokenString, ".")
	tampered := parts[0] + "." + "QUJDREVGRw=="

	if _, err := ParseToken(tampered, cfg); err == nil {
		t.Fatal("篡改签名的令牌应被拒绝")
	}
}

// TestTokenWrongSecret 使用不同密钥签发的令牌被拒绝
func TestTokenWrongSecret(t *testing.T) {
	cfg := testTokenConfig()
	other := &TokenConfig{
		Secret:     []byte("ffffffffffffffffffffffffffffffff"),
		Expiration: time.Hour,
	}

	tokenString, _ := GenerateToken("admin", RoleAdmin, other)

	if _, err := ParseToken(tokenString, cfg); err == nil {
		t.Fatal("错误密钥签发的令牌应被拒绝")
	}
}

// TestTokenExpired 过期令牌被拒绝
func TestTokenExpired(t *testing.T) {
	cfg := &TokenConfig{
		Secret:     []byte("0123456789abcdef0123456789abcdef"),
		Expiration: -time.Minute,
	}

	tokenString, err := GenerateToken("admin", RoleAdmin, cfg)
	if err != nil {
		t.Fatalf("生成令牌失败: %v", err)
	}

	if _, err := ParseToken(tokenString, cfg); err == nil {
		t.Fatal("过期令牌应被拒绝")
	}
}

// TestTokenInvalidFormat 格式错误的令牌被拒绝
func TestTokenInvalidFormat(t *testing.T) {
	cfg := testTokenConfig()

	for _, tokenString := range []string{"", "abc", "a.b.c", "!!!.###"} {
		if _, err := ParseToken(tokenString, cfg); err == nil {
			t.Fatalf("格式错误的令牌应被拒绝: %q", tokenString)
		}
	}
}

// TestGenerateSecureKey 生成指定长度的随机密钥
func TestGenerateSecureKey(t *testing.T) {
	key, err := GenerateSecureKey(32)
	if err != nil {
		t.Fatalf("生成密钥失败: %v", err)
	}
	if len(key) != 32 {
		t.Fatalf("密钥长度应为32，实际%d", len(key))
	}

	// 非法长度回退到默认值
	key, err = GenerateSecureKey(0)
	if err != nil {
		t.Fatalf("生成密钥失败: %v", err)
	}
	if len(key) != 32 {
		t.Fatalf("默认密钥长度应为32，实际%d", len(key))
	}
}
