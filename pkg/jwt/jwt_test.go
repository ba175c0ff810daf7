package jwt

import (
	"testing"
	"time"

	"mmo-system/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:     "test-secret",
		ExpireTime: time.Hour,
		Issuer:     "mmo-system",
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService(testJWTConfig())

	token, err := svc.GenerateToken("ops", map[string]interface{}{"role": "admin"})
	if err != nil {
		t.Fatalf("签发失败: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("校验失败: %v", err)
	}
	if claims.Subject != "ops" {
		t.Fatalf("Subject = %s，期望ops", claims.Subject)
	}
	if claims.Data["role"] != "admin" {
		t.Fatalf("Data = %v", claims.Data)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	token, err := svc.GenerateToken("ops", nil)
	if err != nil {
		t.Fatalf("签发失败: %v", err)
	}

	other := NewJWTService(config.JWTConfig{Secret: "another", ExpireTime: time.Hour, Issuer: "mmo-system"})
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("错误密钥签发的令牌不应通过校验")
	}
}

func TestValidateTokenEmpty(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	if _, err := svc.ValidateToken(""); err == nil {
		t.Fatal("空令牌不应通过校验")
	}
}
