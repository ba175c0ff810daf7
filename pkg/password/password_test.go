package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("open-sesame")
	if err != nil {
		t.Fatalf("哈希失败: %v", err)
	}
	if hash == "open-sesame" {
		t.Fatal("哈希不应等于明文")
	}

	if !Verify("open-sesame", hash) {
		t.Fatal("正确口令应通过校验")
	}
	if Verify("wrong", hash) {
		t.Fatal("错误口令不应通过校验")
	}
}
