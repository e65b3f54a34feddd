package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("clubcare123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "clubcare123" {
		t.Fatal("hash equals plaintext")
	}

	if !VerifyPassword(hash, "clubcare123") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrongpass1") {
		t.Error("wrong password accepted")
	}
}

func TestValidatePassword(t *testing.T) {
	valid := []string{"abcdefg1", "1234567a", "longpassword9"}
	for _, p := range valid {
		if err := ValidatePassword(p); err != nil {
			t.Errorf("ValidatePassword(%q) = %v, want nil", p, err)
		}
	}

	invalid := []string{"short1a", "abcdefgh", "12345678", ""}
	for _, p := range invalid {
		if err := ValidatePassword(p); err == nil {
			t.Errorf("ValidatePassword(%q) accepted weak password", p)
		}
	}
}
