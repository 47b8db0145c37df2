package hash

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestHashAndVerify_Success(t *testing.T) {
	phc, err := Password("s3cret!")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if !Verify(phc, "s3cret!") {
		t.Fatal("expected verify success")
	}
}

func TestHashAndVerify_Fail(t *testing.T) {
	phc, err := Password("password")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if Verify(phc, "wrong") {
		t.Fatal("expected verify failure for wrong password")
	}
}

func TestVerify_RejectsTamperedPHC(t *testing.T) {
	phc, err := Password("password")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	for _, bad := range []string{
		"",
		"not-a-phc",
		strings.Replace(phc, "argon2id", "argon2i", 1),
		strings.Replace(phc, "v=19", "v=18", 1),
		phc[:len(phc)-4],
	} {
		if Verify(bad, "password") {
			t.Fatalf("expected verify failure for %q", bad)
		}
	}
}

func TestPHCParsing(t *testing.T) {
	// build a minimal valid PHC with known salt/hash lengths
	salt := make([]byte, saltLen)
	for i := range salt {
		salt[i] = byte(i)
	}
	sum := make([]byte, keyLen)
	for i := range sum {
		sum[i] = byte(i)
	}
	phc := strings.Join([]string{
		"",
		phcAlg,
		"v=19",
		"m=65536,t=3,p=1",
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	}, "$")
	p, s, h, err := parsePHC(phc)
	if err != nil {
		t.Fatalf("parse phc: %v", err)
	}
	if p.memory != hashMemory || p.time != hashTime || p.threads != hashThreads {
		t.Fatalf("params mismatch: %+v", p)
	}
	if len(s) != int(saltLen) || len(h) != int(keyLen) {
		t.Fatalf("decoded lengths wrong: salt=%d hash=%d", len(s), len(h))
	}
}
