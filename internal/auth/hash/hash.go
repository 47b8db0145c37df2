package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Fixed: the cost is not operator-tunable.
const (
	hashTime    uint32 = 3
	hashMemory  uint32 = 64 * 1024 // KiB
	hashThreads uint8  = 1
	saltLen     uint32 = 16
	keyLen      uint32 = 32
	phcAlg             = "argon2id"
	phcVersion         = 19
)

// Password derives an Argon2id hash and returns a PHC-formatted string:
// $argon2id$v=19$m=65536,t=3,p=1$<saltB64>$<hashB64>
func Password(plain string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	sum := argon2.IDKey([]byte(plain), salt, hashTime, hashMemory, hashThreads, keyLen)
	p := fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		phcAlg, phcVersion, hashMemory, hashTime, hashThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	)
	return p, nil
}

// Verify parses the PHC string and checks the supplied plain text against
// it in constant time. Parameters encoded in the PHC are honored so hashes
// survive future cost changes.
func Verify(phc, plain string) bool {
	params, salt, sum, err := parsePHC(phc)
	if err != nil {
		return false
	}
	calc := argon2.IDKey([]byte(plain), salt, params.time, params.memory, params.threads, uint32(len(sum)))
	return subtle.ConstantTimeCompare(calc, sum) == 1
}

type phcParams struct {
	time    uint32
	memory  uint32
	threads uint8
}

func parsePHC(phc string) (phcParams, []byte, []byte, error) {
	// Six parts when splitting by '$': "", alg, v=19, params, salt, hash
	parts := strings.Split(phc, "$")
	if len(parts) < 6 || parts[0] != "" {
		return phcParams{}, nil, nil, errors.New("invalid phc: parts")
	}
	if parts[1] != phcAlg {
		return phcParams{}, nil, nil, fmt.Errorf("unsupported alg: %s", parts[1])
	}
	if v, ok := strings.CutPrefix(parts[2], "v="); !ok {
		return phcParams{}, nil, nil, errors.New("invalid phc: version")
	} else if n, err := strconv.Atoi(v); err != nil || n != phcVersion {
		return phcParams{}, nil, nil, fmt.Errorf("unsupported version: %s", parts[2])
	}
	var pp phcParams
	for _, kv := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		switch k {
		case "m":
			if n, err := strconv.ParseUint(v, 10, 32); err == nil {
				pp.memory = uint32(n)
			}
		case "t":
			if n, err := strconv.ParseUint(v, 10, 32); err == nil {
				pp.time = uint32(n)
			}
		case "p":
			if n, err := strconv.ParseUint(v, 10, 8); err == nil {
				pp.threads = uint8(n)
			}
		}
	}
	if pp.memory == 0 || pp.time == 0 || pp.threads == 0 {
		return phcParams{}, nil, nil, errors.New("invalid phc: params")
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return phcParams{}, nil, nil, errors.New("invalid phc: salt")
	}
	sum, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(sum) == 0 {
		return phcParams{}, nil, nil, errors.New("invalid phc: hash")
	}
	return pp, salt, sum, nil
}
