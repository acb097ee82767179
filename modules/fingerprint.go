package modules

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

const saltSize = 8

// Fingerprint derives one short keyed one-way token per answer text.
// The digest length equals the decoy count of the challenge, so more
// decoys buy a larger token space while the callback payload stays
// small. Deterministic for a given salt.
func Fingerprint(texts []string, salt []byte, size int) ([]string, error) {
	if size < 1 || size > maxDecoys {
		return nil, fmt.Errorf("%w: digest size %d", ErrTooManyDecoys, size)
	}
	tokens := make([]string, len(texts))
	for i, text := range texts {
		h, err := blake2b.New(size, salt)
		if err != nil {
			return nil, err
		}
		h.Write([]byte(text))
		tokens[i] = hex.EncodeToString(h.Sum(nil))
	}
	return tokens, nil
}

// issueTokens fingerprints a challenge with a fresh salt. Tokens of one
// instance must be pairwise distinct so a button maps to exactly one
// answer; on the negligible-probability collision the salt is redrawn.
func issueTokens(ch Challenge) (correct string, decoys map[string]string, err error) {
	texts := append([]string{ch.Answer}, ch.Wrong...)
	for {
		salt := make([]byte, saltSize)
		if _, err = rand.Read(salt); err != nil {
			return "", nil, err
		}
		tokens, ferr := Fingerprint(texts, salt, len(ch.Wrong))
		if ferr != nil {
			return "", nil, ferr
		}
		if !distinct(tokens) {
			continue
		}
		decoys = make(map[string]string, len(ch.Wrong))
		for i, w := range ch.Wrong {
			decoys[tokens[i+1]] = w
		}
		return tokens[0], decoys, nil
	}
}

func distinct(tokens []string) bool {
	seen := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		if seen[t] {
			return false
		}
		seen[t] = true
	}
	return true
}
