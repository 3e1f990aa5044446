package plesk

import (
	"crypto/rand"
	"math/big"
)

const (
	lowerChars   = "abcdefghijklmnopqrstuvwxyz"
	upperChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	letterChars  = lowerChars + upperChars
	digitChars   = "0123456789"
	specialChars = "!@#$%^&*()-_=+"
)

// RandomString returns n random ASCII letters.
func RandomString(n int) string {
	return string(pick(letterChars, n))
}

// RandomLower returns n random lowercase letters.
func RandomLower(n int) string {
	return string(pick(lowerChars, n))
}

// GeneratePassword returns a shuffled password of length characters holding at least the requested
// number of lowercase, uppercase, digit and special characters.  Remaining positions are letters or
// digits.
func GeneratePassword(length, lower, upper, digits, special int) string {
	var chars []byte
	chars = append(chars, pick(lowerChars, lower)...)
	chars = append(chars, pick(upperChars, upper)...)
	chars = append(chars, pick(digitChars, digits)...)
	chars = append(chars, pick(specialChars, special)...)
	if rest := length - len(chars); rest > 0 {
		chars = append(chars, pick(letterChars+digitChars, rest)...)
	}
	for i := len(chars) - 1; i > 0; i-- {
		j := randInt(i + 1)
		chars[i], chars[j] = chars[j], chars[i]
	}
	return string(chars)
}

func pick(set string, n int) []byte {
	out := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, set[randInt(len(set))])
	}
	return out
}

func randInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return int(v.Int64())
}
