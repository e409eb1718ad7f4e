package common

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	upperChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars = "abcdefghijklmnopqrstuvwxyz"
	digitChars = "0123456789"
)

var ErrEmptyCharset = errors.New("no character class requested for password fill")

// GeneratePassword returns a random string of the given length holding at least
// minUpper uppercase, minLower lowercase and minDigit digit characters.
// The remaining positions are filled only from classes with a non-zero minimum.
// A length below the sum of the minimums is raised to that sum.
func GeneratePassword(length, minUpper, minLower, minDigit int) (string, error) {
	minUpper, minLower, minDigit = max(minUpper, 0), max(minLower, 0), max(minDigit, 0)
	if required := minUpper + minLower + minDigit; length < required {
		length = required
	}

	c := make([]byte, 0, length)
	pool := ""

	classes := []struct {
		chars string
		min   int
	}{
		{upperChars, minUpper},
		{lowerChars, minLower},
		{digitChars, minDigit},
	}
	for _, class := range classes {
		if class.min == 0 {
			continue
		}
		pool += class.chars
		for j := 0; j < class.min; j++ {
			ch, err := pick(class.chars)
			if err != nil {
				return "", err
			}
			c = append(c, ch)
		}
	}

	if len(c) < length && pool == "" {
		return "", ErrEmptyCharset
	}
	for len(c) < length {
		ch, err := pick(pool)
		if err != nil {
			return "", err
		}
		c = append(c, ch)
	}

	// Fisher-Yates
	for j := len(c) - 1; j > 0; j-- {
		k, err := randIntn(j + 1)
		if err != nil {
			return "", err
		}
		c[j], c[k] = c[k], c[j]
	}

	return string(c), nil
}

func pick(chars string) (byte, error) {
	i, err := randIntn(len(chars))
	if err != nil {
		return 0, err
	}
	return chars[i], nil
}

func randIntn(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
