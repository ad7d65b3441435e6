// Package numbering produces the default human-facing invoice number.
//
// Sequence numbers look like INV-XXXX where the suffix runs through three
// shapes in order: 0001..9999, A001..Z999, AA01..ZZ99. After ZZ99 the
// sequence emits the fixed value AAA1 and defines no further growth.
package numbering

import (
	"fmt"
	"regexp"
	"strconv"
)

const (
	// Prefix starts every generated number
	Prefix = "INV-"
	// Fallback is used when the existing numbers cannot be read
	Fallback = "INV-0001"

	startSuffix    = "0000"
	sentinelSuffix = "AAA1"
	restartSuffix  = "0001"
)

var sequencePattern = regexp.MustCompile(`^INV-[0-9A-Z]{4}$`)

// Matches reports whether number belongs to the generated sequence.
// Custom numbers never match and are ignored by Next.
func Matches(number string) bool {
	return sequencePattern.MatchString(number)
}

// Next returns the number after the highest sequence number in existing.
// Suffixes are compared as plain strings, which agrees with the increment
// order: every digit sorts before every letter.
//
// Next only reads its input. Two callers working from the same snapshot get
// the same answer; uniqueness is not enforced here.
func Next(existing []string) string {
	highest := startSuffix
	for _, n := range existing {
		if !Matches(n) {
			continue
		}
		if suffix := n[len(Prefix):]; suffix > highest {
			highest = suffix
		}
	}
	return Prefix + Increment(highest)
}

// Increment returns the suffix following current
func Increment(current string) string {
	switch {
	case len(current) == 4 && allDigits(current):
		n, _ := strconv.Atoi(current)
		if n < 9999 {
			return fmt.Sprintf("%04d", n+1)
		}
		return "A001"

	case len(current) == 4 && isUpper(current[0]) && allDigits(current[1:]):
		letter := current[0]
		n, _ := strconv.Atoi(current[1:])
		if n < 999 {
			return fmt.Sprintf("%c%03d", letter, n+1)
		}
		if letter < 'Z' {
			return fmt.Sprintf("%c001", letter+1)
		}
		return "AA01"

	case len(current) == 4 && isUpper(current[0]) && isUpper(current[1]) && allDigits(current[2:]):
		first, second := current[0], current[1]
		n, _ := strconv.Atoi(current[2:])
		if n < 99 {
			return fmt.Sprintf("%c%c%02d", first, second, n+1)
		}
		if second < 'Z' {
			return fmt.Sprintf("%c%c01", first, second+1)
		}
		if first < 'Z' {
			return fmt.Sprintf("%cA01", first+1)
		}
		return sentinelSuffix
	}

	return restartSuffix
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}
