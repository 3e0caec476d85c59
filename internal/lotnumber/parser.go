// Package lotnumber parses Korean cadastral lot-number strings into the
// zero-padded bun/ji codes required by the building registry API.
package lotnumber

import (
	"fmt"
	"strconv"
	"strings"
)

// ExtractBun returns the main parcel number from a lot-number string as a
// 4-digit zero-padded code. Only the last whitespace-delimited token is
// considered, so arbitrary leading address text is tolerated:
// "서울 광진구 광장동 256-1" -> "0256".
// Returns "" when the input is empty or the bun segment is not numeric.
func ExtractBun(lotNumber string) string {
	token := lastToken(lotNumber)
	if token == "" {
		return ""
	}
	bunPart, _, _ := strings.Cut(token, "-")
	n, err := strconv.Atoi(bunPart)
	if err != nil || n < 0 {
		return ""
	}
	return fmt.Sprintf("%04d", n)
}

// ExtractJi returns the sub parcel number from a lot-number string as a
// 4-digit zero-padded code: "서울 광진구 광장동 256-1" -> "0001".
// Defaults to "0000" when there is no "-ji" segment or it is not numeric.
// Returns "" only when the input is empty.
func ExtractJi(lotNumber string) string {
	token := lastToken(lotNumber)
	if token == "" {
		return ""
	}
	_, jiPart, found := strings.Cut(token, "-")
	if !found {
		return "0000"
	}
	n, err := strconv.Atoi(jiPart)
	if err != nil || n < 0 {
		return "0000"
	}
	return fmt.Sprintf("%04d", n)
}

func lastToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
