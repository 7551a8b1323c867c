package services

import (
	"sort"
	"strings"
)

// seasonCodes maps the long competition-year labels used in uploaded CSVs to
// the short codes shared by highlights and standings.
var seasonCodes = map[string]string{
	"2022/2023": "22/23",
	"2023/2024": "23/24",
	"2024/2025": "24/25",
}

// NormalizeSeason maps a season label to its short code. Short codes pass
// through unchanged; anything unrecognized reports ok=false.
func NormalizeSeason(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if code, found := seasonCodes[s]; found {
		return code, true
	}
	for _, code := range seasonCodes {
		if code == s {
			return code, true
		}
	}
	return "", false
}

// KnownSeasons returns the short codes accepted by the standings uploader.
func KnownSeasons() []string {
	codes := make([]string, 0, len(seasonCodes))
	for _, code := range seasonCodes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
