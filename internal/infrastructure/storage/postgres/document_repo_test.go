package postgres

import (
	"regexp"
	"testing"
)

func TestIssuedSeqPattern(t *testing.T) {
	re := regexp.MustCompile(issuedSeqPattern("QT", 2025))

	matching := []string{
		"QT2025-0001",
		"QT2025-0042",
		"QT2025-10000",
	}
	for _, docNo := range matching {
		if !re.MatchString(docNo) {
			t.Errorf("%s should match", docNo)
		}
	}

	// Manual numbers are arbitrary; anything without a numeric tail in the
	// generated shape must be skipped, never cast.
	skipped := []string{
		"QT2025-FINAL",
		"QT2025-0001-rev2",
		"QT2025-",
		"QT2024-0001",
		"DN2025-0001",
		"QT2025",
		"xQT2025-0001",
	}
	for _, docNo := range skipped {
		if re.MatchString(docNo) {
			t.Errorf("%s should not match", docNo)
		}
	}
}

func TestIssuedSeqPattern_QuotesPrefix(t *testing.T) {
	re := regexp.MustCompile(issuedSeqPattern("Q.T", 2025))
	if re.MatchString("QXT2025-0001") {
		t.Errorf("prefix metacharacters must be matched literally")
	}
	if !re.MatchString("Q.T2025-0001") {
		t.Errorf("literal prefix should match")
	}
}
