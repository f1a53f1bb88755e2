package trivia

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeAnswer trims surrounding whitespace, applies NFKC and folds case so that
// " Rose  ", "ROSE" and "rose" compare equal.
func NormalizeAnswer(s string) string {
	return strings.TrimSpace(cases.Fold().String(norm.NFKC.String(s)))
}

// AnswerMatches reports whether a candidate reply matches the expected answer.
func AnswerMatches(candidate, answer string) bool {
	want := NormalizeAnswer(answer)
	return want != "" && NormalizeAnswer(candidate) == want
}
