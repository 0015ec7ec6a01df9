package filter

import "strings"

// Pattern metacharacters neutralized before wildcards are appended: the
// escape character itself first, then % and _. Bracket classes and caret
// have no meaning in Postgres LIKE, so a value containing any of % _ [ ] ^
// can only match literally.
var likeEscaper = strings.NewReplacer(
	`\`, `\\`,
	`%`, `\%`,
	`_`, `\_`,
)

// EscapeLike makes a literal safe for use inside a LIKE pattern.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
