package repository

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes the wildcards of a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
