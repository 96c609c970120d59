package utils

import "strings"

// JoinWithAnd joins SQL conditions with AND
func JoinWithAnd(clauses []string) string {
	return strings.Join(clauses, " AND ")
}
