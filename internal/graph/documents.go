package graph

import "strings"

// JoinDocuments concatenates passages in order with a blank line between
// them. An empty slice yields "".
func JoinDocuments(docs []string) string {
	return strings.Join(docs, "\n\n")
}
