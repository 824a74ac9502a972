package feed

import "github.com/samber/lo"

// Dedupe keeps the first post for every link, preserving order.
func Dedupe(posts []Post) []Post {
	return lo.UniqBy(posts, func(p Post) string {
		return p.Link
	})
}
