package client

import "strconv"

// Badge renders the unread counter somewhere visible.
type Badge interface {
	Update(label string, count int64)
}

// FormatBadge clamps the counter label: past the limit the badge shows
// "<limit>+" (the navbar uses 99, the bell dropdown 9). Zero hides the
// badge and yields an empty label.
func FormatBadge(count int64, limit int64) string {
	if count <= 0 {
		return ""
	}
	if count > limit {
		return strconv.FormatInt(limit, 10) + "+"
	}
	return strconv.FormatInt(count, 10)
}
