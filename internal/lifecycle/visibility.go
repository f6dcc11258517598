package lifecycle

// Visible reports whether a listing may appear in public feeds.
func Visible(s Status) bool {
	return s == StatusApproved
}

// VisibleTo extends Visible for owner-facing views: a seller always sees
// their own listings.
func VisibleTo(s Status, owner, viewer string) bool {
	if viewer != "" && owner == viewer {
		return true
	}
	return Visible(s)
}

// FilterVisible keeps the items whose status is publicly visible.
func FilterVisible[T any](items []T, status func(T) Status) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if Visible(status(it)) {
			out = append(out, it)
		}
	}
	return out
}
