package models

// PostList is the envelope every listing endpoint returns. Title is the
// human-readable heading for the listing ("My posts", "Posts in category
// X") so clients can render it directly.
type PostList struct {
	Title string  `json:"title"`
	Posts []*Post `json:"posts"`
}

// CategoryList envelopes the category listing.
type CategoryList struct {
	Categories []*Category `json:"categories"`
}
