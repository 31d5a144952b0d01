package domain

// Comment is a user comment on an anime.
type Comment struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	UserID    int64  `json:"userId"`
	AnimeID   int64  `json:"animeId"`
	CreatedAt int64  `json:"createdAt"`
}

// CommentWithUser is the response shape with the author's public identity
// joined in.
type CommentWithUser struct {
	Comment

	User *PublicIdentity `json:"user,omitempty"`
}
