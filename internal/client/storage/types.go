package storage

// Profile is the creator profile mirrored locally for the signed-in user.
type Profile struct {
	CreatorID     string `json:"creator_id"`
	CreatorName   string `json:"creator_name"`
	CreatorAvatar string `json:"creator_avatar"`
}

// Empty reports whether no profile has been synced.
func (p Profile) Empty() bool {
	return p == Profile{}
}
