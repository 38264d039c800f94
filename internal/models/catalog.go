package models

// Music is the slice of the song catalog the scoring core reads.
type Music struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Played int64  `json:"played"`
}

// User is the slice of a user profile the scoring core reads.
type User struct {
	ID              int64  `json:"id"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profile_image_url"`
	XP              int64  `json:"xp"`
}
