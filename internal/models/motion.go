package models

import "time"

// Keypoint is a single 2D body landmark. Its landmark id is implied by its
// position within Frame.Keypoints.
type Keypoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Frame is one timestamped snapshot of every tracked keypoint.
type Frame struct {
	Time      float64    `json:"time"`
	Keypoints []Keypoint `json:"keypoints"`
}

// ReferenceSheet is the immutable reference motion of a song. Reference
// frames are sampled at twice the rate of submitted play frames.
type ReferenceSheet struct {
	MusicID   int64     `json:"music_id"`
	VideoURL  string    `json:"video_url"`
	Frames    []Frame   `json:"frames"`
	CreatedAt time.Time `json:"created_at"`
}

// Answer is the reference data handed to a game client before it plays.
type Answer struct {
	MusicID    int64   `json:"music_id"`
	VideoURL   string  `json:"video_url"`
	FrameCount int     `json:"total_count"`
	Sheet      []Frame `json:"sheet"`
}
