package model

import "time"

// Comment is one message in the tracking thread of a booking.  Comments
// posted from the report view carry IsAdmin=true.
type Comment struct {
	ID         string      `json:"id"`
	BookingID  string      `json:"bookingId"`
	Content    string      `json:"content"`
	ImagePaths *ImagePaths `json:"imagePaths,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	IsAdmin    bool        `json:"isAdmin"`
}

// ImagePaths holds the public paths of the two files derived from an
// uploaded comment image.
type ImagePaths struct {
	FullSize  string `json:"fullSize"`
	Thumbnail string `json:"thumbnail"`
}
