package domain

import "time"

// ShortLink maps a short identifier to a destination URL. CreatedBy is nil
// for anonymously created links. VisitHistory is embedded and append-only;
// the click count is its length.
type ShortLink struct {
	ShortID      string        `json:"shortId" bson:"shortId"`
	RedirectURL  string        `json:"redirectURL" bson:"redirectURL"`
	CreatedBy    *string       `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	VisitHistory []VisitRecord `json:"visitHistory" bson:"visitHistory"`
	Title        string        `json:"title" bson:"title"`
	Tags         []string      `json:"tags" bson:"tags"`
	CreatedAt    time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// Clicks returns the visit count.
func (l *ShortLink) Clicks() int {
	return len(l.VisitHistory)
}

// VisitRecord is one resolution of a short link. Everything beyond the
// timestamp is best-effort and may be absent.
type VisitRecord struct {
	Timestamp int64  `json:"timestamp" bson:"timestamp"`
	IPAddress string `json:"ipAddress,omitempty" bson:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	Country   string `json:"country,omitempty" bson:"country,omitempty"`
	City      string `json:"city,omitempty" bson:"city,omitempty"`
}

// LinkEdit is a partial update to an owned link. Nil fields are left
// untouched; a non-nil empty Title or Tags clears the stored value.
type LinkEdit struct {
	Title    *string   `json:"title"`
	Tags     *[]string `json:"tags"`
	BackHalf *string   `json:"backHalf"`
}
