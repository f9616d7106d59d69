package domain

import (
	"strconv"
	"time"
)

// UserArtifact - артефакт, полученный пользователем
type UserArtifact struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	ArtifactID string    `json:"artifact_id"`
	AcquiredAt time.Time `json:"acquired_at"`
	Source     string    `json:"source"`
}

func NewUserArtifact(userID int64, artifactID, source string, now time.Time) UserArtifact {
	return UserArtifact{
		ID:         strconv.FormatInt(userID, 10) + "-" + artifactID,
		UserID:     userID,
		ArtifactID: artifactID,
		AcquiredAt: now,
		Source:     source,
	}
}

// OwnedArtifact is a user artifact joined with its catalog entry.
type OwnedArtifact struct {
	UserArtifact
	Artifact Artifact `json:"artifact"`
}

type Referral struct {
	ReferrerUserID int64     `json:"referrer_user_id"`
	ReferredUserID int64     `json:"referred_user_id"`
	CreatedAt      time.Time `json:"created_at"`
	BonusGiven     bool      `json:"bonus_given"`
}

// Involves reports whether the pair is the same regardless of direction.
func (r Referral) Involves(a, b int64) bool {
	return (r.ReferrerUserID == a && r.ReferredUserID == b) ||
		(r.ReferrerUserID == b && r.ReferredUserID == a)
}
