package services

import (
	"errors"
	"fmt"

	"github.com/openagora/agora/backend/internal/models"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/gorm"
)

// FollowService maintains the directed Owner-to-Owner follow graph.
type FollowService struct {
	db            *gorm.DB
	owners        *OwnerService
	notifications Notifier
}

func NewFollowService(db *gorm.DB, notifier Notifier) *FollowService {
	return &FollowService{db: db, owners: NewOwnerService(db), notifications: notifier}
}

// Follow creates the edge (active owner -> target). Self-follow is a
// BadRequest; a missing target is NotFound; an existing edge is a
// Conflict rather than a silent success, so clients can tell the two
// apart.
func (s *FollowService) Follow(sc *SessionContext, targetOwnerID uint) error {
	if targetOwnerID == sc.ActiveOwnerID {
		return response.NewBadRequest("cannot follow yourself")
	}

	target, err := s.owners.Describe(targetOwnerID)
	if err != nil {
		return err
	}
	if target.Anomaly != "" {
		return response.NewNotFound("target owner does not resolve to a person or organization")
	}

	follow := models.Follow{
		FollowerOwnerID:  sc.ActiveOwnerID,
		FollowingOwnerID: targetOwnerID,
	}
	if err := s.db.Create(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return response.NewConflict("already following")
		}
		return err
	}

	if s.notifications != nil {
		actor := sc.ActiveOwnerID
		task := &NotificationTask{
			Kind:             models.NotificationKindFollow,
			RecipientOwnerID: targetOwnerID,
			ActorOwnerID:     &actor,
			Message:          "you have a new follower",
			DedupeKey:        fmt.Sprintf("follow:%d:%d", sc.ActiveOwnerID, targetOwnerID),
		}
		if err := s.notifications.Enqueue(task); err != nil {
			logError("follow", "notify", err)
		}
	}
	return nil
}

// Unfollow removes the edge if present. Removing a non-relationship is
// a silent success.
func (s *FollowService) Unfollow(sc *SessionContext, targetOwnerID uint) error {
	return s.db.
		Where("follower_owner_id = ? AND following_owner_id = ?", sc.ActiveOwnerID, targetOwnerID).
		Delete(&models.Follow{}).Error
}

// IsFollowing reports whether the directed edge exists.
func (s *FollowService) IsFollowing(ownerID, targetOwnerID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Follow{}).
		Where("follower_owner_id = ? AND following_owner_id = ?", ownerID, targetOwnerID).
		Count(&count).Error
	return count > 0, err
}

// ListFollowers returns the display identities of owners following the
// given owner. An edge whose opposite Owner is an integrity anomaly is
// reported in the view, not dropped and not a fault.
func (s *FollowService) ListFollowers(ownerID uint) ([]OwnerView, error) {
	var edges []models.Follow
	if err := s.db.Where("following_owner_id = ?", ownerID).Order("created_at DESC").Find(&edges).Error; err != nil {
		return nil, err
	}
	views := make([]OwnerView, 0, len(edges))
	for _, e := range edges {
		views = append(views, *s.resolveEdgeOwner(e.FollowerOwnerID))
	}
	return views, nil
}

// ListFollowing returns the display identities of owners the given owner
// follows.
func (s *FollowService) ListFollowing(ownerID uint) ([]OwnerView, error) {
	var edges []models.Follow
	if err := s.db.Where("follower_owner_id = ?", ownerID).Order("created_at DESC").Find(&edges).Error; err != nil {
		return nil, err
	}
	views := make([]OwnerView, 0, len(edges))
	for _, e := range edges {
		views = append(views, *s.resolveEdgeOwner(e.FollowingOwnerID))
	}
	return views, nil
}

func (s *FollowService) resolveEdgeOwner(ownerID uint) *OwnerView {
	view, err := s.owners.Describe(ownerID)
	if err != nil {
		return &OwnerView{OwnerID: ownerID, Anomaly: "owner record missing"}
	}
	return view
}
