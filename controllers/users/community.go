package users

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"communityapp/database"
	"communityapp/middleware"
	"communityapp/models"
	"communityapp/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type CreateCommunityRequest struct {
	Name string `json:"name" validate:"required,nameok"`
}

// POST /v1/communities
func CreateCommunityHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req CreateCommunityRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	community := models.Community{
		Name:    strings.TrimSpace(req.Name),
		OwnerID: uid,
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&community).Error; err != nil {
			return err
		}
		member := models.CommunityMember{
			CommunityID: community.ID,
			UserID:      uid,
			Role:        "admin",
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		log.Printf("[communities] create failed for user %s: %v", uid, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Community created", Data: community})
}

// GET /v1/communities
// Lists the communities the caller belongs to, with their membership row.
func ListCommunitiesHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	db := database.DB

	var memberships []models.CommunityMember
	if err := db.Where("user_id = ?", uid).Order("id ASC").Find(&memberships).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}

	ids := make([]string, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.CommunityID)
	}
	var communities []models.Community
	if len(ids) > 0 {
		if err := db.Where("id IN ?", ids).Find(&communities).Error; err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
			return
		}
	}
	byID := make(map[string]models.Community, len(communities))
	for _, c := range communities {
		byID[c.ID] = c
	}

	resp := make([]map[string]interface{}, 0, len(memberships))
	for _, m := range memberships {
		c := byID[m.CommunityID]
		resp = append(resp, map[string]interface{}{
			"community":  c,
			"membership": m,
		})
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: resp})
}

// GET /v1/communities/{id}
func CommunityDetailHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	cid := mux.Vars(r)["id"]
	if !models.IsObjectID(cid) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "id must be a valid id"})
		return
	}
	db := database.DB

	member, err := requireMembership(db, cid, uid)
	if err != nil {
		writeMembershipError(w, err)
		return
	}

	var community models.Community
	if err := db.Preload("Modules").First(&community, "id = ?", cid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Community not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}
	// invite code is only shown to community admins
	if member.Role != "admin" {
		community.InviteCode = ""
	}

	var memberCount int64
	db.Model(&models.CommunityMember{}).Where("community_id = ?", cid).Count(&memberCount)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"community":    community,
			"membership":   member,
			"member_count": memberCount,
		},
	})
}

type JoinCommunityRequest struct {
	InviteCode string `json:"invite_code" validate:"required"`
}

// POST /v1/communities/join
func JoinCommunityHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req JoinCommunityRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	db := database.DB

	var community models.Community
	if err := db.First(&community, "invite_code = ?", strings.TrimSpace(req.InviteCode)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Invalid invite code"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}

	var existing models.CommunityMember
	if err := db.Where("community_id = ? AND user_id = ?", community.ID, uid).First(&existing).Error; err == nil {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Already a member of this community"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}

	member := models.CommunityMember{CommunityID: community.ID, UserID: uid, Role: "member"}
	if err := db.Create(&member).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to join community"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Joined community",
		Data:    map[string]interface{}{"community": community, "membership": member},
	})
}

// POST /v1/communities/{id}/leave
func LeaveCommunityHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	cid := mux.Vars(r)["id"]
	if !models.IsObjectID(cid) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "id must be a valid id"})
		return
	}
	db := database.DB

	member, err := requireMembership(db, cid, uid)
	if err != nil {
		writeMembershipError(w, err)
		return
	}

	var community models.Community
	if err := db.First(&community, "id = ?", cid).Error; err == nil && community.OwnerID == uid {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Owner cannot leave their own community"})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("member_id = ?", member.ID).Delete(&models.ModuleProgress{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.CommunityMember{}, "id = ?", member.ID).Error
	})
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Left community"})
}

type StreakSettingsRequest struct {
	StreakThreshold  *int     `json:"streak_threshold" validate:"required"`
	StreakMultiplier *float64 `json:"streak_multiplier" validate:"required"`
}

// PUT /v1/communities/{id}/streaks
// Community admins configure the streak bonus policy. Threshold 0 disables
// the bonus entirely.
func UpdateStreakSettingsHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	cid := mux.Vars(r)["id"]
	if !models.IsObjectID(cid) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "id must be a valid id"})
		return
	}
	var req StreakSettingsRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.StreakThreshold == nil || req.StreakMultiplier == nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "streak_threshold and streak_multiplier are required"})
		return
	}
	if *req.StreakThreshold < 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "streak_threshold must not be negative"})
		return
	}
	if *req.StreakMultiplier < 1 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "streak_multiplier must be at least 1"})
		return
	}

	db := database.DB
	if err := requireCommunityAdmin(db, cid, uid); err != nil {
		writeMembershipError(w, err)
		return
	}

	if err := db.Model(&models.Community{}).Where("id = ?", cid).Updates(map[string]interface{}{
		"streak_threshold":  *req.StreakThreshold,
		"streak_multiplier": *req.StreakMultiplier,
	}).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	var community models.Community
	if err := db.First(&community, "id = ?", cid).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Streak settings updated", Data: community})
}

type AttachModuleRequest struct {
	ModuleID     string              `json:"module_id" validate:"required,objectid"`
	PointsScheme models.PointsScheme `json:"points_scheme"`
	Settings     map[string]interface{} `json:"settings"`
}

// POST /v1/communities/{id}/modules
// Attaches a catalog module to the community, optionally with a
// community-specific points scheme override.
func AttachModuleHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	cid := mux.Vars(r)["id"]
	if !models.IsObjectID(cid) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "id must be a valid id"})
		return
	}
	var req AttachModuleRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if err := validatePointsScheme(req.PointsScheme); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}

	db := database.DB
	if err := requireCommunityAdmin(db, cid, uid); err != nil {
		writeMembershipError(w, err)
		return
	}

	var module models.Module
	if err := db.First(&module, "id = ?", req.ModuleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Module not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}

	var existing models.CommunityModule
	if err := db.Where("community_id = ? AND module_id = ?", cid, req.ModuleID).First(&existing).Error; err == nil {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Module already attached"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}

	attachment := models.CommunityModule{
		CommunityID:  cid,
		ModuleID:     req.ModuleID,
		PointsScheme: req.PointsScheme,
		Settings:     req.Settings,
	}
	if err := db.Create(&attachment).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to attach module"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Module attached", Data: attachment})
}

type UpdateAttachmentRequest struct {
	PointsScheme models.PointsScheme    `json:"points_scheme"`
	Settings     map[string]interface{} `json:"settings"`
}

// PUT /v1/communities/{id}/modules/{moduleId}
// Updates the per-community override. An empty points_scheme clears the
// override so the catalog default applies again.
func UpdateAttachmentHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	vars := mux.Vars(r)
	cid, mid := vars["id"], vars["moduleId"]
	if !models.IsObjectID(cid) || !models.IsObjectID(mid) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "id must be a valid id"})
		return
	}
	var req UpdateAttachmentRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if err := validatePointsScheme(req.PointsScheme); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}

	db := database.DB
	if err := requireCommunityAdmin(db, cid, uid); err != nil {
		writeMembershipError(w, err)
		return
	}

	var attachment models.CommunityModule
	if err := db.Where("community_id = ? AND module_id = ?", cid, mid).First(&attachment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Module attachment not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}

	attachment.PointsScheme = req.PointsScheme
	attachment.Settings = req.Settings
	if err := db.Save(&attachment).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Attachment updated", Data: attachment})
}

var errNotMember = errors.New("not a member")
var errNotAdmin = errors.New("not a community admin")

func requireMembership(db *gorm.DB, communityID, userID string) (*models.CommunityMember, error) {
	var member models.CommunityMember
	if err := db.Where("community_id = ? AND user_id = ?", communityID, userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotMember
		}
		return nil, err
	}
	return &member, nil
}

func requireCommunityAdmin(db *gorm.DB, communityID, userID string) error {
	member, err := requireMembership(db, communityID, userID)
	if err != nil {
		return err
	}
	if member.Role != "admin" {
		return errNotAdmin
	}
	return nil
}

func writeMembershipError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNotMember):
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Community not found"})
	case errors.Is(err, errNotAdmin):
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Community admin required"})
	default:
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
	}
}

// validatePointsScheme checks labels and values of a scheme override.
func validatePointsScheme(scheme models.PointsScheme) error {
	for label, value := range scheme {
		switch strings.ToLower(label) {
		case "easy", "medium", "hard":
		default:
			return errors.New("points_scheme keys must be easy, medium or hard")
		}
		if value < 0 {
			return errors.New("points_scheme values must not be negative")
		}
	}
	return nil
}
