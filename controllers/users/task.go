package users

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"communityapp/database"
	"communityapp/middleware"
	"communityapp/models"
	"communityapp/services"
	"communityapp/utils"

	"gorm.io/gorm"
)

type CompleteTaskRequest struct {
	CommunityID string   `json:"community_id" validate:"required"` // object id or "all"
	ModuleID    string   `json:"module_id" validate:"required,objectid"`
	Description string   `json:"description"`
	Metadata    []string `json:"metadata"`
}

// POST /v1/tasks
// Records a task completion. community_id may be "all" to fan the event
// out to every community the user belongs to that has the module attached.
func CompleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req CompleteTaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if len(req.Description) > 500 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "description must be at most 500 characters"})
		return
	}

	db := database.DB
	now := time.Now()

	if strings.EqualFold(req.CommunityID, "all") {
		result, err := services.FanoutCompletion(db, uid, req.ModuleID, req.Description, req.Metadata, now)
		if err != nil {
			utils.WriteServiceError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: result})
		return
	}

	if !models.IsObjectID(req.CommunityID) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "community_id must be a valid id or \"all\""})
		return
	}

	result, err := services.RecordCompletion(db, services.CompletionInput{
		UserID:      uid,
		CommunityID: req.CommunityID,
		ModuleID:    req.ModuleID,
		Description: req.Description,
		Metadata:    req.Metadata,
	}, now)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}

	status := http.StatusCreated
	message := "Task recorded"
	if result.Repeat {
		status = http.StatusOK
		message = "Task already recorded today"
	}
	utils.WriteJSON(w, status, utils.APIResponse{
		Success: true,
		Message: message,
		Data:    map[string]interface{}{"task": result.Task, "repeat": result.Repeat},
	})
}

// historyWindow parses the limit/offset query parameters with bounded
// defaults (limit 50, max 200).
func historyWindow(limitStr, offsetStr string) (int, int) {
	limit := 50
	if v, err := strconv.Atoi(limitStr); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(offsetStr); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// GET /v1/users/tasks?community_id=...&limit=50&offset=0
// Lists the caller's task history, newest first, optionally scoped to one community.
func TaskHistoryHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB
	q := db.Where("user_id = ?", uid)
	if cid := strings.TrimSpace(r.URL.Query().Get("community_id")); cid != "" {
		if !models.IsObjectID(cid) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "community_id must be a valid id"})
			return
		}
		q = q.Where("community_id = ?", cid)
	}

	limit, offset := historyWindow(r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))

	var tasks []models.Task
	if err := q.Order("completed_at DESC").Limit(limit).Offset(offset).Find(&tasks).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: tasks})
}

type InternalTaskRequest struct {
	Identifier  string   `json:"identifier" validate:"required"` // user object id or email
	CommunityID string   `json:"community_id" validate:"required"`
	ModuleID    string   `json:"module_id" validate:"required,objectid"`
	Description string   `json:"description"`
	Metadata    []string `json:"metadata"`
}

// POST /internal/tasks
// Trusted server-to-server ingestion guarded by the X-API-KEY limiter. The
// caller identifies the member by object id or email.
func InternalTaskHandler(w http.ResponseWriter, r *http.Request) {
	var req InternalTaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	db := database.DB
	user, err := findUserByIDOrEmail(db, req.Identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	now := time.Now()
	if strings.EqualFold(req.CommunityID, "all") {
		result, err := services.FanoutCompletion(db, user.ID, req.ModuleID, req.Description, req.Metadata, now)
		if err != nil {
			utils.WriteServiceError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: result})
		return
	}
	if !models.IsObjectID(req.CommunityID) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "community_id must be a valid id or \"all\""})
		return
	}

	result, err := services.RecordCompletion(db, services.CompletionInput{
		UserID:      user.ID,
		CommunityID: req.CommunityID,
		ModuleID:    req.ModuleID,
		Description: req.Description,
		Metadata:    req.Metadata,
	}, now)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Task recorded",
		Data:    map[string]interface{}{"task": result.Task, "repeat": result.Repeat},
	})
}

func findUserByIDOrEmail(db *gorm.DB, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	var user models.User
	if models.IsObjectID(identifier) {
		if err := db.First(&user, "id = ?", identifier).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if err := db.First(&user, "email = ?", strings.ToLower(identifier)).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
