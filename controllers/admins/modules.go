package admins

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"communityapp/database"
	"communityapp/middleware"
	"communityapp/models"
	"communityapp/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type ModuleRequest struct {
	Name         string              `json:"name" validate:"required,nameok"`
	Slug         string              `json:"slug" validate:"required"`
	Type         string              `json:"type"`
	PointsScheme models.PointsScheme `json:"points_scheme"`
}

// POST /admin/modules
// Creates a catalog module with its default points scheme.
func CreateModule(w http.ResponseWriter, r *http.Request) {
	var req ModuleRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugPattern.MatchString(req.Slug) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "slug must be lowercase letters, digits and hyphens"})
		return
	}
	if err := validateScheme(req.PointsScheme); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}

	db := database.DB
	var existing models.Module
	if err := db.Where("slug = ?", req.Slug).First(&existing).Error; err == nil {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Slug already in use"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}

	module := models.Module{
		Name:         strings.TrimSpace(req.Name),
		Slug:         req.Slug,
		Type:         req.Type,
		PointsScheme: req.PointsScheme,
	}
	if module.Type == "" {
		module.Type = "practice"
	}
	if err := db.Create(&module).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to create module"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Module created", Data: module})
}

// GET /admin/modules
func ListModules(w http.ResponseWriter, r *http.Request) {
	var modules []models.Module
	if err := database.DB.Order("created_at ASC").Find(&modules).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: modules})
}

// PUT /admin/modules/{id}
// Updates name, type or the default points scheme. The slug is immutable
// once published.
func UpdateModule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !models.IsObjectID(id) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "id must be a valid id"})
		return
	}

	var req struct {
		Name         string              `json:"name"`
		Type         string              `json:"type"`
		PointsScheme models.PointsScheme `json:"points_scheme"`
	}
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if err := validateScheme(req.PointsScheme); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}

	db := database.DB
	var module models.Module
	if err := db.First(&module, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Module not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		module.Name = name
	}
	if req.Type != "" {
		module.Type = req.Type
	}
	if req.PointsScheme != nil {
		module.PointsScheme = req.PointsScheme
	}
	if err := db.Save(&module).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Module updated", Data: module})
}

func validateScheme(scheme models.PointsScheme) error {
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
