package users

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"communityapp/database"
	"communityapp/models"
	"communityapp/utils"

	"gorm.io/gorm"
)

// GET /v1/users/me
func MeHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	db := database.DB

	var user models.User
	if err := db.First(&user, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}

	var memberCount int64
	db.Model(&models.CommunityMember{}).Where("user_id = ?", uid).Count(&memberCount)

	var avatarURL *string
	if user.Avatar != nil && *user.Avatar != "" {
		if signed, err := utils.GenerateSignedURL(*user.Avatar, 3600); err == nil {
			avatarURL = &signed
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"id":          user.ID,
			"username":    user.Username,
			"email":       user.Email,
			"avatar":      user.Avatar,
			"avatar_url":  avatarURL,
			"communities": memberCount,
			"created_at":  user.CreatedAt,
		},
	})
}

// POST /v1/users/avatar
// Accepts a multipart form with an "avatar" image, sanitizes it and stores
// it in object storage.
func UploadAvatarHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid form data"})
		return
	}

	db := database.DB
	var user models.User
	if err := db.First(&user, "id = ?", uid).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}

	file, handler, err := r.FormFile("avatar")
	if err != nil || handler == nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "avatar file is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(handler.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Image must be JPG or PNG"})
		return
	}
	if handler.Size > 5<<20 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Image must be at most 5MB"})
		return
	}

	allBytes, err := io.ReadAll(file)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Failed to read image"})
		return
	}
	detected := http.DetectContentType(allBytes)
	if detected != "image/jpeg" && detected != "image/png" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Image must be JPG or PNG"})
		return
	}

	// decode and re-encode to strip anything that is not pixel data
	img, format, err := image.Decode(bytes.NewReader(allBytes))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid image format"})
		return
	}
	var outBuf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&outBuf, img, &jpeg.Options{Quality: 85})
		ext = ".jpg"
	case "png":
		err = png.Encode(&outBuf, img)
	default:
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Image must be JPG or PNG"})
		return
	}
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to process image"})
		return
	}

	if user.Avatar != nil && *user.Avatar != "" {
		_ = utils.DeleteFromS3(*user.Avatar)
	}

	imgName := "avatar_" + uid + "_" + strconv.FormatInt(time.Now().UnixNano(), 10) + ext
	if err := utils.UploadToS3(imgName, bytes.NewReader(outBuf.Bytes())); err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to upload image"})
		return
	}

	if err := db.Model(&models.User{}).Where("id = ?", uid).Update("avatar", imgName).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to save data"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Avatar updated",
		Data:    map[string]interface{}{"avatar": imgName},
	})
}
