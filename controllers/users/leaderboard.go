package users

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"communityapp/database"
	"communityapp/models"
	"communityapp/utils"

	"github.com/gorilla/mux"
)

type leaderboardRow struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"user_id"`
	Username      string `json:"username"`
	Points        int64  `json:"points"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
}

// GET /v1/communities/{id}/leaderboard?limit=50
// Members ranked by points descending; ties break by join order. Results
// are cached in Redis for a short window when Redis is configured.
func LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
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

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	db := database.DB
	if _, err := requireMembership(db, cid, uid); err != nil {
		writeMembershipError(w, err)
		return
	}

	cacheKey := "leaderboard:" + cid + ":" + strconv.Itoa(limit)
	if utils.RedisClient != nil {
		if cached, err := utils.RedisClient.Get(context.Background(), cacheKey).Result(); err == nil && cached != "" {
			var rows []leaderboardRow
			if json.Unmarshal([]byte(cached), &rows) == nil {
				utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: rows})
				return
			}
		}
	}

	var members []models.CommunityMember
	if err := db.Where("community_id = ?", cid).
		Order("points DESC, id ASC").
		Limit(limit).
		Find(&members).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}

	userIDs := make([]string, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}
	usernames := make(map[string]string, len(userIDs))
	if len(userIDs) > 0 {
		var users []models.User
		if err := db.Select("id, username").Where("id IN ?", userIDs).Find(&users).Error; err == nil {
			for _, u := range users {
				usernames[u.ID] = u.Username
			}
		}
	}

	rows := make([]leaderboardRow, 0, len(members))
	for i, m := range members {
		rows = append(rows, leaderboardRow{
			Rank:          i + 1,
			UserID:        m.UserID,
			Username:      usernames[m.UserID],
			Points:        m.Points,
			CurrentStreak: m.CurrentStreak,
			LongestStreak: m.LongestStreak,
		})
	}

	if utils.RedisClient != nil {
		if payload, err := json.Marshal(rows); err == nil {
			_ = utils.RedisClient.Set(context.Background(), cacheKey, payload, 30*time.Second).Err()
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: rows})
}
