package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"gorm.io/gorm"

	"github.com/vnkhanh/campus-share-backend/models"
)

// PushAudience lọc người nhận theo ngành/năm/kỳ/vai trò; nil field = tất cả
type PushAudience struct {
	Branch   *string
	Year     *int
	Semester *int
	Role     *string
}

// PushResult là số liệu gửi: không có token hợp lệ nào vẫn là thành công (count 0)
type PushResult struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type expoMessage struct {
	To    string                 `json:"to"`
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

func pushEndpoint() string {
	if url := os.Getenv("EXPO_PUSH_URL"); url != "" {
		return url
	}
	return "https://exp.host/--/api/v2/push/send"
}

// SendPushToUsers gửi push đến danh sách user ID cụ thể.
// User không có push token thì bỏ qua, không tính là lỗi.
func SendPushToUsers(db *gorm.DB, userIDs []string, title, body string, data map[string]interface{}) (PushResult, error) {
	var users []models.User
	if err := db.Where("id IN ? AND push_token IS NOT NULL", userIDs).Find(&users).Error; err != nil {
		return PushResult{}, err
	}
	return dispatch(users, title, body, data)
}

// SendPushToAudience gửi push theo audience filter (ngành/năm/kỳ/vai trò)
func SendPushToAudience(db *gorm.DB, audience PushAudience, title, body string, data map[string]interface{}) (PushResult, error) {
	query := db.Where("push_token IS NOT NULL")
	if audience.Branch != nil {
		query = query.Where("branch = ?", *audience.Branch)
	}
	if audience.Year != nil {
		query = query.Where("year = ?", *audience.Year)
	}
	if audience.Semester != nil {
		query = query.Where("semester = ?", *audience.Semester)
	}
	if audience.Role != nil {
		query = query.Where("role = ?", *audience.Role)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return PushResult{}, err
	}
	return dispatch(users, title, body, data)
}

func dispatch(users []models.User, title, body string, data map[string]interface{}) (PushResult, error) {
	var messages []expoMessage
	for _, u := range users {
		if u.PushToken == nil || *u.PushToken == "" {
			continue
		}
		messages = append(messages, expoMessage{
			To:    *u.PushToken,
			Title: title,
			Body:  body,
			Data:  data,
		})
	}

	result := PushResult{Attempted: len(messages)}
	if len(messages) == 0 {
		return result, nil
	}

	payload, err := json.Marshal(messages)
	if err != nil {
		return result, err
	}

	req, err := http.NewRequest("POST", pushEndpoint(), bytes.NewReader(payload))
	if err != nil {
		return result, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		result.Failed = result.Attempted
		return result, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		result.Failed = result.Attempted
		return result, fmt.Errorf("push provider trả về %d: %s", resp.StatusCode, string(respBody))
	}

	// Provider trả status từng ticket; ticket lỗi tính vào Failed
	var ticketResp struct {
		Data []struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ticketResp); err != nil {
		// Không parse được body thì coi như tất cả đã gửi
		result.Succeeded = result.Attempted
		return result, nil
	}
	for _, ticket := range ticketResp.Data {
		if ticket.Status == "ok" {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}
	return result, nil
}
