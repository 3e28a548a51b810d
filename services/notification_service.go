package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nimbusdrive/apperrors"
	"nimbusdrive/models"
	"nimbusdrive/utils"
)

type NotificationService struct {
	notificationCollection *mongo.Collection
	mailgunAPIKey          string
	mailgunDomain          string
	fromEmail              string
}

type MailgunMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

func NewNotificationService(db *mongo.Database, mailgunAPIKey, mailgunDomain, fromEmail string) *NotificationService {
	return &NotificationService{
		notificationCollection: db.Collection("notification_logs"),
		mailgunAPIKey:          mailgunAPIKey,
		mailgunDomain:          mailgunDomain,
		fromEmail:              fromEmail,
	}
}

// NotifyResourceShared records an in-app notification for the grantee and,
// when mail is configured, sends an email. Mail failures are logged; the
// share itself already happened and is not rolled back over a notification.
func (s *NotificationService) NotifyResourceShared(ctx context.Context, granteeEmail, grantedBy, resourceType, resourceName string, resourceID primitive.ObjectID, role string) {
	kind := "file"
	if resourceType == models.ResourceTypeFolder {
		kind = "folder"
	}

	title := fmt.Sprintf("%s shared a %s with you", grantedBy, kind)
	message := fmt.Sprintf("%s granted you %s access to the %s %q.", grantedBy, role, kind, resourceName)

	notification := models.NotificationLog{
		ID:             primitive.NewObjectID(),
		RecipientEmail: granteeEmail,
		Type:           kind + "_shared",
		Title:          title,
		Message:        message,
		ItemID:         resourceID,
		ItemType:       resourceType,
		CreatedAt:      time.Now().UTC(),
	}

	if _, err := s.notificationCollection.InsertOne(ctx, notification); err != nil {
		utils.LogError("failed to log share notification", err)
	}

	if s.mailgunAPIKey == "" || s.mailgunDomain == "" {
		return
	}

	text := fmt.Sprintf("Hi,\n\n%s has shared a %s with you: %s\n\nYou can access it in your NimbusDrive account.\n\nBest regards,\nNimbusDrive Team",
		grantedBy, kind, resourceName)
	html := fmt.Sprintf(`
		<h2>Shared With You</h2>
		<p>Hi,</p>
		<p><strong>%s</strong> has shared a %s with you: <strong>%s</strong></p>
		<p>You can access it in your NimbusDrive account.</p>
		<p>Best regards,<br>NimbusDrive Team</p>
	`, grantedBy, kind, resourceName)

	if err := s.sendEmail(granteeEmail, title, text, html); err != nil {
		utils.LogError("failed to send share email to "+granteeEmail, err)
	}
}

// ListNotifications returns the newest notifications addressed to identity.
func (s *NotificationService) ListNotifications(ctx context.Context, identity string, limit int64) ([]models.NotificationLog, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}

	cursor, err := s.notificationCollection.Find(ctx, bson.M{
		"recipient_email": identity,
	}, options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(limit))
	if err != nil {
		return nil, apperrors.Internal("list notifications", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.NotificationLog
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, apperrors.Internal("decode notifications", err)
	}
	return notifications, nil
}

// MarkRead marks one of identity's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, identity string, notificationID primitive.ObjectID) error {
	result, err := s.notificationCollection.UpdateOne(ctx, bson.M{
		"_id":             notificationID,
		"recipient_email": identity,
	}, bson.M{
		"$set": bson.M{"is_read": true},
	})
	if err != nil {
		return apperrors.Internal("mark notification read", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFoundf("notification not found")
	}
	return nil
}

func (s *NotificationService) sendEmail(to, subject, text, html string) error {
	url := fmt.Sprintf("https://api.mailgun.net/v3/%s/messages", s.mailgunDomain)

	payload := MailgunMessage{
		From:    s.fromEmail,
		To:      to,
		Subject: subject,
		Text:    text,
		HTML:    html,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal mailgun message: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create mailgun request: %w", err)
	}

	req.SetBasicAuth("api", s.mailgunAPIKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send mailgun request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("mailgun responded with status: %s", resp.Status)
	}

	return nil
}
