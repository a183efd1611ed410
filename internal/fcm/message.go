// Package fcm sends test pushes through Firebase Cloud Messaging.
package fcm

import (
	"encoding/json"
	"strconv"
	"strings"

	"firebase.google.com/go/v4/messaging"

	"github.com/colonyops/herald/internal/core/notify"
)

// TestPush describes a notification to send to a single device.
type TestPush struct {
	Title              string
	Body               string
	URL                string
	Icon               string
	Image              string
	Tag                string
	RequireInteraction bool
	Actions            []notify.Action
}

// Data returns the data block of the push. Every value is a string, as the
// delivery service requires; actions are JSON encoded.
func (t TestPush) Data() map[string]string {
	data := map[string]string{}
	set := func(k, v string) {
		if v != "" {
			data[k] = v
		}
	}
	set("title", t.Title)
	set("body", t.Body)
	set("url", t.URL)
	set("icon", t.Icon)
	set("image", t.Image)
	set("tag", t.Tag)
	if t.RequireInteraction {
		data["requireInteraction"] = strconv.FormatBool(true)
	}
	if len(t.Actions) > 0 {
		if b, err := json.Marshal(t.Actions); err == nil {
			data["actions"] = string(b)
		}
	}
	return data
}

// Payload returns the push as the client receives it.
func (t TestPush) Payload() notify.Payload {
	data := make(map[string]any)
	for k, v := range t.Data() {
		data[k] = v
	}
	p := notify.Payload{Data: data}
	if t.Title != "" || t.Body != "" || t.Image != "" {
		p.Notification = &notify.NotificationPart{
			Title: t.Title,
			Body:  t.Body,
			Icon:  t.Icon,
			Image: t.Image,
		}
	}
	if isHTTPS(t.URL) {
		p.FCMOptions = &notify.FCMOptions{Link: t.URL}
	}
	return p
}

// BuildMessage builds the FCM message addressed to token.
func BuildMessage(token string, t TestPush) *messaging.Message {
	msg := &messaging.Message{
		Token: token,
		Data:  t.Data(),
	}
	if t.Title != "" || t.Body != "" || t.Image != "" {
		msg.Notification = &messaging.Notification{
			Title:    t.Title,
			Body:     t.Body,
			ImageURL: t.Image,
		}
	}

	web := &messaging.WebpushConfig{
		Notification: &messaging.WebpushNotification{
			Title:              t.Title,
			Body:               t.Body,
			Icon:               t.Icon,
			Image:              t.Image,
			Tag:                t.Tag,
			RequireInteraction: t.RequireInteraction,
		},
	}
	for _, a := range t.Actions {
		web.Notification.Actions = append(web.Notification.Actions, &messaging.WebpushNotificationAction{
			Action: a.Action,
			Title:  a.Title,
			Icon:   a.Icon,
		})
	}
	// FCM only accepts https links.
	if isHTTPS(t.URL) {
		web.FCMOptions = &messaging.WebpushFCMOptions{Link: t.URL}
	}
	msg.Webpush = web
	return msg
}

func isHTTPS(u string) bool {
	return strings.HasPrefix(u, "https://")
}
