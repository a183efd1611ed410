package notify

import (
	"bytes"
	"encoding/json"
)

// NotificationPart is the structured "notification" block of a push message.
type NotificationPart struct {
	Title       string `json:"title,omitempty"`
	Body        string `json:"body,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Image       string `json:"image,omitempty"`
	ClickAction string `json:"click_action,omitempty"`
}

// FCMOptions carries delivery-service options relevant to the client.
type FCMOptions struct {
	Link string `json:"link,omitempty"`
}

// Payload is a push message as delivered to the client. Every field is
// optional; Normalize decides precedence and defaults.
type Payload struct {
	MessageID    string            `json:"messageId,omitempty"`
	From         string            `json:"from,omitempty"`
	CollapseKey  string            `json:"collapseKey,omitempty"`
	Notification *NotificationPart `json:"notification,omitempty"`
	Data         map[string]any    `json:"data,omitempty"`
	FCMOptions   *FCMOptions       `json:"fcmOptions,omitempty"`

	// ClickAction is the legacy top-level click target.
	ClickAction string `json:"click_action,omitempty"`
}

// ParsePayload decodes a raw push message. It never fails: input that is not
// a JSON object, or whose fields have unexpected types, decodes field by
// field and anything unusable is dropped. The result always normalizes.
func ParsePayload(raw []byte) Payload {
	var p Payload
	if err := json.Unmarshal(raw, &p); err == nil {
		return p
	}

	// Fall back to a loose decode so one malformed field does not discard
	// the rest of the message.
	p = Payload{}
	var loose map[string]json.RawMessage
	if err := json.Unmarshal(raw, &loose); err != nil {
		return p
	}

	decodeField(loose, "messageId", &p.MessageID)
	decodeField(loose, "from", &p.From)
	decodeField(loose, "collapseKey", &p.CollapseKey)
	decodeField(loose, "click_action", &p.ClickAction)

	if rawPart, ok := loose["notification"]; ok {
		p.Notification = parseNotificationPart(rawPart)
	}
	if rawData, ok := loose["data"]; ok {
		var data map[string]any
		if json.Unmarshal(rawData, &data) == nil {
			p.Data = data
		}
	}
	if rawOpts, ok := loose["fcmOptions"]; ok {
		var opts FCMOptions
		if json.Unmarshal(rawOpts, &opts) == nil {
			p.FCMOptions = &opts
		}
	}

	return p
}

func parseNotificationPart(raw json.RawMessage) *NotificationPart {
	var fields map[string]json.RawMessage
	if json.Unmarshal(raw, &fields) != nil {
		return nil
	}
	part := &NotificationPart{}
	decodeField(fields, "title", &part.Title)
	decodeField(fields, "body", &part.Body)
	decodeField(fields, "icon", &part.Icon)
	decodeField(fields, "image", &part.Image)
	decodeField(fields, "click_action", &part.ClickAction)
	return part
}

func decodeField(fields map[string]json.RawMessage, key string, dest *string) {
	raw, ok := fields[key]
	if !ok || bytes.Equal(raw, []byte("null")) {
		return
	}
	_ = json.Unmarshal(raw, dest)
}
