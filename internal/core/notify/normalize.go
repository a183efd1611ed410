package notify

import (
	"encoding/json"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/colonyops/herald/pkg/randid"
)

// IDFunc generates an id for records whose payload carries none.
type IDFunc func() string

const localPrefix = "local"

// LocalID returns a locally generated record id.
func LocalID() string {
	return randid.WithPrefix(localPrefix, 12)
}

// IsLocalID reports whether id was generated by LocalID.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, localPrefix+"-")
}

// Normalize converts a push payload into a Record using LocalID for
// messages without a server-assigned id.
func Normalize(p Payload, now time.Time) Record {
	return NormalizeWith(p, now, LocalID)
}

// NormalizeWith converts a push payload into a Record.
//
// Title, body, icon and image prefer the "notification" block over "data".
// The URL comes from data.url, then fcmOptions.link, then the legacy click
// action fields. Missing title and body fall back to the package defaults.
func NormalizeWith(p Payload, now time.Time, newID IDFunc) Record {
	var part NotificationPart
	if p.Notification != nil {
		part = *p.Notification
	}

	r := Record{
		ID:    firstNonEmpty(p.MessageID, dataString(p.Data, "messageId"), dataString(p.Data, "id")),
		Title: firstNonEmpty(part.Title, dataString(p.Data, "title"), DefaultTitle),
		Body:  firstNonEmpty(part.Body, dataString(p.Data, "body"), DefaultBody),
		Icon:  firstNonEmpty(part.Icon, dataString(p.Data, "icon")),
		Image: firstNonEmpty(part.Image, dataString(p.Data, "image")),
		Tag:   dataString(p.Data, "tag"),
		URL: firstNonEmpty(
			dataString(p.Data, "url"),
			fcmLink(p.FCMOptions),
			part.ClickAction,
			p.ClickAction,
			dataString(p.Data, "click_action"),
		),
		RequireInteraction: dataBool(p.Data, "requireInteraction"),
		Actions:            dataActions(p.Data),
		Data:               maps.Clone(p.Data),
		Timestamp:          dataTime(p.Data, "timestamp", now),
	}

	if r.ID == "" {
		r.ID = newID()
	}

	return r
}

func fcmLink(opts *FCMOptions) string {
	if opts == nil {
		return ""
	}
	return opts.Link
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// dataString reads a string value; numbers are formatted, anything else is ignored.
func dataString(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// dataBool accepts a JSON bool or the string encodings delivery services use
// for data-only messages.
func dataBool(data map[string]any, key string) bool {
	switch v := data[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	default:
		return false
	}
}

// dataActions decodes data.actions from either a JSON array or a JSON-encoded
// string (data values are strings on most delivery services). Entries without
// an action id are dropped.
func dataActions(data map[string]any) []Action {
	raw, ok := data["actions"]
	if !ok || raw == nil {
		return nil
	}

	var encoded []byte
	switch v := raw.(type) {
	case string:
		encoded = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		encoded = b
	}

	var actions []Action
	if err := json.Unmarshal(encoded, &actions); err != nil {
		return nil
	}

	out := actions[:0]
	for _, a := range actions {
		if a.Action == "" {
			continue
		}
		if a.Title == "" {
			a.Title = a.Action
		}
		out = append(out, a)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// dataTime reads an RFC3339 string or unix milliseconds, falling back to now.
func dataTime(data map[string]any, key string, now time.Time) time.Time {
	switch v := data[key].(type) {
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms > 0 {
			return time.UnixMilli(ms)
		}
	case float64:
		if v > 0 {
			return time.UnixMilli(int64(v))
		}
	}
	return now
}
