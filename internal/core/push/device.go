package push

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"
)

// PlatformWeb is the platform reported for every registration.
const PlatformWeb = "web"

// Device types.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
)

// Descriptor identifies this installation to the device registry.
type Descriptor struct {
	DeviceType string `json:"deviceType" validate:"required,oneof=mobile tablet desktop"`
	DeviceID   string `json:"deviceId" validate:"required"`
	DeviceName string `json:"deviceName" validate:"required"`
	AppVersion string `json:"appVersion" validate:"required"`
	Platform   string `json:"platform" validate:"required"`
}

// DescribeDevice builds a Descriptor from a user-agent string.
func DescribeDevice(userAgent, appVersion, deviceID string) Descriptor {
	os := detectOS(userAgent)
	return Descriptor{
		DeviceType: detectDeviceType(userAgent),
		DeviceID:   deviceID,
		DeviceName: fmt.Sprintf("%s on %s", detectBrowser(userAgent), os),
		AppVersion: NormalizeVersion(appVersion),
		Platform:   PlatformWeb,
	}
}

// UserAgent returns the user-agent string herald reports for the running
// process.
func UserAgent(appVersion string) string {
	var platform string
	switch runtime.GOOS {
	case "windows":
		platform = "Windows NT 10.0; Win64"
	case "darwin":
		platform = "Macintosh; Mac OS X"
	case "android":
		platform = "Linux; Android; Mobile"
	case "ios":
		platform = "iPhone; CPU iPhone OS"
	default:
		platform = "X11; Linux " + runtime.GOARCH
	}
	return fmt.Sprintf("herald/%s (%s)", strings.TrimPrefix(appVersion, "v"), platform)
}

// NormalizeVersion returns a canonical semantic version ("1.2.0") when
// version parses as one, otherwise version unchanged. Empty versions become
// "unknown".
func NormalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return "unknown"
	}
	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return version
	}
	return strings.TrimPrefix(semver.Canonical(v), "v")
}

// detectOS checks mobile platforms first since their user agents also
// mention desktop kernels ("Linux; Android", "like Mac OS X").
func detectOS(ua string) string {
	switch {
	case strings.Contains(ua, "Android"):
		return "Android"
	case strings.Contains(ua, "iPhone"), strings.Contains(ua, "iPad"), strings.Contains(ua, "iPod"):
		return "iOS"
	case strings.Contains(ua, "Windows"):
		return "Windows"
	case strings.Contains(ua, "Mac OS X"), strings.Contains(ua, "Macintosh"):
		return "macOS"
	case strings.Contains(ua, "Linux"):
		return "Linux"
	default:
		return "Unknown"
	}
}

// detectBrowser checks tokens in order of specificity: Edge and Opera user
// agents also contain "Chrome", and Chrome contains "Safari".
func detectBrowser(ua string) string {
	switch {
	case strings.Contains(ua, "Edg/"), strings.Contains(ua, "Edge/"):
		return "Edge"
	case strings.Contains(ua, "OPR/"), strings.Contains(ua, "Opera"):
		return "Opera"
	case strings.Contains(ua, "Firefox/"):
		return "Firefox"
	case strings.Contains(ua, "Chrome/"), strings.Contains(ua, "CriOS/"):
		return "Chrome"
	case strings.Contains(ua, "Safari/"):
		return "Safari"
	case strings.HasPrefix(ua, "herald/"):
		return "herald"
	default:
		return "Unknown"
	}
}

func detectDeviceType(ua string) string {
	switch {
	case strings.Contains(ua, "iPad"), strings.Contains(ua, "Tablet"):
		return DeviceTablet
	case strings.Contains(ua, "Android") && !strings.Contains(ua, "Mobile"):
		return DeviceTablet
	case strings.Contains(ua, "Mobi"), strings.Contains(ua, "iPhone"), strings.Contains(ua, "iPod"):
		return DeviceMobile
	default:
		return DeviceDesktop
	}
}
