package businessflow

import (
	"regexp"
	"strings"

	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/utils"
)

const unknownIP = "unknown"

// RequestHeaders carries the raw request headers the redirect path cares about.
type RequestHeaders struct {
	ForwardedFor string
	RealIP       string
	UserAgent    string
	Referer      string
}

// RequestMetadata is what gets recorded for a click.
type RequestMetadata struct {
	IPAddress  string
	UserAgent  *string
	Referrer   *string
	DeviceType string
	Browser    string
}

type classifyRule struct {
	label string
	match func(ua string) bool
}

var (
	tabletPattern = regexp.MustCompile(`tablet|ipad|playbook|silk`)
	mobilePattern = regexp.MustCompile(`mobile|android|iphone|ipod|iemobile|blackberry|kindle|hpwos|webos|opera mobi|opera mini`)
)

// deviceRules run against the lower-cased user agent, first match wins.
var deviceRules = []classifyRule{
	{label: models.DeviceTablet, match: func(ua string) bool {
		return tabletPattern.MatchString(ua) || androidWithoutMobi(ua)
	}},
	{label: models.DeviceMobile, match: mobilePattern.MatchString},
	{label: models.DeviceDesktop, match: func(string) bool { return true }},
}

// browserRules run against the raw user agent. Edge and Opera both carry "Chrome",
// Chrome carries "Safari", so order matters.
var browserRules = []classifyRule{
	{label: models.BrowserFirefox, match: containsAny("Firefox", "FxiOS")},
	{label: models.BrowserEdge, match: containsAny("Edg")},
	{label: models.BrowserOpera, match: containsAny("OPR/", "Opera")},
	{label: models.BrowserChrome, match: containsAny("Chrome", "CriOS")},
	{label: models.BrowserSafari, match: containsAny("Safari")},
	{label: models.BrowserOther, match: func(string) bool { return true }},
}

func containsAny(needles ...string) func(string) bool {
	return func(s string) bool {
		for _, n := range needles {
			if strings.Contains(s, n) {
				return true
			}
		}
		return false
	}
}

// androidWithoutMobi matches an "android" token with no "mobi" anywhere after it.
func androidWithoutMobi(ua string) bool {
	i := strings.LastIndex(ua, "android")
	return i >= 0 && !strings.Contains(ua[i+len("android"):], "mobi")
}

func classify(rules []classifyRule, ua string) string {
	for _, r := range rules {
		if r.match(ua) {
			return r.label
		}
	}
	return models.DeviceUnknown
}

// ExtractClientIP prefers the first X-Forwarded-For hop, then X-Real-IP.
func ExtractClientIP(h RequestHeaders) string {
	if h.ForwardedFor != "" {
		first, _, _ := strings.Cut(h.ForwardedFor, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(h.RealIP); ip != "" {
		return ip
	}
	return unknownIP
}

func ExtractReferrer(h RequestHeaders) *string {
	if h.Referer == "" {
		return nil
	}
	return utils.ToPtr(h.Referer)
}

// ClassifyDevice returns mobile, tablet or desktop, unknown for an empty user agent.
func ClassifyDevice(ua string) string {
	if ua == "" {
		return models.DeviceUnknown
	}
	return classify(deviceRules, strings.ToLower(ua))
}

// ClassifyBrowser returns the browser family, unknown for an empty user agent.
func ClassifyBrowser(ua string) string {
	if ua == "" {
		return models.BrowserUnknown
	}
	return classify(browserRules, ua)
}

func ExtractRequestMetadata(h RequestHeaders) RequestMetadata {
	meta := RequestMetadata{
		IPAddress:  ExtractClientIP(h),
		Referrer:   ExtractReferrer(h),
		DeviceType: ClassifyDevice(h.UserAgent),
		Browser:    ClassifyBrowser(h.UserAgent),
	}
	if h.UserAgent != "" {
		meta.UserAgent = utils.ToPtr(h.UserAgent)
	}
	return meta
}
