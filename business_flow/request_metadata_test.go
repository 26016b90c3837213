package businessflow

import (
	"testing"

	"github.com/amirphl/masuk10/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	uaChromeDesktop = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	uaEdgeDesktop   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.0.0"
	uaOperaDesktop  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 OPR/109.0.0.0"
	uaFirefoxLinux  = "Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0"
	uaSafariMac     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"
	uaIPhone        = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1"
	uaIPad          = "Mozilla/5.0 (iPad; CPU OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1"
	uaAndroidPhone  = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Mobile Safari/537.36"
	uaAndroidTab    = "Mozilla/5.0 (Linux; Android 13; SM-X700) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	uaChromeIOS     = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) CriOS/124.0.6367.88 Mobile/15E148 Safari/604.1"
	uaFirefoxIOS    = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) FxiOS/125.0 Mobile/15E148 Safari/605.1.15"
	uaCurl          = "curl/8.5.0"
)

func TestClassifyDevice(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"Empty", "", models.DeviceUnknown},
		{"ChromeDesktop", uaChromeDesktop, models.DeviceDesktop},
		{"IPhone", uaIPhone, models.DeviceMobile},
		{"IPad", uaIPad, models.DeviceTablet},
		{"AndroidPhone", uaAndroidPhone, models.DeviceMobile},
		{"AndroidTablet", uaAndroidTab, models.DeviceTablet},
		{"Kindle", "Mozilla/5.0 (Linux; U; en-US) AppleWebKit/528.5+ (KHTML, like Gecko, Safari/528.5+) Version/4.0 Kindle/3.0", models.DeviceMobile},
		{"BlackBerry", "BlackBerry9700/5.0.0.351 Profile/MIDP-2.1", models.DeviceMobile},
		{"OperaMini", "Opera/9.80 (J2ME/MIDP; Opera Mini/9.80 (S60; SymbOS; Opera Mobi/23.348; U; en) Presto/2.5.25 Version/10.54", models.DeviceMobile},
		{"KindleFireSilk", "Mozilla/5.0 (Linux; U; en-us; KFTT Build/IML74K) AppleWebKit/535.19 (KHTML, like Gecko) Silk/3.4 Mobile Safari/535.19 Silk-Accelerated=true", models.DeviceTablet},
		{"UpperCaseTablet", "SOMETHING TABLET BROWSER", models.DeviceTablet},
		{"Curl", uaCurl, models.DeviceDesktop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDevice(tt.ua))
		})
	}
}

func TestClassifyBrowser(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"Empty", "", models.BrowserUnknown},
		{"Chrome", uaChromeDesktop, models.BrowserChrome},
		{"Edge", uaEdgeDesktop, models.BrowserEdge},
		{"Opera", uaOperaDesktop, models.BrowserOpera},
		{"Firefox", uaFirefoxLinux, models.BrowserFirefox},
		{"Safari", uaSafariMac, models.BrowserSafari},
		{"MobileSafari", uaIPhone, models.BrowserSafari},
		{"ChromeIOS", uaChromeIOS, models.BrowserChrome},
		{"FirefoxIOS", uaFirefoxIOS, models.BrowserFirefox},
		{"Curl", uaCurl, models.BrowserOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyBrowser(tt.ua))
		})
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers RequestHeaders
		want    string
	}{
		{"ForwardedForFirstHop", RequestHeaders{ForwardedFor: " 203.0.113.7 , 10.0.0.1", RealIP: "10.0.0.2"}, "203.0.113.7"},
		{"SingleForwardedFor", RequestHeaders{ForwardedFor: "2001:db8::1"}, "2001:db8::1"},
		{"RealIPFallback", RequestHeaders{RealIP: "198.51.100.4"}, "198.51.100.4"},
		{"EmptyFirstHopFallsBack", RequestHeaders{ForwardedFor: " , 10.0.0.1", RealIP: "198.51.100.4"}, "198.51.100.4"},
		{"None", RequestHeaders{}, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractClientIP(tt.headers))
		})
	}
}

func TestExtractRequestMetadata(t *testing.T) {
	t.Run("Full", func(t *testing.T) {
		meta := ExtractRequestMetadata(RequestHeaders{
			ForwardedFor: "203.0.113.7",
			UserAgent:    uaAndroidPhone,
			Referer:      "https://news.example.com/post",
		})
		assert.Equal(t, "203.0.113.7", meta.IPAddress)
		require.NotNil(t, meta.UserAgent)
		assert.Equal(t, uaAndroidPhone, *meta.UserAgent)
		require.NotNil(t, meta.Referrer)
		assert.Equal(t, "https://news.example.com/post", *meta.Referrer)
		assert.Equal(t, models.DeviceMobile, meta.DeviceType)
		assert.Equal(t, models.BrowserChrome, meta.Browser)
	})

	t.Run("Empty", func(t *testing.T) {
		meta := ExtractRequestMetadata(RequestHeaders{})
		assert.Equal(t, "unknown", meta.IPAddress)
		assert.Nil(t, meta.UserAgent)
		assert.Nil(t, meta.Referrer)
		assert.Equal(t, models.DeviceUnknown, meta.DeviceType)
		assert.Equal(t, models.BrowserUnknown, meta.Browser)
	})
}
