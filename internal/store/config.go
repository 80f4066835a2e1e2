package store

// Config is a page configuration record, owned either by a tenant or by an
// individual user under a tenant. User records carry the owning tenant
// slug; tenant records leave it empty.
type Config struct {
	Tenant string `json:"tenant,omitempty"`

	Theme   string  `json:"theme,omitempty"`
	Profile Profile `json:"profile"`
	Footer  string  `json:"footer,omitempty"`
	Badges  []Badge `json:"badges,omitempty"`

	PixelsSimple   PixelsSimple   `json:"pixelsSimple"`
	PixelsAdvanced PixelsAdvanced `json:"pixelsAdvanced"`

	// CustomBundles, CustomHead, and CustomBodyEnd hold tenant-supplied
	// HTML. They must pass through sanitizer.Sanitize before being saved.
	CustomBundles []string `json:"customBundles,omitempty"`
	CustomHead    string   `json:"customHead,omitempty"`
	CustomBodyEnd string   `json:"customBodyEnd,omitempty"`

	Gallery []string `json:"gallery,omitempty"`
	Links   []Link   `json:"links,omitempty"`
}

type Profile struct {
	DisplayName string     `json:"displayName,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	Avatar      string     `json:"avatar,omitempty"`
	Cover       string     `json:"cover,omitempty"`
	Background  Background `json:"background"`
}

type Background struct {
	Type  string `json:"type,omitempty"` // "gradient" or "image"
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
	Image string `json:"image,omitempty"`
}

type Badge struct {
	Text  string `json:"text,omitempty"`
	Href  string `json:"href,omitempty"`
	Emoji string `json:"emoji,omitempty"`
}

type Link struct {
	Title     string            `json:"title"`
	URL       string            `json:"url"`
	Icon      string            `json:"icon,omitempty"`
	Badge     string            `json:"badge,omitempty"`
	Highlight bool              `json:"highlight,omitempty"`
	UTM       map[string]string `json:"utm,omitempty"`
	EventName string            `json:"eventName,omitempty"`
}

// PixelsSimple holds client-side pixel IDs injected into the public page.
// Only IDs, no secrets.
type PixelsSimple struct {
	Facebook  []string `json:"facebook,omitempty"`
	TikTok    []string `json:"tiktok,omitempty"`
	GA4       []string `json:"ga4,omitempty"`
	GTM       []string `json:"gtm,omitempty"`
	GoogleAds []string `json:"googleAds,omitempty"`
	Twitter   []string `json:"twitter,omitempty"`
}

// PixelsAdvanced holds server-side conversion API credentials. Every
// configured credential of every provider receives each tracked event.
type PixelsAdvanced struct {
	Facebook []FacebookCredential `json:"facebook,omitempty"`
	GA4      []GA4Credential      `json:"ga4,omitempty"`
	TikTok   []TikTokCredential   `json:"tiktok,omitempty"`
}

type FacebookCredential struct {
	PixelID     string `json:"pixelId"`
	AccessToken string `json:"accessToken"`
	// TestEventCode routes events to Meta's Test Events tool when set.
	TestEventCode string `json:"testEventCode,omitempty"`
}

func (c FacebookCredential) Valid() bool {
	return c.PixelID != "" && c.AccessToken != ""
}

type GA4Credential struct {
	MeasurementID string `json:"measurementId"`
	APISecret     string `json:"apiSecret"`
}

func (c GA4Credential) Valid() bool {
	return c.MeasurementID != "" && c.APISecret != ""
}

type TikTokCredential struct {
	PixelCode   string `json:"pixelCode"`
	AccessToken string `json:"accessToken"`
}

func (c TikTokCredential) Valid() bool {
	return c.PixelCode != "" && c.AccessToken != ""
}
