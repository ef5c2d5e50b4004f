package lobbysdk

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// DefaultAvatarBaseURL serves gravatar-compatible avatars.
const DefaultAvatarBaseURL = "https://weavatar.com/avatar"

// avatarSize is the pixel size requested from the avatar service.
const avatarSize = 40

// Profile is the signed-in user as last reported by the service.
type Profile struct {
	Email            string     `json:"email"`
	Username         string     `json:"username"`
	Group            string     `json:"group"`
	RegistrationTime string     `json:"regTime"`
	VIPExpiry        *time.Time `json:"vipTime,omitempty"`
}

// ActiveVIP returns the VIP expiry if it is still in the future at now.
func (p *Profile) ActiveVIP(now time.Time) *time.Time {
	if p == nil || !IsValidVIPTime(p.VIPExpiry, now) {
		return nil
	}
	t := *p.VIPExpiry
	return &t
}

// Clone returns a deep copy.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	if p.VIPExpiry != nil {
		t := *p.VIPExpiry
		c.VIPExpiry = &t
	}
	return &c
}

// IsValidVIPTime reports whether t is set and strictly after now.
func IsValidVIPTime(t *time.Time, now time.Time) bool {
	return t != nil && t.After(now)
}

// AvatarHash is the hex md5 of the trimmed, lower-cased email, or "" for an
// empty email.
func AvatarHash(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	sum := md5.Sum([]byte(email))
	return hex.EncodeToString(sum[:])
}

// AvatarURL builds the avatar image URL for email under baseURL.
func AvatarURL(baseURL, email string) string {
	hash := AvatarHash(email)
	if hash == "" {
		return ""
	}
	if baseURL == "" {
		baseURL = DefaultAvatarBaseURL
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + hash + "?s=" + strconv.Itoa(avatarSize)
}

// toProfile normalises the wire profile. The VIP expiry is kept only when it
// lies in the future at now.
func (w profileWire) toProfile(now time.Time) *Profile {
	p := &Profile{
		Email:            w.Email,
		Username:         w.Username,
		Group:            w.Group,
		RegistrationTime: w.RegTime,
	}
	if vip := parseWireTime(w.VIPTime); IsValidVIPTime(vip, now) {
		p.VIPExpiry = vip
	}
	return p
}

var wireTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseWireTime accepts a timestamp string in any of wireTimeLayouts, or a
// unix time in seconds or milliseconds. Anything else is nil. Strings without
// a zone are local time.
func parseWireTime(raw json.RawMessage) *time.Time {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		for _, layout := range wireTimeLayouts {
			if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return &t
			}
		}
		return nil
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
		var t time.Time
		if n > 1e12 {
			t = time.UnixMilli(n).UTC()
		} else {
			t = time.Unix(n, 0).UTC()
		}
		return &t
	}

	return nil
}
