package handlers

import "net/url"

// fallbackAvatarURL generates a deterministic avatar for users without a
// picture on file, keyed by display name.
func fallbackAvatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=6366f1&color=fff"
}
