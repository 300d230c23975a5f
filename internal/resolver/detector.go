package resolver

import (
	"strings"

	"github.com/elsanchez/linkgrab/internal/domain"
)

// platformSignature asocia fragmentos de URL con un tag de plataforma
type platformSignature struct {
	tag       string
	fragments []string
}

// Orden fijo: gana la primera firma que coincide
var platformSignatures = []platformSignature{
	{domain.PlatformTikTok, []string{"tiktok"}},
	{domain.PlatformInstagram, []string{"instagram"}},
	{domain.PlatformFacebook, []string{"facebook", "fb."}},
	{domain.PlatformYouTube, []string{"youtube", "youtu.be"}},
	{domain.PlatformTwitter, []string{"twitter", "x.com"}},
	{domain.PlatformPinterest, []string{"pinterest"}},
	{domain.PlatformReddit, []string{"reddit"}},
	{domain.PlatformSnapchat, []string{"snapchat"}},
	{domain.PlatformVimeo, []string{"vimeo"}},
	{domain.PlatformLinkedIn, []string{"linkedin"}},
}

// Classify detecta la plataforma desde la URL. Nunca falla: cualquier
// string sin coincidencias, incluido el vacío, da PlatformGeneric.
func Classify(urlStr string) string {
	urlStr = strings.ToLower(urlStr)

	for _, sig := range platformSignatures {
		if containsAny(urlStr, sig.fragments) {
			return sig.tag
		}
	}

	return domain.PlatformGeneric
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
