package utils

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/matchreel-dev/matchreel/internal/config"
)

// AbsoluteURL builds a full URL for a server-relative path. Mobile clients
// receive absolute URLs so they never have to assemble hosts themselves.
// Outside localhost the scheme is normalized to HTTPS.
func AbsoluteURL(ctx *gin.Context, path string) string {
	base := ""
	if config.Current != nil {
		base = config.Current.BaseURL
	}

	if base == "" {
		host := ctx.Request.Host
		scheme := "https"
		if strings.HasPrefix(host, "localhost") || strings.HasPrefix(host, "127.0.0.1") {
			scheme = "http"
		}
		if proto := ctx.GetHeader("X-Forwarded-Proto"); proto == "https" {
			scheme = "https"
		}
		base = scheme + "://" + host
	}

	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// AvatarURL resolves a stored profile image path to an absolute media URL.
func AvatarURL(ctx *gin.Context, imagePath string) string {
	return AbsoluteURL(ctx, "media/"+imagePath)
}
