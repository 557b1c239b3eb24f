package productsheet

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// A5 portrait page and card dimensions.
const (
	PageWidthMM       = 148.0
	PageHeightMM      = 210.0
	CardWidthPx       = 559
	DefaultBackground = "#F6E2BE"

	MobileScale  = 2
	DesktopScale = 3
	MaxScale     = 4

	mobileMaxWidth = 768
	mmPerPx        = 25.4 / 96
)

// Device modes for scale selection.
const (
	DeviceAuto    = "auto"
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
)

var mobileUA = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)

// IsMobile reports whether a client with the given viewport width and user
// agent counts as mobile. A zero width is unknown and only the agent decides.
func IsMobile(width int, userAgent string) bool {
	if width > 0 && width <= mobileMaxWidth {
		return true
	}
	return mobileUA.MatchString(userAgent)
}

// ScaleFor returns the capture scale for a device mode. Auto mode consults
// the user agent; an empty agent counts as desktop.
func ScaleFor(device, userAgent string) int {
	switch strings.ToLower(device) {
	case DeviceMobile:
		return MobileScale
	case DeviceDesktop:
		return DesktopScale
	}
	if IsMobile(0, userAgent) {
		return MobileScale
	}
	return DesktopScale
}

// PlaceOnA5 fits a bitmap captured at scale onto an A5 page. The width
// always fills the page; the height keeps the aspect ratio and is centered
// vertically when shorter than the page.
func PlaceOnA5(pixelWidth, pixelHeight int, scale float64) Placement {
	if scale <= 0 {
		scale = 1
	}
	widthMM := float64(pixelWidth) / scale * mmPerPx
	heightMM := float64(pixelHeight) / scale * mmPerPx
	if widthMM <= 0 {
		return Placement{Width: PageWidthMM}
	}

	h := heightMM * (PageWidthMM / widthMM)
	y := 0.0
	if h < PageHeightMM {
		y = (PageHeightMM - h) / 2
	}
	return Placement{X: 0, Y: y, Width: PageWidthMM, Height: h}
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Filename returns Fiche_<name>_<unix millis>.pdf with every character
// outside [a-zA-Z0-9] replaced by an underscore.
func Filename(productName string, now time.Time) string {
	if productName == "" {
		productName = "Produit"
	}
	safe := unsafeFilenameChars.ReplaceAllString(productName, "_")
	return "Fiche_" + safe + "_" + strconv.FormatInt(now.UnixMilli(), 10) + ".pdf"
}
