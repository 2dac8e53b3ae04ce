package styles

// Status icons
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "⚠"
	IconRunning = "▶"
	IconPending = "○"
	IconBullet  = "•"
)

// StatusIcon returns the icon for a live or dead service.
func StatusIcon(alive bool) string {
	if alive {
		return IconRunning
	}
	return IconPending
}

// Status renders icon and text in the style matching the severity.
func (t Theme) Status(ok bool, warn bool, text string) string {
	switch {
	case ok:
		return t.StatusOK.Render(IconSuccess + " " + text)
	case warn:
		return t.StatusWarn.Render(IconWarning + " " + text)
	default:
		return t.StatusFailed.Render(IconError + " " + text)
	}
}
