package ui

import "fmt"

// ANSI256 color codes for portalctl output.
const (
	colorAccent  = 74  // blue
	colorMuted   = 245 // medium gray
	colorPending = 178 // amber
	colorActive  = 74  // blue
	colorGood    = 71  // green
	colorBad     = 167 // red
)

var noColor bool

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string {
	return render(colorAccent, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	return render(colorMuted, s)
}

// RenderStatus colors a ticket, document, company, or transaction status.
// Pending-ish statuses render amber, in-flight blue, terminal-good green,
// and terminal-bad red. Unknown statuses pass through unstyled.
func RenderStatus(status string) string {
	switch status {
	case "pending", "on_hold":
		return render(colorPending, status)
	case "in_progress", "active":
		return render(colorActive, status)
	case "resolved", "completed":
		return render(colorGood, status)
	case "closed", "cancelled", "expired", "dissolved":
		return render(colorBad, status)
	default:
		return status
	}
}

// RenderPriority colors a ticket priority. Urgent and high render red,
// medium amber, low gray.
func RenderPriority(priority string) string {
	switch priority {
	case "urgent", "high":
		return render(colorBad, priority)
	case "medium":
		return render(colorPending, priority)
	case "low":
		return render(colorMuted, priority)
	default:
		return priority
	}
}

// RenderUnread styles an unread-count badge.
func RenderUnread(s string) string {
	return render(colorBad, s)
}

func render(color int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", color, s)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
