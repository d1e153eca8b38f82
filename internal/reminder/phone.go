// Package reminder sends SMS nudges: a daily vitals prompt and short-horizon
// appointment reminders.
package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/sehatlink/sehat/internal/model"
)

// SplitAndCleanNumbers accepts a phone field that may hold several numbers
// separated by commas, semicolons or pipes, and returns deduplicated
// E.164-ish numbers. Bare digit strings get the +91 country code.
func SplitAndCleanNumbers(phoneField string) []string {
	if phoneField == "" {
		return nil
	}

	raw := strings.NewReplacer(";", ",", "|", ",", "\n", ",").Replace(phoneField)

	var out []string
	seen := make(map[string]bool)
	for _, p := range strings.Split(raw, ",") {
		n := strings.ReplaceAll(strings.TrimSpace(p), " ", "")
		if n == "" {
			continue
		}
		if !strings.HasPrefix(n, "+") && isDigits(n) {
			n = "+91" + n
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// BestName picks a display name for the SMS, falling back to "there".
func BestName(p model.Profile) string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return "there"
	}
	return name
}

// FormatIST renders a UTC timestamp for user-facing SMS in Indian time.
func FormatIST(t time.Time) string {
	ist := t.In(time.FixedZone("IST", (5*60+30)*60))
	return ist.Format("02 Jan, 03:04 PM") + " IST"
}

// VitalsMessage is the daily vitals nudge body.
func VitalsMessage(name string) string {
	return fmt.Sprintf("Hi %s, don't forget to add today's vitals.", name)
}

// AppointmentMessage is the appointment reminder body.
func AppointmentMessage(name, whenLabel, apptID string) string {
	return fmt.Sprintf("Hi %s, reminder: your appointment is at %s. (APPT:%s)", name, whenLabel, apptID)
}
