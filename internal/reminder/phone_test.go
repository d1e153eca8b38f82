package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sehatlink/sehat/internal/model"
)

func TestSplitAndCleanNumbers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single with code", "+919876543210", []string{"+919876543210"}},
		{"bare digits get country code", "9876543210", []string{"+919876543210"}},
		{"comma separated", "9876543210, +14155550123", []string{"+919876543210", "+14155550123"}},
		{"semicolon and pipe separators", "9876543210;9123456789|9000000000",
			[]string{"+919876543210", "+919123456789", "+919000000000"}},
		{"newline separator", "9876543210\n9123456789", []string{"+919876543210", "+919123456789"}},
		{"inner spaces stripped", "98765 43210", []string{"+919876543210"}},
		{"duplicates removed", "9876543210, 9876543210, +919876543210",
			[]string{"+919876543210"}},
		{"non numeric left alone", "not-a-number", []string{"not-a-number"}},
		{"blank segments dropped", ",, 9876543210 ,", []string{"+919876543210"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitAndCleanNumbers(tt.input))
		})
	}
}

func TestBestName(t *testing.T) {
	assert.Equal(t, "Asha", BestName(model.Profile{Name: "Asha"}))
	assert.Equal(t, "Asha", BestName(model.Profile{Name: "  Asha  "}))
	assert.Equal(t, "there", BestName(model.Profile{}))
	assert.Equal(t, "there", BestName(model.Profile{Name: "   "}))
}

func TestFormatIST(t *testing.T) {
	// 09:30 UTC is 15:00 IST.
	utc := time.Date(2025, time.March, 5, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "05 Mar, 03:00 PM IST", FormatIST(utc))

	// The +05:30 offset can roll the date over.
	lateUTC := time.Date(2025, time.March, 5, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "06 Mar, 01:30 AM IST", FormatIST(lateUTC))
}

func TestMessageBodies(t *testing.T) {
	assert.Equal(t, "Hi Asha, don't forget to add today's vitals.", VitalsMessage("Asha"))

	got := AppointmentMessage("Asha", "05 Mar, 03:00 PM IST", "abc-123")
	assert.Contains(t, got, "Asha")
	assert.Contains(t, got, "05 Mar, 03:00 PM IST")
	assert.Contains(t, got, "(APPT:abc-123)")
}
