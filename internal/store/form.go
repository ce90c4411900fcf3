package store

import "gorm.io/gorm"

// Form is a blank form definition known to the device.
type Form struct {
	gorm.Model

	FormID        string `gorm:"index"`
	Version       string `gorm:"index"`
	DisplayName   string
	BlankFormPath string
	SubmissionURL string

	// AutoSend and AutoDelete are unset (nil) unless the form definition
	// overrides the device-wide preference.
	AutoSend   *bool
	AutoDelete *bool
}
