package store

import (
	"time"

	"gorm.io/gorm"
)

type InstanceStatus string

const (
	StatusIncomplete       InstanceStatus = "incomplete"
	StatusFinalized        InstanceStatus = "finalized"
	StatusSubmitting       InstanceStatus = "submitting"
	StatusSubmitted        InstanceStatus = "submitted"
	StatusSubmissionFailed InstanceStatus = "submissionFailed"
)

// Instance is a filled form stored on the device.
type Instance struct {
	gorm.Model

	FormID      string `gorm:"index"`
	FormVersion string
	DisplayName string

	// DataPath is the XML payload of the submission.
	DataPath    string
	Attachments []InstanceAttachment `gorm:"constraint:OnDelete:CASCADE;"`

	Status             InstanceStatus `gorm:"index"`
	SubmissionURI      string
	LastStatusChangeAt *time.Time
}

type InstanceAttachment struct {
	gorm.Model
	InstanceID uint `gorm:"index"`
	Position   int
	Path       string
}

// AttachmentPaths returns the attachment paths in submission order.
func (i *Instance) AttachmentPaths() []string {
	paths := make([]string, 0, len(i.Attachments))
	for _, a := range i.Attachments {
		paths = append(paths, a.Path)
	}
	return paths
}

func NewInstance(formID, formVersion, displayName, dataPath string, attachments ...string) *Instance {
	instance := &Instance{
		FormID:      formID,
		FormVersion: formVersion,
		DisplayName: displayName,
		DataPath:    dataPath,
		Status:      StatusFinalized,
	}

	for idx, path := range attachments {
		instance.Attachments = append(instance.Attachments, InstanceAttachment{
			Position: idx,
			Path:     path,
		})
	}

	return instance
}
