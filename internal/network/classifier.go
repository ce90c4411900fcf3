package network

import (
	"github.com/bornholm/autosend/internal/preference"
	"github.com/pkg/errors"
)

type Link int

const (
	LinkNone Link = iota
	LinkWifi
	LinkCellular
	LinkOther
)

func (l Link) String() string {
	switch l {
	case LinkWifi:
		return "wifi"
	case LinkCellular:
		return "cellular"
	case LinkOther:
		return "other"
	default:
		return "none"
	}
}

func ParseLink(raw string) (Link, error) {
	switch raw {
	case "none":
		return LinkNone, nil
	case "wifi":
		return LinkWifi, nil
	case "cellular":
		return LinkCellular, nil
	case "other":
		return LinkOther, nil
	default:
		return LinkNone, errors.Errorf("unknown link '%s'", raw)
	}
}

// MediumAllows reports whether the current link is one the auto-send mode
// permits uploading on.
func MediumAllows(link Link, mode preference.AutoSendMode) bool {
	switch mode {
	case preference.AutoSendWifi:
		return link == LinkWifi
	case preference.AutoSendCellular:
		return link == LinkCellular
	case preference.AutoSendWifiAndCellular:
		return link == LinkWifi || link == LinkCellular
	default:
		return false
	}
}
