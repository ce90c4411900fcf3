package setup

import (
	"context"

	"github.com/bornholm/autosend/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/xid"
)

const settingDeviceID = "device_id"

var getDeviceIDFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (string, error) {
	if conf.Device.ID != "" {
		return conf.Device.ID, nil
	}

	settings, err := getSettingRepositoryFromConfig(ctx, conf)
	if err != nil {
		return "", errors.WithStack(err)
	}

	deviceID, err := settings.SetDefault(ctx, settingDeviceID, "autosend:"+xid.New().String())
	if err != nil {
		return "", errors.Wrap(err, "could not retrieve device id")
	}

	return deviceID, nil
})
