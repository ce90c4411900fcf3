package setup

import (
	"context"
	"log/slog"

	"github.com/bornholm/autosend/internal/config"
	"github.com/bornholm/autosend/internal/network"
	"github.com/pkg/errors"
)

var getDetectorFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (network.Detector, error) {
	if conf.Network.Link != "" {
		link, err := network.ParseLink(conf.Network.Link)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		slog.InfoContext(ctx, "using forced network link", slog.String("link", link.String()))

		return network.StaticDetector(link), nil
	}

	return network.NewInterfaceDetector(conf.Network.WifiPrefixes, conf.Network.CellularPrefixes), nil
})
