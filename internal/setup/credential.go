package setup

import (
	"context"

	"github.com/bornholm/autosend/internal/config"
	"github.com/bornholm/autosend/internal/credential"
	"github.com/pkg/errors"
)

var getCredentialStoreFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (credential.Store, error) {
	if conf.Server.CredentialsFile == "" {
		return credential.Static{}, nil
	}

	store, err := credential.Load(conf.Server.CredentialsFile, conf.Server.CredentialsIdentity)
	if err != nil {
		return nil, errors.Wrap(err, "could not load server credentials")
	}

	return store, nil
})
