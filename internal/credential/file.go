package credential

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"
	"github.com/pkg/errors"
	"github.com/tidwall/jsonc"
)

type fileContent struct {
	Hosts map[string]Credentials `json:"hosts"`
}

// FileStore holds the credentials read from a JSONC document, optionally
// encrypted with age.
type FileStore struct {
	hosts map[string]Credentials
}

func (s *FileStore) Get(ctx context.Context, host string) (Credentials, bool) {
	creds, exists := s.hosts[strings.ToLower(host)]
	return creds, exists
}

// Parse decodes a JSONC credentials document
func Parse(data []byte) (*FileStore, error) {
	var content fileContent
	if err := json.Unmarshal(jsonc.ToJSON(data), &content); err != nil {
		return nil, errors.Wrap(err, "could not decode credentials")
	}

	hosts := make(map[string]Credentials, len(content.Hosts))
	for host, creds := range content.Hosts {
		hosts[strings.ToLower(host)] = creds
	}

	return &FileStore{hosts: hosts}, nil
}

// Load reads the credentials file. When identityFile is not empty, the
// file is expected to be age encrypted (binary or armored) for one of its
// identities.
func Load(path string, identityFile string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read credentials file '%s'", path)
	}

	if identityFile != "" {
		data, err = decrypt(data, identityFile)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}

	store, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid credentials file '%s'", path)
	}

	return store, nil
}

func decrypt(data []byte, identityFile string) ([]byte, error) {
	keys, err := os.Open(identityFile)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open identity file '%s'", identityFile)
	}
	defer keys.Close()

	identities, err := age.ParseIdentities(keys)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse identity file '%s'", identityFile)
	}

	var src io.Reader = bytes.NewReader(data)
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(armor.Header)) {
		src = armor.NewReader(bytes.NewReader(data))
	}

	r, err := age.Decrypt(src, identities...)
	if err != nil {
		return nil, errors.Wrap(err, "could not decrypt credentials")
	}

	plain, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not read decrypted credentials")
	}

	return plain, nil
}

var _ Store = &FileStore{}
