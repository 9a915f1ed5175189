package xrayclient

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	credentialsFileName = ".xrayclient.yaml"
	clientIDEnv         = "XRAY_CLIENT_ID"
	clientSecretEnv     = "XRAY_CLIENT_SECRET"
)

// Credentials are the Xray API key pair exchanged for a bearer token.
type Credentials struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// ResolveCredentials reads $HOME/.xrayclient.yaml, falling back to the XRAY_CLIENT_ID and
// XRAY_CLIENT_SECRET environment variables when the file does not exist.
func ResolveCredentials() (Credentials, error) {
	home, err := os.UserHomeDir()
	if err == nil {
		creds, found, err := LoadCredentialsFile(filepath.Join(home, credentialsFileName))
		if err != nil {
			return Credentials{}, err
		}
		if found {
			return creds, creds.validate()
		}
	}

	creds := Credentials{
		ClientID:     os.Getenv(clientIDEnv),
		ClientSecret: os.Getenv(clientSecretEnv),
	}
	return creds, creds.validate()
}

func LoadCredentialsFile(path string) (Credentials, bool, error) {
	var creds Credentials
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return creds, false, nil
		}
		return creds, false, errors.Wrapf(err, "could not read %s", path)
	}
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return creds, true, errors.Wrapf(err, "could not parse %s", path)
	}
	log.Debugf("using client credentials from %s", path)
	return creds, true, nil
}

func (c Credentials) validate() error {
	if c.ClientID == "" {
		return errors.Errorf("client id is not set, please define environment variable %s", clientIDEnv)
	}
	if c.ClientSecret == "" {
		return errors.Errorf("client secret is not set, please define environment variable %s", clientSecretEnv)
	}
	return nil
}
