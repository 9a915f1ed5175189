package flags

import (
	"os"

	"github.com/spf13/pflag"
)

// GoogleCloudFlags contain configuration information for publishing reports to GCS.
type GoogleCloudFlags struct {
	ServiceAccountCredentialFile string
	StorageBucket                string
	StoragePrefix                string
}

func NewGoogleCloudFlags() *GoogleCloudFlags {
	return &GoogleCloudFlags{
		ServiceAccountCredentialFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		StoragePrefix:                "xray-report",
	}
}

func (f *GoogleCloudFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.ServiceAccountCredentialFile,
		"google-service-account-credential-file",
		f.ServiceAccountCredentialFile,
		"location of a credential file described by https://cloud.google.com/docs/authentication/production")

	fs.StringVar(&f.StorageBucket, "gcs-bucket", f.StorageBucket, "GCS bucket to publish reports to, reports are not published when empty")
	fs.StringVar(&f.StoragePrefix, "gcs-prefix", f.StoragePrefix, "object name prefix for published reports")
}

// Enabled is true when reports should be published.
func (f *GoogleCloudFlags) Enabled() bool {
	return f.StorageBucket != ""
}
