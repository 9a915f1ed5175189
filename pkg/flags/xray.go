package flags

import (
	"github.com/spf13/pflag"

	v1 "github.com/openshift/testgrade/pkg/apis/config/v1"
	"github.com/openshift/testgrade/pkg/xrayclient"
)

// XrayFlags holds the Xray cloud connection settings.
type XrayFlags struct {
	Project         string
	AuthURL         string
	GraphQLURL      string
	PageSize        int
	CredentialsFile string
}

func NewXrayFlags() *XrayFlags {
	return &XrayFlags{}
}

func (f *XrayFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Project, "project", f.Project, "Jira project key (default "+xrayclient.DefaultProject+")")
	fs.StringVar(&f.AuthURL, "xray-auth-url", f.AuthURL, "Xray authentication endpoint")
	fs.StringVar(&f.GraphQLURL, "xray-graphql-url", f.GraphQLURL, "Xray GraphQL endpoint")
	fs.IntVar(&f.PageSize, "page-size", f.PageSize, "number of results requested per page")
	fs.StringVar(&f.CredentialsFile,
		"xray-credentials-file",
		f.CredentialsFile,
		"YAML file with client_id and client_secret, defaults to $HOME/.xrayclient.yaml or the XRAY_CLIENT_ID and XRAY_CLIENT_SECRET environment variables")
}

// Options merges the flags over the configuration file, flags winning.
func (f *XrayFlags) Options(config v1.XrayConfig) ([]xrayclient.Option, error) {
	var opts []xrayclient.Option

	if project := firstNonEmpty(f.Project, config.Project); project != "" {
		opts = append(opts, xrayclient.WithProject(project))
	}
	if url := firstNonEmpty(f.AuthURL, config.AuthURL); url != "" {
		opts = append(opts, xrayclient.WithAuthURL(url))
	}
	if url := firstNonEmpty(f.GraphQLURL, config.GraphQLURL); url != "" {
		opts = append(opts, xrayclient.WithGraphQLURL(url))
	}
	if f.PageSize > 0 {
		opts = append(opts, xrayclient.WithPageSize(f.PageSize))
	} else if config.PageSize > 0 {
		opts = append(opts, xrayclient.WithPageSize(config.PageSize))
	}

	if f.CredentialsFile != "" {
		creds, found, err := xrayclient.LoadCredentialsFile(f.CredentialsFile)
		if err != nil {
			return nil, err
		}
		if found {
			opts = append(opts, xrayclient.WithCredentials(creds.ClientID, creds.ClientSecret))
		}
	}

	return opts, nil
}

// GetXrayClient builds the client for the flags and configuration.
func (f *XrayFlags) GetXrayClient(config v1.XrayConfig) (*xrayclient.Client, error) {
	opts, err := f.Options(config)
	if err != nil {
		return nil, err
	}
	return xrayclient.New(opts...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
