package flags

import (
	"os"

	"github.com/spf13/pflag"
)

const pushgatewayEnv = "TESTGRADE_PROMETHEUS_PUSHGATEWAY"

// PushgatewayFlags holds where collection metrics are pushed.
type PushgatewayFlags struct {
	URL string
}

func NewPushgatewayFlags() *PushgatewayFlags {
	return &PushgatewayFlags{
		URL: os.Getenv(pushgatewayEnv),
	}
}

func (f *PushgatewayFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.URL, "prometheus-pushgateway", f.URL, "Prometheus pushgateway for collection metrics, defaults to $"+pushgatewayEnv)
}
