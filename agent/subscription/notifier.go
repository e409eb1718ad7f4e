package subscription

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/jetrmm/rs-installer/agent/common"
	"github.com/jetrmm/rs-installer/shared"
)

// Notifier reports a provisioned endpoint to the subscription service
type Notifier struct {
	rc     *resty.Client
	url    string
	logger logrus.FieldLogger
}

func NewNotifier(url string, logger logrus.FieldLogger) *Notifier {
	rc := resty.New()
	rc.SetCloseConnection(true)
	rc.SetHeader("User-Agent", common.UserAgent)
	return &Notifier{rc: rc, url: url, logger: logger}
}

// Notify posts the VPN IP and access password as a form. It is attempted once.
func (n *Notifier) Notify(ctx context.Context, s shared.Subscription) error {
	n.logger.Infoln("Subscribing...")

	r, err := n.rc.R().
		SetContext(ctx).
		SetFormData(s.Form()).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("subscription error: %w", err)
	}
	if !r.IsSuccess() {
		return fmt.Errorf("subscription failed: %s", r.Status())
	}

	n.logger.Debugln("Subscription response:", r.StatusCode())
	return nil
}
