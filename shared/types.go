package shared

// Release is the subset of the GitHub "latest release" payload the installer reads
type Release struct {
	TagName string `json:"tag_name"`
}

// Subscription is posted as a form to the subscription service once both
// agents are installed
type Subscription struct {
	IP       string
	Password string
}

// Form returns the url-encoded form fields of the subscription request
func (s Subscription) Form() map[string]string {
	return map[string]string{
		"ip":       s.IP,
		"password": s.Password,
	}
}
