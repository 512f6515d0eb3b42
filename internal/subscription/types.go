package subscription

// Report represents the status of all EventSub subscriptions relevant to this service:
// those held by the manager, and those registered with Twitch on the same transport
type Report struct {
	Ok            bool          `json:"ok"`
	Transport     string        `json:"transport"`
	Subscriptions []ReportEntry `json:"subscriptions"`
}

// ReportEntry represents the state of a single EventSub subscription
type ReportEntry struct {
	Required  bool              `json:"required"`
	Managed   bool              `json:"managed"`
	Type      string            `json:"type"`
	Version   string            `json:"version"`
	Condition map[string]string `json:"condition"`

	// Status is the manager's lifecycle status for managed subscriptions (or "paused"
	// while awaiting a lost transport), the status reported by Twitch for subscriptions
	// we don't manage, or "missing" if a required subscription doesn't exist at all
	Status string `json:"status"`

	subscriptionId string
}

const (
	reportStatusMissing = "missing"
	reportStatusPaused  = "paused"
)
