package v1beta1

// Activity is an audit record emitted by the service.
type Activity struct {
	ID        string         `json:"id"`
	Key       string         `json:"key"`
	Message   string         `json:"message"`
	Source    ActivitySource `json:"source"`
	CreatedAt string         `json:"createdAt,omitempty"`
}

// ActivitySource is the resource an activity refers to.
type ActivitySource struct {
	Type        string `json:"type"`
	DisplayName string `json:"displayName,omitempty"`
	ResourceURI string `json:"resourceUri"`
}
