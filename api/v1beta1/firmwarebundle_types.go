package v1beta1

// FirmwareBundle is a service pack (SPP) that can be applied to servers.
type FirmwareBundle struct {
	ID             string `json:"id"`
	Name           string `json:"name,omitempty"`
	DisplayName    string `json:"displayName,omitempty"`
	ReleaseVersion string `json:"releaseVersion"`
	ResourceURI    string `json:"resourceUri"`
	BundleType     string `json:"bundleType,omitempty"`
	ReleaseDate    string `json:"releaseDate,omitempty"`
}
