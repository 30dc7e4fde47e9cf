package v1beta1

// Server is a compute device managed by the service.
type Server struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	DisplayName        string              `json:"displayName,omitempty"`
	ResourceType       string              `json:"type,omitempty"`
	ResourceURI        string              `json:"resourceUri"`
	SelfURI            string              `json:"selfUri,omitempty"`
	BiosFamily         string              `json:"biosFamily,omitempty"`
	Generation         int                 `json:"generation,omitempty"`
	PlatformFamily     string              `json:"platformFamily,omitempty"`
	ProcessorVendor    string              `json:"processorVendor,omitempty"`
	FirmwareBundleURI  string              `json:"firmwareBundleUri,omitempty"`
	LastFirmwareUpdate *FirmwareUpdateInfo `json:"lastFirmwareUpdate"`
	Hardware           ServerHardware      `json:"hardware"`
	State              ServerState         `json:"state"`
	Host               ServerHost          `json:"host"`
	FirmwareInventory  []FirmwareComponent `json:"firmwareInventory,omitempty"`
	Tags               map[string]string   `json:"tags,omitempty"`
	UpdatedAt          string              `json:"updatedAt,omitempty"`
}

// ServerHardware holds the physical attributes of a server.
type ServerHardware struct {
	SerialNumber string       `json:"serialNumber"`
	Model        string       `json:"model"`
	ProductID    string       `json:"productId,omitempty"`
	PowerState   string       `json:"powerState,omitempty"`
	IndicatorLED string       `json:"indicatorLed,omitempty"`
	BMC          BMC          `json:"bmc"`
	Health       ServerHealth `json:"health"`
}

// BMC is the baseboard management controller (iLO) of a server.
type BMC struct {
	IP       string `json:"ip"`
	Hostname string `json:"hostname,omitempty"`
	MAC      string `json:"mac,omitempty"`
}

// ServerHealth summarizes the health rollup of a server.
type ServerHealth struct {
	Summary string `json:"summary,omitempty"`
}

// ServerState carries the subscription and connectivity state of a server.
type ServerState struct {
	Managed            bool   `json:"managed"`
	Connected          bool   `json:"connected"`
	SubscriptionState  string `json:"subscriptionState,omitempty"`
	SubscriptionTier   string `json:"subscriptionTier,omitempty"`
	SubscriptionExpire string `json:"subscriptionExpiresAt,omitempty"`
}

// ServerHost is the operating system view of a server.
type ServerHost struct {
	Hostname string `json:"hostname,omitempty"`
	OSName   string `json:"osName,omitempty"`
}

// FirmwareComponent is one entry of a server firmware inventory.
type FirmwareComponent struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// FirmwareUpdateInfo describes the most recent firmware update of a server.
// It is null when no update has ever been required.
type FirmwareUpdateInfo struct {
	Status    string `json:"status"`
	BundleURI string `json:"firmwareBundleUri,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
}

// Alert is a hardware alert raised by a server.
type Alert struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// ServerStateCounts is the fleet-wide count of servers per state.
type ServerStateCounts map[string]int
