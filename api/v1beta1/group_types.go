package v1beta1

// Group is a named set of servers sharing firmware and settings policies.
type Group struct {
	ID                     string            `json:"id"`
	Name                   string            `json:"name"`
	Description            string            `json:"description,omitempty"`
	ResourceURI            string            `json:"resourceUri"`
	FirmwareBaseline       string            `json:"firmwareBaseline,omitempty"`
	AutoIloFwUpdateEnabled bool              `json:"autoIloFwUpdateEnabled"`
	AutoFwUpdateOnAdd      bool              `json:"autoFwUpdateOnAdd"`
	DeviceSettingsURIs     []string          `json:"deviceSettingsUris,omitempty"`
	Devices                []GroupDevice     `json:"devices,omitempty"`
	Tags                   map[string]string `json:"tags,omitempty"`
}

// GroupDevice is a server membership entry of a group.
type GroupDevice struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	ResourceURI string `json:"resourceUri,omitempty"`
}

// DeviceIDs returns the ids of the group members in order.
func (g *Group) DeviceIDs() []string {
	ids := make([]string, 0, len(g.Devices))
	for _, d := range g.Devices {
		ids = append(ids, d.ID)
	}
	return ids
}

// CreateGroupRequest is the body of a group creation call.
type CreateGroupRequest struct {
	Name                   string                 `json:"name"`
	Description            string                 `json:"description,omitempty"`
	FirmwareBaseline       string                 `json:"firmwareBaseline,omitempty"`
	AutoIloFwUpdateEnabled bool                   `json:"autoIloFwUpdateEnabled"`
	AutoFwUpdateOnAdd      bool                   `json:"autoFwUpdateOnAdd"`
	DeviceSettingsURIs     []string               `json:"deviceSettingsUris"`
	Data                   map[string]interface{} `json:"data"`
	Tags                   map[string]string      `json:"tags,omitempty"`
}

// GroupPatch is a merge-patch document for a group. Nil fields are left untouched.
type GroupPatch struct {
	Name             *string `json:"name,omitempty"`
	Description      *string `json:"description,omitempty"`
	FirmwareBaseline *string `json:"firmwareBaseline,omitempty"`
}

// AddDevicesRequest adds servers to a group.
type AddDevicesRequest struct {
	Devices []GroupDevice `json:"devices"`
}
