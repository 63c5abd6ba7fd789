package models

// CrimestoppersPayload is the inbound third-party form webhook body.
// FormFields maps the partner's question labels to answer strings.
type CrimestoppersPayload struct {
	FormID     string            `json:"formID"`
	Title      string            `json:"title"`
	SiteType   int               `json:"siteType"`
	IsTwoWay   bool              `json:"isTwoWay"`
	FormFields map[string]string `json:"formFields"`
}

// WebhookResponse is returned to the partner on every webhook call.
type WebhookResponse struct {
	Success    bool               `json:"success"`
	ReportID   string             `json:"reportId,omitempty"`
	Error      string             `json:"error,omitempty"`
	Details    []string           `json:"details,omitempty"`
	Validation *WebhookValidation `json:"validation,omitempty"`
}

// WebhookValidation summarizes how the payload mapped onto the report schema.
type WebhookValidation struct {
	MappedFields   int      `json:"mappedFields"`
	UnmappedFields int      `json:"unmappedFields"`
	Warnings       []string `json:"warnings"`
}
