package dto

// MaterialRequest creates or updates a material catalog entry.
// Numeric physical attributes travel as decimal strings.
type MaterialRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name" binding:"required"`
	Type        string `json:"type" binding:"required"`
	UOM         string `json:"uom" binding:"required"`
	WidthMM     string `json:"widthMm"`
	GSM         string `json:"gsm"`
	Micron      string `json:"micron"`
	HSNCode     string `json:"hsnCode"`
	DefaultRate string `json:"defaultRate"`
	Description string `json:"description"`
}
