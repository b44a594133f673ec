package entities

// Assertion is the verified content of a SAML assertion: the subject's
// NameID and its multi-valued attributes.
type Assertion struct {
	NameID     string              `json:"nameId"`
	Attributes map[string][]string `json:"attributes,omitempty"`
}
