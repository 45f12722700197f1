package validation

// MembersCardParams is the parsed members-card request body.
type MembersCardParams struct {
	IDToken  string `json:"idToken"`
	Mode     string `json:"mode"`
	Language string `json:"language"`
}

// CheckMembersCardParams returns the ordered list of validation messages
// for a request; an empty slice means the request is valid. Only presence
// is checked here — the mode's value is judged at dispatch.
func CheckMembersCardParams(params *MembersCardParams) []string {
	var messages []string
	if params.Mode == "" {
		messages = append(messages, "mode is required")
	}
	return messages
}
