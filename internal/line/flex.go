package line

// Flex-message payload types, covering the subset of the LINE flex layout
// the receipt message uses (bubble with vertical/baseline boxes, texts,
// an image, a spacer and a link button).

type FlexMessage struct {
	Type     string      `json:"type"`
	AltText  string      `json:"altText"`
	Contents *FlexBubble `json:"contents"`
}

type FlexBubble struct {
	Type   string         `json:"type"`
	Header *FlexComponent `json:"header,omitempty"`
	Body   *FlexComponent `json:"body,omitempty"`
	Footer *FlexComponent `json:"footer,omitempty"`
}

// FlexComponent is a flattened union of the box, text, image, button and
// spacer components. Zero fields are omitted from the wire format, so one
// struct covers all of them.
type FlexComponent struct {
	Type          string          `json:"type"`
	Layout        string          `json:"layout,omitempty"`
	Text          string          `json:"text,omitempty"`
	URL           string          `json:"url,omitempty"`
	Size          string          `json:"size,omitempty"`
	Weight        string          `json:"weight,omitempty"`
	Color         string          `json:"color,omitempty"`
	Wrap          bool            `json:"wrap,omitempty"`
	Align         string          `json:"align,omitempty"`
	Style         string          `json:"style,omitempty"`
	Height        string          `json:"height,omitempty"`
	Margin        string          `json:"margin,omitempty"`
	Spacing       string          `json:"spacing,omitempty"`
	PaddingTop    string          `json:"paddingTop,omitempty"`
	PaddingBottom string          `json:"paddingBottom,omitempty"`
	Flex          *int            `json:"flex,omitempty"`
	Action        *FlexAction     `json:"action,omitempty"`
	Contents      []FlexComponent `json:"contents,omitempty"`
}

type FlexAction struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	URI   string `json:"uri"`
}

// FlexInt is a convenience for the *int flex weights ("flex": 0 is
// meaningful and must not be omitted).
func FlexInt(n int) *int {
	return &n
}
