package receipt

import (
	"fmt"
	"time"

	"membersCardAPI/internal/apperrors"
	"membersCardAPI/internal/line"
	"membersCardAPI/internal/types/product"
	"membersCardAPI/utils"
)

// ServiceMessageTemplate is the fixed notification template the service
// message variant maps its parameters into.
const ServiceMessageTemplate = "ec_comp_d_s_ja"

// display is a product turned into formatted receipt strings.
type display struct {
	Date        string
	ProductName string
	Price       string
	Postage     string
	Fee         string
	Discount    string
	Subtotal    string
	Tax         string
	Total       string
	Point       string
	ImgURL      string
}

func buildDisplay(p *product.Record, language string, now time.Time, discount int64) (*display, error) {
	name, ok := p.ProductName[language]
	if !ok {
		return nil, &apperrors.TemplateMissingError{Language: language}
	}

	amounts := Calculate(p, discount)

	return &display{
		Date:        utils.Timestamp(now),
		ProductName: name,
		Price:       utils.Comma(p.UnitPrice),
		Postage:     utils.Comma(p.Postage),
		Fee:         utils.Comma(p.Fee),
		Discount:    utils.Comma(discount),
		Subtotal:    utils.Comma(amounts.Subtotal),
		Tax:         utils.Comma(amounts.Tax),
		Total:       utils.Comma(amounts.Total),
		Point:       utils.Comma(amounts.Point),
		ImgURL:      p.ImgURL,
	}, nil
}

// BuildFlexReceipt renders the electronic receipt pushed after a purchase:
// a card-style bubble with the store header, itemized amount rows, a thanks
// footer image and a link button back into the member-card mini app.
func BuildFlexReceipt(p *product.Record, language, liffID string, now time.Time, discount int64) (*line.FlexMessage, error) {
	t, err := templatesFor(language)
	if err != nil {
		return nil, err
	}
	d, err := buildDisplay(p, language, now, discount)
	if err != nil {
		return nil, err
	}

	header := &line.FlexComponent{
		Type:   "box",
		Layout: "vertical",
		Contents: []line.FlexComponent{
			{Type: "text", Text: storeName, Size: "xxl", Weight: "bold"},
			{Type: "text", Text: d.Date, Color: "#767676"},
			{Type: "text", Text: t.Notes, Wrap: true, Color: "#ff6347"},
		},
	}

	body := &line.FlexComponent{
		Type:       "box",
		Layout:     "vertical",
		PaddingTop: "0%",
		Contents: []line.FlexComponent{
			{
				Type:          "box",
				Layout:        "vertical",
				Margin:        "lg",
				Spacing:       "sm",
				PaddingBottom: "xxl",
				Contents: []line.FlexComponent{
					amountRow(d.ProductName, d.Price),
					amountRow(t.Postage, d.Postage),
					amountRow(t.Fee, d.Fee),
					amountRow(t.Discount, d.Discount),
					amountRow(t.Subtotal, d.Subtotal),
					amountRow(t.Tax, d.Tax),
					amountRow(t.Total, d.Total),
					amountRow(t.AwardPoints, d.Point),
				},
			},
			{
				Type:   "box",
				Layout: "vertical",
				Contents: []line.FlexComponent{
					{Type: "text", Text: t.Thanks, Wrap: true, Size: "sm", Color: "#767676"},
				},
			},
			{
				Type:   "box",
				Layout: "vertical",
				Margin: "xxl",
				Contents: []line.FlexComponent{
					{Type: "image", URL: d.ImgURL, Size: "lg"},
				},
			},
		},
	}

	footer := &line.FlexComponent{
		Type:    "box",
		Layout:  "vertical",
		Spacing: "sm",
		Flex:    line.FlexInt(0),
		Contents: []line.FlexComponent{
			{
				Type:   "button",
				Style:  "link",
				Height: "sm",
				Color:  "#0033cc",
				Action: &line.FlexAction{
					Type:  "uri",
					Label: t.View,
					URI:   fmt.Sprintf("https://liff.line.me/%s?lang=%s", liffID, language),
				},
			},
			{Type: "spacer", Size: "md"},
		},
	}

	return &line.FlexMessage{
		Type:    "flex",
		AltText: t.AltText,
		Contents: &line.FlexBubble{
			Type:   "bubble",
			Header: header,
			Body:   body,
			Footer: footer,
		},
	}, nil
}

// amountRow is one baseline line of the receipt: a label on the left and a
// right-aligned amount.
func amountRow(label, value string) line.FlexComponent {
	return line.FlexComponent{
		Type:    "box",
		Layout:  "baseline",
		Spacing: "sm",
		Contents: []line.FlexComponent{
			{Type: "text", Text: label, Color: "#5B5B5B", Size: "sm", Flex: line.FlexInt(5)},
			{Type: "text", Text: value, Wrap: true, Color: "#666666", Size: "sm", Flex: line.FlexInt(2), Align: "end"},
		},
	}
}

// BuildServiceMessageParams maps a purchase into the fixed parameter set of
// the ec_comp_d_s_ja notification template. Postage and the payment fee are
// not shown in service messages, so both are zeroed before the amounts are
// computed.
func BuildServiceMessageParams(p *product.Record, language string, now time.Time) (map[string]string, error) {
	stripped := *p
	stripped.Postage = 0
	stripped.Fee = 0

	d, err := buildDisplay(&stripped, language, now, 0)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"sum":          d.Total + "円",
		"tax":          d.Tax + "円",
		"date":         d.Date,
		"price":        d.Price + "円",
		"btn1_url":     "https://line.me",
		"discount":     d.Discount + "円",
		"quantity":     "1点",
		"shop_name":    storeName,
		"product_name": d.ProductName,
	}, nil
}
