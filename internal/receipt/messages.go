package receipt

import "membersCardAPI/internal/apperrors"

// Receipt-message text templates keyed by language code. Only Japanese is
// populated; requesting any other language fails with TemplateMissingError.

const storeName = "Use Case STORE"

type messageTemplates struct {
	AltText     string
	Notes       string
	Postage     string
	Fee         string
	Discount    string
	Subtotal    string
	Tax         string
	Total       string
	AwardPoints string
	Thanks      string
	View        string
}

var templatesByLanguage = map[string]messageTemplates{
	"ja": {
		AltText:     "お買い上げありがとうございます。電子レシートを発行します。",
		Notes:       "※LINE API Use Caseサイトのデモアプリケーションであるため、実際の課金は行われません",
		Postage:     "送料（税抜）",
		Fee:         "決算手数料（税抜）",
		Discount:    "値引き",
		Subtotal:    "小計（税抜）",
		Tax:         "消費税",
		Total:       "お会計金額",
		AwardPoints: "付与ポイント",
		Thanks:      "商品のご購入ありがとうございます。\n本メッセージは、Use Case STOREおよびUse Case GROUPの店舗で商品をご購入されたお客様にお届けしています。",
		View:        "会員証を表示",
	},
}

func templatesFor(language string) (messageTemplates, error) {
	t, ok := templatesByLanguage[language]
	if !ok {
		return messageTemplates{}, &apperrors.TemplateMissingError{Language: language}
	}
	return t, nil
}
