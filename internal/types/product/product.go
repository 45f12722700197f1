package product

// Record is a read-only catalog entry used to simulate a purchase.
// Product ids are densely packed 1..N; the seed data must not leave gaps
// because purchases pick a random id in [1, item count].
// Prices are JPY amounts without tax.
type Record struct {
	ProductID   int64             `json:"productId" dynamodbav:"productId"`
	ProductName map[string]string `json:"productName" dynamodbav:"productName"`
	UnitPrice   int64             `json:"unitPrice" dynamodbav:"unitPrice"`
	Postage     int64             `json:"postage" dynamodbav:"postage"`
	Fee         int64             `json:"fee" dynamodbav:"fee"`
	ImgURL      string            `json:"imgUrl" dynamodbav:"imgUrl"`
}
