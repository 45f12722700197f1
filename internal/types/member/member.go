package member

// Record is the persisted loyalty-account state for one LINE user.
// BarcodeNum is a 13 digit number shown on the member card and must stay
// unique across all records (barcodeNum-index on the table).
// PointExpirationDate is empty until the first purchase awards points.
type Record struct {
	UserID              string `json:"userId" dynamodbav:"userId"`
	BarcodeNum          int64  `json:"barcodeNum" dynamodbav:"barcodeNum"`
	Point               int64  `json:"point" dynamodbav:"point"`
	PointExpirationDate string `json:"pointExpirationDate" dynamodbav:"pointExpirationDate"`
	CreatedTime         string `json:"createdTime,omitempty" dynamodbav:"createdTime"`
	UpdatedTime         string `json:"updatedTime,omitempty" dynamodbav:"updatedTime"`
}
