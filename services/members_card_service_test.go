package services

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"membersCardAPI/internal/apperrors"
	"membersCardAPI/internal/line"
	"membersCardAPI/internal/types/member"
	"membersCardAPI/internal/types/product"
	"membersCardAPI/utils"
)

type fakeMemberStore struct {
	records       map[string]*member.Record
	taken         map[int64]bool
	putCalls      []*member.Record
	updateCalls   int
	barcodeChecks []int64

	lastUpdateUserID     string
	lastUpdatePoint      int64
	lastUpdateExpiration string
}

func newFakeMemberStore() *fakeMemberStore {
	return &fakeMemberStore{
		records: make(map[string]*member.Record),
		taken:   make(map[int64]bool),
	}
}

func (f *fakeMemberStore) Get(_ context.Context, userID string) (*member.Record, error) {
	rec, ok := f.records[userID]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (f *fakeMemberStore) Put(_ context.Context, rec *member.Record) error {
	f.putCalls = append(f.putCalls, rec)
	f.records[rec.UserID] = rec
	return nil
}

func (f *fakeMemberStore) UpdatePointExpiration(_ context.Context, userID string, point int64, expirationDate string) error {
	f.updateCalls++
	f.lastUpdateUserID = userID
	f.lastUpdatePoint = point
	f.lastUpdateExpiration = expirationDate
	if rec, ok := f.records[userID]; ok {
		rec.Point = point
		rec.PointExpirationDate = expirationDate
	}
	return nil
}

func (f *fakeMemberStore) BarcodeExists(_ context.Context, barcodeNum int64) (bool, error) {
	f.barcodeChecks = append(f.barcodeChecks, barcodeNum)
	return f.taken[barcodeNum], nil
}

type fakeProductStore struct {
	products map[int64]*product.Record
	getCalls []int64
}

func (f *fakeProductStore) Get(_ context.Context, productID int64) (*product.Record, error) {
	f.getCalls = append(f.getCalls, productID)
	rec, ok := f.products[productID]
	if !ok {
		return nil, errors.New("product not found")
	}
	return rec, nil
}

func (f *fakeProductStore) Count(_ context.Context) (int64, error) {
	return int64(len(f.products)), nil
}

type fakeTokenStore struct {
	token        string
	lastChannel  string
	tokenFetches int
}

func (f *fakeTokenStore) GetAccessToken(_ context.Context, channelID string) (string, error) {
	f.tokenFetches++
	f.lastChannel = channelID
	return f.token, nil
}

type fakeSender struct {
	sendErr     error
	sentTo      string
	sentToken   string
	sentMessage *line.FlexMessage
	sendCalls   int
}

func (f *fakeSender) SendPushMessage(_ context.Context, accessToken, to string, message *line.FlexMessage) error {
	f.sendCalls++
	f.sentToken = accessToken
	f.sentTo = to
	f.sentMessage = message
	return f.sendErr
}

func fixedNow(t *testing.T) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation(utils.TimestampLayout, "2026/08/29 10:00:00", utils.JST)
	require.NoError(t, err)
	return ts
}

func newTestService(t *testing.T, members *fakeMemberStore, products *fakeProductStore, tokens *fakeTokenStore, sender *fakeSender) *MembersCardService {
	t.Helper()
	svc := NewMembersCardService(members, products, tokens, sender, "oa-channel", "liff-test-id", zap.NewNop())
	svc.now = func() time.Time { return fixedNow(t) }
	svc.rng = rand.New(rand.NewSource(1))
	return svc
}

func testCatalog() *fakeProductStore {
	return &fakeProductStore{products: map[int64]*product.Record{
		1: {
			ProductID:   1,
			ProductName: map[string]string{"ja": "テスト商品"},
			UnitPrice:   1999,
			Postage:     300,
			Fee:         200,
			ImgURL:      "https://example.com/item.png",
		},
	}}
}

func TestInitCreatesNewMember(t *testing.T) {
	members := newFakeMemberStore()
	svc := newTestService(t, members, testCatalog(), &fakeTokenStore{}, &fakeSender{})

	rec, err := svc.Init(context.Background(), "U123")
	require.NoError(t, err)

	assert.Equal(t, "U123", rec.UserID)
	assert.Equal(t, int64(0), rec.Point)
	assert.Equal(t, "", rec.PointExpirationDate)
	assert.GreaterOrEqual(t, rec.BarcodeNum, int64(1_000_000_000_000))
	assert.LessOrEqual(t, rec.BarcodeNum, int64(9_999_999_999_999))

	require.Len(t, members.putCalls, 1)
	// The candidate barcode was checked against the index before the insert.
	require.Len(t, members.barcodeChecks, 1)
	assert.Equal(t, rec.BarcodeNum, members.barcodeChecks[0])
}

func TestInitIsIdempotentForExistingMember(t *testing.T) {
	members := newFakeMemberStore()
	existing := &member.Record{
		UserID:              "U123",
		BarcodeNum:          1234567890123,
		Point:               42,
		PointExpirationDate: "2026/12/31",
		CreatedTime:         "2025/01/01 00:00:00",
		UpdatedTime:         "2026/01/01 00:00:00",
	}
	members.records["U123"] = existing
	svc := newTestService(t, members, testCatalog(), &fakeTokenStore{}, &fakeSender{})

	rec, err := svc.Init(context.Background(), "U123")
	require.NoError(t, err)

	assert.Equal(t, existing, rec)
	assert.Empty(t, members.putCalls)
	assert.Empty(t, members.barcodeChecks)
	assert.Zero(t, members.updateCalls)
}

func TestInitRetriesBarcodeOnceOnCollision(t *testing.T) {
	members := newFakeMemberStore()
	svc := newTestService(t, members, testCatalog(), &fakeTokenStore{}, &fakeSender{})

	// Mark the first candidate the seeded rng will draw as taken: the
	// service must check the index exactly once and use its second draw
	// without re-checking.
	collideOnce := newFakeMemberStore()
	first := svc.drawBarcode()
	svc.rng = rand.New(rand.NewSource(1)) // rewind so the service draws `first` again
	collideOnce.taken[first] = true
	svc.members = collideOnce

	rec, err := svc.Init(context.Background(), "U456")
	require.NoError(t, err)

	require.Len(t, collideOnce.barcodeChecks, 1)
	assert.Equal(t, first, collideOnce.barcodeChecks[0])
	assert.NotEqual(t, first, rec.BarcodeNum)
	assert.GreaterOrEqual(t, rec.BarcodeNum, int64(1_000_000_000_000))
}

func TestBuyAwardsPointsAndResetsExpiration(t *testing.T) {
	members := newFakeMemberStore()
	members.records["U123"] = &member.Record{
		UserID:              "U123",
		BarcodeNum:          1234567890123,
		Point:               10,
		PointExpirationDate: "2026/01/15",
	}
	products := testCatalog()
	tokens := &fakeTokenStore{token: "oa-access-token"}
	sender := &fakeSender{}
	svc := newTestService(t, members, products, tokens, sender)

	rec, err := svc.Buy(context.Background(), "U123", "ja")
	require.NoError(t, err)

	// floor(1999*0.05) = 99 on top of the existing 10.
	assert.Equal(t, int64(109), rec.Point)
	// The expiration is overwritten to one year from now, not extended.
	assert.Equal(t, "2027/08/29", rec.PointExpirationDate)

	assert.Equal(t, 1, members.updateCalls)
	assert.Equal(t, "U123", members.lastUpdateUserID)
	assert.Equal(t, int64(109), members.lastUpdatePoint)
	assert.Equal(t, "2027/08/29", members.lastUpdateExpiration)

	assert.Equal(t, "oa-channel", tokens.lastChannel)
	assert.Equal(t, 1, sender.sendCalls)
	assert.Equal(t, "oa-access-token", sender.sentToken)
	assert.Equal(t, "U123", sender.sentTo)
	require.NotNil(t, sender.sentMessage)
	assert.Equal(t, "flex", sender.sentMessage.Type)
}

func TestBuyWithSingleProductAlwaysPicksProductOne(t *testing.T) {
	members := newFakeMemberStore()
	members.records["U123"] = &member.Record{UserID: "U123", BarcodeNum: 1234567890123}
	products := testCatalog()
	svc := newTestService(t, members, products, &fakeTokenStore{token: "tok"}, &fakeSender{})

	for i := 0; i < 5; i++ {
		_, err := svc.Buy(context.Background(), "U123", "ja")
		require.NoError(t, err)
	}

	for _, id := range products.getCalls {
		assert.Equal(t, int64(1), id)
	}
}

func TestBuyFailsForUnknownMember(t *testing.T) {
	members := newFakeMemberStore()
	svc := newTestService(t, members, testCatalog(), &fakeTokenStore{}, &fakeSender{})

	_, err := svc.Buy(context.Background(), "U999", "ja")
	assert.ErrorIs(t, err, apperrors.ErrMemberNotFound)
	assert.Zero(t, members.updateCalls)
}

func TestBuyFailsForMissingTemplate(t *testing.T) {
	members := newFakeMemberStore()
	members.records["U123"] = &member.Record{UserID: "U123", BarcodeNum: 1234567890123}
	sender := &fakeSender{}
	svc := newTestService(t, members, testCatalog(), &fakeTokenStore{token: "tok"}, sender)

	_, err := svc.Buy(context.Background(), "U123", "en")

	var missing *apperrors.TemplateMissingError
	require.True(t, errors.As(err, &missing))
	assert.Zero(t, sender.sendCalls)
	// The point update happened before the template lookup failed; the two
	// steps are not transactional.
	assert.Equal(t, 1, members.updateCalls)
}

func TestBuyPushFailureLeavesBalanceUpdated(t *testing.T) {
	members := newFakeMemberStore()
	members.records["U123"] = &member.Record{UserID: "U123", BarcodeNum: 1234567890123, Point: 5}
	sender := &fakeSender{sendErr: errors.New("push unavailable")}
	svc := newTestService(t, members, testCatalog(), &fakeTokenStore{token: "tok"}, sender)

	_, err := svc.Buy(context.Background(), "U123", "ja")
	require.Error(t, err)

	assert.Equal(t, 1, members.updateCalls)
	assert.Equal(t, int64(104), members.lastUpdatePoint)
}

func TestBuyEachCallComputesFromFreshRead(t *testing.T) {
	members := newFakeMemberStore()
	members.records["U123"] = &member.Record{UserID: "U123", BarcodeNum: 1234567890123, Point: 0}
	svc := newTestService(t, members, testCatalog(), &fakeTokenStore{token: "tok"}, &fakeSender{})

	_, err := svc.Buy(context.Background(), "U123", "ja")
	require.NoError(t, err)
	rec, err := svc.Buy(context.Background(), "U123", "ja")
	require.NoError(t, err)

	// 99 per purchase of the 1999 yen product.
	assert.Equal(t, int64(198), rec.Point)
}
