package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"membersCardAPI/internal/apperrors"
	"membersCardAPI/internal/line"
	"membersCardAPI/internal/receipt"
	"membersCardAPI/internal/types/member"
	"membersCardAPI/internal/types/product"
	"membersCardAPI/utils"
)

// Barcode candidates are uniform 13-digit numbers.
const (
	barcodeMin  = 1_000_000_000_000
	barcodeSpan = 9_000_000_000_000
)

// MemberStore is the membership-record slice of the data store.
type MemberStore interface {
	Get(ctx context.Context, userID string) (*member.Record, error)
	Put(ctx context.Context, rec *member.Record) error
	UpdatePointExpiration(ctx context.Context, userID string, point int64, expirationDate string) error
	BarcodeExists(ctx context.Context, barcodeNum int64) (bool, error)
}

// ProductStore is the read-only product catalog.
type ProductStore interface {
	Get(ctx context.Context, productID int64) (*product.Record, error)
	Count(ctx context.Context) (int64, error)
}

// TokenStore resolves channel access tokens.
type TokenStore interface {
	GetAccessToken(ctx context.Context, channelID string) (string, error)
}

// MessageSender delivers the receipt message. The LINE client implements
// it; tests inject a fake.
type MessageSender interface {
	SendPushMessage(ctx context.Context, accessToken, to string, message *line.FlexMessage) error
}

// MembersCardService owns the membership record lifecycle: creating members
// on first contact and applying purchases (point award, expiration reset,
// receipt push).
type MembersCardService struct {
	members  MemberStore
	products ProductStore
	tokens   TokenStore
	sender   MessageSender
	logger   *zap.Logger

	oaChannelID string
	liffID      string

	now func() time.Time
	rng *rand.Rand
}

func NewMembersCardService(members MemberStore, products ProductStore, tokens TokenStore, sender MessageSender, oaChannelID, liffID string, logger *zap.Logger) *MembersCardService {
	return &MembersCardService{
		members:     members,
		products:    products,
		tokens:      tokens,
		sender:      sender,
		logger:      logger,
		oaChannelID: oaChannelID,
		liffID:      liffID,
		now:         utils.NowJST,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Init returns the caller's membership record, creating it on first
// contact. Calling Init for an existing member performs no writes and
// returns the stored record unchanged.
func (s *MembersCardService) Init(ctx context.Context, userID string) (*member.Record, error) {
	rec, err := s.members.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return rec, nil
	}
	return s.createMember(ctx, userID)
}

func (s *MembersCardService) createMember(ctx context.Context, userID string) (*member.Record, error) {
	barcodeNum, err := s.generateBarcode(ctx)
	if err != nil {
		return nil, err
	}

	rec := &member.Record{
		UserID:              userID,
		BarcodeNum:          barcodeNum,
		Point:               0,
		PointExpirationDate: "",
	}
	if err := s.members.Put(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("created membership record",
		zap.String("userId", userID),
		zap.Int64("barcodeNum", barcodeNum))
	return rec, nil
}

// generateBarcode draws a candidate barcode and checks the barcode index
// for a collision. A collision triggers exactly one redraw; the second
// candidate is used without another index check. Uniqueness is therefore
// best effort at this layer — the conditional insert on userId protects
// the record itself, not the barcode.
func (s *MembersCardService) generateBarcode(ctx context.Context) (int64, error) {
	candidate := s.drawBarcode()
	exists, err := s.members.BarcodeExists(ctx, candidate)
	if err != nil {
		return 0, err
	}
	if !exists {
		return candidate, nil
	}

	s.logger.Warn("barcode collision, redrawing once", zap.Int64("barcodeNum", candidate))
	return s.drawBarcode(), nil
}

func (s *MembersCardService) drawBarcode() int64 {
	return barcodeMin + s.rng.Int63n(barcodeSpan)
}

// Buy simulates a purchase of a random catalog product: awards
// floor(unitPrice*0.05) points, resets the point expiration to one year
// from now, persists both, and pushes the flex receipt. The point update
// and the push are not transactional — a failed push leaves the updated
// balance in place with no receipt sent.
func (s *MembersCardService) Buy(ctx context.Context, userID, language string) (*member.Record, error) {
	tableSize, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}
	if tableSize < 1 {
		return nil, errors.New("product table is empty")
	}

	productID := s.rng.Int63n(tableSize) + 1
	prod, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	rec, err := s.members.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("buy for user %s: %w", userID, apperrors.ErrMemberNotFound)
	}

	addPoint := receipt.AwardPoint(prod.UnitPrice)
	newPoint := rec.Point + addPoint

	now := s.now()
	expirationDate := now.AddDate(1, 0, 0).Format(utils.DateLayout)

	if err := s.members.UpdatePointExpiration(ctx, userID, newPoint, expirationDate); err != nil {
		return nil, err
	}
	rec.Point = newPoint
	rec.PointExpirationDate = expirationDate

	s.logger.Info("awarded purchase points",
		zap.String("userId", userID),
		zap.Int64("productId", productID),
		zap.Int64("addPoint", addPoint),
		zap.Int64("point", newPoint),
		zap.String("pointExpirationDate", expirationDate))

	accessToken, err := s.tokens.GetAccessToken(ctx, s.oaChannelID)
	if err != nil {
		return nil, err
	}

	message, err := receipt.BuildFlexReceipt(prod, language, s.liffID, now, 0)
	if err != nil {
		return nil, err
	}
	if err := s.sender.SendPushMessage(ctx, accessToken, userID, message); err != nil {
		return nil, err
	}

	return rec, nil
}
