package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/storefront-app/models"
	"gorm.io/gorm"
)

// Catalog -> sumber harga menu saat ini
type Catalog interface {
	FindMenus(ctx context.Context, ids []uint) (map[uint]models.Menu, error)
}

type GormCatalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

func (c *GormCatalog) FindMenus(ctx context.Context, ids []uint) (map[uint]models.Menu, error) {
	var menus []models.Menu
	if err := c.db.WithContext(ctx).Where("id IN ?", ids).Find(&menus).Error; err != nil {
		return nil, err
	}
	result := make(map[uint]models.Menu, len(menus))
	for _, m := range menus {
		result[m.ID] = m
	}
	return result, nil
}

type CartItemRequest struct {
	MenuID   uint     `json:"menu_id"`
	Quantity int      `json:"quantity"`
	Size     string   `json:"size,omitempty"`
	Addons   []string `json:"addons,omitempty"`
}

type CartRequest struct {
	Items       []CartItemRequest `json:"items"`
	CouponCode  string            `json:"coupon_code,omitempty"`
	Destination *Coordinates      `json:"destination,omitempty"`
	Donation    decimal.Decimal   `json:"donation"`
}

// Quote -> hasil pricing cart: snapshot item + rincian harga
type Quote struct {
	Items       []models.OrderLineItem `json:"items"`
	Breakdown   Breakdown              `json:"breakdown"`
	Delivery    *DeliveryQuote         `json:"delivery,omitempty"`
	Destination *Coordinates           `json:"destination,omitempty"`
	Currency    string                 `json:"currency"`
}

type PricingConfig struct {
	Currency    string
	PlatformFee PlatformFeePolicy
	Tax         TaxPolicy
	Delivery    FeeSchedule
	Origin      Coordinates
}

type PricingService struct {
	catalog Catalog
	coupons *CouponService
	cfg     PricingConfig
	now     func() time.Time
}

func NewPricingService(catalog Catalog, coupons *CouponService, cfg PricingConfig) *PricingService {
	return &PricingService{
		catalog: catalog,
		coupons: coupons,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *PricingService) Currency() string {
	return s.cfg.Currency
}

// Price menghitung quote dari harga katalog saat ini
func (s *PricingService) Price(ctx context.Context, req CartRequest) (*Quote, error) {
	if len(req.Items) == 0 {
		return nil, validationError("cart is empty")
	}

	ids := make([]uint, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.MenuID)
	}
	menus, err := s.catalog.FindMenus(ctx, ids)
	if err != nil {
		return nil, upstreamError("failed to load menu", err)
	}

	lines := make([]models.OrderLineItem, 0, len(req.Items))
	for _, item := range req.Items {
		line, err := buildLine(menus, item)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	subtotal, err := Subtotal(lines)
	if err != nil {
		return nil, err
	}

	input := BreakdownInput{
		Items:       lines,
		PlatformFee: s.cfg.PlatformFee,
		Tax:         s.cfg.Tax,
		Donation:    req.Donation,
	}

	if req.CouponCode != "" {
		coupon, err := s.coupons.Resolve(ctx, req.CouponCode, subtotal, s.now())
		if err != nil {
			return nil, err
		}
		input.Discount = coupon.Discount
		input.DiscountCode = coupon.Code
	}

	quote := &Quote{Items: lines, Currency: s.cfg.Currency}
	if req.Destination != nil {
		delivery, err := QuoteDelivery(s.cfg.Origin, *req.Destination, subtotal, s.cfg.Delivery)
		if err != nil {
			return nil, err
		}
		input.DeliveryFee = decimal.NewNullDecimal(delivery.Fee)
		quote.Delivery = &delivery
		dest := *req.Destination
		quote.Destination = &dest
	}

	breakdown, err := Calculate(input)
	if err != nil {
		return nil, err
	}
	quote.Breakdown = breakdown
	return quote, nil
}

// buildLine -> ukuran mengganti harga dasar, addon menambah harga
func buildLine(menus map[uint]models.Menu, item CartItemRequest) (models.OrderLineItem, error) {
	menu, ok := menus[item.MenuID]
	if !ok || !menu.IsAvailable {
		return models.OrderLineItem{}, validationError("menu item %d is not available", item.MenuID)
	}
	if item.Quantity <= 0 {
		return models.OrderLineItem{}, validationError("quantity for %q must be positive", menu.Name)
	}

	price := menu.Price
	if item.Size != "" {
		size, found := menu.FindSize(item.Size)
		if !found {
			return models.OrderLineItem{}, validationError("size %q is not offered for %q", item.Size, menu.Name)
		}
		price = size.Price
	}
	for _, name := range item.Addons {
		addon, found := menu.FindAddon(name)
		if !found {
			return models.OrderLineItem{}, validationError("addon %q is not offered for %q", name, menu.Name)
		}
		price = price.Add(addon.Price)
	}

	return models.OrderLineItem{
		MenuID:    menu.ID,
		Name:      menu.Name,
		UnitPrice: price,
		Quantity:  item.Quantity,
		Size:      item.Size,
		Addons:    item.Addons,
	}, nil
}
