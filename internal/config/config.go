package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Config is the whole app configuration.
type Config struct {
	Port string // server port (8080)

	GoEnv     string // dev/prod
	APIDomain string // API domain (cookies, CORS)
	FEURL     string // frontend URL (CORS)

	FreeShippingThreshold decimal.Decimal  // minimum subtotal for free shipping
	FlatShippingFee       decimal.Decimal  // fee charged below the threshold
	CouponCodes           map[string]int64 // CODE -> discount percent
}

// Load reads environment variables. The pricing knobs fall back to the
// marketplace defaults (threshold 2000, fee 99, FIRST10/BATTWHEELS10 at 10%).
func Load() (Config, error) {
	cfg := Config{
		Port: os.Getenv("PORT"),

		GoEnv:     os.Getenv("GO_ENV"),
		APIDomain: os.Getenv("API_DOMAIN"),
		FEURL:     os.Getenv("FE_URL"),

		FreeShippingThreshold: decimal.NewFromInt(2000),
		FlatShippingFee:       decimal.NewFromInt(99),
		CouponCodes: map[string]int64{
			"FIRST10":      10,
			"BATTWHEELS10": 10,
		},
	}

	// required
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}

	if v := os.Getenv("FREE_SHIPPING_THRESHOLD"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return Config{}, fmt.Errorf("FREE_SHIPPING_THRESHOLD must be decimal: %w", err)
		}
		cfg.FreeShippingThreshold = d
	}
	if v := os.Getenv("FLAT_SHIPPING_FEE"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return Config{}, fmt.Errorf("FLAT_SHIPPING_FEE must be decimal: %w", err)
		}
		cfg.FlatShippingFee = d
	}

	// COUPON_CODES=FIRST10:10,BATTWHEELS10:10
	if v := os.Getenv("COUPON_CODES"); v != "" {
		codes, err := parseCouponCodes(v)
		if err != nil {
			return Config{}, err
		}
		cfg.CouponCodes = codes
	}

	return cfg, nil
}

func parseCouponCodes(v string) (map[string]int64, error) {
	codes := map[string]int64{}
	for _, pair := range strings.Split(v, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, pctStr, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("COUPON_CODES entry %q must be CODE:PERCENT", pair)
		}
		pct, err := strconv.ParseInt(strings.TrimSpace(pctStr), 10, 64)
		if err != nil || pct <= 0 || pct > 100 {
			return nil, fmt.Errorf("COUPON_CODES entry %q has invalid percent", pair)
		}
		codes[strings.ToUpper(strings.TrimSpace(code))] = pct
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("COUPON_CODES has no entries")
	}
	return codes, nil
}
