// Package wechatpay is a stand-in for the WeChat Pay JSAPI. It generates
// merchant transaction numbers and prepay ids, and signs the parameters a
// mini-program passes to wx.requestPayment. No network calls are made.
package wechatpay

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/ruizhu/shopapi/config"
)

const (
	TransactionPrefix = "PAY"
	PrepayPrefix      = "wx"
	SignTypeMD5       = "MD5"
	TradeTypeJSAPI    = "JSAPI"

	// TradeStateSuccess is the trade_state of a paid transaction.
	TradeStateSuccess = "SUCCESS"
)

// Gateway is the part of the payment provider the shop depends on.
type Gateway interface {
	// TransactionNo returns a fresh merchant transaction number.
	TransactionNo() string
	// Prepay opens a transaction and returns the client payment parameters.
	Prepay(ctx context.Context, req PrepayRequest) (*PrepayResult, error)
}

type PrepayRequest struct {
	TransactionNo string
	Amount        float64
	Description   string
}

// JSAPIParams are handed to the client to launch payment.
type JSAPIParams struct {
	AppID     string `json:"appId"`
	TimeStamp string `json:"timeStamp"`
	NonceStr  string `json:"nonceStr"`
	Package   string `json:"package"`
	SignType  string `json:"signType"`
	PaySign   string `json:"paySign"`
}

// PrepayResult mirrors a unified-order reply: the merchant and app it was
// issued for, the prepay id, and the parameters the client signs with.
type PrepayResult struct {
	AppID     string      `json:"appid"`
	MchID     string      `json:"mch_id"`
	TradeType string      `json:"trade_type"`
	PrepayID  string      `json:"prepay_id"`
	Params    JSAPIParams `json:"jsapi"`
}

// MockGateway fabricates prepay ids and signatures locally.
type MockGateway struct {
	appID  string
	mchID  string
	apiKey string

	now    func() time.Time
	random func(n int) string
}

func NewMockGateway(cfg config.WeChatConfig) *MockGateway {
	return &MockGateway{
		appID:  cfg.AppID,
		mchID:  cfg.MchID,
		apiKey: cfg.APIKey,
		now:    time.Now,
		random: func(n int) string { return lo.RandomString(n, lo.AlphanumericCharset) },
	}
}

// TransactionNo is "PAY" + unix milliseconds + 8 random alphanumerics.
func (g *MockGateway) TransactionNo() string {
	return TransactionPrefix + strconv.FormatInt(g.now().UnixMilli(), 10) + g.random(8)
}

// Prepay returns a "wx" + 32 alphanumerics prepay id and its signed
// JSAPI parameters.
func (g *MockGateway) Prepay(ctx context.Context, req PrepayRequest) (*PrepayResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.TransactionNo == "" {
		return nil, fmt.Errorf("wechatpay: prepay: empty transaction number")
	}

	prepayID := PrepayPrefix + g.random(32)
	params := JSAPIParams{
		AppID:     g.appID,
		TimeStamp: strconv.FormatInt(g.now().Unix(), 10),
		NonceStr:  g.random(32),
		Package:   "prepay_id=" + prepayID,
		SignType:  SignTypeMD5,
	}
	params.PaySign = Sign(params, g.apiKey)
	return &PrepayResult{
		AppID:     g.appID,
		MchID:     g.mchID,
		TradeType: TradeTypeJSAPI,
		PrepayID:  prepayID,
		Params:    params,
	}, nil
}

// Sign returns the upper-case hex MD5 of the canonical JSAPI sign string.
func Sign(p JSAPIParams, apiKey string) string {
	s := fmt.Sprintf("appId=%s&nonceStr=%s&package=%s&signType=%s&timeStamp=%s&key=%s",
		p.AppID, p.NonceStr, p.Package, p.SignType, p.TimeStamp, apiKey)
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Notification is the subset of a payment callback the shop reads.
type Notification struct {
	OutTradeNo    string
	TradeState    string
	TransactionID string
}

// ParseNotification extracts the known fields from a free-form callback
// payload. Missing or non-scalar values become "".
func ParseNotification(payload map[string]interface{}) Notification {
	return Notification{
		OutTradeNo:    cast.ToString(payload["out_trade_no"]),
		TradeState:    cast.ToString(payload["trade_state"]),
		TransactionID: cast.ToString(payload["transaction_id"]),
	}
}

// Paid reports whether the notification announces a successful trade.
func (n Notification) Paid() bool {
	return n.TradeState == TradeStateSuccess
}
