package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/washpoint-loyalty/internal/config"
	"github.com/washpoint-loyalty/internal/logger"
	"github.com/washpoint-loyalty/internal/models"
	"github.com/washpoint-loyalty/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupRouterTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.L = zap.NewNop()

	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := models.MigrateModels(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Metrics.Enabled = true
	c := provider.NewContainerWithDB(cfg, db)
	if _, _, err := c.LoyaltyConfigService.EnsureGlobalDefault(context.Background(), config.LoyaltyPolicyConfig{
		PointsPerBaht:      10,
		GoldThreshold:      100,
		PlatinumThreshold:  500,
		GoldMultiplier:     "1.5",
		PlatinumMultiplier: "2",
		StampsForFreeWash:  10,
	}); err != nil {
		t.Fatalf("seed global config failed: %v", err)
	}
	return SetupRouter(cfg, c)
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, headers map[string]string) envelope {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s http status want 200 got %d body=%s", method, path, w.Code, w.Body.String())
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func decodeData(t *testing.T, resp envelope, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Data, dest); err != nil {
		t.Fatalf("decode data failed: %v data=%s", err, string(resp.Data))
	}
}

func TestRouterEarnRedeemUseFlow(t *testing.T) {
	r := setupRouterTest(t)

	earn := doJSON(t, r, http.MethodPost, "/api/v1/staff/branches/1/earn", gin.H{
		"customer_id":  1,
		"gross_amount": "250.00",
		"source_ref":   "receipt-1",
	}, nil)
	if earn.StatusCode != 0 {
		t.Fatalf("earn failed: %+v", earn)
	}
	var earned struct {
		EarnedPoints int64 `json:"earned_points"`
		Balance      int64 `json:"balance"`
	}
	decodeData(t, earn, &earned)
	if earned.EarnedPoints != 25 || earned.Balance != 25 {
		t.Fatalf("unexpected earn result: %+v", earned)
	}

	created := doJSON(t, r, http.MethodPost, "/api/v1/staff/branches/1/templates", gin.H{
		"name":        "Free wash",
		"reward_type": "FREE_SERVICE",
		"points_cost": 20,
		"valid_days":  30,
	}, nil)
	if created.StatusCode != 0 {
		t.Fatalf("create template failed: %+v", created)
	}
	var template struct {
		ID uint `json:"id"`
	}
	decodeData(t, created, &template)

	listed := doJSON(t, r, http.MethodGet, "/api/v1/staff/branches/1/templates?is_active=true", nil, nil)
	var templates []struct {
		ID uint `json:"id"`
	}
	decodeData(t, listed, &templates)
	if len(templates) != 1 || templates[0].ID != template.ID {
		t.Fatalf("template list want the created template, got %+v", templates)
	}

	redeemPath := "/api/v1/customers/1/branches/1/redemptions"
	redeemed := doJSON(t, r, http.MethodPost, redeemPath, gin.H{"template_id": template.ID}, map[string]string{"Idempotency-Key": "k-1"})
	if redeemed.StatusCode != 0 {
		t.Fatalf("redeem failed: %+v", redeemed)
	}
	var coupon struct {
		Code   string `json:"code"`
		Status string `json:"status"`
	}
	decodeData(t, redeemed, &coupon)
	if coupon.Code == "" || coupon.Status != "AVAILABLE" {
		t.Fatalf("unexpected coupon: %+v", coupon)
	}

	replayed := doJSON(t, r, http.MethodPost, redeemPath, gin.H{"template_id": template.ID}, map[string]string{"Idempotency-Key": "k-1"})
	var replayCoupon struct {
		Code string `json:"code"`
	}
	decodeData(t, replayed, &replayCoupon)
	if replayCoupon.Code != coupon.Code {
		t.Fatalf("idempotent replay should return the same coupon, got %s want %s", replayCoupon.Code, coupon.Code)
	}

	insufficient := doJSON(t, r, http.MethodPost, redeemPath, gin.H{"template_id": template.ID}, nil)
	if insufficient.StatusCode != 422 {
		t.Fatalf("second redeem want 422 got %+v", insufficient)
	}
	var errData struct {
		ErrorCode string `json:"error_code"`
	}
	decodeData(t, insufficient, &errData)
	if errData.ErrorCode != "INSUFFICIENT_POINTS" {
		t.Fatalf("error_code want INSUFFICIENT_POINTS got %s", errData.ErrorCode)
	}

	points := doJSON(t, r, http.MethodGet, "/api/v1/customers/1/branches/1/points", nil, nil)
	var balance struct {
		Balance     int64 `json:"balance"`
		TotalEarned int64 `json:"total_earned"`
	}
	decodeData(t, points, &balance)
	if balance.Balance != 5 || balance.TotalEarned != 25 {
		t.Fatalf("unexpected balance: %+v", balance)
	}

	used := doJSON(t, r, http.MethodPost, "/api/v1/staff/branches/1/coupons/use", gin.H{"code": coupon.Code}, nil)
	if used.StatusCode != 0 {
		t.Fatalf("use coupon failed: %+v", used)
	}
	again := doJSON(t, r, http.MethodPost, "/api/v1/staff/branches/1/coupons/use", gin.H{"code": coupon.Code}, nil)
	decodeData(t, again, &errData)
	if again.StatusCode != 409 || errData.ErrorCode != "COUPON_ALREADY_USED" {
		t.Fatalf("second use want 409 COUPON_ALREADY_USED got %+v", again)
	}
}

func TestRouterRejectsInvalidInput(t *testing.T) {
	r := setupRouterTest(t)

	badID := doJSON(t, r, http.MethodGet, "/api/v1/customers/abc/branches/1/points", nil, nil)
	if badID.StatusCode != 400 {
		t.Fatalf("invalid customer id want 400 got %+v", badID)
	}
	badAmount := doJSON(t, r, http.MethodPost, "/api/v1/staff/branches/1/earn", gin.H{
		"customer_id":  1,
		"gross_amount": "-5",
	}, nil)
	if badAmount.StatusCode != 400 {
		t.Fatalf("negative amount want 400 got %+v", badAmount)
	}
	badPhone := doJSON(t, r, http.MethodPost, "/api/v1/staff/customers", gin.H{"phone": "12"}, nil)
	if badPhone.StatusCode != 400 {
		t.Fatalf("invalid phone want 400 got %+v", badPhone)
	}
	queued := doJSON(t, r, http.MethodPost, "/api/v1/staff/branches/1/earn?async=true", gin.H{
		"customer_id":  1,
		"gross_amount": "100",
		"source_ref":   "receipt-async",
	}, nil)
	if queued.StatusCode != 503 {
		t.Fatalf("async earn without queue want 503 got %+v", queued)
	}
}

func TestRouterCustomerAndBranchIdentity(t *testing.T) {
	r := setupRouterTest(t)

	registered := doJSON(t, r, http.MethodPost, "/api/v1/staff/customers", gin.H{"phone": "081-234-5678", "display_name": "Nok"}, nil)
	if registered.StatusCode != 0 {
		t.Fatalf("register customer failed: %+v", registered)
	}
	found := doJSON(t, r, http.MethodGet, "/api/v1/staff/customers?phone=0812345678", nil, nil)
	if found.StatusCode != 0 {
		t.Fatalf("lookup customer failed: %+v", found)
	}

	branch := doJSON(t, r, http.MethodPost, "/api/v1/staff/branches", gin.H{"name": "Ratchada"}, nil)
	if branch.StatusCode != 0 {
		t.Fatalf("create branch failed: %+v", branch)
	}
	bySlug := doJSON(t, r, http.MethodGet, "/api/v1/public/branches/slug/ratchada", nil, nil)
	var b struct {
		Slug string `json:"slug"`
	}
	decodeData(t, bySlug, &b)
	if b.Slug != "ratchada" {
		t.Fatalf("branch slug want ratchada got %+v", bySlug)
	}
	missing := doJSON(t, r, http.MethodGet, "/api/v1/public/branches/slug/nowhere", nil, nil)
	if missing.StatusCode != 404 {
		t.Fatalf("missing branch want 404 got %+v", missing)
	}
}

func TestRouterHealthAndMetrics(t *testing.T) {
	r := setupRouterTest(t)

	health := doJSON(t, r, http.MethodGet, "/healthz", nil, nil)
	if health.StatusCode != 0 {
		t.Fatalf("healthz failed: %+v", health)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("http_requests_total")) {
		t.Fatalf("metrics endpoint should expose http_requests_total, code=%d", w.Code)
	}
}
