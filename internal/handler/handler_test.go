package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"donation-settle-api/internal/callback"
	"donation-settle-api/internal/constant"
	"donation-settle-api/internal/dto"
	"donation-settle-api/internal/fee"
	"donation-settle-api/internal/middleware"
	"donation-settle-api/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeDonations struct {
	lastReq dto.CreateDonationReq
	err     error
}

func (f *fakeDonations) Quote(req dto.FeeQuoteReq) (fee.Quote, error) {
	return fee.Quote{Donation: req.Amount, Charge: req.Amount + 20, PlatformFee: 20}, nil
}

func (f *fakeDonations) Submit(_ context.Context, req dto.CreateDonationReq) (*dto.DonationVo, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.DonationVo{DonationID: 1, OrgID: req.OrgID, Status: "pending"}, nil
}

type fakeSplits struct {
	actor string
	id    uint64
	err   error
}

func (f *fakeSplits) Create(_ context.Context, actor string, req dto.CreateSplitReq) (*dto.SplitVo, error) {
	f.actor = actor
	return &dto.SplitVo{ProposalID: 9, ConnectionID: req.ConnectionID}, f.err
}

func (f *fakeSplits) Accept(_ context.Context, actor string, id uint64) (*dto.SplitVo, error) {
	f.actor, f.id = actor, id
	if f.err != nil {
		return nil, f.err
	}
	return &dto.SplitVo{ProposalID: id, Status: "accepted"}, nil
}

func (f *fakeSplits) Reject(ctx context.Context, actor string, id uint64) (*dto.SplitVo, error) {
	return f.Accept(ctx, actor, id)
}

func (f *fakeSplits) Get(ctx context.Context, actor string, id uint64) (*dto.SplitVo, error) {
	return f.Accept(ctx, actor, id)
}

func (f *fakeSplits) ListForOrganization(_ context.Context, actor string, _ uint64) ([]dto.SplitVo, error) {
	f.actor = actor
	return nil, f.err
}

type fakeDistributions struct {
	entries []dto.DistributionEntryReq
	err     error
}

func (f *fakeDistributions) Replace(_ context.Context, _ string, orgID uint64, entries []dto.DistributionEntryReq) (*dto.DistributionVo, error) {
	f.entries = entries
	if f.err != nil {
		return nil, f.err
	}
	return &dto.DistributionVo{OrgID: orgID}, nil
}

func (f *fakeDistributions) Get(_ context.Context, _ string, orgID uint64) (*dto.DistributionVo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.DistributionVo{OrgID: orgID}, nil
}

type fakeReconciler struct {
	rail string
	out  callback.Outcome
	err  error
}

func (f *fakeReconciler) Handle(_ context.Context, rail callback.Rail, _ http.Header, _ []byte) (callback.Outcome, error) {
	f.rail = rail.Name()
	return f.out, f.err
}

type env struct {
	router *gin.Engine
	don    *fakeDonations
	split  *fakeSplits
	dist   *fakeDistributions
	rec    *fakeReconciler
}

func newEnv() *env {
	e := &env{don: &fakeDonations{}, split: &fakeSplits{}, dist: &fakeDistributions{}, rec: &fakeReconciler{out: callback.OutcomeApplied}}
	log := quietLogger()
	e.router = gin.New()
	e.router.Use(middleware.Trace())
	Register(e.router, Handlers{
		Donations:     NewDonationHandler(e.don, log),
		Splits:        NewSplitHandler(e.split, log),
		Distributions: NewDistributionHandler(e.dist, log),
		Webhooks:      NewWebhookHandler(e.rec, callback.NewBankRail("b"), callback.NewCardRail("c", time.Minute), log),
	})
	return e
}

func (e *env) do(method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, utils.Response) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	var resp utils.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestQuote(t *testing.T) {
	e := newEnv()
	w, resp := e.do(http.MethodPost, "/api/v1/fees/quote", `{"amount":2000,"policy":"donor_platform"}`, nil)
	if w.Code != http.StatusOK || resp.Code != constant.CodeSuccess || resp.TraceID == "" {
		t.Fatalf("status=%d resp=%+v", w.Code, resp)
	}
}

func TestQuoteRejectsUnknownPolicy(t *testing.T) {
	e := newEnv()
	w, resp := e.do(http.MethodPost, "/api/v1/fees/quote", `{"amount":2000,"policy":"nobody"}`, nil)
	if w.Code != http.StatusBadRequest || resp.Code != constant.CodeInvalidParams {
		t.Fatalf("status=%d resp=%+v", w.Code, resp)
	}
}

func TestCreateDonationPassesIdempotencyKey(t *testing.T) {
	e := newEnv()
	body := `{"amount":2000,"org_id":"42","donor_email":"d@example.org","policy":"org_pays"}`
	w, _ := e.do(http.MethodPost, "/api/v1/donations", body, map[string]string{IdempotencyHeader: "key-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if e.don.lastReq.IdempotencyKey != "key-1" || e.don.lastReq.OrgID != 42 {
		t.Fatalf("req = %+v", e.don.lastReq)
	}
}

func TestErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   int
	}{
		{constant.NewError(constant.CodeDuplicateRequest), http.StatusConflict, constant.CodeDuplicateRequest},
		{constant.ErrProcessor, http.StatusBadGateway, constant.CodeProcessorError},
		{constant.NewError(constant.CodeDonationAmountInvalid), http.StatusBadRequest, constant.CodeDonationAmountInvalid},
		{errors.New("boom"), http.StatusInternalServerError, constant.CodeSystemError},
	}
	for _, tc := range cases {
		e := newEnv()
		e.don.err = tc.err
		body := `{"amount":2000,"org_id":"42","donor_email":"d@example.org","policy":"org_pays"}`
		w, resp := e.do(http.MethodPost, "/api/v1/donations", body, nil)
		if w.Code != tc.status || resp.Code != tc.code {
			t.Errorf("%v: status=%d code=%d", tc.err, w.Code, resp.Code)
		}
	}
}

func TestInternalErrorMessageHidden(t *testing.T) {
	e := newEnv()
	e.don.err = constant.Newf(constant.CodeDatabaseError, "dial tcp 10.0.0.5:3306: refused")
	body := `{"amount":2000,"org_id":"42","donor_email":"d@example.org","policy":"org_pays"}`
	_, resp := e.do(http.MethodPost, "/api/v1/donations", body, nil)
	if resp.Msg != "Database error" {
		t.Fatalf("msg = %q", resp.Msg)
	}
}

func TestSplitAcceptUsesActorHeader(t *testing.T) {
	e := newEnv()
	w, _ := e.do(http.MethodPost, "/api/v1/splits/77/accept", "", map[string]string{middleware.ActorHeader: "bob"})
	if w.Code != http.StatusOK || e.split.actor != "bob" || e.split.id != 77 {
		t.Fatalf("status=%d actor=%q id=%d", w.Code, e.split.actor, e.split.id)
	}
}

func TestSplitErrors(t *testing.T) {
	e := newEnv()
	e.split.err = constant.ErrAccessDenied
	if w, _ := e.do(http.MethodPost, "/api/v1/splits/77/reject", "", nil); w.Code != http.StatusForbidden {
		t.Fatalf("denied status = %d", w.Code)
	}
	e.split.err = constant.ErrProposalMissing
	if w, _ := e.do(http.MethodGet, "/api/v1/splits/77", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d", w.Code)
	}
	if w, _ := e.do(http.MethodGet, "/api/v1/splits/abc", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", w.Code)
	}
}

func TestListSplitsReturnsEmptyArray(t *testing.T) {
	e := newEnv()
	w, _ := e.do(http.MethodGet, "/api/v1/organizations/5/splits", "", nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"data":[]`)) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestReplaceDistribution(t *testing.T) {
	e := newEnv()
	body := `{"entries":[{"percentage":"60","account_ref":"ops"},{"percentage":"40","account_ref":"reserve"}]}`
	w, _ := e.do(http.MethodPut, "/api/v1/organizations/5/distribution", body, nil)
	if w.Code != http.StatusOK || len(e.dist.entries) != 2 || e.dist.entries[1].AccountRef != "reserve" {
		t.Fatalf("status=%d entries=%+v", w.Code, e.dist.entries)
	}
	e.dist.err = constant.ErrFeatureDisabled
	if w, _ := e.do(http.MethodGet, "/api/v1/organizations/5/distribution", "", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("disabled status = %d", w.Code)
	}
}

func TestWebhookStatuses(t *testing.T) {
	cases := []struct {
		path   string
		err    error
		status int
		rail   string
	}{
		{"/webhooks/bank", nil, http.StatusOK, "bank"},
		{"/webhooks/card", nil, http.StatusOK, "card"},
		{"/webhooks/card", constant.ErrSignature, http.StatusUnauthorized, "card"},
		{"/webhooks/bank", errors.New("db down"), http.StatusInternalServerError, "bank"},
	}
	for _, tc := range cases {
		e := newEnv()
		e.rec.err = tc.err
		w, _ := e.do(http.MethodPost, tc.path, `{"id":"evt"}`, nil)
		if w.Code != tc.status || e.rec.rail != tc.rail {
			t.Errorf("%s %v: status=%d rail=%s", tc.path, tc.err, w.Code, e.rec.rail)
		}
	}
}

func TestWebhookIgnoredStillAcks(t *testing.T) {
	e := newEnv()
	e.rec.out = callback.OutcomeIgnored
	w, _ := e.do(http.MethodPost, "/webhooks/bank", `{}`, nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"outcome":"ignored"`)) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}
