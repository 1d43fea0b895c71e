package contipay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contipay-be/internal/logger"
	"contipay-be/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type postFixture struct {
	transport *MockTransport
	repo      *MockRepository
	proc      *Processor
}

func newPostFixture() *postFixture {
	f := &postFixture{transport: new(MockTransport), repo: new(MockRepository)}
	f.proc = NewProcessor(testConfig(), f.transport, f.repo, new(MockCurrencies), new(MockAddresses), testLinks())
	return f
}

func sentTx() *Transaction {
	tx := pendingTx()
	tx.ID = 42
	tx.RequestBody = []byte(`{"amount":25.5}`)
	return tx
}

func (f *postFixture) reply(tx *Transaction, action Action, method string, resp *RawResponse, err error) {
	f.transport.On("Send", mock.Anything, method, action, testConfig().Credentials.Header(), tx.RequestBody).
		Return(resp, err).Once()
}

func TestPost_HostedAccepted(t *testing.T) {
	f := newPostFixture()
	tx := sentTx()
	body := `{"status":"Success","message":"Transaction initiated","statusCode":1,"contiPayRef":"CP-1","redirectUrl":"https://checkout.contipay.co.zw/x"}`

	f.reply(tx, ActionAcquire, http.MethodPut, &RawResponse{Status: http.StatusOK, Body: []byte(body)}, nil)
	f.repo.On("Save", mock.Anything, tx).Return(nil).Once()
	f.repo.On("RecordExchange", mock.Anything, mock.MatchedBy(func(ex *Exchange) bool {
		return ex.TransactionID == 42 && ex.HTTPStatus == http.StatusOK && ex.Outcome == "success" &&
			ex.Action == ActionAcquire && ex.Method == http.MethodPut
	})).Return(nil).Once()

	got := f.proc.Post(context.Background(), tx, ActionAcquire, http.MethodPut)

	assert.Same(t, tx, got)
	assert.Equal(t, StatusPending, tx.StatusCode)
	assert.Equal(t, "Transaction initiated", tx.Response)
	assert.Equal(t, "CP-1", tx.ContipayRef)
	assert.Equal(t, "https://checkout.contipay.co.zw/x", tx.RedirectURL)
	assert.JSONEq(t, body, tx.Data)
	assert.True(t, tx.HasResponse())
	f.repo.AssertNumberOfCalls(t, "Save", 1)
	f.repo.AssertExpectations(t)
	f.transport.AssertExpectations(t)
}

func TestPost_Declined(t *testing.T) {
	f := newPostFixture()
	tx := sentTx()

	f.reply(tx, ActionAcquire, http.MethodPost, &RawResponse{Status: http.StatusConflict, Body: []byte(`{"message":"Duplicate reference"}`)}, nil)
	f.repo.On("Save", mock.Anything, tx).Return(nil).Once()
	f.repo.On("RecordExchange", mock.Anything, mock.Anything).Return(nil)

	f.proc.Post(context.Background(), tx, ActionAcquire, http.MethodPost)

	assert.Equal(t, StatusDeclined, tx.StatusCode)
	assert.Equal(t, "Duplicate reference", tx.Response)
	assert.JSONEq(t, `{"message":"Duplicate reference"}`, tx.Data)
	f.repo.AssertNumberOfCalls(t, "Save", 1)
}

func TestPost_DeclineWithoutMessage(t *testing.T) {
	f := newPostFixture()
	tx := sentTx()

	f.reply(tx, ActionAcquire, http.MethodPost, &RawResponse{Status: http.StatusUnauthorized, Body: []byte(`not json`)}, nil)
	f.repo.On("Save", mock.Anything, tx).Return(nil)
	f.repo.On("RecordExchange", mock.Anything, mock.Anything).Return(nil)

	f.proc.Post(context.Background(), tx, ActionAcquire, http.MethodPost)

	assert.Equal(t, StatusDeclined, tx.StatusCode)
	assert.Contains(t, tx.Response, ErrUnexpectedResponse.Error())
}

func TestPost_ErrorShapedSuccessIsDeclined(t *testing.T) {
	f := newPostFixture()
	tx := sentTx()

	f.reply(tx, ActionAcquire, http.MethodPost, &RawResponse{Status: http.StatusOK, Body: []byte(`{"status":"Error","message":"Invalid provider"}`)}, nil)
	f.repo.On("Save", mock.Anything, tx).Return(nil)
	f.repo.On("RecordExchange", mock.Anything, mock.Anything).Return(nil)

	f.proc.Post(context.Background(), tx, ActionAcquire, http.MethodPost)

	assert.Equal(t, StatusDeclined, tx.StatusCode)
	assert.Equal(t, "Invalid provider", tx.Response)
}

func TestPost_Unexpected(t *testing.T) {
	f := newPostFixture()
	tx := sentTx()

	f.reply(tx, ActionAdjust, http.MethodPost, &RawResponse{Status: http.StatusInternalServerError, Body: []byte(`{"message":"db down"}`)}, nil)
	f.repo.On("Save", mock.Anything, tx).Return(nil)
	f.repo.On("RecordExchange", mock.Anything, mock.Anything).Return(nil)

	f.proc.Post(context.Background(), tx, ActionAdjust, http.MethodPost)

	assert.Equal(t, StatusError, tx.StatusCode)
	assert.Contains(t, tx.Response, "HTTP 500")
	assert.Contains(t, tx.Response, "db down")
}

func TestPost_MalformedSuccessBody(t *testing.T) {
	f := newPostFixture()
	tx := sentTx()

	f.reply(tx, ActionAcquire, http.MethodPut, &RawResponse{Status: http.StatusOK, Body: []byte(`<html>`)}, nil)
	f.repo.On("Save", mock.Anything, tx).Return(nil)
	f.repo.On("RecordExchange", mock.Anything, mock.Anything).Return(nil)

	f.proc.Post(context.Background(), tx, ActionAcquire, http.MethodPut)

	assert.Equal(t, StatusError, tx.StatusCode)
	assert.Equal(t, "<html>", tx.Data)
}

func TestPost_SuccessWithoutStatusCode(t *testing.T) {
	f := newPostFixture()
	tx := sentTx()

	f.reply(tx, ActionAcquire, http.MethodPut, &RawResponse{Status: http.StatusOK, Body: []byte(`{"message":"ok"}`)}, nil)
	f.repo.On("Save", mock.Anything, tx).Return(nil)
	f.repo.On("RecordExchange", mock.Anything, mock.Anything).Return(nil)

	f.proc.Post(context.Background(), tx, ActionAcquire, http.MethodPut)

	assert.Equal(t, StatusError, tx.StatusCode)
	assert.Contains(t, tx.Response, "missing statusCode")
}

func TestPost_TransportTimeout(t *testing.T) {
	f := newPostFixture()
	tx := sentTx()
	terr := &TransportError{Action: ActionAcquire, Err: context.DeadlineExceeded}

	f.reply(tx, ActionAcquire, http.MethodPut, nil, terr)
	f.repo.On("Save", mock.Anything, tx).Return(nil).Once()
	f.repo.On("RecordExchange", mock.Anything, mock.MatchedBy(func(ex *Exchange) bool {
		return ex.HTTPStatus == 0 && ex.Outcome == "transport_error"
	})).Return(nil)

	f.proc.Post(context.Background(), tx, ActionAcquire, http.MethodPut)

	assert.Equal(t, StatusError, tx.StatusCode)
	assert.Equal(t, terr.Error(), tx.Response)
	assert.Equal(t, initialData, tx.Data)
	assert.False(t, tx.HasResponse())
	f.repo.AssertExpectations(t)
}

func TestPost_EmptyBodyNeverSends(t *testing.T) {
	f := newPostFixture()
	tx := pendingTx()
	tx.ID = 3

	f.repo.On("Save", mock.Anything, tx).Return(nil).Once()
	f.repo.On("RecordExchange", mock.Anything, mock.Anything).Return(nil)

	f.proc.Post(context.Background(), tx, ActionResponse, http.MethodPost)

	assert.Equal(t, StatusError, tx.StatusCode)
	assert.Equal(t, ErrEmptyRequestBody.Error(), tx.Response)
	f.transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPost_SaveFailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	prev := logger.L()
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(prev) })

	f := newPostFixture()
	tx := sentTx()

	f.reply(tx, ActionAcquire, http.MethodPut, &RawResponse{Status: http.StatusOK, Body: []byte(`{"statusCode":2,"message":"paid"}`)}, nil)
	f.repo.On("Save", mock.Anything, tx).Return(ErrFailedSave).Once()
	f.repo.On("RecordExchange", mock.Anything, mock.Anything).Return(nil)

	got := f.proc.Post(context.Background(), tx, ActionAcquire, http.MethodPut)

	assert.Equal(t, StatusPaid, got.StatusCode)
	require.Equal(t, 1, logs.FilterMessage("failed to persist transaction after exchange").Len())
}

func TestPost_ExchangeLogFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	prev := logger.L()
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(prev) })

	f := newPostFixture()
	tx := sentTx()
	before := testutil.ToFloat64(metrics.ExchangeLogFailures)

	f.reply(tx, ActionResponse, http.MethodPost, &RawResponse{Status: http.StatusOK, Body: []byte(`{"statusCode":3,"message":"confirmed"}`)}, nil)
	f.repo.On("Save", mock.Anything, tx).Return(nil).Once()
	f.repo.On("RecordExchange", mock.Anything, mock.Anything).Return(errors.New("exchanges table locked")).Once()

	got := f.proc.Post(context.Background(), tx, ActionResponse, http.MethodPost)

	assert.Equal(t, StatusConfirmed, got.StatusCode)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ExchangeLogFailures))
	entries := logs.FilterMessage("failed to record exchange").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(42), entries[0].ContextMap()["transaction_id"])
	assert.Equal(t, "success", entries[0].ContextMap()["outcome"])
}

func TestPost_UnknownStatusSharesMetricLabel(t *testing.T) {
	f := newPostFixture()
	tx := sentTx()
	before := testutil.ToFloat64(metrics.TransactionStatus.WithLabelValues("unknown"))

	f.reply(tx, ActionResponse, http.MethodPost, &RawResponse{Status: http.StatusOK, Body: []byte(`{"statusCode":42,"message":"odd"}`)}, nil)
	f.repo.On("Save", mock.Anything, tx).Return(nil).Once()
	f.repo.On("RecordExchange", mock.Anything, mock.Anything).Return(nil)

	f.proc.Post(context.Background(), tx, ActionResponse, http.MethodPost)

	assert.Equal(t, Status(42), tx.StatusCode)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.TransactionStatus.WithLabelValues("unknown")))
}

func TestPost_RawDataKeepsFirstResponse(t *testing.T) {
	f := newPostFixture()
	tx := sentTx()
	first := `{"statusCode":1,"message":"initiated","contiPayRef":"CP-1"}`
	second := `{"statusCode":2,"message":"paid","correlator":"c-9"}`

	f.reply(tx, ActionAcquire, http.MethodPut, &RawResponse{Status: http.StatusOK, Body: []byte(first)}, nil)
	f.repo.On("Save", mock.Anything, tx).Return(nil)
	f.repo.On("RecordExchange", mock.Anything, mock.Anything).Return(nil)
	f.proc.Post(context.Background(), tx, ActionAcquire, http.MethodPut)

	f.proc.PrepareStatusInquiry(tx)
	f.reply(tx, ActionResponse, http.MethodPost, &RawResponse{Status: http.StatusOK, Body: []byte(second)}, nil)
	f.proc.Post(context.Background(), tx, ActionResponse, http.MethodPost)

	assert.Equal(t, StatusPaid, tx.StatusCode)
	assert.Equal(t, "paid", tx.Response)
	assert.Equal(t, "CP-1", tx.ContipayRef)
	assert.Equal(t, "c-9", tx.Correlator)
	assert.JSONEq(t, first, tx.Data)
	f.repo.AssertNumberOfCalls(t, "RecordExchange", 2)
}

func TestPost_UnsavedTransactionSkipsExchangeLog(t *testing.T) {
	f := newPostFixture()
	tx := sentTx()
	tx.ID = 0

	f.reply(tx, ActionAcquire, http.MethodPut, &RawResponse{Status: http.StatusOK, Body: []byte(`{"statusCode":1}`)}, nil)
	f.repo.On("Save", mock.Anything, tx).Return(errors.New("db gone"))

	f.proc.Post(context.Background(), tx, ActionAcquire, http.MethodPut)

	f.repo.AssertNotCalled(t, "RecordExchange", mock.Anything, mock.Anything)
}

func TestPost_AgainstGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/acquire/payment" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != testConfig().Credentials.Header() {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"bad credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"Success","message":"ok","statusCode":1,"redirectUrl":"https://pay/x"}`))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.TestURL = srv.URL
	cfg.Timeout = 2 * time.Second

	repo := new(MockRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("RecordExchange", mock.Anything, mock.Anything).Return(nil)

	proc := NewProcessor(cfg, NewClient(cfg), repo, new(MockCurrencies), new(MockAddresses), testLinks())

	tx := proc.Post(context.Background(), sentTx(), ActionAcquire, http.MethodPut)

	assert.Equal(t, StatusPending, tx.StatusCode)
	assert.Equal(t, "https://pay/x", tx.RedirectURL)
	repo.AssertExpectations(t)
}
