package contipay

import (
	"context"
	"fmt"
	"strconv"

	"contipay-be/internal/address"
	"contipay-be/internal/currency"
	"contipay-be/internal/logger"
	"contipay-be/internal/metrics"

	"go.uber.org/zap"
)

type CurrencyLookup interface {
	CurrencyByID(ctx context.Context, id int64) (*currency.Currency, error)
}

type AddressLookup interface {
	AddressForCustomer(ctx context.Context, customerID, addressID int64) (*address.Address, error)
}

// Processor builds payloads for a transaction, exchanges them with ContiPay
// and records the outcome. It keeps no per-transaction state and may be shared
// between goroutines; a single Transaction must not be.
type Processor struct {
	cfg        Config
	transport  Transport
	repo       Repository
	currencies CurrencyLookup
	addresses  AddressLookup
	links      LinkBuilder
}

func NewProcessor(
	cfg Config,
	transport Transport,
	repo Repository,
	currencies CurrencyLookup,
	addresses AddressLookup,
	links LinkBuilder,
) *Processor {
	return &Processor{
		cfg:        cfg,
		transport:  transport,
		repo:       repo,
		currencies: currencies,
		addresses:  addresses,
		links:      links,
	}
}

// ----------------- Payload builders -----------------

// PrepareHosted fills tx from the cart and builds the hosted-checkout payload.
// The transaction is saved first so the callback URLs can reference it.
func (p *Processor) PrepareHosted(ctx context.Context, tx *Transaction, cart Cart, customer Customer, opts HostedOptions) (*Transaction, error) {
	cur, err := p.currencies.CurrencyByID(ctx, cart.CurrencyID)
	if err != nil {
		return nil, notReady("currency", err)
	}

	var payloadCustomer *PayloadCustomer
	if !customer.IsGuest {
		addr, err := p.addresses.AddressForCustomer(ctx, customer.ID, cart.DeliveryAddressID)
		if err != nil {
			return nil, notReady("address", err)
		}
		payloadCustomer = newPayloadCustomer(customer, addr, nil)
	}

	tx.CartID = cart.ID
	tx.CustomerID = customer.ID
	tx.CurrencyID = cur.ID
	tx.MerchantAmount = cart.Total
	tx.Description = "Shopping Cart Order #" + strconv.FormatInt(cart.ID, 10)

	if err := p.repo.Save(ctx, tx); err != nil {
		return nil, err
	}

	webhookURL, err := p.links.WebhookURL(tx)
	if err != nil {
		return nil, p.abandon(ctx, tx, err)
	}
	cancelURL, err := p.links.CancelURL(tx)
	if err != nil {
		return nil, p.abandon(ctx, tx, err)
	}

	payload := HostedPayment{
		WebhookURL:   webhookURL,
		Type:         paymentTypeCharge,
		Amount:       amountNumber(tx.MerchantAmount),
		Reference:    tx.MerchantRef,
		Description:  tx.Description,
		MerchantID:   p.cfg.MerchantID,
		SuccessURL:   p.links.SuccessURL(tx, customer),
		CancelURL:    cancelURL,
		CurrencyCode: cur.ISOCode,
	}
	if payloadCustomer != nil {
		if p.cfg.AllowOfflinePayment {
			payload.COC, payload.COD = offlineFlags(opts.IsDelivery)
		}
		payload.Customer = payloadCustomer
	}

	if err := tx.setRequest(payload); err != nil {
		return nil, notReady("encode", err)
	}
	return tx, nil
}

// PrepareSeamless builds a direct wallet/card charge for a placed order.
func (p *Processor) PrepareSeamless(ctx context.Context, tx *Transaction, order *Order, customer Customer, account Account, method Method) (*Transaction, error) {
	if order == nil {
		return nil, notReady("order", ErrOrderMissing)
	}

	cur, err := p.currencies.CurrencyByID(ctx, order.CurrencyID)
	if err != nil {
		return nil, notReady("currency", err)
	}
	addr, err := p.addresses.AddressForCustomer(ctx, customer.ID, order.DeliveryAddressID)
	if err != nil {
		return nil, notReady("address", err)
	}

	tx.CartID = order.CartID
	tx.SetOrder(order.ID)
	tx.CustomerID = customer.ID
	tx.CurrencyID = cur.ID
	tx.MerchantAmount = order.TotalPaid
	tx.Description = "Shopping Cart Order #" + strconv.FormatInt(order.ID, 10)
	tx.ProviderCode = method.Code
	tx.ProviderName = method.Name

	if err := p.repo.Save(ctx, tx); err != nil {
		return nil, err
	}

	webhookURL, err := p.links.WebhookURL(tx)
	if err != nil {
		return nil, p.abandon(ctx, tx, err)
	}

	payload := SeamlessPayment{
		Customer: *newPayloadCustomer(customer, addr, strPtr("")),
		Transaction: SeamlessTransaction{
			CurrencyCode: cur.ISOCode,
			ProviderCode: method.Code,
			ProviderName: method.Name,
			Amount:       amountNumber(tx.MerchantAmount),
			WebhookURL:   webhookURL,
			MerchantID:   p.cfg.MerchantID,
			Description:  tx.Description,
			Reference:    tx.MerchantRef,
		},
		AccountDetails: AccountDetails{
			AccountNumber: account.Number,
			AccountName:   account.Name,
			AccountExtra: AccountExtra{
				Account:     account.Number,
				AccountName: account.Name,
				Code:        account.Code,
				SMSNumber:   account.Cell,
				Expiry:      account.Expiry,
			},
		},
	}

	if err := tx.setRequest(payload); err != nil {
		return nil, notReady("encode", err)
	}
	return tx, nil
}

// PrepareAdjustment re-prices a settled transaction to the order's total.
func (p *Processor) PrepareAdjustment(ctx context.Context, tx *Transaction, order *Order) (*Transaction, error) {
	if order == nil {
		return nil, notReady("order", ErrOrderMissing)
	}

	cur, err := p.currencies.CurrencyByID(ctx, tx.CurrencyID)
	if err != nil {
		return nil, notReady("currency", err)
	}

	tx.MerchantAmount = order.TotalPaid

	payload := Adjustment{
		CurrencyCode: cur.ISOCode,
		ProviderCode: tx.ProviderCode,
		Amount:       amountNumber(tx.MerchantAmount),
		MerchantID:   p.cfg.MerchantID,
		Description:  adjustmentDescription,
		ContiPayRef:  tx.ContipayRef,
	}

	if err := tx.setRequest(payload); err != nil {
		return nil, notReady("encode", err)
	}
	return tx, nil
}

// PrepareStatusInquiry builds the payload asking for the transaction's
// current gateway state.
func (p *Processor) PrepareStatusInquiry(tx *Transaction) *Transaction {
	// Plain strings and numbers; marshalling cannot fail.
	_ = tx.setRequest(StatusInquiry{
		Amount:      amountNumber(tx.MerchantAmount),
		Description: tx.Description,
		StatusCode:  tx.StatusCode,
		Correlator:  tx.Correlator,
	})
	return tx
}

// abandon moves an attempt that was saved but whose payload could not be
// built out of Pending, so it is never resumed without a request body.
func (p *Processor) abandon(ctx context.Context, tx *Transaction, cause error) error {
	tx.StatusCode = StatusError
	tx.Response = cause.Error()
	if err := p.repo.Save(ctx, tx); err != nil {
		metrics.PersistFailures.Inc()
		logger.FromCtx(ctx).Error("failed to mark unsent transaction as error",
			zap.Int64("transaction_id", tx.ID),
			zap.String("merchant_ref", tx.MerchantRef),
			zap.Error(err),
		)
	}
	return cause
}

func newPayloadCustomer(c Customer, addr *address.Address, nationalID *string) *PayloadCustomer {
	return &PayloadCustomer{
		NationalID:  nationalID,
		FirstName:   c.FirstName,
		Surname:     c.LastName,
		MiddleName:  "",
		Email:       c.Email,
		Cell:        addr.Mobile(),
		CountryCode: addr.CountryISO,
	}
}

func notReady(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPayloadNotReady, what, err)
}

// ----------------- Exchange -----------------

// Post sends the pending request body and applies the classified outcome to
// tx. It always assigns a status, saves tx exactly once and never returns an
// error: failures end up in StatusCode and Response.
func (p *Processor) Post(ctx context.Context, tx *Transaction, action Action, method string) *Transaction {
	log := logger.FromCtx(ctx).With(
		zap.String("action", string(action)),
		zap.String("http_method", method),
		zap.String("merchant_ref", tx.MerchantRef),
		zap.Int64("transaction_id", tx.ID),
	)

	timer := metrics.StartTimer()

	var result Result
	if len(tx.RequestBody) == 0 {
		result = TransportFailure{Err: ErrEmptyRequestBody}
	} else {
		log.Info("sending request to ContiPay")
		resp, err := p.transport.Send(ctx, method, action, p.cfg.Credentials.Header(), tx.RequestBody)
		result = Classify(resp, err)
	}

	metrics.ObserveGateway(string(action), Outcome(result), timer.Duration())

	apply(tx, result)
	metrics.TransactionStatus.WithLabelValues(tx.StatusCode.MetricLabel()).Inc()

	log.Info("ContiPay exchange classified",
		zap.String("outcome", Outcome(result)),
		zap.Stringer("status", tx.StatusCode),
		zap.String("response", tx.Response),
	)

	if err := p.repo.Save(ctx, tx); err != nil {
		metrics.PersistFailures.Inc()
		log.Error("failed to persist transaction after exchange", zap.Error(err))
	}

	if tx.ID != 0 {
		if err := p.repo.RecordExchange(ctx, newExchange(tx, action, method, result)); err != nil {
			metrics.ExchangeLogFailures.Inc()
			log.Error("failed to record exchange", zap.String("outcome", Outcome(result)), zap.Error(err))
		}
	}

	return tx
}

// apply assigns the outcome fields for every Result variant.
func apply(tx *Transaction, result Result) {
	switch r := result.(type) {
	case Success:
		tx.recordRaw(string(r.Body))
		reply, err := decodeReply(r.Body)
		if err != nil {
			tx.StatusCode = StatusError
			tx.Response = err.Error()
			return
		}
		if reply.StatusCode == 0 {
			tx.StatusCode = StatusError
			tx.Response = fmt.Sprintf("%v: missing statusCode: %s", ErrUnexpectedResponse, reply.Message)
			return
		}
		tx.StatusCode = reply.StatusCode
		tx.Response = reply.Message
		if reply.ContiPayRef != "" {
			tx.ContipayRef = reply.ContiPayRef
		}
		if reply.Correlator != "" {
			tx.Correlator = reply.Correlator
		}
		if reply.ProviderCode != "" {
			tx.ProviderCode = reply.ProviderCode
		}
		if reply.ProviderName != "" {
			tx.ProviderName = reply.ProviderName
		}
		if reply.RedirectURL != "" {
			tx.RedirectURL = reply.RedirectURL
		}

	case Decline:
		tx.recordRaw(string(r.Body))
		tx.StatusCode = StatusDeclined
		msg, err := replyMessage(r.Body)
		if err != nil {
			tx.Response = err.Error()
			return
		}
		tx.Response = msg

	case Unexpected:
		tx.recordRaw(string(r.Body))
		tx.StatusCode = StatusError
		if msg, err := replyMessage(r.Body); err == nil && msg != "" {
			tx.Response = fmt.Sprintf("%v: HTTP %d: %s", ErrUnexpectedResponse, r.Status, msg)
			return
		}
		tx.Response = fmt.Sprintf("%v: HTTP %d", ErrUnexpectedResponse, r.Status)

	case TransportFailure:
		tx.StatusCode = StatusError
		tx.Response = r.Err.Error()

	default:
		tx.StatusCode = StatusError
		tx.Response = fmt.Sprintf("%v: %T", ErrUnexpectedResponse, result)
	}
}

func newExchange(tx *Transaction, action Action, method string, result Result) *Exchange {
	ex := &Exchange{
		TransactionID: tx.ID,
		Action:        action,
		Method:        method,
		RequestBody:   tx.RequestBody,
		Outcome:       Outcome(result),
	}
	switch r := result.(type) {
	case Success:
		ex.HTTPStatus, ex.ResponseBody = r.Status, string(r.Body)
	case Decline:
		ex.HTTPStatus, ex.ResponseBody = r.Status, string(r.Body)
	case Unexpected:
		ex.HTTPStatus, ex.ResponseBody = r.Status, string(r.Body)
	case TransportFailure:
		ex.ResponseBody = r.Err.Error()
	}
	return ex
}
