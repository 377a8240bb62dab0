// Copyright (c) 2025 BVK Chaitanya

// Package txclient signs and submits venue transactions. The pipeline is
// strictly validate, allocate nonce, encode, sign, submit: a transaction
// that fails local validation never consumes a nonce, and a submission
// whose outcome is unknown is never blindly retried.
package txclient

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/visvasity/topic"

	"github.com/bvk/l2trade/gobs"
	"github.com/bvk/l2trade/nonce"
	"github.com/bvk/l2trade/rest"
	"github.com/bvk/l2trade/signer"
	"github.com/bvk/l2trade/tx"
)

// DefaultExpiry is how far in the future transactions expire when the
// caller doesn't pick an expiry. One second under the venue's ten minute
// maximum leaves room for clock skew.
const DefaultExpiry = 10*time.Minute - time.Second

// Submission status values recorded by the client.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
	StatusAmbiguous = "ambiguous"
)

// Store persists submission outcomes.
type Store interface {
	SaveTx(ctx context.Context, r *gobs.TxRecord) error
	UpdateStatus(ctx context.Context, digest, status, reason string) error
}

// StatusUpdate is published to subscribers whenever a submission outcome
// is recorded or resolved.
type StatusUpdate struct {
	Digest string
	Status string
	Reason string
	TxHash string
}

// RiskLimits configures the local pre-flight guard on order placement.
// The zero value disables all checks.
type RiskLimits struct {
	// MaxBaseAmount rejects orders above this size. Zero disables.
	MaxBaseAmount int64

	// MaxPriceDeviationBps rejects priced orders further than this many
	// basis points from the reference price. Zero disables.
	MaxPriceDeviationBps int64

	// ReferencePrice supplies the comparison price per market, typically
	// the mid price from the realtime book mirror. Deviation checks are
	// skipped when nil or when no reference is available.
	ReferencePrice func(marketIndex uint8) (uint32, bool)
}

// RiskError marks a local pre-flight rejection. Nothing was sent to the
// venue and no nonce was consumed.
type RiskError struct {
	Field  string
	Reason string
}

func (e *RiskError) Error() string {
	return fmt.Sprintf("risk check failed on %s: %s", e.Field, e.Reason)
}

type Options struct {
	ChainID      uint32
	AccountIndex int64

	// DefaultExpiry overrides the package default transaction lifetime.
	DefaultExpiry time.Duration

	Risk RiskLimits

	// Store receives submission records when non-nil.
	Store Store
}

func (v *Options) setDefaults() {
	if v.DefaultExpiry == 0 {
		v.DefaultExpiry = DefaultExpiry
	}
}

// TransactOpts carries per-transaction overrides. The zero value signs
// with a managed nonce and the default expiry.
type TransactOpts struct {
	// Nonce is used as-is when UseNonce is set; otherwise the nonce
	// manager allocates one.
	Nonce    int64
	UseNonce bool

	// ExpiredAt is a unix millisecond timestamp. Zero means now plus the
	// client's default expiry.
	ExpiredAt int64

	// SkipRiskChecks bypasses the local pre-flight for this transaction.
	SkipRiskChecks bool
}

// Client is the signing and submission pipeline for one account and
// signing key.
type Client struct {
	opts Options

	rest *rest.Client
	key  *signer.KeyManager

	nonces *nonce.Manager

	statusTopic *topic.Topic[StatusUpdate]
}

// New creates a transaction client. Nonces are fetched lazily from the
// venue through the rest client and tracked locally afterwards.
func New(rc *rest.Client, key *signer.KeyManager, opts *Options) (*Client, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if opts.AccountIndex < 0 || opts.AccountIndex > tx.MaxAccountIndex {
		return nil, fmt.Errorf("invalid account index %d", opts.AccountIndex)
	}

	c := &Client{
		opts:        *opts,
		rest:        rc,
		key:         key,
		nonces:      nonce.NewManager(rc.NextNonce),
		statusTopic: topic.New[StatusUpdate](),
	}
	return c, nil
}

// Close releases the status topic. The signing key is owned by the caller
// and is not closed.
func (c *Client) Close() error {
	c.statusTopic.Close()
	return nil
}

// NonceManager exposes the client's nonce manager for manual seeding.
func (c *Client) NonceManager() *nonce.Manager {
	return c.nonces
}

// StatusUpdates subscribes to submission outcome changes.
func (c *Client) StatusUpdates() (*topic.Receiver[StatusUpdate], error) {
	return topic.Subscribe(c.statusTopic, 0, false /* includeRecent */)
}

// Sign validates, allocates a nonce, encodes and signs a transaction.
// Validation and risk failures happen before nonce allocation, so a
// rejected transaction leaves the nonce sequence untouched.
func (c *Client) Sign(ctx context.Context, t tx.Transaction, opts *TransactOpts) (*SignedTx, error) {
	if opts == nil {
		opts = new(TransactOpts)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if !opts.SkipRiskChecks {
		if err := c.riskCheck(t); err != nil {
			return nil, err
		}
	}

	n := opts.Nonce
	if !opts.UseNonce {
		v, err := c.nonces.Next(ctx, c.opts.AccountIndex, c.key.KeyIndex())
		if err != nil {
			return nil, fmt.Errorf("could not allocate nonce: %w", err)
		}
		n = v
	}

	expiredAt := opts.ExpiredAt
	if expiredAt == 0 {
		expiredAt = time.Now().Add(c.opts.DefaultExpiry).UnixMilli()
	}

	env := &tx.Envelope{
		ChainID:      c.opts.ChainID,
		AccountIndex: c.opts.AccountIndex,
		APIKeyIndex:  c.key.KeyIndex(),
		Nonce:        n,
		ExpiredAt:    expiredAt,
	}
	payload, err := tx.Encode(env, t)
	if err != nil {
		return nil, err
	}

	digest := c.key.Digest(payload)
	sig, err := c.key.Sign(digest)
	if err != nil {
		return nil, fmt.Errorf("could not sign transaction: %w", err)
	}

	return &SignedTx{
		Type:      t.TxType(),
		Envelope:  *env,
		Payload:   payload,
		Digest:    digest,
		Signature: sig,
	}, nil
}

// Submit sends a signed transaction to the venue exactly once. A nonce
// conflict invalidates the local counter so the next Sign refetches; an
// ambiguous outcome is recorded as such and must go through Resolve
// instead of being resubmitted.
func (c *Client) Submit(ctx context.Context, s *SignedTx) (string, error) {
	req, err := s.Request()
	if err != nil {
		return "", err
	}

	resp, err := c.rest.SendTx(ctx, req)
	if err != nil {
		switch {
		case rest.IsNonceConflict(err):
			c.nonces.Invalidate(s.Envelope.AccountIndex, s.Envelope.APIKeyIndex)
			c.record(ctx, s, "", StatusRejected, err.Error())
			return "", fmt.Errorf("%w: %w", nonce.ErrConflict, err)
		case rest.IsAmbiguous(err):
			c.record(ctx, s, "", StatusAmbiguous, err.Error())
			return "", err
		}
		c.record(ctx, s, "", StatusRejected, err.Error())
		return "", err
	}

	c.record(ctx, s, resp.TxHash, StatusPending, "")
	return resp.TxHash, nil
}

// Send signs and submits in one step.
func (c *Client) Send(ctx context.Context, t tx.Transaction, opts *TransactOpts) (*SignedTx, error) {
	s, err := c.Sign(ctx, t, opts)
	if err != nil {
		return nil, err
	}
	if _, err := c.Submit(ctx, s); err != nil {
		return s, err
	}
	return s, nil
}

// Resolve queries the authoritative status of an earlier submission. This
// is the only correct follow-up to an ambiguous Submit: the digest
// identifies the exact signed payload, so the answer tells whether that
// particular transaction took effect.
func (c *Client) Resolve(ctx context.Context, digest string) (*rest.TxStatus, error) {
	st, err := c.rest.TxStatus(ctx, digest)
	if err != nil {
		return nil, err
	}

	status := StatusPending
	switch st.Status {
	case rest.TxConfirmed:
		status = StatusConfirmed
	case rest.TxRejected:
		status = StatusRejected
	}
	if c.opts.Store != nil {
		if err := c.opts.Store.UpdateStatus(ctx, digest, status, st.Reason); err != nil {
			slog.WarnContext(ctx, "could not update tx record (ignored)", "digest", digest, "error", err)
		}
	}
	c.statusTopic.Send(StatusUpdate{Digest: digest, Status: status, Reason: st.Reason})
	return st, nil
}

func (c *Client) record(ctx context.Context, s *SignedTx, txHash, status, reason string) {
	if c.opts.Store != nil {
		r := &gobs.TxRecord{
			Digest:       s.DigestHex(),
			TxType:       uint8(s.Type),
			AccountIndex: s.Envelope.AccountIndex,
			APIKeyIndex:  s.Envelope.APIKeyIndex,
			Nonce:        s.Envelope.Nonce,
			ExpiredAt:    s.Envelope.ExpiredAt,
			Payload:      append([]byte(nil), s.Payload...),
			Signature:    append([]byte(nil), s.Signature...),
			TxHash:       txHash,
			Status:       status,
			Reason:       reason,
			SubmittedAt:  time.Now(),
		}
		if err := c.opts.Store.SaveTx(ctx, r); err != nil {
			slog.WarnContext(ctx, "could not save tx record (ignored)", "digest", r.Digest, "error", err)
		}
	}
	c.statusTopic.Send(StatusUpdate{Digest: s.DigestHex(), Status: status, Reason: reason, TxHash: txHash})
}

func (c *Client) riskCheck(t tx.Transaction) error {
	switch v := t.(type) {
	case *tx.CreateOrder:
		return c.checkOrder(&v.Order)
	case *tx.CreateGroupedOrders:
		for i := range v.Orders {
			if err := c.checkOrder(&v.Orders[i]); err != nil {
				return err
			}
		}
	case *tx.ModifyOrder:
		if max := c.opts.Risk.MaxBaseAmount; max > 0 && v.BaseAmount > max {
			return &RiskError{Field: "base_amount", Reason: fmt.Sprintf("%d is above the limit %d", v.BaseAmount, max)}
		}
		return c.checkPrice(v.MarketIndex, v.Price)
	}
	return nil
}

func (c *Client) checkOrder(o *tx.OrderInfo) error {
	if max := c.opts.Risk.MaxBaseAmount; max > 0 && o.BaseAmount > max {
		return &RiskError{Field: "base_amount", Reason: fmt.Sprintf("%d is above the limit %d", o.BaseAmount, max)}
	}
	// Market orders cross the book at any price by definition.
	if o.OrderType == tx.OrderTypeMarket {
		return nil
	}
	return c.checkPrice(o.MarketIndex, o.Price)
}

func (c *Client) checkPrice(marketIndex uint8, price uint32) error {
	maxBps := c.opts.Risk.MaxPriceDeviationBps
	if maxBps == 0 || price == 0 || c.opts.Risk.ReferencePrice == nil {
		return nil
	}
	ref, ok := c.opts.Risk.ReferencePrice(marketIndex)
	if !ok || ref == 0 {
		return nil
	}

	diff := int64(price) - int64(ref)
	if diff < 0 {
		diff = -diff
	}
	bps := diff * 10_000 / int64(ref)
	if bps > maxBps {
		return &RiskError{Field: "price", Reason: fmt.Sprintf("%d deviates %d bps from reference %d (limit %d)", price, bps, ref, maxBps)}
	}
	return nil
}
